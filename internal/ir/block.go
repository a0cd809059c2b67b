package ir

// BasicBlock is a straight-line instruction sequence ending in exactly one
// Terminator (spec.md §3 invariant 1). It implements Value so it can be
// used directly as a phi incoming-block or branch-target operand.
type BasicBlock struct {
	Name   string
	Parent *Function
	Insts  []Instruction
}

func (b *BasicBlock) Type() Type    { return &LabelType{} }
func (b *BasicBlock) Ident() string { return "%" + b.Name }

// Terminator returns the block's terminating instruction, or nil if the
// block is still under construction and has none yet.
func (b *BasicBlock) Terminator() Terminator {
	if len(b.Insts) == 0 {
		return nil
	}
	term, _ := b.Insts[len(b.Insts)-1].(Terminator)
	return term
}

// Append adds inst to the end of the block's non-terminator instruction
// list. It panics if the block already has a terminator, since every
// instruction after one would be unreachable within the block.
func (b *BasicBlock) Append(inst Instruction) {
	if b.Terminator() != nil {
		panic("ir: Append after terminator in block " + b.Name)
	}
	inst.setParent(b)
	b.Insts = append(b.Insts, inst)
}

// InsertAt splices inst into the block at position idx, shifting
// everything at or after idx one slot to the right. Used by passes that
// must land a replacement instruction exactly where the one it is
// replacing used to sit, such as substitute's algebraic rewrites.
func (b *BasicBlock) InsertAt(idx int, inst Instruction) {
	b.Insts = append(b.Insts, nil)
	copy(b.Insts[idx+1:], b.Insts[idx:])
	b.Insts[idx] = inst
	inst.setParent(b)
}

// SetTerminator appends term as the block's terminator, replacing any
// existing one.
func (b *BasicBlock) SetTerminator(term Terminator) {
	if old := b.Terminator(); old != nil {
		b.Insts = b.Insts[:len(b.Insts)-1]
	}
	term.setParent(b)
	b.Insts = append(b.Insts, term)
}

// NonTerminators returns every instruction in the block except its
// terminator.
func (b *BasicBlock) NonTerminators() []Instruction {
	term := b.Terminator()
	if term == nil {
		return b.Insts
	}
	return b.Insts[:len(b.Insts)-1]
}

// IndexOf returns the position of inst within the block, or -1.
func (b *BasicBlock) IndexOf(inst Instruction) int {
	for i, x := range b.Insts {
		if x == inst {
			return i
		}
	}
	return -1
}

// Predecessors scans every block in the parent function and returns those
// whose terminator has b as a successor. The IR keeps no predecessor
// cache: passes mutate successors frequently enough that an incrementally
// maintained cache would be a larger source of bugs than a linear scan
// (functions here are small; spec.md never asks for whole-program scale).
func (b *BasicBlock) Predecessors() []*BasicBlock {
	var preds []*BasicBlock
	if b.Parent == nil {
		return nil
	}
	for _, other := range b.Parent.Blocks {
		term := other.Terminator()
		if term == nil {
			continue
		}
		for _, succ := range term.Successors() {
			if succ == b {
				preds = append(preds, other)
				break
			}
		}
	}
	return preds
}

// Phis returns the block's leading run of Phi instructions.
func (b *BasicBlock) Phis() []*Phi {
	var phis []*Phi
	for _, inst := range b.Insts {
		p, ok := inst.(*Phi)
		if !ok {
			break
		}
		phis = append(phis, p)
	}
	return phis
}
