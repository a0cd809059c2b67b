package ir

// SplitBlock splits bb at instruction index idx: bb keeps Insts[:idx] and
// gains an unconditional Br to a new tail block holding Insts[idx:] plus
// bb's original terminator. Any block that branched to bb still does (bb
// keeps its identity and predecessors); anything that branched away from
// bb now does so from the tail. Phis in the tail's successors that listed
// bb as a predecessor are rewritten to list the tail, since the tail is
// now the block that branches to them.
//
// This is the block-splitting primitive spec.md §4.1/§9 names: CFF uses
// it to peel the entry block's terminator off into a block of its own,
// and BCF uses it to create the instruction-boundary point at which a
// bogus diamond is spliced in.
func SplitBlock(bb *BasicBlock, idx int, tailHint string) *BasicBlock {
	if idx < 0 || idx > len(bb.Insts) {
		panic("ir: SplitBlock index out of range")
	}
	tail := &BasicBlock{Name: tailHint, Parent: bb.Parent}
	tail.Insts = append(tail.Insts, bb.Insts[idx:]...)
	for _, inst := range tail.Insts {
		inst.setParent(tail)
	}
	bb.Insts = bb.Insts[:idx]
	bb.Insts = append(bb.Insts, &Br{base: base{typ: &VoidType{}}, Target: tail})
	bb.Insts[len(bb.Insts)-1].setParent(bb)

	if term := tail.Terminator(); term != nil {
		for _, succ := range term.Successors() {
			for _, phi := range succ.Phis() {
				for _, inc := range phi.Incs {
					if inc.Pred == bb {
						inc.Pred = tail
					}
				}
			}
		}
	}

	if bb.Parent != nil {
		bb.Parent.InsertBlockAfter(bb, tail)
	}
	return tail
}

// InsertBlockBetween splices newBB onto the edge from -> to, redirecting
// from's terminator so the edge now goes from -> newBB -> to and
// rewriting every phi in to that listed from as a predecessor to list
// newBB instead. newBB must already end in a terminator targeting to (the
// caller builds it before calling this).
func InsertBlockBetween(from, to, newBB *BasicBlock) {
	term := from.Terminator()
	if term == nil {
		return
	}
	for i, succ := range term.Successors() {
		if succ == to {
			term.SetSuccessor(i, newBB)
		}
	}
	for _, phi := range to.Phis() {
		for i, inc := range phi.Incs {
			if inc.Pred == from {
				phi.Incs[i].Pred = newBB
			}
		}
	}
}

// EraseInstruction removes inst from its parent block.
func EraseInstruction(inst Instruction) {
	bb := inst.Parent()
	if bb == nil {
		return
	}
	idx := bb.IndexOf(inst)
	if idx < 0 {
		return
	}
	bb.Insts = append(bb.Insts[:idx], bb.Insts[idx+1:]...)
	inst.setParent(nil)
}

// ReplaceAllUsesWith rewrites every operand in fn equal to old to new.
// Used by phi demotion (DemotePhiToMemory) and by substitute once a
// rewritten instruction's replacement sequence is in place.
func ReplaceAllUsesWith(fn *Function, old, new Value) {
	for _, inst := range fn.AllInstructions() {
		for i, op := range inst.Operands() {
			if op == old {
				inst.SetOperand(i, new)
			}
		}
		if phi, ok := inst.(*Phi); ok {
			for i, inc := range phi.Incs {
				if Value(inc.Val) == old {
					phi.Incs[i].Val = new
				}
			}
		}
	}
}
