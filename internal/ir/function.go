package ir

// Function is a defined or declared function. A declaration (no body) has
// a nil Blocks slice; the four passes only ever operate on definitions.
type Function struct {
	Name    string
	Sig     *FuncType
	Params  []*Argument
	Blocks  []*BasicBlock
	Parent  *Module

	nextTmp int
	nextBB  int
}

func (f *Function) Type() Type    { return f.Sig }
func (f *Function) Ident() string { return "@" + f.Name }

// IsDeclaration reports whether f has no body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// Entry returns the function's first block, or nil for a declaration.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NewBlock creates and appends a fresh basic block with an
// obfuscation-pass-friendly auto-generated name (e.g. the teacher's
// Builder assigns synthetic SSA names off a per-function counter; blocks
// here follow the same scheme so names never collide with user blocks).
func (f *Function) NewBlock(hint string) *BasicBlock {
	bb := &BasicBlock{Name: f.uniqueName(hint), Parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// InsertBlockAfter inserts bb immediately after anchor in the function's
// block order. Block order has no semantic meaning for execution (control
// flow is defined entirely by terminators) but does affect printed output
// and is preserved here for a deterministic, readable dump.
func (f *Function) InsertBlockAfter(anchor, bb *BasicBlock) {
	for i, x := range f.Blocks {
		if x == anchor {
			f.Blocks = append(f.Blocks, nil)
			copy(f.Blocks[i+2:], f.Blocks[i+1:])
			f.Blocks[i+1] = bb
			bb.Parent = f
			return
		}
	}
	f.Blocks = append(f.Blocks, bb)
	bb.Parent = f
}

// RemoveBlock deletes bb from the function. Callers must have already
// retargeted every edge into bb.
func (f *Function) RemoveBlock(bb *BasicBlock) {
	for i, x := range f.Blocks {
		if x == bb {
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			return
		}
	}
}

// NewTemp returns a fresh SSA value name unique within the function.
func (f *Function) NewTemp(hint string) string {
	f.nextTmp++
	if hint == "" {
		hint = "t"
	}
	return hint + "." + fmtUint(uint64(f.nextTmp))
}

func (f *Function) uniqueName(hint string) string {
	f.nextBB++
	if hint == "" {
		hint = "bb"
	}
	return hint + "." + fmtUint(uint64(f.nextBB))
}

// AllInstructions iterates every instruction in the function, block order
// then in-block order, including terminators.
func (f *Function) AllInstructions() []Instruction {
	var out []Instruction
	for _, bb := range f.Blocks {
		out = append(out, bb.Insts...)
	}
	return out
}
