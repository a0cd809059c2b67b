package ir

// CloneBlock duplicates src as a detached block not yet attached to any
// function, and returns it together with a value map from every
// instruction defined in src to its clone. Cloning happens in two phases,
// the way a structural-copy-then-remap pass must (spec.md §4.1, §9):
//
//  1. structuralCopy every instruction, in order, so operand lists still
//     point at src's original values.
//  2. RemapOperands rewrites every cloned instruction's operands through
//     valueMap, falling back to the untouched original when an operand
//     was defined outside the cloned region (e.g. a function argument or
//     a value from a block that was not cloned alongside src).
//
// Phi incoming blocks are left unmapped here; callers that clone more
// than one block must also remap phi predecessors through their own block
// map (RemapPhiPredecessors) once every sibling block has been cloned.
func CloneBlock(src *BasicBlock, nameHint string) (*BasicBlock, map[Value]Value) {
	dst := &BasicBlock{Name: nameHint}
	valueMap := make(map[Value]Value, len(src.Insts))

	for _, inst := range src.Insts {
		clone := inst.structuralCopy()
		clone.setParent(dst)
		dst.Insts = append(dst.Insts, clone)
		valueMap[inst] = clone
	}
	for _, inst := range dst.Insts {
		RemapOperands(inst, valueMap)
	}
	return dst, valueMap
}

// RemapOperands rewrites every operand of inst that appears as a key in
// valueMap to its mapped value, leaving all others untouched.
func RemapOperands(inst Instruction, valueMap map[Value]Value) {
	for i, op := range inst.Operands() {
		if mapped, ok := valueMap[op]; ok {
			inst.SetOperand(i, mapped)
		}
	}
	if phi, ok := inst.(*Phi); ok {
		for i, inc := range phi.Incs {
			if mapped, ok := valueMap[Value(inc.Pred)]; ok {
				if bb, ok := mapped.(*BasicBlock); ok {
					phi.Incs[i].Pred = bb
				}
			}
		}
	}
}

// RemapPhiPredecessors rewrites every Phi in bb so that any incoming block
// present in blockMap is replaced by its mapped counterpart. Used once a
// whole region of blocks has been cloned together, after CloneBlock's
// per-instruction value map has already fixed up non-block operands.
func RemapPhiPredecessors(bb *BasicBlock, blockMap map[*BasicBlock]*BasicBlock) {
	for _, phi := range bb.Phis() {
		for i := range phi.Incs {
			phi.RemapIncomingBlock(i, blockMap)
		}
	}
}
