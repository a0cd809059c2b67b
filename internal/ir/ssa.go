package ir

// DemoteToMemory lowers inst out of SSA form: it allocates a stack slot in
// the function entry block, stores inst's result into it immediately
// after inst, and replaces every other use of inst with a fresh load from
// the slot inserted right before the using instruction. This is the
// "SSA-to-memory demotion" spec.md §9 requires CFF to run after
// flattening a function, since collapsing every block into one dispatch
// loop body destroys the dominance relationships plain SSA values rely
// on — memory doesn't need those, only a consistent slot.
//
// inst must not be a Phi; use DemotePhiToMemory for those.
func DemoteToMemory(fn *Function, inst Instruction) *Alloca {
	slot := entryAlloca(fn, inst.Type(), "reg2mem")

	owner := inst.Parent()
	idx := owner.IndexOf(inst)
	store := &Store{base: base{typ: &VoidType{}}, Val: inst, Ptr: slot}
	owner.Insts = append(owner.Insts, nil)
	copy(owner.Insts[idx+2:], owner.Insts[idx+1:])
	owner.Insts[idx+1] = store
	store.setParent(owner)

	for _, bb := range fn.Blocks {
		for i := 0; i < len(bb.Insts); i++ {
			user := bb.Insts[i]
			if user == inst || user == Instruction(store) {
				continue
			}
			used := false
			for _, op := range user.Operands() {
				if op == Value(inst) {
					used = true
					break
				}
			}
			if phi, ok := user.(*Phi); ok {
				for _, inc := range phi.Incs {
					if Value(inc.Val) == Value(inst) {
						used = true
					}
				}
			}
			if !used {
				continue
			}
			load := &Load{base: base{typ: inst.Type()}, Ptr: slot}
			bb.Insts = append(bb.Insts, nil)
			copy(bb.Insts[i+1:], bb.Insts[i:])
			bb.Insts[i] = load
			load.setParent(bb)
			for j, op := range user.Operands() {
				if op == Value(inst) {
					user.SetOperand(j, load)
				}
			}
			if phi, ok := user.(*Phi); ok {
				for j, inc := range phi.Incs {
					if Value(inc.Val) == Value(inst) {
						phi.Incs[j].Val = load
					}
				}
			}
			i++ // skip over the load we just inserted
		}
	}
	return slot
}

// DemotePhiToMemory replaces phi with a load from a fresh stack slot and
// inserts a store of each incoming value at the end of its corresponding
// predecessor block (before that block's terminator). It is the phi
// counterpart of DemoteToMemory: a phi has no single defining point to
// store from, so each predecessor edge gets its own store instead.
func DemotePhiToMemory(fn *Function, phi *Phi) *Alloca {
	slot := entryAlloca(fn, phi.Type(), "reg2mem.phi")
	owner := phi.Parent()

	for _, inc := range phi.Incs {
		store := &Store{base: base{typ: &VoidType{}}, Val: inc.Val, Ptr: slot}
		pred := inc.Pred
		term := pred.Terminator()
		termIdx := pred.IndexOf(Instruction(term))
		pred.Insts = append(pred.Insts, nil)
		copy(pred.Insts[termIdx+1:], pred.Insts[termIdx:])
		pred.Insts[termIdx] = store
		store.setParent(pred)
	}

	load := &Load{base: base{typ: phi.Type()}, Ptr: slot}
	idx := owner.IndexOf(phi)
	owner.Insts[idx] = load
	load.setParent(owner)
	ReplaceAllUsesWith(fn, Value(phi), Value(load))
	return slot
}

func entryAlloca(fn *Function, elem Type, hint string) *Alloca {
	entry := fn.Entry()
	slot := &Alloca{base: base{name: fn.NewTemp(hint), typ: &PointerType{Elem: elem}}, Elem: elem}
	entry.Insts = append(entry.Insts, nil)
	copy(entry.Insts[1:], entry.Insts[:])
	entry.Insts[0] = slot
	slot.setParent(entry)
	return slot
}
