package ir

import "testing"

// buildAddFunction builds:
//
//	define i32 @add(i32 %a, i32 %b) {
//	entry:
//	  %s = add i32 %a, %b
//	  ret i32 %s
//	}
func buildAddFunction(m *Module) *Function {
	fn := m.NewFunction("add", &FuncType{Ret: I32, Params: []Type{I32, I32}}, []string{"a", "b"})
	entry := fn.NewBlock("entry")
	b := NewBuilder(fn, entry)
	sum := b.BinOp(OpAdd, fn.Params[0], fn.Params[1], "s")
	b.Ret(sum)
	return fn
}

func TestCloneBlockRemapsInternalOperands(t *testing.T) {
	m := &Module{Name: "m"}
	fn := buildAddFunction(m)
	entry := fn.Entry()

	clone, valueMap := CloneBlock(entry, "entry.clone")

	if len(clone.Insts) != len(entry.Insts) {
		t.Fatalf("clone has %d insts, want %d", len(clone.Insts), len(entry.Insts))
	}
	origSum := entry.Insts[0].(*BinOp)
	cloneSum, ok := clone.Insts[0].(*BinOp)
	if !ok {
		t.Fatalf("clone.Insts[0] = %T, want *BinOp", clone.Insts[0])
	}
	if cloneSum == origSum {
		t.Fatal("clone reused the original instruction pointer")
	}
	// Operands referencing function arguments are outside the cloned
	// region, so they pass through unchanged.
	if cloneSum.X != origSum.X || cloneSum.Y != origSum.Y {
		t.Error("clone should keep out-of-region operands untouched")
	}
	cloneRet, ok := clone.Insts[1].(*Ret)
	if !ok {
		t.Fatalf("clone.Insts[1] = %T, want *Ret", clone.Insts[1])
	}
	if cloneRet.Val != Value(cloneSum) {
		t.Error("clone's ret should reference the clone's own sum, not the original")
	}
	if valueMap[origSum] != Value(cloneSum) {
		t.Error("valueMap should map the original sum to its clone")
	}
}

func TestRemapPhiPredecessors(t *testing.T) {
	m := &Module{Name: "m"}
	fn := m.NewFunction("f", &FuncType{Ret: I32, Params: nil}, nil)
	entry := fn.NewBlock("entry")
	left := fn.NewBlock("left")
	right := fn.NewBlock("right")
	join := fn.NewBlock("join")

	eb := NewBuilder(fn, entry)
	eb.CondBr(NewConstInt(I1, 1), left, right)
	NewBuilder(fn, left).Br(join)
	NewBuilder(fn, right).Br(join)

	jb := NewBuilder(fn, join)
	phi := jb.Phi(I32, "p")
	phi.Incs = []*Incoming{
		{Val: NewConstInt(I32, 1), Pred: left},
		{Val: NewConstInt(I32, 2), Pred: right},
	}
	jb.Ret(phi)

	leftClone := &BasicBlock{Name: "left.clone"}
	blockMap := map[*BasicBlock]*BasicBlock{left: leftClone}
	RemapPhiPredecessors(join, blockMap)

	if phi.Incs[0].Pred != leftClone {
		t.Error("expected left predecessor remapped to its clone")
	}
	if phi.Incs[1].Pred != right {
		t.Error("right predecessor should be untouched (not in blockMap)")
	}
}
