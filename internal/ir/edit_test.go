package ir

import "testing"

func TestSplitBlockPreservesOrderAndTerminator(t *testing.T) {
	m := &Module{Name: "m"}
	fn := buildAddFunction(m)
	entry := fn.Entry()

	origTerm := entry.Terminator()
	tail := SplitBlock(entry, 1, "entry.tail")

	if len(entry.Insts) != 2 {
		t.Fatalf("head has %d insts, want 2", len(entry.Insts))
	}
	head := entry.Terminator()
	br, ok := head.(*Br)
	if !ok || br.Target != tail {
		t.Fatalf("head terminator = %#v, want Br to tail", head)
	}
	if len(tail.Insts) != 1 || tail.Insts[0] != Instruction(origTerm) {
		t.Fatalf("tail should hold exactly the original terminator")
	}
	found := false
	for _, bb := range fn.Blocks {
		if bb == tail {
			found = true
		}
	}
	if !found {
		t.Error("tail block not registered in function block list")
	}
}

func TestInsertBlockBetweenRewritesEdgeAndPhi(t *testing.T) {
	m := &Module{Name: "m"}
	fn := m.NewFunction("f", &FuncType{Ret: I32, Params: nil}, nil)
	entry := fn.NewBlock("entry")
	join := fn.NewBlock("join")
	NewBuilder(fn, entry).Br(join)

	jb := NewBuilder(fn, join)
	phi := jb.Phi(I32, "p")
	phi.Incs = []*Incoming{{Val: NewConstInt(I32, 9), Pred: entry}}
	jb.Ret(phi)

	mid := fn.NewBlock("mid")
	NewBuilder(fn, mid).Br(join)

	InsertBlockBetween(entry, join, mid)

	br, ok := entry.Terminator().(*Br)
	if !ok || br.Target != mid {
		t.Fatalf("entry should now branch to mid, got %#v", entry.Terminator())
	}
	if phi.Incs[0].Pred != mid {
		t.Error("phi's incoming predecessor should be rewritten to mid")
	}
}

func TestEraseInstructionRemovesFromBlock(t *testing.T) {
	m := &Module{Name: "m"}
	fn := buildAddFunction(m)
	entry := fn.Entry()
	sum := entry.Insts[0]

	EraseInstruction(sum)

	if len(entry.Insts) != 1 {
		t.Fatalf("entry has %d insts after erase, want 1", len(entry.Insts))
	}
	if sum.Parent() != nil {
		t.Error("erased instruction should have nil parent")
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	m := &Module{Name: "m"}
	fn := buildAddFunction(m)
	entry := fn.Entry()
	sum := entry.Insts[0]
	repl := NewConstInt(I32, 42)

	ReplaceAllUsesWith(fn, Value(sum), Value(repl))

	ret := entry.Terminator().(*Ret)
	if ret.Val != Value(repl) {
		t.Errorf("ret.Val = %v, want replacement", ret.Val)
	}
}
