package ir

import "testing"

func TestGlobalUsersDirectInstruction(t *testing.T) {
	m := &Module{Name: "m"}
	g := m.NewGlobalString("s", "hi")
	fn := m.NewFunction("f", &FuncType{Ret: &VoidType{}, Params: nil}, nil)
	entry := fn.NewBlock("entry")
	puts := m.Declare("puts", &FuncType{Ret: I32, Params: []Type{&PointerType{Elem: I8}}})
	b := NewBuilder(fn, entry)
	b.Call(puts, []Value{g}, "_")
	b.Ret(nil)

	users := m.GlobalUsers(g)
	if len(users) != 1 {
		t.Fatalf("GlobalUsers returned %d users, want 1", len(users))
	}
	if _, ok := users[0].(*Call); !ok {
		t.Errorf("direct user = %T, want *Call", users[0])
	}
}

func TestGlobalUsersViaConstGEPRequiresSecondLevelCall(t *testing.T) {
	m := &Module{Name: "m"}
	g := m.NewGlobalString("s", "hi")
	gep := &ConstGEP{Base: g, Elem: I8}
	fn := m.NewFunction("f", &FuncType{Ret: &VoidType{}, Params: nil}, nil)
	entry := fn.NewBlock("entry")
	puts := m.Declare("puts", &FuncType{Ret: I32, Params: []Type{&PointerType{Elem: I8}}})
	b := NewBuilder(fn, entry)
	b.Call(puts, []Value{gep}, "_")
	b.Ret(nil)

	users := m.GlobalUsers(g)
	if len(users) != 1 {
		t.Fatalf("GlobalUsers returned %d users, want 1", len(users))
	}
	constGEP, ok := users[0].(*ConstGEP)
	if !ok {
		t.Fatalf("direct user = %T, want *ConstGEP (non-instruction)", users[0])
	}
	deeper := m.UsersOfValue(constGEP)
	if len(deeper) != 1 {
		t.Fatalf("UsersOfValue(gep) returned %d, want 1", len(deeper))
	}
	if _, ok := deeper[0].(*Call); !ok {
		t.Errorf("second-level user = %T, want *Call", deeper[0])
	}
}
