package ir

import "testing"

func TestTypesEqual(t *testing.T) {
	cases := []struct {
		a, b Type
		want bool
	}{
		{I32, I32, true},
		{I32, I64, false},
		{&PointerType{Elem: I8}, &PointerType{Elem: I8}, true},
		{&PointerType{Elem: I8}, &PointerType{Elem: I32}, false},
		{&ArrayType{Len: 4, Elem: I8}, &ArrayType{Len: 4, Elem: I8}, true},
		{&ArrayType{Len: 4, Elem: I8}, &ArrayType{Len: 5, Elem: I8}, false},
		{&VoidType{}, &VoidType{}, true},
		{&LabelType{}, I32, false},
	}
	for _, c := range cases {
		if got := TypesEqual(c.a, c.b); got != c.want {
			t.Errorf("TypesEqual(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestFuncTypeString(t *testing.T) {
	ft := &FuncType{Ret: I32, Params: []Type{I32, &PointerType{Elem: I8}}}
	want := "i32 (i32, i8*)"
	if got := ft.String(); got != want {
		t.Errorf("FuncType.String() = %q, want %q", got, want)
	}
}
