package strcrypt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"obfgo/internal/ir"
)

func buildModuleWithGEPUse(plain string) (*ir.Module, *ir.GlobalVariable, *ir.Call) {
	m := &ir.Module{Name: "m"}
	g := m.NewGlobalString("s", plain)
	gep := &ir.ConstGEP{Base: g, Elem: ir.I8}
	puts := m.Declare("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{&ir.PointerType{Elem: ir.I8}}})
	fn := m.NewFunction("f", &ir.FuncType{Ret: &ir.VoidType{}}, nil)
	entry := fn.NewBlock("entry")
	b := ir.NewBuilder(fn, entry)
	call := b.Call(puts, []ir.Value{gep}, "_")
	b.Ret(nil)
	return m, g, call
}

func TestApplyModuleObfuscatesQualifyingGlobal(t *testing.T) {
	m, g, call := buildModuleWithGEPUse("secret")
	original := append([]byte(nil), g.Init.(*ir.ConstArray).Bytes...)

	changed := New(Config{}).ApplyModule(m)
	require.True(t, changed)

	require.False(t, g.Constant, "obfuscated global must no longer be constant")
	require.NotEqual(t, original, g.Init.(*ir.ConstArray).Bytes, "bytes should be XOR-encrypted")

	entry := call.Parent()
	require.Len(t, entry.Insts, 4, "expect decrypt, call, encrypt, ret")
	dec, ok := entry.Insts[0].(*ir.Call)
	require.True(t, ok)
	require.Equal(t, "__decrypt", dec.Callee.Name)
	require.Same(t, call, entry.Insts[1].(*ir.Call))
	require.Equal(t, ir.Value(dec), call.Args[0], "call's argument should now be the decrypted buffer")
	enc, ok := entry.Insts[2].(*ir.Call)
	require.True(t, ok)
	require.Equal(t, "__encrypt", enc.Callee.Name)
}

func TestApplyModuleSkipsDirectInstructionUse(t *testing.T) {
	m := &ir.Module{Name: "m"}
	g := m.NewGlobalString("s", "secret")
	puts := m.Declare("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{&ir.PointerType{Elem: ir.I8}}})
	fn := m.NewFunction("f", &ir.FuncType{Ret: &ir.VoidType{}}, nil)
	entry := fn.NewBlock("entry")
	b := ir.NewBuilder(fn, entry)
	b.Call(puts, []ir.Value{g}, "_") // direct instruction use, no GEP indirection
	b.Ret(nil)

	original := append([]byte(nil), g.Init.(*ir.ConstArray).Bytes...)
	changed := New(Config{}).ApplyModule(m)

	require.False(t, changed)
	require.Equal(t, original, g.Init.(*ir.ConstArray).Bytes)
	require.True(t, g.Constant)
}

func TestApplyModuleRejectsNonCallLeafAtSecondLevel(t *testing.T) {
	m := &ir.Module{Name: "m"}
	g := m.NewGlobalString("s", "secret")
	gep := &ir.ConstGEP{Base: g, Elem: ir.I8}
	fn := m.NewFunction("f", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{&ir.PointerType{Elem: ir.I8}}}, []string{"p"})
	entry := fn.NewBlock("entry")
	b := ir.NewBuilder(fn, entry)
	// A non-call user of the gep (e.g. a pointer comparison) should
	// reject the global outright, even though it also has a call user.
	puts := m.Declare("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{&ir.PointerType{Elem: ir.I8}}})
	b.Call(puts, []ir.Value{gep}, "_")
	b.ICmp(ir.ICmpEQ, gep, ir.NewConstNull(ir.I8), "iscmp")
	b.Ret(ir.NewConstInt(ir.I32, 0))

	changed := New(Config{}).ApplyModule(m)
	require.False(t, changed)
	require.True(t, g.Constant)
}
