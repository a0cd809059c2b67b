package substitute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"obfgo/internal/ir"
)

func buildAddFunction(m *ir.Module) *ir.Function {
	fn := m.NewFunction("add", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.I32, ir.I32}}, []string{"a", "b"})
	entry := fn.NewBlock("entry")
	b := ir.NewBuilder(fn, entry)
	sum := b.BinOp(ir.OpAdd, fn.Params[0], fn.Params[1], "s")
	b.Ret(sum)
	return fn
}

func TestApplyFunctionAlwaysRewritesAtProbability100(t *testing.T) {
	m := &ir.Module{Name: "m"}
	fn := buildAddFunction(m)
	orig := fn.Entry().Insts[0]

	pass := New(Config{Loops: 1, Probability: 100})
	changed := pass.ApplyFunction(m, fn)
	require.True(t, changed)

	entry := fn.Entry()
	require.Equal(t, -1, entry.IndexOf(orig), "original add should have been erased")
	ret, ok := entry.Terminator().(*ir.Ret)
	require.True(t, ok)
	require.NotNil(t, ret.Val)
}

func TestApplyFunctionNeverRewritesAtProbability0(t *testing.T) {
	m := &ir.Module{Name: "m"}
	fn := buildAddFunction(m)

	pass := New(Config{Loops: 2, Probability: 0})
	changed := pass.ApplyFunction(m, fn)
	require.False(t, changed)

	entry := fn.Entry()
	require.Len(t, entry.NonTerminators(), 1)
	_, ok := entry.NonTerminators()[0].(*ir.BinOp)
	require.True(t, ok)
}

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 2, cfg.Loops)
	require.Equal(t, 50, cfg.Probability)
}
