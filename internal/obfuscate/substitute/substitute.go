// Package substitute implements instruction substitution: rewriting Add
// and Sub instructions into algebraically equivalent but less obvious
// instruction sequences, grounded on original_source/src/Substitution.cpp
// and the pass shape of kanso-lang-kanso's internal/ir ConstantFolding
// (a Name/Description/Apply pass that walks every function's blocks and
// rewrites instructions in place).
package substitute

import (
	"github.com/golang/glog"

	"obfgo/internal/ir"
	"obfgo/internal/passrt"
	"obfgo/internal/rng"
)

// Config carries spec.md §6's substitution flags.
type Config struct {
	// Loops is how many full passes over the function's instructions are
	// made; each pass gives every eligible instruction another
	// independent chance to be rewritten. Default 2.
	Loops int
	// Probability is the percent chance [0,100] any single eligible
	// instruction is rewritten on a given loop iteration. Default 50.
	Probability int
}

// DefaultConfig matches spec.md §6's documented defaults.
func DefaultConfig() Config { return Config{Loops: 2, Probability: 50} }

// Pass is the Instruction Substitution transform.
type Pass struct {
	cfg Config
	rng *rng.Source
}

// New returns a substitution pass with its own PRNG, seeded independently
// of every other pass instance.
func New(cfg Config) *Pass {
	return &Pass{cfg: cfg, rng: rng.New()}
}

func (p *Pass) Name() string        { return "substitute" }
func (p *Pass) Description() string { return "rewrites add/sub instructions into equivalent sequences" }
func (p *Pass) Kind() passrt.Kind   { return passrt.PerFunction }

func (p *Pass) ApplyModule(*ir.Module) bool { return false }

// ApplyFunction runs Loops independent sweeps over fn's instructions,
// rewriting eligible Add/Sub instructions with probability Probability
// each sweep (original_source/src/Substitution.cpp's sub_loop/sub_prob
// flags, applied identically here).
func (p *Pass) ApplyFunction(m *ir.Module, fn *ir.Function) bool {
	changed := false
	for iter := 0; iter < p.cfg.Loops; iter++ {
		for _, bb := range fn.Blocks {
			// Snapshot before mutating: rewrite inserts new
			// instructions into bb.Insts, and ranging over a slice while
			// it grows would revisit the newly inserted ones.
			insts := append([]ir.Instruction(nil), bb.NonTerminators()...)
			for _, inst := range insts {
				bin, ok := inst.(*ir.BinOp)
				if !ok || (bin.Op != ir.OpAdd && bin.Op != ir.OpSub) {
					continue
				}
				if !p.rng.Percent(p.cfg.Probability) {
					continue
				}
				p.rewrite(fn, bb, bin)
				changed = true
			}
		}
	}
	if changed {
		glog.V(1).Infof("substitute: rewrote instructions in %s", fn.Name)
	}
	return changed
}

// rewrite replaces bin with one of the algebraically equivalent sequences
// original_source/src/Substitution.cpp implements for its opcode, chosen
// uniformly at random among the variants for that opcode.
func (p *Pass) rewrite(fn *ir.Function, bb *ir.BasicBlock, bin *ir.BinOp) {
	idx := bb.IndexOf(bin)
	b := newInsertBuilder(fn, bb, idx)

	var result ir.Value
	switch bin.Op {
	case ir.OpAdd:
		switch p.rng.IntN(3) {
		case 0:
			result = addNeg(b, bin)
		case 1:
			result = addRand(b, p.rng, bin)
		default:
			result = addDoubleNeg(b, bin)
		}
	case ir.OpSub:
		if p.rng.IntN(2) == 0 {
			result = subNeg(b, bin)
		} else {
			result = subRand(b, p.rng, bin)
		}
	default:
		return
	}
	ir.ReplaceAllUsesWith(fn, ir.Value(bin), result)
	ir.EraseInstruction(bin)
}

// a = b - (-c)
func addNeg(b *insertBuilder, bin *ir.BinOp) ir.Value {
	neg := b.binOp(ir.OpSub, zero(bin.Type()), bin.Y, "negc")
	return b.binOp(ir.OpSub, bin.X, neg, "a")
}

// r = rand(); a = b + r; a = a + c; a = a - r
func addRand(b *insertBuilder, src *rng.Source, bin *ir.BinOp) ir.Value {
	r := intConst(bin.Type(), int64(src.Uint32()))
	a := b.binOp(ir.OpAdd, bin.X, r, "a")
	a = b.binOp(ir.OpAdd, a, bin.Y, "a")
	return b.binOp(ir.OpSub, a, r, "a")
}

// a = -(-b + (-c))
func addDoubleNeg(b *insertBuilder, bin *ir.BinOp) ir.Value {
	negB := b.binOp(ir.OpSub, zero(bin.Type()), bin.X, "negb")
	negC := b.binOp(ir.OpSub, zero(bin.Type()), bin.Y, "negc")
	sum := b.binOp(ir.OpAdd, negB, negC, "sum")
	return b.binOp(ir.OpSub, zero(bin.Type()), sum, "a")
}

// a = b + (-c)
func subNeg(b *insertBuilder, bin *ir.BinOp) ir.Value {
	neg := b.binOp(ir.OpSub, zero(bin.Type()), bin.Y, "negc")
	return b.binOp(ir.OpAdd, bin.X, neg, "a")
}

// r = rand(); a = b + r; a = a - c; a = a - r
func subRand(b *insertBuilder, src *rng.Source, bin *ir.BinOp) ir.Value {
	r := intConst(bin.Type(), int64(src.Uint32()))
	a := b.binOp(ir.OpAdd, bin.X, r, "a")
	a = b.binOp(ir.OpSub, a, bin.Y, "a")
	return b.binOp(ir.OpSub, a, r, "a")
}

func zero(t ir.Type) ir.Value {
	it, ok := t.(*ir.IntType)
	if !ok {
		it = ir.I32
	}
	return ir.NewConstInt(it, 0)
}

func intConst(t ir.Type, x int64) ir.Value {
	it, ok := t.(*ir.IntType)
	if !ok {
		it = ir.I32
	}
	return ir.NewConstInt(it, x)
}
