// Package bogusflow implements Bogus Control Flow: splicing an
// opaque-predicate diamond around each eligible block so it has a dead
// "twin" that looks reachable to a disassembler but never actually runs.
// Grounded on original_source/src/BogusFlow.cpp (CloneBasicBlock +
// operand scramble + x*(x+1)%2==0 predicate), built on
// internal/ir's clone/split primitives the way the teacher's passes are
// built on its Builder.
package bogusflow

import (
	"github.com/golang/glog"

	"obfgo/internal/ir"
	"obfgo/internal/passrt"
	"obfgo/internal/rng"
)

// Config carries spec.md §6's bogus-control-flow flag.
type Config struct {
	// Probability is the percent chance [0,100] any given block gets a
	// bogus twin. Default 70.
	Probability int
}

// DefaultConfig matches spec.md §6's documented default.
func DefaultConfig() Config { return Config{Probability: 70} }

// Pass is the Bogus Control Flow transform.
type Pass struct {
	cfg Config
	rng *rng.Source
}

func New(cfg Config) *Pass { return &Pass{cfg: cfg, rng: rng.New()} }

func (p *Pass) Name() string        { return "bogus-control-flow" }
func (p *Pass) Description() string { return "splices opaque-predicate dead twins around blocks" }
func (p *Pass) Kind() passrt.Kind   { return passrt.PerFunction }

func (p *Pass) ApplyModule(*ir.Module) bool { return false }

// ApplyFunction visits every block present in fn when the pass starts
// (bogus twins and split tails created along the way are never
// themselves candidates, matching original_source's single upfront
// snapshot of the block list).
func (p *Pass) ApplyFunction(m *ir.Module, fn *ir.Function) bool {
	if fn.IsDeclaration() {
		return false
	}
	targets := append([]*ir.BasicBlock(nil), fn.Blocks...)
	var slot ir.Value

	changed := false
	for _, target := range targets {
		if !p.rng.Percent(p.cfg.Probability) {
			continue
		}
		if slot == nil {
			slot = p.findOrCreateInt32Slot(m, fn)
		}
		p.weave(fn, target, slot)
		changed = true
	}
	if changed {
		glog.V(1).Infof("bogusflow: wove bogus twins into %s", fn.Name)
	}
	return changed
}

// weave splits target after its leading phis, clones the remainder as a
// dead twin, and threads both through a shared opaque predicate:
//
//	target: <phis>
//	        %x = load i32, i32* slot
//	        %x1 = add i32 %x, 1
//	        %m  = mul i32 %x, %x1      ; x*(x+1) is always even
//	        %r  = srem i32 %m, 2
//	        %c  = icmp eq i32 %r, 0    ; always true
//	        br i1 %c, label %body, label %bogus
//	bogus:  <scrambled clone of body's instructions>
//	        br label %body
//	body:   <target's original non-phi instructions>
//	        %c2 = icmp eq i32 %r, 0    ; always true, never-taken else-edge
//	        br i1 %c2, label %bodyend, label %bogus
//	bodyend: <target's original terminator>
func (p *Pass) weave(fn *ir.Function, target *ir.BasicBlock, slot ir.Value) {
	phiCount := len(target.Phis())
	body := ir.SplitBlock(target, phiCount, target.Name+".body")

	bogus, _ := ir.CloneBlock(body, target.Name+".bogus")
	fn.InsertBlockAfter(body, bogus)
	p.scramble(bogus)
	ir.EraseInstruction(bogus.Terminator())
	bogusBuilder := ir.NewBuilder(fn, bogus)
	bogusBuilder.Br(body)

	ir.EraseInstruction(target.Terminator())
	tb := ir.NewBuilder(fn, target)
	x := tb.Load(slot, "bcf.x")
	x1 := tb.BinOp(ir.OpAdd, x, ir.NewConstInt(ir.I32, 1), "bcf.x1")
	prod := tb.BinOp(ir.OpMul, x, x1, "bcf.prod")
	rem := tb.BinOp(ir.OpSRem, prod, ir.NewConstInt(ir.I32, 2), "bcf.rem")
	cond := tb.ICmp(ir.ICmpEQ, rem, ir.NewConstInt(ir.I32, 0), "bcf.cond")
	tb.CondBr(cond, body, bogus)

	tailIdx := len(body.NonTerminators())
	bodyEnd := ir.SplitBlock(body, tailIdx, target.Name+".bodyend")
	ir.EraseInstruction(body.Terminator())
	bb := ir.NewBuilder(fn, body)
	cond2 := bb.ICmp(ir.ICmpEQ, rem, ir.NewConstInt(ir.I32, 0), "bcf.cond2")
	bb.CondBr(cond2, bodyEnd, bogus)
}

// scramble mutates every binary instruction in bb the way
// original_source/src/BogusFlow.cpp does: overwrite operand 0 with one of
// the instruction's own operands chosen at random (sometimes a no-op,
// sometimes not — the point is simply that the bogus twin's data flow no
// longer matches the real block's).
func (p *Pass) scramble(bb *ir.BasicBlock) {
	for _, inst := range bb.Insts {
		bin, ok := inst.(*ir.BinOp)
		if !ok || !ir.IsBinaryOp(bin.Op) {
			continue
		}
		operands := bin.Operands()
		pick := operands[p.rng.IntN(len(operands))]
		bin.SetOperand(0, pick)
	}
}

// findOrCreateInt32Slot returns an existing i32 alloca from fn's entry
// block, or falls back to a fresh private i32 global seeded with a random
// value — original_source's allocaInsts-or-GlobalVariable fallback,
// needed because a function with no local i32 variables still needs
// something to load the opaque predicate's x from.
func (p *Pass) findOrCreateInt32Slot(m *ir.Module, fn *ir.Function) ir.Value {
	entry := fn.Entry()
	for _, inst := range entry.Insts {
		if a, ok := inst.(*ir.Alloca); ok {
			if it, ok := a.Elem.(*ir.IntType); ok && it.Bits == 32 {
				return a
			}
		}
	}
	seed := int64(p.rng.Uint32())
	g := &ir.GlobalVariable{Name: fn.Name + ".bcf.seed", Init: ir.NewConstInt(ir.I32, seed), Constant: false}
	m.Globals = append(m.Globals, g)
	return g
}
