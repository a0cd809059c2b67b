// Package flatten implements Control-Flow Flattening: collapsing every
// block of a function but its entry into cases of a single dispatch
// switch driven by a
// stack-resident state variable, so the function's real control-flow
// graph is no longer visible in its block structure. Grounded on
// original_source/src/Flattening.cpp (the loopEntry/loopEnd/swDefault
// dispatch loop, case-number patching, and the trailing
// DemoteRegisterToMemory pass it always runs afterward).
package flatten

import (
	"github.com/golang/glog"

	"obfgo/internal/ir"
	"obfgo/internal/passrt"
	"obfgo/internal/rng"
)

// Config is presently empty: spec.md §6 exposes flattening as a single
// enable flag with no tunable parameters, unlike BCF/SUB's probability
// knobs.
type Config struct{}

// Pass is the Control-Flow Flattening transform.
type Pass struct {
	rng *rng.Source
}

func New(cfg Config) *Pass { return &Pass{rng: rng.New()} }

func (p *Pass) Name() string        { return "flatten" }
func (p *Pass) Description() string { return "collapses a function's blocks into one dispatch-switch loop" }
func (p *Pass) Kind() passrt.Kind   { return passrt.PerFunction }

func (p *Pass) ApplyModule(*ir.Module) bool { return false }

// ApplyFunction flattens fn in place, or skips it (returning false)
// whenever flattening wouldn't be safe: fewer than two blocks, or any
// block terminated by an Invoke (spec.md §7 skip-don't-fail — flattening
// an invoke's normal/unwind edge pair isn't handled here, matching
// original_source's bail-out).
func (p *Pass) ApplyFunction(m *ir.Module, fn *ir.Function) bool {
	if fn.IsDeclaration() || len(fn.Blocks) <= 1 {
		return false
	}
	for _, bb := range fn.Blocks {
		if _, ok := bb.Terminator().(*ir.Invoke); ok {
			glog.V(1).Infof("flatten: skipping %s, contains an invoke", fn.Name)
			return false
		}
	}

	firstBB := fn.Blocks[0]
	head := ir.SplitBlock(firstBB, maxInt(len(firstBB.Insts)-1, 0), firstBB.Name+".head")
	origBB := fn.Blocks[1:] // everything after firstBB, including head

	loopEntry := fn.NewBlock("cff.entry")
	loopEnd := fn.NewBlock("cff.end")
	swDefault := fn.NewBlock("cff.default")
	ir.NewBuilder(fn, swDefault).Br(loopEntry)
	ir.NewBuilder(fn, loopEnd).Br(loopEntry)

	ir.EraseInstruction(firstBB.Terminator())
	feb := ir.NewBuilder(fn, firstBB)
	swPtr := feb.Alloca(ir.I32, "cff.state")
	storeRng := feb.Store(ir.NewConstInt(ir.I32, int64(p.rng.Uint32())), swPtr)
	feb.Br(loopEntry)

	eb := ir.NewBuilder(fn, loopEntry)
	swVar := eb.Load(swPtr, "cff.dispatch")
	sw := eb.Switch(swVar, swDefault)

	caseOf := make(map[*ir.BasicBlock]*ir.ConstInt, len(origBB))
	for _, bb := range origBB {
		c := ir.NewConstInt(ir.I32, int64(p.rng.Uint32()))
		sw.AddCase(c, bb)
		caseOf[bb] = c
	}
	caseFor := func(target *ir.BasicBlock) *ir.ConstInt {
		if c, ok := caseOf[target]; ok {
			return c
		}
		return ir.NewConstInt(ir.I32, int64(p.rng.Uint32()))
	}

	for _, bb := range origBB {
		term := bb.Terminator()
		succs := term.Successors()
		b := ir.NewBuilder(fn, bb)
		switch len(succs) {
		case 0:
			// Ret, Unreachable: nothing to dispatch.
		case 1:
			c := caseFor(succs[0])
			ir.EraseInstruction(term)
			b.Store(c, swPtr)
			b.Br(loopEnd)
		case 2:
			condBr, ok := term.(*ir.CondBr)
			if !ok {
				continue // switch/invoke terminators aren't rewired here
			}
			trueC := caseFor(succs[0])
			falseC := caseFor(succs[1])
			ir.EraseInstruction(term)
			sel := b.Select(condBr.Cond, trueC, falseC, "cff.next")
			b.Store(sel, swPtr)
			b.Br(loopEnd)
		}
	}

	storeRng.Val = caseFor(head)

	demoteCrossBlockValues(fn)

	glog.V(1).Infof("flatten: collapsed %s into a dispatch loop", fn.Name)
	return true
}

// demoteCrossBlockValues runs SSA-to-memory demotion (spec.md §9) over
// every value the flattening above invalidated the dominance of: every
// phi (predecessor identity no longer matches the physical CFG once
// blocks dispatch through a shared loop) and every instruction result
// used anywhere outside its own defining block.
func demoteCrossBlockValues(fn *ir.Function) {
	var phis []*ir.Phi
	var crossBlock []ir.Instruction
	for _, inst := range fn.AllInstructions() {
		if phi, ok := inst.(*ir.Phi); ok {
			phis = append(phis, phi)
			continue
		}
		if ir.IsTerminator(inst) {
			continue
		}
		if usedOutsideOwnBlock(fn, inst) {
			crossBlock = append(crossBlock, inst)
		}
	}
	for _, phi := range phis {
		ir.DemotePhiToMemory(fn, phi)
	}
	for _, inst := range crossBlock {
		ir.DemoteToMemory(fn, inst)
	}
}

func usedOutsideOwnBlock(fn *ir.Function, inst ir.Instruction) bool {
	owner := inst.Parent()
	for _, bb := range fn.Blocks {
		for _, cand := range bb.Insts {
			if cand == inst {
				continue
			}
			for _, op := range cand.Operands() {
				if op == ir.Value(inst) && bb != owner {
					return true
				}
			}
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
