// Package passrt is the pass interface and pipeline runner every
// obfuscation transform registers against, grounded on the teacher's
// OptimizationPass / OptimizationPipeline (internal/ir/optimizations.go):
// a named, self-describing transform that reports whether it changed
// anything, run in sequence by a pipeline.
package passrt

import (
	"github.com/golang/glog"

	"obfgo/internal/ir"
)

// Kind distinguishes whether a pass runs once per function or once over
// the whole module (spec.md §5: BCF/CFF/SUB operate per function, STR
// walks the module's globals directly).
type Kind int

const (
	PerFunction Kind = iota
	PerModule
)

// Pass is a single obfuscation transform.
type Pass interface {
	Name() string
	Description() string
	Kind() Kind
	// ApplyFunction runs the pass on fn. Only called when Kind is
	// PerFunction.
	ApplyFunction(m *ir.Module, fn *ir.Function) bool
	// ApplyModule runs the pass on the whole module. Only called when
	// Kind is PerModule.
	ApplyModule(m *ir.Module) bool
}

// Registration is the (flag, description, pass) tuple spec.md §6 requires
// the host driver to expose one of per obfuscation feature.
type Registration struct {
	Flag        string
	Description string
	Pass        Pass
}

// Pipeline runs a sequence of passes over a module, one function at a
// time for PerFunction passes.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a pipeline running passes in the given order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Run executes every pass in order over m, skipping function declarations
// (spec.md §7: a pass that cannot safely transform something skips it
// rather than failing the run).
func (p *Pipeline) Run(m *ir.Module) {
	for _, pass := range p.passes {
		switch pass.Kind() {
		case PerModule:
			changed := pass.ApplyModule(m)
			glog.Infof("pass %s: module changed=%v", pass.Name(), changed)
		default:
			for _, fn := range m.Functions {
				if fn.IsDeclaration() {
					continue
				}
				changed := pass.ApplyFunction(m, fn)
				glog.Infof("pass %s: function %s changed=%v", pass.Name(), fn.Name, changed)
			}
		}
	}
}
