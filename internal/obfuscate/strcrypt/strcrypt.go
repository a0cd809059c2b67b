// Package strcrypt implements String Obfuscation: XOR-encrypting
// qualifying constant string globals in place and bracketing their single
// call-site use with decrypt/encrypt calls, so the plaintext never
// appears in the binary's data section. Grounded on
// original_source/src/ObfuscateString.cpp, including its exact
// two-level indirection walk for deciding which globals qualify
// (SPEC_FULL.md §4 item 2).
package strcrypt

import (
	"github.com/golang/glog"

	"obfgo/internal/ir"
	"obfgo/internal/passrt"
)

const xorKey = 42

// Config carries spec.md §6's string-obfuscation flag (a plain on/off;
// there is no probability knob for STR in the original).
type Config struct{}

// Pass is the String Obfuscation transform. It has no per-instance
// randomness of its own — original_source's XOR key is a fixed constant,
// not a seeded random one — so unlike the other three passes it holds no
// rng.Source.
type Pass struct{}

func New(Config) *Pass { return &Pass{} }

func (p *Pass) Name() string        { return "string-obfuscation" }
func (p *Pass) Description() string { return "XOR-encrypts qualifying string globals and brackets their use" }
func (p *Pass) Kind() passrt.Kind   { return passrt.PerModule }

func (p *Pass) ApplyFunction(*ir.Module, *ir.Function) bool { return false }

// ApplyModule walks every global once (spec.md §4.5, §5: STR is the one
// pass that operates module-wide rather than function-at-a-time).
func (p *Pass) ApplyModule(m *ir.Module) bool {
	decrypt := m.Declare("__decrypt", decryptSig())
	encrypt := m.Declare("__encrypt", decryptSig())

	changed := false
	for _, g := range m.Globals {
		if !p.qualify(m, g) {
			continue
		}
		p.obfuscate(m, g, decrypt, encrypt)
		changed = true
	}
	if changed {
		glog.Infof("strcrypt: obfuscated string globals in module %s", m.Name)
	}
	return changed
}

func decryptSig() *ir.FuncType {
	i8ptr := &ir.PointerType{Elem: ir.I8}
	return &ir.FuncType{Ret: i8ptr, Params: []ir.Type{i8ptr, ir.I64}}
}

// qualify reproduces original_source's two-level walk exactly:
//   - a direct instruction user of g is silently ignored — a global must
//     decay through a constant-expression pointer cast to be targeted;
//   - a *ir.ConstGEP direct user is inspected one level deeper; every one
//     of *its* users must be a Call, or the whole global is rejected
//     (hasExceptCallInst, cleared accumulator);
//   - exactly one Call leaf, found this way, must exist in total.
func (p *Pass) qualify(m *ir.Module, g *ir.GlobalVariable) (ok bool) {
	arr, isArr := g.Init.(*ir.ConstArray)
	if !isArr || !arr.CString {
		return false
	}
	var calls []*ir.Call
	rejected := false
	for _, direct := range m.GlobalUsers(g) {
		gep, isGEP := direct.(*ir.ConstGEP)
		if !isGEP {
			continue // direct instruction user: ignored, not a rejection
		}
		for _, deeper := range m.UsersOfValue(gep) {
			call, isCall := deeper.(*ir.Call)
			if !isCall {
				rejected = true
				calls = nil
				continue
			}
			if !rejected {
				calls = append(calls, call)
			}
		}
	}
	return !rejected && len(calls) == 1
}

// obfuscate XORs g's bytes in place with xorKey, then wraps its single
// qualifying call site: the call's argument becomes the result of a
// __decrypt(ptr, len) call inserted immediately before it, and a matching
// __encrypt(ptr, len) call is inserted immediately after — restoring the
// ciphertext so the buffer is never left holding plaintext longer than
// the single call that needed it.
func (p *Pass) obfuscate(m *ir.Module, g *ir.GlobalVariable, decrypt, encrypt *ir.FuncRef) {
	arr := g.Init.(*ir.ConstArray)
	plainLen := len(arr.Bytes) - 1 // exclude the NUL terminator, as original_source does
	encrypted := make([]byte, len(arr.Bytes))
	copy(encrypted, arr.Bytes)
	for i := 0; i < plainLen; i++ {
		encrypted[i] ^= xorKey
	}
	arr.Bytes = encrypted
	g.Constant = false

	for _, direct := range m.GlobalUsers(g) {
		gep, isGEP := direct.(*ir.ConstGEP)
		if !isGEP {
			continue
		}
		for _, deeper := range m.UsersOfValue(gep) {
			call, isCall := deeper.(*ir.Call)
			if !isCall {
				continue
			}
			bracket(call, gep, plainLen, decrypt, encrypt)
		}
	}
}

func bracket(call *ir.Call, usr ir.Value, plainLen int, decrypt, encrypt *ir.FuncRef) {
	bb := call.Parent()
	fn := bb.Parent
	idx := bb.IndexOf(call)
	lengthConst := ir.NewConstInt(ir.I64, int64(plainLen))

	decCall := ir.NewCallRaw(fn.NewTemp("str.dec"), decrypt, []ir.Value{usr, lengthConst})
	bb.InsertAt(idx, decCall)
	for i, arg := range call.Args {
		if arg == usr {
			call.Args[i] = decCall
		}
	}

	encCall := ir.NewCallRaw(fn.NewTemp("str.enc"), encrypt, []ir.Value{usr, lengthConst})
	bb.InsertAt(idx+2, encCall)
}
