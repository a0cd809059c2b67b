package ir

// GlobalVariable is a module-scope storage location with a constant or
// mutable initializer. STR only ever qualifies GlobalVariables whose
// Init is a CString *ConstArray (spec.md §4.5).
type GlobalVariable struct {
	Name     string
	Init     Value // may be nil (externally defined) or a *ConstArray/*ConstInt/*ConstNull
	Constant bool
}

func (g *GlobalVariable) Type() Type {
	if g.Init != nil {
		return &PointerType{Elem: g.Init.Type()}
	}
	return &PointerType{Elem: I8}
}
func (g *GlobalVariable) Ident() string { return "@" + g.Name }

// Module is the top-level compilation unit: a set of global variables and
// functions. The passes operate function-at-a-time except STR, which
// walks the module's globals directly (spec.md §4.5, §5).
type Module struct {
	Name      string
	Globals   []*GlobalVariable
	Functions []*Function

	nextGlobal int
}

// NewFunction creates, appends, and returns a new function definition (its
// Blocks slice starts empty; call NewBlock to give it an entry block).
func (m *Module) NewFunction(name string, sig *FuncType, paramNames []string) *Function {
	f := &Function{Name: name, Sig: sig, Parent: m}
	for i, pt := range sig.Params {
		pname := ""
		if i < len(paramNames) {
			pname = paramNames[i]
		}
		f.Params = append(f.Params, &Argument{Name: pname, Typ: pt})
	}
	m.Functions = append(m.Functions, f)
	return f
}

// Declare registers an external function declaration (no body) and
// returns a FuncRef naming it, e.g. for the __decrypt/__encrypt runtime
// hooks STR brackets call sites with (spec.md §4.5).
func (m *Module) Declare(name string, sig *FuncType) *FuncRef {
	for _, f := range m.Functions {
		if f.Name == name {
			return &FuncRef{Name: name, Sig: f.Sig}
		}
	}
	m.Functions = append(m.Functions, &Function{Name: name, Sig: sig, Parent: m})
	return &FuncRef{Name: name, Sig: sig}
}

// FuncRefFor returns a FuncRef naming f, for building Call/Invoke
// instructions against a definition already in the module.
func FuncRefFor(f *Function) *FuncRef { return &FuncRef{Name: f.Name, Sig: f.Sig} }

// NewGlobalString adds a new constant C-string global and returns it.
func (m *Module) NewGlobalString(hint, s string) *GlobalVariable {
	m.nextGlobal++
	g := &GlobalVariable{Name: hint + "." + fmtUint(uint64(m.nextGlobal)), Init: NewConstCString(s), Constant: true}
	m.Globals = append(m.Globals, g)
	return g
}

// FindFunction returns the function named name, or nil.
func (m *Module) FindFunction(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// GlobalUsers returns g's direct users: every operand value, anywhere in
// the module, that is g itself or a *ConstGEP built on g. A direct user
// may be an Instruction (a genuine leaf — qualifies only if it's a Call)
// or a *ConstGEP (not an instruction — STR must look one level deeper,
// via UsersOfValue, to find its own users). This is the first level of
// STR's two-level indirection walk (spec.md §4.5; SPEC_FULL.md §4 item 2).
func (m *Module) GlobalUsers(g *GlobalVariable) []Value {
	seen := map[Value]bool{}
	var users []Value
	record := func(v Value) {
		if !seen[v] {
			seen[v] = true
			users = append(users, v)
		}
	}
	for _, f := range m.Functions {
		for _, inst := range f.AllInstructions() {
			for _, op := range inst.Operands() {
				switch x := op.(type) {
				case *GlobalVariable:
					if x == g {
						record(inst)
					}
				case *ConstGEP:
					if gepBase(x) == g {
						record(x)
					}
				}
			}
		}
	}
	return users
}

func gepBase(c *ConstGEP) *GlobalVariable {
	switch b := c.Base.(type) {
	case *GlobalVariable:
		return b
	case *ConstGEP:
		return gepBase(b)
	default:
		return nil
	}
}

// UsersOfValue returns every instruction in the module with v among its
// operands — the "one level deeper" half of STR's indirection walk, used
// when a global's direct user is a non-instruction *ConstGEP.
func (m *Module) UsersOfValue(v Value) []Instruction {
	var users []Instruction
	for _, f := range m.Functions {
		for _, cand := range f.AllInstructions() {
			for _, op := range cand.Operands() {
				if op == v {
					users = append(users, cand)
					break
				}
			}
		}
	}
	return users
}
