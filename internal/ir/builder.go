package ir

// Builder accumulates instructions onto a single block at a time, the way
// the teacher's Builder walks an AST emitting into the "current" block.
// Passes that synthesize new blocks (BCF's diamond, CFF's dispatch loop)
// use it instead of constructing instruction structs by hand.
type Builder struct {
	fn *Function
	bb *BasicBlock
}

// NewBuilder returns a Builder that will append to bb.
func NewBuilder(fn *Function, bb *BasicBlock) *Builder { return &Builder{fn: fn, bb: bb} }

// SetBlock redirects subsequent emission to bb.
func (b *Builder) SetBlock(bb *BasicBlock) { b.bb = bb }

// Block returns the block currently being emitted into.
func (b *Builder) Block() *BasicBlock { return b.bb }

func (b *Builder) temp(hint string) string { return b.fn.NewTemp(hint) }

func (b *Builder) BinOp(op Opcode, x, y Value, hint string) *BinOp {
	inst := &BinOp{base: base{name: b.temp(hint), typ: x.Type()}, Op: op, X: x, Y: y}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Alloca(elem Type, hint string) *Alloca {
	inst := &Alloca{base: base{name: b.temp(hint), typ: &PointerType{Elem: elem}}, Elem: elem}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Load(ptr Value, hint string) *Load {
	pt, ok := ptr.Type().(*PointerType)
	if !ok {
		panic("ir: Load of non-pointer operand")
	}
	inst := &Load{base: base{name: b.temp(hint), typ: pt.Elem}, Ptr: ptr}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Store(val, ptr Value) *Store {
	inst := &Store{base: base{typ: &VoidType{}}, Val: val, Ptr: ptr}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) ICmp(pred ICmpPred, x, y Value, hint string) *ICmp {
	inst := &ICmp{base: base{name: b.temp(hint), typ: I1}, Pred: pred, X: x, Y: y}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Select(cond, x, y Value, hint string) *Select {
	inst := &Select{base: base{name: b.temp(hint), typ: x.Type()}, Cond: cond, X: x, Y: y}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) GetElementPtr(ptr Value, elem Type, hint string) *GetElementPtr {
	inst := &GetElementPtr{base: base{name: b.temp(hint), typ: &PointerType{Elem: elem}}, Ptr: ptr, Elem: elem}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Call(callee *FuncRef, args []Value, hint string) *Call {
	typ := callee.Sig.Ret
	name := ""
	if _, void := typ.(*VoidType); !void {
		name = b.temp(hint)
	}
	inst := &Call{base: base{name: name, typ: typ}, Callee: callee, Args: args}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Phi(typ Type, hint string) *Phi {
	inst := &Phi{base: base{name: b.temp(hint), typ: typ}}
	b.bb.Append(inst)
	return inst
}

func (b *Builder) Ret(val Value) *Ret {
	term := &Ret{base: base{typ: &VoidType{}}, Val: val}
	b.bb.SetTerminator(term)
	return term
}

func (b *Builder) Br(target *BasicBlock) *Br {
	term := &Br{base: base{typ: &VoidType{}}, Target: target}
	b.bb.SetTerminator(term)
	return term
}

func (b *Builder) CondBr(cond Value, t, f *BasicBlock) *CondBr {
	term := &CondBr{base: base{typ: &VoidType{}}, Cond: cond, True: t, False: f}
	b.bb.SetTerminator(term)
	return term
}

func (b *Builder) Switch(cond Value, def *BasicBlock) *Switch {
	term := &Switch{base: base{typ: &VoidType{}}, Cond: cond, Default: def}
	b.bb.SetTerminator(term)
	return term
}

// AddCase appends a case to a Switch already installed as the block's
// terminator (built in two steps so callers can create every target block
// before wiring the dispatch table, as CFF does).
func (sw *Switch) AddCase(on *ConstInt, target *BasicBlock) {
	sw.Cases = append(sw.Cases, &SwitchCase{On: on, Target: target})
}

func (b *Builder) Unreachable() *Unreachable {
	term := &Unreachable{base: base{typ: &VoidType{}}}
	b.bb.SetTerminator(term)
	return term
}
