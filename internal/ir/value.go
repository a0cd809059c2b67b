package ir

// Value is anything an instruction operand can reference: a constant, a
// function argument, another instruction's result, or a global variable.
// Basic blocks implement Value too (as LabelType) so they can sit in a
// phi's incoming-block slot and in branch/switch operand lists uniformly.
type Value interface {
	Type() Type
	// Ident returns the textual name used by the printer; it carries no
	// other semantics (unlike LLVM, this IR does not intern by name).
	Ident() string
}

// ConstInt is a constant integer value.
type ConstInt struct {
	Typ *IntType
	X   int64
}

func NewConstInt(typ *IntType, x int64) *ConstInt { return &ConstInt{Typ: typ, X: x} }

func (c *ConstInt) Type() Type     { return c.Typ }
func (c *ConstInt) Ident() string  { return fmtInt(c.X) }
func (c *ConstInt) IsZero() bool   { return c.X == 0 }
func (c *ConstInt) Uint32() uint32 { return uint32(c.X) }

// ConstArray is an initializer holding an immutable byte sequence,
// optionally a C-style null-terminated string (the only initializer kind
// STR qualifies globals on).
type ConstArray struct {
	Bytes     []byte
	CString   bool // last byte is a NUL terminator
	ElemWidth int  // bit width of each element, always 8 for string data
}

func NewConstCString(s string) *ConstArray {
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = 0
	return &ConstArray{Bytes: b, CString: true, ElemWidth: 8}
}

func (c *ConstArray) Type() Type { return &ArrayType{Len: uint64(len(c.Bytes)), Elem: I8} }
func (c *ConstArray) Ident() string {
	return "c" + quoteBytes(c.Bytes)
}

// ConstNull is the null pointer constant of a given pointee type.
type ConstNull struct{ Typ *PointerType }

// NewConstNull returns the null pointer constant for a pointer to elem.
func NewConstNull(elem Type) *ConstNull { return &ConstNull{Typ: &PointerType{Elem: elem}} }

func (c *ConstNull) Type() Type    { return c.Typ }
func (c *ConstNull) Ident() string { return "null" }

// ConstGEP is a constant getelementptr expression over a global — LLVM's
// "constantexpr" user kind, distinct from the GetElementPtr instruction.
// STR's indirection walk treats this as the non-instruction user it must
// look one level through (spec.md §4.5; SPEC_FULL.md §4 item 2).
type ConstGEP struct {
	Base Value
	Elem Type
}

func (c *ConstGEP) Type() Type    { return &PointerType{Elem: c.Elem} }
func (c *ConstGEP) Ident() string { return "getelementptr(" + c.Base.Ident() + ")" }

// Argument is a function parameter.
type Argument struct {
	Name string
	Typ  Type
}

func (a *Argument) Type() Type    { return a.Typ }
func (a *Argument) Ident() string { return "%" + a.Name }

func fmtInt(x int64) string {
	if x < 0 {
		return "-" + fmtUint(uint64(-x))
	}
	return fmtUint(uint64(x))
}

func fmtUint(x uint64) string {
	if x == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for x > 0 {
		i--
		buf[i] = byte('0' + x%10)
		x /= 10
	}
	return string(buf[i:])
}

func quoteBytes(b []byte) string {
	const hex = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*2+2)
	out = append(out, '"')
	for _, c := range b {
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			out = append(out, c)
			continue
		}
		out = append(out, '\\', hex[c>>4], hex[c&0xf])
	}
	out = append(out, '"')
	return string(out)
}
