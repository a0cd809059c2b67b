package ir

import "testing"

func TestConstIntIdent(t *testing.T) {
	if got := NewConstInt(I32, -5).Ident(); got != "-5" {
		t.Errorf("Ident() = %q, want -5", got)
	}
	if got := NewConstInt(I32, 0).Ident(); got != "0" {
		t.Errorf("Ident() = %q, want 0", got)
	}
	if !NewConstInt(I32, 0).IsZero() {
		t.Error("IsZero() = false for 0")
	}
}

func TestNewGlobalStringCString(t *testing.T) {
	g := NewConstCString("hi")
	if !g.CString {
		t.Fatal("expected CString = true")
	}
	if len(g.Bytes) != 3 || g.Bytes[2] != 0 {
		t.Fatalf("expected NUL-terminated bytes, got %v", g.Bytes)
	}
	at, ok := g.Type().(*ArrayType)
	if !ok || at.Len != 3 {
		t.Fatalf("Type() = %v, want [3 x i8]", g.Type())
	}
}

func TestQuoteBytesEscapesNonPrintable(t *testing.T) {
	g := &ConstArray{Bytes: []byte{'a', 0, '"', '\\'}}
	got := g.Ident()
	want := `c"a\00\22\5C"`
	if got != want {
		t.Errorf("Ident() = %q, want %q", got, want)
	}
}
