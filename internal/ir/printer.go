package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print renders m in an LLVM-assembly-like textual form. It exists purely
// for eyeballing pipeline output (spec.md §1 explicitly puts a real
// textual IR format out of scope); it is not meant to round-trip.
func Print(w io.Writer, m *Module) {
	for _, g := range m.Globals {
		constKw := "global"
		if g.Constant {
			constKw = "constant"
		}
		init := "zeroinitializer"
		if g.Init != nil {
			init = g.Init.Type().String() + " " + g.Init.Ident()
		}
		fmt.Fprintf(w, "@%s = %s %s\n", g.Name, constKw, init)
	}
	if len(m.Globals) > 0 {
		fmt.Fprintln(w)
	}
	for _, f := range m.Functions {
		printFunction(w, f)
	}
}

func printFunction(w io.Writer, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Typ.String() + " " + p.Ident()
	}
	if f.IsDeclaration() {
		fmt.Fprintf(w, "declare %s @%s(%s)\n", f.Sig.Ret, f.Name, strings.Join(params, ", "))
		return
	}
	fmt.Fprintf(w, "define %s @%s(%s) {\n", f.Sig.Ret, f.Name, strings.Join(params, ", "))
	for _, bb := range f.Blocks {
		fmt.Fprintf(w, "%s:\n", bb.Name)
		for _, inst := range bb.Insts {
			fmt.Fprintf(w, "  %s\n", printInst(inst))
		}
	}
	fmt.Fprintln(w, "}")
}

func printInst(inst Instruction) string {
	resultPrefix := ""
	if _, isVoid := inst.Type().(*VoidType); !isVoid {
		resultPrefix = inst.Ident() + " = "
	}
	switch i := inst.(type) {
	case *BinOp:
		return fmt.Sprintf("%s%s %s %s, %s", resultPrefix, i.Op, i.Type(), i.X.Ident(), i.Y.Ident())
	case *Alloca:
		return fmt.Sprintf("%salloca %s", resultPrefix, i.Elem)
	case *Load:
		return fmt.Sprintf("%sload %s, %s %s", resultPrefix, i.Type(), i.Ptr.Type(), i.Ptr.Ident())
	case *Store:
		return fmt.Sprintf("store %s %s, %s %s", i.Val.Type(), i.Val.Ident(), i.Ptr.Type(), i.Ptr.Ident())
	case *ICmp:
		return fmt.Sprintf("%sicmp %s %s %s, %s", resultPrefix, icmpPredName(i.Pred), i.X.Type(), i.X.Ident(), i.Y.Ident())
	case *Select:
		return fmt.Sprintf("%sselect i1 %s, %s %s, %s %s", resultPrefix, i.Cond.Ident(), i.X.Type(), i.X.Ident(), i.Y.Type(), i.Y.Ident())
	case *GetElementPtr:
		return fmt.Sprintf("%sgetelementptr %s, %s %s", resultPrefix, i.Elem, i.Ptr.Type(), i.Ptr.Ident())
	case *Call:
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			args[j] = a.Type().String() + " " + a.Ident()
		}
		return fmt.Sprintf("%scall %s %s(%s)", resultPrefix, i.Callee.Sig.Ret, i.Callee.Ident(), strings.Join(args, ", "))
	case *Phi:
		parts := make([]string, len(i.Incs))
		for j, inc := range i.Incs {
			parts[j] = fmt.Sprintf("[ %s, %s ]", inc.Val.Ident(), inc.Pred.Ident())
		}
		return fmt.Sprintf("%sphi %s %s", resultPrefix, i.Type(), strings.Join(parts, ", "))
	case *Ret:
		if i.Val == nil {
			return "ret void"
		}
		return fmt.Sprintf("ret %s %s", i.Val.Type(), i.Val.Ident())
	case *Br:
		return fmt.Sprintf("br %s", i.Target.Ident())
	case *CondBr:
		return fmt.Sprintf("br i1 %s, %s, %s", i.Cond.Ident(), i.True.Ident(), i.False.Ident())
	case *Switch:
		cases := make([]string, len(i.Cases))
		for j, c := range i.Cases {
			cases[j] = fmt.Sprintf("[ %s, %s ]", c.On.Ident(), c.Target.Ident())
		}
		return fmt.Sprintf("switch %s %s, %s [ %s ]", i.Cond.Type(), i.Cond.Ident(), i.Default.Ident(), strings.Join(cases, " "))
	case *Invoke:
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			args[j] = a.Type().String() + " " + a.Ident()
		}
		return fmt.Sprintf("invoke %s %s(%s) to %s unwind %s", i.Callee.Sig.Ret, i.Callee.Ident(), strings.Join(args, ", "), i.Normal.Ident(), i.Unwind.Ident())
	case *Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("<unknown instruction %T>", inst)
	}
}

func icmpPredName(p ICmpPred) string {
	switch p {
	case ICmpEQ:
		return "eq"
	case ICmpNE:
		return "ne"
	case ICmpSLT:
		return "slt"
	case ICmpSLE:
		return "sle"
	case ICmpSGT:
		return "sgt"
	case ICmpSGE:
		return "sge"
	default:
		return "?"
	}
}
