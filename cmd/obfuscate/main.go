// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"obfgo/internal/ir"
	"obfgo/internal/obfuscate/bogusflow"
	"obfgo/internal/obfuscate/flatten"
	"obfgo/internal/obfuscate/strcrypt"
	"obfgo/internal/obfuscate/substitute"
	"obfgo/internal/passrt"
)

func main() {
	var (
		enableBCF = flag.Bool("boguscf", false, "enable Bogus Control Flow")
		bcfProb   = flag.Int("bcf_prob", bogusflow.DefaultConfig().Probability, "percent chance [0,100] a block gets a bogus twin")
		enableCFF = flag.Bool("flattening", false, "enable Control-Flow Flattening")
		enableSub = flag.Bool("subobf", false, "enable Instruction Substitution")
		subLoops  = flag.Int("sub_loop", substitute.DefaultConfig().Loops, "how many sweeps the substitution pass makes over a function")
		subProb   = flag.Int("sub_prob", substitute.DefaultConfig().Probability, "percent chance [0,100] an eligible instruction is rewritten per sweep")
		enableStr = flag.Bool("obfstr", false, "enable String Obfuscation")
	)
	flag.Parse()

	m := buildDemoModule()

	var passes []passrt.Pass
	if *enableBCF {
		passes = append(passes, bogusflow.New(bogusflow.Config{Probability: *bcfProb}))
	}
	if *enableSub {
		passes = append(passes, substitute.New(substitute.Config{Loops: *subLoops, Probability: *subProb}))
	}
	if *enableCFF {
		passes = append(passes, flatten.New(flatten.Config{}))
	}
	if *enableStr {
		passes = append(passes, strcrypt.New(strcrypt.Config{}))
	}

	if len(passes) == 0 {
		color.Red("no passes enabled; pass one or more of -boguscf -flattening -subobf -obfstr")
		os.Exit(1)
	}

	passrt.NewPipeline(passes...).Run(m)
	ir.Print(os.Stdout, m)
	color.Green("✅ ran %d pass(es) over module %q", len(passes), m.Name)
}

// buildDemoModule builds a small module exercising every pass: a function
// with a real diamond (for BCF/CFF to reshape and SUB's arithmetic to
// rewrite) and a string global referenced through exactly one qualifying
// call site (for STR). Parsing a real textual IR module is explicitly out
// of scope; this stands in for it so the pipeline has something to run
// against end to end.
func buildDemoModule() *ir.Module {
	m := &ir.Module{Name: "demo"}

	puts := m.Declare("puts", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{&ir.PointerType{Elem: ir.I8}}})
	greeting := m.NewGlobalString("greeting", "hello, obfuscated world")

	fn := m.NewFunction("clamp_and_greet", &ir.FuncType{Ret: ir.I32, Params: []ir.Type{ir.I32, ir.I32}}, []string{"a", "b"})
	entry := fn.NewBlock("entry")
	lowPath := fn.NewBlock("low")
	highPath := fn.NewBlock("high")
	join := fn.NewBlock("join")

	eb := ir.NewBuilder(fn, entry)
	greetingPtr := &ir.ConstGEP{Base: greeting, Elem: ir.I8}
	eb.Call(puts, []ir.Value{greetingPtr}, "_")
	cond := eb.ICmp(ir.ICmpSGT, fn.Params[0], fn.Params[1], "gt")
	eb.CondBr(cond, highPath, lowPath)

	lb := ir.NewBuilder(fn, lowPath)
	lowVal := lb.BinOp(ir.OpAdd, fn.Params[0], ir.NewConstInt(ir.I32, 1), "lowval")
	lb.Br(join)

	hb := ir.NewBuilder(fn, highPath)
	highVal := hb.BinOp(ir.OpSub, fn.Params[0], fn.Params[1], "highval")
	hb.Br(join)

	jb := ir.NewBuilder(fn, join)
	phi := jb.Phi(ir.I32, "result")
	phi.Incs = []*ir.Incoming{
		{Val: lowVal, Pred: lowPath},
		{Val: highVal, Pred: highPath},
	}
	jb.Ret(phi)

	fmt.Fprintf(os.Stderr, "built demo module %q with %d functions\n", m.Name, len(m.Functions))
	return m
}
