package main

import "github.com/curiousleo/mysorescript/vm"

// InterpretingCodeGenerator is the default CodeGenerator plugged into
// the core's tiered-execution protocol. This driver needs a concrete
// one to run end to end, but has no native backend to offer, so rather
// than emit native code it hands back an entry point that re-enters the
// tree walker directly, skipping the trampoline's own counting step.
// The tiered handoff itself — counting, one compile event at the
// threshold, routing every later call through the returned entry —
// still happens the same way it would with a real compiler plugged in.
type InterpretingCodeGenerator struct{}

func (InterpretingCodeGenerator) CompileMethod(class *vm.Class, decl *vm.ClosureDecl, ctx *vm.Context) vm.MethodNativeFn {
	return vm.InterpretMethodEntry
}

func (InterpretingCodeGenerator) CompileClosure(decl *vm.ClosureDecl, ctx *vm.Context) vm.ClosureNativeFn {
	return vm.InterpretClosureEntry
}
