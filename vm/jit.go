package vm

import "log"

// MaxArity is the fixed cap on method/closure parameter and argument
// counts. Raising it is a matter of policy, not of trampoline plumbing,
// since arity is carried as a Go slice rather than one native signature
// per count.
const MaxArity = 10

// DefaultCompileThreshold is the executionCount at which a declaration
// is handed to the code generator.
const DefaultCompileThreshold = 10

// CodeGenerator is the external collaborator that, given a declaration
// (and, for methods, its owning class) plus the context's global symbol
// table, returns a native entry point honoring the method/closure
// calling convention. This package never implements one of its own.
type CodeGenerator interface {
	CompileMethod(class *Class, decl *ClosureDecl, ctx *Context) MethodNativeFn
	CompileClosure(decl *ClosureDecl, ctx *Context) ClosureNativeFn
}

// LogCompilation, when true, logs every compile event triggered by a
// trampoline.
var LogCompilation = false

// methodTrampoline is the uniform initial Method.Function. It
// implements the tiered handoff: count the call, compile once the
// threshold is hit, and — whether freshly compiled or already compiled
// on a prior call — run the compiled entry and return immediately
// without falling into the interpreter path.
func methodTrampoline(ctx *Context, self Obj, cmd Selector, args []Obj) Obj {
	class := IsaOf(self)
	method := MethodForSelector(class, cmd)
	if method == nil {
		panic(SelectorNotFoundError{Selector: ctx.Selectors.Name(cmd), Class: className(class)})
	}
	decl := method.AST
	if decl != nil {
		decl.executionCount++
		if decl.executionCount == ctx.CompileThreshold && decl.compiledMethodFn == nil {
			if LogCompilation {
				log.Printf("vm: compiling method %s on %s after %d interpreted calls", ctx.Selectors.Name(cmd), class.Name, decl.executionCount)
			}
			fn := ctx.Codegen.CompileMethod(class, decl, ctx)
			decl.compiledMethodFn = fn
			method.Function = fn
		}
		if decl.compiledMethodFn != nil {
			return decl.compiledMethodFn(ctx, self, cmd, args)
		}
	}
	return invokeMethodInterpreted(ctx, class, method, self, cmd, args)
}

// closureTrampoline is the uniform initial ClosureObj.Invoke, mirroring
// methodTrampoline for the closure calling convention.
func closureTrampoline(ctx *Context, self *ClosureObj, args []Obj) Obj {
	decl := self.AST
	decl.executionCount++
	if decl.executionCount == ctx.CompileThreshold && decl.compiledClosureFn == nil {
		if LogCompilation {
			log.Printf("vm: compiling closure after %d interpreted calls", decl.executionCount)
		}
		fn := ctx.Codegen.CompileClosure(decl, ctx)
		decl.compiledClosureFn = fn
		self.Invoke = fn
	}
	if decl.compiledClosureFn != nil {
		return decl.compiledClosureFn(ctx, self, args)
	}
	return invokeClosureInterpreted(ctx, self, args)
}

// InvokeMethod resolves cmd on receiver's class and calls through
// whatever Method.Function currently is — trampoline or compiled entry,
// indistinguishable to the caller.
func InvokeMethod(ctx *Context, receiver Obj, cmd Selector, args []Obj) Obj {
	class := IsaOf(receiver)
	method := MethodForSelector(class, cmd)
	if method == nil {
		panic(SelectorNotFoundError{Selector: ctx.Selectors.Name(cmd), Class: className(class)})
	}
	return method.Function(ctx, receiver, cmd, args)
}

// InvokeClosure calls a Closure value through its current Invoke entry.
// callee must be a Closure, or this panics TypeMismatchError.
func InvokeClosure(ctx *Context, callee Obj, args []Obj) Obj {
	if IsaOf(callee) != ClosureClass {
		panic(TypeMismatchError{Operation: "closure call", Detail: "callee is not a Closure"})
	}
	closure := closureFromObj(callee)
	return closure.Invoke(ctx, closure, args)
}

// InterpretMethodEntry and InterpretClosureEntry are native entries that
// re-enter the tree-walking interpreter directly. They satisfy the
// MethodNativeFn/ClosureNativeFn calling conventions so a CodeGenerator
// that has nothing better to offer (see cmd/mysorescript's
// InterpretingCodeGenerator) can still return a real, correctly-shaped
// compiled entry rather than fabricating one.
func InterpretMethodEntry(ctx *Context, self Obj, cmd Selector, args []Obj) Obj {
	class := IsaOf(self)
	method := MethodForSelector(class, cmd)
	if method == nil {
		panic(SelectorNotFoundError{Selector: ctx.Selectors.Name(cmd), Class: className(class)})
	}
	return invokeMethodInterpreted(ctx, class, method, self, cmd, args)
}

func InterpretClosureEntry(ctx *Context, self *ClosureObj, args []Obj) Obj {
	return invokeClosureInterpreted(ctx, self, args)
}

func className(c *Class) string {
	if c == nil {
		return "null"
	}
	return c.Name
}
