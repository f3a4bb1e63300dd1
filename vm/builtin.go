package vm

import "unsafe"

// ClosureObj is the built-in Closure shape: a class pointer, the
// parameter count, the declaration it was built from, its current
// invoke entry, and its captured bound variables. isa must stay the
// first field (see object.go).
type ClosureObj struct {
	isa        *Class
	Parameters int
	AST        *ClosureDecl
	Invoke     ClosureNativeFn
	BoundVars  []Obj
}

func closureFromObj(v Obj) *ClosureObj {
	return (*ClosureObj)(v.heapPointer())
}

// newClosure allocates a closure instance for decl, with its
// bound-variable slots left zeroed. invoke is the trampoline unless decl
// already has a compiled closure entry cached from a prior instance.
// Callers fill in the bound variables afterward with fillBoundVars, once
// decl.Name (if any) has been bound in the current scope — allocation
// and binding are split into two steps so a named closure can refer to
// itself in its own bound-variable list.
func (h *Heap) newClosure(decl *ClosureDecl, paramCount int) Obj {
	invoke := closureTrampoline
	if decl.compiledClosureFn != nil {
		invoke = decl.compiledClosureFn
	}
	c := &ClosureObj{
		isa:        ClosureClass,
		Parameters: paramCount,
		AST:        decl,
		Invoke:     invoke,
		BoundVars:  make([]Obj, len(decl.boundVars)),
	}
	return h.register(fromHeapPointer(unsafe.Pointer(c)), c)
}

// fillBoundVars copies the current value of each of decl's bound
// variables into closure's bound-variable slots.
func fillBoundVars(ctx *Context, closure Obj, decl *ClosureDecl) {
	c := closureFromObj(closure)
	for i, name := range decl.boundVars {
		v, ok := ctx.lookupSymbol(name)
		if !ok {
			panic(UnboundNameError{Name: name})
		}
		c.BoundVars[i] = v
	}
}

// DefaultSelectors and DefaultClasses are the process-wide, append-mostly
// selector and class tables. SmallIntClass, StringClass, and ClosureClass
// are registered into DefaultClasses below, so any Context built over
// these tables (the normal case — cmd/mysorescript builds exactly one
// Context per process) sees consistent selector IDs for the native
// arithmetic methods installed here.
var (
	DefaultSelectors = NewSelectorTable()
	DefaultClasses   = NewClassTable()

	SmallIntClass = registerBuiltin(NewClass("SmallInteger", nil))
	StringClass   = registerBuiltin(NewClass("String", nil))
	ClosureClass  = registerBuiltin(NewClass("Closure", nil))
)

func registerBuiltin(c *Class) *Class {
	DefaultClasses.Register(c)
	return c
}

func init() {
	installSmallIntArithmetic()
}

// installSmallIntArithmetic installs native add/sub/mul/div methods on
// SmallInteger so BinOp's method-dispatch fallback has somewhere to land
// when one operand of an arithmetic BinOp is not itself a small integer.
// The fast path in ast.go handles the common both-integers case directly
// and never reaches these.
func installSmallIntArithmetic() {
	ops := map[string]func(a, b int64) int64{
		"add": func(a, b int64) int64 { return a + b },
		"sub": func(a, b int64) int64 { return a - b },
		"mul": func(a, b int64) int64 { return a * b },
		"div": func(a, b int64) int64 { return a / b },
	}
	for name, op := range ops {
		fn := op
		SmallIntClass.AddMethod(DefaultSelectors, name, &Method{
			Arity: 1,
			Function: func(ctx *Context, self Obj, cmd Selector, args []Obj) Obj {
				if !self.IsInteger() || len(args) != 1 || !args[0].IsInteger() {
					panic(TypeMismatchError{Operation: name, Detail: "both operands must be SmallInteger"})
				}
				return CreateSmallInteger(fn(GetInteger(self), GetInteger(args[0])))
			},
		})
	}
}
