package vm

// MethodNativeFn is the calling convention compiled code must honor for a
// method native entry: the receiver, the selector it was dispatched on,
// and its positional arguments. Every arity is carried by one function
// type rather than by a family of fixed-arity signatures, so every
// method call goes through a stored function value — trampoline or
// compiled, indistinguishable to the caller — by always calling through
// Method.Function.
type MethodNativeFn func(ctx *Context, self Obj, cmd Selector, args []Obj) Obj

// ClosureNativeFn is the calling convention for a closure native entry.
type ClosureNativeFn func(ctx *Context, self *ClosureObj, args []Obj) Obj

// Method holds a selector, its arity, the currently installed entry
// point, and the AST of the declaration it was compiled from (if any).
type Method struct {
	Selector Selector
	Arity    int
	Function MethodNativeFn
	AST      *ClosureDecl
}

// NewMethod builds a Method whose initial Function is methodTrampoline,
// the one trampoline that serves every arity.
func NewMethod(sel Selector, arity int, ast *ClosureDecl) *Method {
	if arity > MaxArity {
		panic(ArityExceededError{Limit: MaxArity, Got: arity})
	}
	return &Method{
		Selector: sel,
		Arity:    arity,
		Function: methodTrampoline,
		AST:      ast,
	}
}
