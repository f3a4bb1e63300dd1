package vm

// ClosureDecl is both an AST node (a closure literal, in expression
// position) and the owner of a declaration's tiered-execution state. A
// method body is represented the same way — Method.AST is a
// *ClosureDecl — so a single type carries both the standalone-closure
// and the method case.
type ClosureDecl struct {
	Name   string // "" for an anonymous closure literal
	Params []string
	Body   *Statements

	executionCount    int
	compiledMethodFn  MethodNativeFn
	compiledClosureFn ClosureNativeFn

	checked   bool
	decls     []string
	boundVars []string
}

// orderedSet is an insertion-order-deduplicated set of names. boundVars'
// iteration order must be fixed once computed so slot indices are
// deterministic; a Go map's iteration order is not, hence this rather
// than map[string]struct{}.
type orderedSet struct {
	seen  map[string]bool
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(name string) {
	if !s.seen[name] {
		s.seen[name] = true
		s.order = append(s.order, name)
	}
}

func (s *orderedSet) has(name string) bool {
	return s.seen[name]
}

// analyze runs capture analysis on decl, memoized by decl.checked. It
// computes decls and boundVars; uses is a transient working set, not
// retained.
func (decl *ClosureDecl) analyze() {
	if decl.checked {
		return
	}
	decls := newOrderedSet()
	uses := newOrderedSet()
	if decl.Body != nil {
		decl.Body.collectCapture(decls, uses)
	}
	params := make(map[string]bool, len(decl.Params))
	for _, p := range decl.Params {
		params[p] = true
	}
	bound := newOrderedSet()
	for _, name := range uses.order {
		if decls.has(name) || params[name] {
			continue
		}
		bound.add(name)
	}
	decl.decls = decls.order
	decl.boundVars = bound.order
	decl.checked = true
}

// Evaluate constructs a closure object for decl: run capture analysis,
// allocate the closure, bind its own name (if any) in the current scope,
// and only then copy the bound variables' current values into it. Binding
// the name first lets a self-referential closure — a recursive function
// declared with `fun fact(n) { ... fact(n-1) ... }` — capture itself in
// its own bound-variable slot instead of hitting an unbound name.
func (decl *ClosureDecl) Evaluate(ctx *Context) Obj {
	if len(decl.Params) > MaxArity {
		panic(ArityExceededError{Limit: MaxArity, Got: len(decl.Params)})
	}
	decl.analyze()
	closure := ctx.Heap.newClosure(decl, len(decl.Params))
	if decl.Name != "" {
		ctx.setSymbol(decl.Name, closure)
	}
	fillBoundVars(ctx, closure, decl)
	return closure
}

// Interpret evaluates decl and discards the result, except that binding
// decl.Name is itself the point of a bare closure declaration used as a
// statement, so the discard is of the returned value only, not of that
// side effect.
func (decl *ClosureDecl) Interpret(ctx *Context) {
	decl.Evaluate(ctx)
}

func (decl *ClosureDecl) isConstant() bool { return false }

func (decl *ClosureDecl) collectCapture(decls, uses *orderedSet) {
	if decl.Name != "" {
		decls.add(decl.Name)
	}
	decl.analyze()
	for _, name := range decl.boundVars {
		uses.add(name)
	}
}

// invokeClosureInterpreted pushes a frame, binds parameters to the
// argument array and bound variables to the closure's own slots,
// interprets the body, then runs the epilogue that clears the return
// signal and pops the frame.
func invokeClosureInterpreted(ctx *Context, self *ClosureObj, args []Obj) Obj {
	decl := self.AST
	ctx.pushFrame()
	for i, name := range decl.Params {
		if i < len(args) {
			ctx.bindLocal(name, &args[i])
		} else {
			var zero Obj
			ctx.bindLocal(name, &zero)
		}
	}
	for i, name := range decl.boundVars {
		ctx.bindLocal(name, &self.BoundVars[i])
	}
	if decl.Body != nil {
		decl.Body.Interpret(ctx)
	}
	return ctx.finishActivation()
}

// invokeMethodInterpreted binds parameters, self, cmd, and the instance
// variables of class (self's class, passed in by the caller), interprets
// the body, then runs the same epilogue as invokeClosureInterpreted.
func invokeMethodInterpreted(ctx *Context, class *Class, method *Method, self Obj, cmd Selector, args []Obj) Obj {
	decl := method.AST
	ctx.pushFrame()
	if decl != nil {
		for i, name := range decl.Params {
			if i < len(args) {
				ctx.bindLocal(name, &args[i])
			} else {
				var zero Obj
				ctx.bindLocal(name, &zero)
			}
		}
	}
	selfVar := self
	cmdVar := CreateSmallInteger(int64(cmd))
	ctx.bindLocal("self", &selfVar)
	ctx.bindLocal("cmd", &cmdVar)
	if !self.IsInteger() && !self.IsNull() {
		obj := objectFromObj(self)
		for i := 0; i < class.NumSlots; i++ {
			ctx.bindLocal(ivarNameAt(class, i), obj.SlotAddr(i))
		}
	}
	if decl != nil && decl.Body != nil {
		decl.Body.Interpret(ctx)
	}
	return ctx.finishActivation()
}

// ivarNameAt returns the name of class's i'th indexed instance variable
// (including inherited slots), walking the superclass chain the same
// way Class.InstVarIndex does in reverse.
func ivarNameAt(class *Class, i int) string {
	for c := class; c != nil; c = c.Superclass {
		offset := c.NumSlots - len(c.IVarNames)
		if i >= offset {
			return c.IVarNames[i-offset]
		}
	}
	return ""
}

// finishActivation is the shared epilogue for a method or closure call:
// read retVal, clear retVal and isReturning, pop the frame, return the
// value (null if the body never returned explicitly).
func (ctx *Context) finishActivation() Obj {
	result := ctx.retVal
	ctx.retVal = Null
	ctx.isReturning = false
	ctx.popFrame()
	return result
}
