package vm

// Node is anything the evaluator can interpret as a statement.
// collectCapture feeds closure capture analysis: every node type reports
// the names it declares and the names it reads.
type Node interface {
	Interpret(ctx *Context)
	collectCapture(decls, uses *orderedSet)
}

// Expression is a Node that also produces a value. A bare expression used
// as a statement evaluates and discards the result — each expression
// type's Interpret does exactly that.
type Expression interface {
	Node
	Evaluate(ctx *Context) Obj
	isConstant() bool
}

// constCell caches the result of a constant expression's first
// evaluation so later evaluations skip recomputing it. An explicit
// cached bool, not a sentinel Obj value, distinguishes "never evaluated"
// from "evaluated to null". The cached value is never registered as a GC
// root; harmless only because this Heap never actually reclaims anything.
type constCell struct {
	cached bool
	value  Obj
}

// Statements is a statement block: interpret in order, stop early once
// isReturning becomes true.
type Statements struct {
	Stmts []Node
}

func (s *Statements) Interpret(ctx *Context) {
	for _, stmt := range s.Stmts {
		stmt.Interpret(ctx)
		if ctx.isReturning {
			return
		}
	}
}

func (s *Statements) collectCapture(decls, uses *orderedSet) {
	for _, stmt := range s.Stmts {
		stmt.collectCapture(decls, uses)
	}
}

// Decl declares a variable, evaluating its initializer if present or
// using null otherwise, then storing through setSymbol.
type Decl struct {
	Name string
	Init Expression // nil if uninitialized
}

func (d *Decl) Interpret(ctx *Context) {
	value := Null
	if d.Init != nil {
		value = d.Init.Evaluate(ctx)
	}
	ctx.setSymbol(d.Name, value)
}

func (d *Decl) collectCapture(decls, uses *orderedSet) {
	decls.add(d.Name)
	if d.Init != nil {
		d.Init.collectCapture(decls, uses)
	}
}

// Assignment evaluates its RHS then stores through
// setSymbol(targetName, value).
type Assignment struct {
	Name  string
	Value Expression
}

func (a *Assignment) Interpret(ctx *Context) {
	ctx.setSymbol(a.Name, a.Value.Evaluate(ctx))
}

// collectCapture treats the assignment target as a use, not a decl:
// setSymbol resolves an existing binding before falling back to
// creating a global, and a captured-but-never-read bound variable must
// still be present in boundVars for that resolution to find the
// closure's own slot instead of silently promoting to a global.
func (a *Assignment) collectCapture(decls, uses *orderedSet) {
	uses.add(a.Name)
	a.Value.collectCapture(decls, uses)
}

// IfStatement executes its body iff Cond is truthy.
type IfStatement struct {
	Cond Expression
	Body Node
}

func (n *IfStatement) Interpret(ctx *Context) {
	if n.Cond.Evaluate(ctx).IsTruthy() {
		n.Body.Interpret(ctx)
	}
}

func (n *IfStatement) collectCapture(decls, uses *orderedSet) {
	n.Cond.collectCapture(decls, uses)
	n.Body.collectCapture(decls, uses)
}

// WhileLoop repeatedly interprets Body while Cond is truthy. It does not
// check isReturning in its own header — only the Statements block inside
// Body stops early once isReturning is set — so a return inside a while
// body ends the current body execution but the loop itself keeps
// evaluating Cond.
type WhileLoop struct {
	Cond Expression
	Body Node
}

func (n *WhileLoop) Interpret(ctx *Context) {
	for n.Cond.Evaluate(ctx).IsTruthy() {
		n.Body.Interpret(ctx)
	}
}

func (n *WhileLoop) collectCapture(decls, uses *orderedSet) {
	n.Cond.collectCapture(decls, uses)
	n.Body.collectCapture(decls, uses)
}

// Return evaluates its expression (null if absent), stores it in
// ctx.retVal, and sets ctx.isReturning.
type Return struct {
	Value Expression // nil for a bare `return;`
}

func (r *Return) Interpret(ctx *Context) {
	value := Null
	if r.Value != nil {
		value = r.Value.Evaluate(ctx)
	}
	ctx.retVal = value
	ctx.isReturning = true
}

func (r *Return) collectCapture(decls, uses *orderedSet) {
	if r.Value != nil {
		r.Value.collectCapture(decls, uses)
	}
}

// Number is an integer literal.
type Number struct {
	Value int64
	cache constCell
}

func (n *Number) Evaluate(ctx *Context) Obj {
	if n.cache.cached {
		return n.cache.value
	}
	v := CreateSmallInteger(n.Value)
	n.cache.cached, n.cache.value = true, v
	return v
}

func (n *Number) Interpret(ctx *Context)                       { n.Evaluate(ctx) }
func (n *Number) isConstant() bool                             { return true }
func (n *Number) collectCapture(decls, uses *orderedSet) {}

// StringLiteral allocates a String with the literal's bytes on first
// evaluation and returns the same object identity on every subsequent
// evaluation.
type StringLiteral struct {
	Value string
	cache constCell
}

func (s *StringLiteral) Evaluate(ctx *Context) Obj {
	if s.cache.cached {
		return s.cache.value
	}
	v := ctx.Heap.NewString([]byte(s.Value))
	s.cache.cached, s.cache.value = true, v
	return v
}

func (s *StringLiteral) Interpret(ctx *Context)                 { s.Evaluate(ctx) }
func (s *StringLiteral) isConstant() bool                       { return true }
func (s *StringLiteral) collectCapture(decls, uses *orderedSet) {}

// VarRef reads a variable by name, panicking UnboundNameError if it
// has no binding anywhere in scope.
type VarRef struct {
	Name string
}

func (v *VarRef) Evaluate(ctx *Context) Obj {
	value, ok := ctx.lookupSymbol(v.Name)
	if !ok {
		panic(UnboundNameError{Name: v.Name})
	}
	return value
}

func (v *VarRef) Interpret(ctx *Context) { v.Evaluate(ctx) }
func (v *VarRef) isConstant() bool        { return false }
func (v *VarRef) collectCapture(decls, uses *orderedSet) {
	uses.add(v.Name)
}

// binOpIsComparison reports whether op is one of the comparison
// subkinds.
func binOpIsComparison(op string) bool {
	switch op {
	case "eq", "ne", "lt", "gt", "le", "ge":
		return true
	}
	return false
}

// BinOp is a binary operation with an arithmetic or comparison subkind.
type BinOp struct {
	Op    string
	Left  Expression
	Right Expression
	cache constCell
}

func (b *BinOp) isConstant() bool {
	return b.Left.isConstant() && b.Right.isConstant()
}

// Evaluate evaluates operands left-to-right; if the op is a comparison
// or both operands are small integers, untags both sides as a raw
// shifted word and computes directly; otherwise dispatches
// mul/div/add/sub as a unary message on the LHS's class.
func (b *BinOp) Evaluate(ctx *Context) Obj {
	if b.isConstant() && b.cache.cached {
		return b.cache.value
	}
	lhs := b.Left.Evaluate(ctx)
	rhs := b.Right.Evaluate(ctx)
	result := b.apply(ctx, lhs, rhs)
	if b.isConstant() {
		b.cache.cached, b.cache.value = true, result
	}
	return result
}

func (b *BinOp) apply(ctx *Context, lhs, rhs Obj) Obj {
	if binOpIsComparison(b.Op) || (lhs.IsInteger() && rhs.IsInteger()) {
		a := int64(lhs) >> intShift
		c := int64(rhs) >> intShift
		var r int64
		switch b.Op {
		case "mul":
			r = a * c
		case "div":
			r = a / c
		case "add":
			r = a + c
		case "sub":
			r = a - c
		case "eq":
			r = boolToInt(a == c)
		case "ne":
			r = boolToInt(a != c)
		case "lt":
			r = boolToInt(a < c)
		case "gt":
			r = boolToInt(a > c)
		case "le":
			r = boolToInt(a <= c)
		case "ge":
			r = boolToInt(a >= c)
		default:
			panic(InternalInvariantViolation{Detail: "unknown BinOp subkind " + b.Op})
		}
		return CreateSmallInteger(r)
	}
	sel := ctx.Selectors.Intern(b.Op)
	return InvokeMethod(ctx, lhs, sel, []Obj{rhs})
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (b *BinOp) Interpret(ctx *Context) { b.Evaluate(ctx) }

func (b *BinOp) collectCapture(decls, uses *orderedSet) {
	b.Left.collectCapture(decls, uses)
	b.Right.collectCapture(decls, uses)
}

// Call evaluates its callee, then its arguments left-to-right, and
// dispatches either as a method send (Selector non-empty) or a closure
// invocation.
type Call struct {
	Callee   Expression
	Selector string // "" for a closure call
	Args     []Expression
}

func (c *Call) Evaluate(ctx *Context) Obj {
	callee := c.Callee.Evaluate(ctx)
	if len(c.Args) > MaxArity {
		panic(ArityExceededError{Limit: MaxArity, Got: len(c.Args)})
	}
	args := make([]Obj, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Evaluate(ctx)
	}
	if c.Selector != "" {
		sel := ctx.Selectors.Intern(c.Selector)
		return InvokeMethod(ctx, callee, sel, args)
	}
	return InvokeClosure(ctx, callee, args)
}

func (c *Call) Interpret(ctx *Context) { c.Evaluate(ctx) }
func (c *Call) isConstant() bool        { return false }

func (c *Call) collectCapture(decls, uses *orderedSet) {
	c.Callee.collectCapture(decls, uses)
	for _, a := range c.Args {
		a.collectCapture(decls, uses)
	}
}

// NewExpr allocates a zero-initialized instance of a named class;
// TypeMismatchError if the class is unregistered.
type NewExpr struct {
	ClassName string
}

func (n *NewExpr) Evaluate(ctx *Context) Obj {
	class := ctx.Classes.Lookup(n.ClassName)
	if class == nil {
		panic(TypeMismatchError{Operation: "new", Detail: "unknown class " + n.ClassName})
	}
	return ctx.Heap.NewObject(class)
}

func (n *NewExpr) Interpret(ctx *Context)                 { n.Evaluate(ctx) }
func (n *NewExpr) isConstant() bool                       { return false }
func (n *NewExpr) collectCapture(decls, uses *orderedSet) {}
