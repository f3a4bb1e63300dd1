package vm

import "testing"

func evalExpr(t *testing.T, ctx *Context, e Expression) Obj {
	t.Helper()
	return e.Evaluate(ctx)
}

// ---------------------------------------------------------------------------
// Literal tests
// ---------------------------------------------------------------------------

func TestNumberEvaluatesAndCaches(t *testing.T) {
	ctx := newClosureTestContext()
	n := &Number{Value: 42}
	v := evalExpr(t, ctx, n)
	if GetInteger(v) != 42 {
		t.Fatalf("Number.Evaluate = %d, want 42", GetInteger(v))
	}
	if !n.cache.cached || GetInteger(n.cache.value) != 42 {
		t.Error("Number must cache its value after first evaluation")
	}
}

func TestStringLiteralReturnsSameIdentityEveryEvaluation(t *testing.T) {
	ctx := newClosureTestContext()
	s := &StringLiteral{Value: "hello"}
	a := evalExpr(t, ctx, s)
	b := evalExpr(t, ctx, s)
	if a != b {
		t.Error("a StringLiteral must return the same object identity on every evaluation")
	}
}

// ---------------------------------------------------------------------------
// VarRef tests
// ---------------------------------------------------------------------------

func TestVarRefUnboundPanics(t *testing.T) {
	ctx := newClosureTestContext()
	defer func() {
		if _, ok := recover().(UnboundNameError); !ok {
			t.Error("expected UnboundNameError")
		}
	}()
	(&VarRef{Name: "ghost"}).Evaluate(ctx)
}

// ---------------------------------------------------------------------------
// BinOp tests (spec §4.5's three-step rule)
// ---------------------------------------------------------------------------

func TestBinOpArithmeticOnIntegers(t *testing.T) {
	ctx := newClosureTestContext()
	tests := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"add", 2, 3, 5},
		{"sub", 5, 3, 2},
		{"mul", 4, 3, 12},
		{"div", 9, 3, 3},
	}
	for _, tt := range tests {
		b := &BinOp{Op: tt.op, Left: &Number{Value: tt.a}, Right: &Number{Value: tt.b}}
		got := GetInteger(evalExpr(t, ctx, b))
		if got != tt.want {
			t.Errorf("%s(%d, %d) = %d, want %d", tt.op, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBinOpComparisons(t *testing.T) {
	ctx := newClosureTestContext()
	tests := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"eq", 3, 3, 1}, {"eq", 3, 4, 0},
		{"ne", 3, 4, 1}, {"ne", 3, 3, 0},
		{"lt", 3, 4, 1}, {"gt", 4, 3, 1},
		{"le", 3, 3, 1}, {"ge", 3, 3, 1},
	}
	for _, tt := range tests {
		b := &BinOp{Op: tt.op, Left: &Number{Value: tt.a}, Right: &Number{Value: tt.b}}
		got := GetInteger(evalExpr(t, ctx, b))
		if got != tt.want {
			t.Errorf("%s(%d, %d) = %d, want %d", tt.op, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBinOpConstantFoldingIsCached(t *testing.T) {
	ctx := newClosureTestContext()
	b := &BinOp{Op: "add", Left: &Number{Value: 1}, Right: &Number{Value: 2}}
	first := evalExpr(t, ctx, b)
	if !b.cache.cached {
		t.Fatal("a BinOp over two constants should be cached after evaluation")
	}
	second := evalExpr(t, ctx, b)
	if first != second {
		t.Error("cached BinOp result should be returned unchanged")
	}
}

func TestBinOpNonIntegerArithmeticDispatchesAsMethodSend(t *testing.T) {
	ctx := newClosureTestContext()
	class := NewClass("Box", nil)
	called := false
	class.AddMethod(ctx.Selectors, "add", &Method{
		Arity: 1,
		Function: func(ctx *Context, self Obj, cmd Selector, args []Obj) Obj {
			called = true
			return CreateSmallInteger(123)
		},
	})
	recv := ctx.Heap.NewObject(class)

	b := &BinOp{Op: "add", Left: &VarRef{Name: "recv"}, Right: &Number{Value: 1}}
	ctx.setSymbol("recv", recv)
	result := evalExpr(t, ctx, b)

	if !called {
		t.Fatal("add on a non-integer LHS should dispatch as a method send")
	}
	if GetInteger(result) != 123 {
		t.Errorf("result = %d, want 123", GetInteger(result))
	}
}

// ---------------------------------------------------------------------------
// Call tests
// ---------------------------------------------------------------------------

func TestCallArityExceededPanics(t *testing.T) {
	ctx := newClosureTestContext()
	args := make([]Expression, MaxArity+1)
	for i := range args {
		args[i] = &Number{Value: 0}
	}
	call := &Call{Callee: &VarRef{Name: "f"}, Args: args}
	ctx.setSymbol("f", CreateSmallInteger(0))

	defer func() {
		if _, ok := recover().(ArityExceededError); !ok {
			t.Error("expected ArityExceededError")
		}
	}()
	call.Evaluate(ctx)
}

// assignExpr lets an Assignment stand in argument position: it performs
// the assignment and yields the assigned variable's new value.
type assignExpr struct{ *Assignment }

func (a assignExpr) Evaluate(ctx *Context) Obj {
	a.Interpret(ctx)
	v, _ := ctx.lookupSymbol(a.Name)
	return v
}
func (a assignExpr) isConstant() bool { return false }

func TestCallEvaluatesArgsLeftToRight(t *testing.T) {
	ctx := newClosureTestContext()
	ctx.setSymbol("order", CreateSmallInteger(0))
	appendOrder := func(n int64) Expression {
		return assignExpr{&Assignment{Name: "order", Value: &Number{Value: n}}}
	}
	_ = appendOrder // args below are evaluated for side effect ordering via setSymbol overwrites

	decl := &ClosureDecl{Params: []string{"a", "b"}, Body: &Statements{}}
	closure := decl.Evaluate(ctx)
	ctx.setSymbol("f", closure)

	call := &Call{
		Callee: &VarRef{Name: "f"},
		Args:   []Expression{assignExpr{&Assignment{Name: "order", Value: &Number{Value: 1}}}, assignExpr{&Assignment{Name: "order", Value: &Number{Value: 2}}}},
	}
	call.Evaluate(ctx)

	v, _ := ctx.lookupSymbol("order")
	if GetInteger(v) != 2 {
		t.Errorf("order = %d, want 2 (args evaluated left to right)", GetInteger(v))
	}
}

// ---------------------------------------------------------------------------
// NewExpr tests
// ---------------------------------------------------------------------------

func TestNewExprUnknownClassPanics(t *testing.T) {
	ctx := newClosureTestContext()
	defer func() {
		if _, ok := recover().(TypeMismatchError); !ok {
			t.Error("expected TypeMismatchError")
		}
	}()
	(&NewExpr{ClassName: "Nonexistent"}).Evaluate(ctx)
}

func TestNewExprAllocatesRegisteredClass(t *testing.T) {
	ctx := newClosureTestContext()
	class := NewClass("Widget", nil)
	ctx.Classes.Register(class)

	v := (&NewExpr{ClassName: "Widget"}).Evaluate(ctx)
	if IsaOf(v) != class {
		t.Error("NewExpr should allocate an instance of the registered class")
	}
}

// ---------------------------------------------------------------------------
// Return short-circuiting (spec §8, property #6)
// ---------------------------------------------------------------------------

// countingStmt increments a counter each time it is interpreted, so a
// test can observe whether a Statements block skipped it.
type countingStmt struct{ count *int }

func (c *countingStmt) Interpret(ctx *Context)                 { *c.count++ }
func (c *countingStmt) collectCapture(decls, uses *orderedSet) {}

func TestStatementsStopsAfterReturn(t *testing.T) {
	ctx := newClosureTestContext()
	var reached int
	block := &Statements{Stmts: []Node{
		&Return{Value: &Number{Value: 1}},
		&countingStmt{count: &reached},
	}}
	block.Interpret(ctx)

	if reached != 0 {
		t.Error("a statement following one that set isReturning must not be evaluated")
	}
}

// ---------------------------------------------------------------------------
// Constant-expression caching with a side-effect counting stub (spec §8,
// property #8: subtrees of a constant expression are not re-evaluated)
// ---------------------------------------------------------------------------

type countingConstExpr struct {
	value Obj
	count *int
}

func (c *countingConstExpr) Evaluate(ctx *Context) Obj              { *c.count++; return c.value }
func (c *countingConstExpr) Interpret(ctx *Context)                 { c.Evaluate(ctx) }
func (c *countingConstExpr) isConstant() bool                        { return true }
func (c *countingConstExpr) collectCapture(decls, uses *orderedSet) {}

func TestBinOpDoesNotReEvaluateConstantSubtrees(t *testing.T) {
	ctx := newClosureTestContext()
	var evalCount int
	leaf := &countingConstExpr{value: CreateSmallInteger(2), count: &evalCount}
	b := &BinOp{Op: "add", Left: leaf, Right: &Number{Value: 3}}

	for i := 0; i < 5; i++ {
		evalExpr(t, ctx, b)
	}
	if evalCount != 1 {
		t.Errorf("constant subtree evaluated %d times, want exactly 1", evalCount)
	}
}

// ---------------------------------------------------------------------------
// WhileLoop intentional non-short-circuit behavior (spec §4.5)
// ---------------------------------------------------------------------------

func TestWhileLoopReturnInsideBodyDoesNotBreakTheLoop(t *testing.T) {
	ctx := newClosureTestContext()
	ctx.setSymbol("i", CreateSmallInteger(0))

	loop := &WhileLoop{
		Cond: &BinOp{Op: "lt", Left: &VarRef{Name: "i"}, Right: &Number{Value: 3}},
		Body: &Statements{Stmts: []Node{
			&Assignment{Name: "i", Value: &BinOp{Op: "add", Left: &VarRef{Name: "i"}, Right: &Number{Value: 1}}},
			&Return{Value: &Number{Value: 0}},
		}},
	}
	loop.Interpret(ctx)

	v, _ := ctx.lookupSymbol("i")
	if GetInteger(v) != 3 {
		t.Errorf("i = %d, want 3 (a return inside the body must not break the enclosing while)", GetInteger(v))
	}
}
