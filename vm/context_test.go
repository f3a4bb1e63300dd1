package vm

import "testing"

// ---------------------------------------------------------------------------
// Global symbol tests
// ---------------------------------------------------------------------------

func TestSetAndLookupGlobal(t *testing.T) {
	ctx := NewContext(NewHeap(), NewSelectorTable(), NewClassTable(), nil)

	if _, ok := ctx.lookupSymbol("x"); ok {
		t.Fatal("unset global should not be found")
	}

	ctx.setSymbol("x", CreateSmallInteger(42))
	v, ok := ctx.lookupSymbol("x")
	if !ok {
		t.Fatal("global x should be found after setSymbol")
	}
	if GetInteger(v) != 42 {
		t.Errorf("x = %d, want 42", GetInteger(v))
	}

	ctx.setSymbol("x", CreateSmallInteger(7))
	v, _ = ctx.lookupSymbol("x")
	if GetInteger(v) != 7 {
		t.Errorf("x after reassignment = %d, want 7", GetInteger(v))
	}
}

func TestGlobalCellBecomesRootWhenHoldingHeapValue(t *testing.T) {
	ctx := NewContext(NewHeap(), NewSelectorTable(), NewClassTable(), nil)
	ctx.setSymbol("s", ctx.Heap.NewString([]byte("hi")))

	cell := ctx.globalSymbols["s"]
	if !cell.IsRoot() {
		t.Error("a global cell holding a heap value must be a GC root")
	}

	ctx.setSymbol("s", CreateSmallInteger(0))
	if cell.IsRoot() {
		t.Error("the cell must stop being a root once it holds a non-GC value")
	}
}

// ---------------------------------------------------------------------------
// Local frame tests
// ---------------------------------------------------------------------------

func TestLocalShadowsGlobal(t *testing.T) {
	ctx := NewContext(NewHeap(), NewSelectorTable(), NewClassTable(), nil)
	ctx.setSymbol("x", CreateSmallInteger(1))

	ctx.pushFrame()
	local := CreateSmallInteger(99)
	ctx.bindLocal("x", &local)

	v, ok := ctx.lookupSymbol("x")
	if !ok || GetInteger(v) != 99 {
		t.Fatalf("lookupSymbol(x) in frame = %v, %v, want 99, true", v, ok)
	}

	ctx.setSymbol("x", CreateSmallInteger(5))
	if GetInteger(local) != 5 {
		t.Errorf("setSymbol on a bound local should write through the bound address, got %d", GetInteger(local))
	}

	ctx.popFrame()
	v, _ = ctx.lookupSymbol("x")
	if GetInteger(v) != 1 {
		t.Errorf("after popFrame, x should resolve to the global again, got %d", GetInteger(v))
	}
}

func TestSetSymbolCreatesGlobalWhenUnbound(t *testing.T) {
	ctx := NewContext(NewHeap(), NewSelectorTable(), NewClassTable(), nil)
	ctx.pushFrame()
	ctx.setSymbol("y", CreateSmallInteger(3))
	ctx.popFrame()

	v, ok := ctx.lookupSymbol("y")
	if !ok || GetInteger(v) != 3 {
		t.Errorf("assigning an unbound name should promote it to a global")
	}
}

// ---------------------------------------------------------------------------
// Return-value plumbing
// ---------------------------------------------------------------------------

func TestFinishActivationResetsReturnState(t *testing.T) {
	ctx := NewContext(NewHeap(), NewSelectorTable(), NewClassTable(), nil)
	ctx.pushFrame()
	ctx.retVal = CreateSmallInteger(10)
	ctx.isReturning = true

	got := ctx.finishActivation()
	if GetInteger(got) != 10 {
		t.Errorf("finishActivation() = %d, want 10", GetInteger(got))
	}
	if ctx.isReturning {
		t.Error("finishActivation must clear isReturning")
	}
	if ctx.retVal != Null {
		t.Error("finishActivation must clear retVal")
	}
	if len(ctx.frames) != 0 {
		t.Error("finishActivation must pop the frame")
	}
}
