package vm

// Context is the interpreter context: globals plus a stack of
// per-activation local frames and the return signal. Trampolines and
// native methods receive it as an explicit parameter (MethodNativeFn,
// ClosureNativeFn) rather than through a process-wide pointer.
type Context struct {
	Heap      *Heap
	Selectors *SelectorTable
	Classes   *ClassTable
	Codegen   CodeGenerator

	// CompileThreshold starts at DefaultCompileThreshold; the CLI
	// driver overrides it from config.
	CompileThreshold int

	globals       []*Cell
	globalSymbols map[string]*Cell

	frames []frame

	retVal      Obj
	isReturning bool
}

// frame is one local-scope activation: a flat map from name to the
// address of the Obj storage backing it. Entries point into argument
// arrays, or into slots inside closure objects, or into the
// instance-variable region of self. Context.lookupSymbol only ever
// looks at the top entry plus globals, never at intermediate frames.
type frame map[string]*Obj

// NewContext creates a fresh interpreter context over the given heap,
// selector table, class table, and code generator.
func NewContext(heap *Heap, selectors *SelectorTable, classes *ClassTable, codegen CodeGenerator) *Context {
	return &Context{
		Heap:             heap,
		Selectors:        selectors,
		Classes:          classes,
		Codegen:          codegen,
		CompileThreshold: DefaultCompileThreshold,
		globalSymbols:    make(map[string]*Cell),
	}
}

// lookupSymbol resolves name against the top local frame, then globals,
// never intermediate frames. The bool result is false for an unbound
// name.
//
// This returns a value, not an address: a raw *Obj into a global Cell
// would let callers bypass Cell.Set and silently break the GC-root
// invariant. Locals don't have this problem — see bindLocal — so only
// the global path goes through a Cell at all.
func (ctx *Context) lookupSymbol(name string) (Obj, bool) {
	if n := len(ctx.frames); n > 0 {
		if addr, ok := ctx.frames[n-1][name]; ok {
			return *addr, true
		}
	}
	if cell, ok := ctx.globalSymbols[name]; ok {
		return cell.Get(), true
	}
	return Null, false
}

// setSymbol stores value through name's existing binding (local or
// global), or — if name has no binding anywhere — allocates a new global
// value cell and binds name to it: the first write at the top level
// creates a global.
func (ctx *Context) setSymbol(name string, value Obj) {
	if n := len(ctx.frames); n > 0 {
		if addr, ok := ctx.frames[n-1][name]; ok {
			*addr = value
			return
		}
	}
	if cell, ok := ctx.globalSymbols[name]; ok {
		cell.Set(value)
		return
	}
	cell := ctx.Heap.NewCell()
	cell.Set(value)
	ctx.globalSymbols[name] = cell
	ctx.globals = append(ctx.globals, cell)
}

// bindLocal binds name in the top local frame to externally-owned
// storage — used for parameters, self, cmd, instance variables, and
// bound variables.
func (ctx *Context) bindLocal(name string, addr *Obj) {
	ctx.frames[len(ctx.frames)-1][name] = addr
}

// pushFrame pushes a new, empty local frame.
func (ctx *Context) pushFrame() {
	ctx.frames = append(ctx.frames, make(frame))
}

// popFrame pops the top local frame. Callers must guarantee the frame's
// bound storage (argument arrays, closure bound-var slots, self's ivar
// region) outlives the pop, which Go's GC does automatically as long as
// something still references it.
func (ctx *Context) popFrame() {
	ctx.frames = ctx.frames[:len(ctx.frames)-1]
}
