package vm

// MethodDecl is one method inside a ClassDecl: a selector name, its
// parameter names, and its body. It is turned into a *ClosureDecl at
// ClassDecl.Interpret time so method invocation can reuse the same
// tiered-execution machinery as standalone closures.
type MethodDecl struct {
	Selector string
	Params   []string
	Body     *Statements
}

// ClassDecl declares a class. Names holds either one identifier (the
// class itself has no superclass) or two (class name, then superclass
// name).
type ClassDecl struct {
	Names     []string
	IVarNames []string
	Methods   []*MethodDecl
}

// Interpret builds and registers the class. Duplicate registration is
// last-writer-wins via ClassTable.Register.
func (d *ClassDecl) Interpret(ctx *Context) {
	name := d.Names[0]
	var super *Class
	if len(d.Names) > 1 {
		super = ctx.Classes.Lookup(d.Names[1])
	}
	ivars := append([]string(nil), d.IVarNames...)
	class := NewClassWithIVars(name, super, ivars)
	for _, md := range d.Methods {
		decl := &ClosureDecl{Name: md.Selector, Params: md.Params, Body: md.Body}
		if len(md.Params) > MaxArity {
			panic(ArityExceededError{Limit: MaxArity, Got: len(md.Params)})
		}
		method := &Method{Arity: len(md.Params), Function: methodTrampoline, AST: decl}
		class.AddMethod(ctx.Selectors, md.Selector, method)
	}
	ctx.Classes.Register(class)
}

func (d *ClassDecl) collectCapture(decls, uses *orderedSet) {}
