package vm

// Class describes a superclass link, a dispatch table, and the instance
// variables this class adds on top of its superclass's. Classes are
// allocated once, registered, and live until process exit, so Class is
// never produced by Heap.NewObject and never appears in the heap object
// registry.
type Class struct {
	Name       string
	Superclass *Class
	VTable     *VTable
	IVarNames  []string // this class's own instance-variable names, in declaration order
	NumSlots   int      // total indexed ivar count, including inherited
}

// NewClass creates a class with no instance variables of its own beyond
// whatever its superclass carries.
func NewClass(name string, superclass *Class) *Class {
	return NewClassWithIVars(name, superclass, nil)
}

// NewClassWithIVars creates a class with its own instance variables on
// top of superclass's. The instance-variable names are copied rather
// than aliased, so the class owns its own []string independent of
// whatever built it.
func NewClassWithIVars(name string, superclass *Class, ivarNames []string) *Class {
	var parentVT *VTable
	numSlots := 0
	if superclass != nil {
		parentVT = superclass.VTable
		numSlots = superclass.NumSlots
	}
	names := append([]string(nil), ivarNames...)
	c := &Class{
		Name:       name,
		Superclass: superclass,
		IVarNames:  names,
		NumSlots:   numSlots + len(names),
	}
	c.VTable = NewVTable(c, parentVT)
	return c
}

// InstVarIndex returns the indexed slot for a named instance variable,
// searching this class and then its ancestors, or -1 if not found.
func (c *Class) InstVarIndex(name string) int {
	offset := c.NumSlots - len(c.IVarNames)
	for i, n := range c.IVarNames {
		if n == name {
			return offset + i
		}
	}
	if c.Superclass != nil {
		return c.Superclass.InstVarIndex(name)
	}
	return -1
}

// IsSubclassOf reports whether c is other or a descendant of other,
// walking the superclass chain.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass {
		if cur == other {
			return true
		}
	}
	return false
}

// AddMethod installs a method for selector name, interning the selector
// in selectors as needed.
func (c *Class) AddMethod(selectors *SelectorTable, name string, m *Method) {
	sel := selectors.Intern(name)
	m.Selector = sel
	c.VTable.AddMethod(sel, m)
}

// MethodForSelector resolves sel on class, walking the superclass
// chain. Returns nil if no class in the chain defines it.
func MethodForSelector(class *Class, sel Selector) *Method {
	if class == nil {
		return nil
	}
	return class.VTable.Lookup(sel)
}

// ClassTable is the process-wide, append-mostly registry of class names
// to *Class, mutated only by ClassDecl. Duplicate registration is
// last-writer-wins.
type ClassTable struct {
	classes map[string]*Class
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*Class)}
}

// Register inserts class under its own name, overwriting any previous
// occupant, and returns whatever class previously held that name (nil if
// none).
func (ct *ClassTable) Register(class *Class) *Class {
	old := ct.classes[class.Name]
	ct.classes[class.Name] = class
	return old
}

// Lookup returns the class registered under name, or nil.
func (ct *ClassTable) Lookup(name string) *Class {
	return ct.classes[name]
}
