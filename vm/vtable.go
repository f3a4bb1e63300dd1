package vm

// VTable holds the method dispatch table for a class: an array indexed
// by selector ID, with inheritance handled by walking the parent chain
// when a method is not found locally. This gives an O(1) lookup at each
// level of the chain instead of a linear scan of a method list.
type VTable struct {
	class   *Class
	parent  *VTable
	methods []*Method // indexed by Selector; index 0 is unused
}

// NewVTable creates a vtable for class, chained to parent.
func NewVTable(class *Class, parent *VTable) *VTable {
	return &VTable{class: class, parent: parent, methods: make([]*Method, 1, 16)}
}

// Lookup finds the method for sel, walking this vtable and then its
// ancestors. The most-derived definition wins.
func (vt *VTable) Lookup(sel Selector) *Method {
	for v := vt; v != nil; v = v.parent {
		if int(sel) < len(v.methods) {
			if m := v.methods[sel]; m != nil {
				return m
			}
		}
	}
	return nil
}

// LookupLocal finds a method defined directly on this vtable, ignoring
// ancestors.
func (vt *VTable) LookupLocal(sel Selector) *Method {
	if int(sel) < len(vt.methods) {
		return vt.methods[sel]
	}
	return nil
}

// AddMethod installs m at sel, growing the backing array if needed.
func (vt *VTable) AddMethod(sel Selector, m *Method) {
	if int(sel) >= len(vt.methods) {
		grown := make([]*Method, sel+1)
		copy(grown, vt.methods)
		vt.methods = grown
	}
	vt.methods[sel] = m
}
