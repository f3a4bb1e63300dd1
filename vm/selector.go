package vm

// Selector is an interned integer handle for a method name. Selectors
// are never zero; zero is reserved to mean "no selector" so a
// zero-valued Selector is recognizably invalid without a separate bool.
type Selector int

// SelectorTable interns method names to Selectors. Interning is
// monotonic and append-only: a name never gets two selectors, and two
// equal strings intern to equal selectors.
type SelectorTable struct {
	byName map[string]Selector
	byID   []string // byID[0] is unused; selector IDs start at 1.
}

// NewSelectorTable creates an empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{
		byName: make(map[string]Selector),
		byID:   []string{""},
	}
}

// Intern returns the Selector for name, creating one if this is the
// first time name has been seen. The result is never zero.
func (st *SelectorTable) Intern(name string) Selector {
	if sel, ok := st.byName[name]; ok {
		return sel
	}
	sel := Selector(len(st.byID))
	st.byID = append(st.byID, name)
	st.byName[name] = sel
	return sel
}

// Lookup returns the Selector for name without interning it, or 0 if
// name has never been interned.
func (st *SelectorTable) Lookup(name string) Selector {
	return st.byName[name]
}

// Name returns the method name a Selector was interned from, or "" for
// an invalid selector.
func (st *SelectorTable) Name(sel Selector) string {
	if sel <= 0 || int(sel) >= len(st.byID) {
		return ""
	}
	return st.byID[sel]
}

// Len returns the number of distinct selectors interned so far.
func (st *SelectorTable) Len() int {
	return len(st.byID) - 1
}
