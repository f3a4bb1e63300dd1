package vm

import "testing"

// ---------------------------------------------------------------------------
// Object allocation tests
// ---------------------------------------------------------------------------

func TestNewObjectZeroInitializesSlots(t *testing.T) {
	heap := NewHeap()
	class := NewClassWithIVars("Point", nil, []string{"x", "y"})

	v := heap.NewObject(class)
	if !v.IsHeapPointer() {
		t.Fatal("NewObject should return a heap-pointer Obj")
	}

	obj := objectFromObj(v)
	for i := 0; i < class.NumSlots; i++ {
		if obj.GetSlot(i) != Null {
			t.Errorf("slot %d should be Null, got %v", i, obj.GetSlot(i))
		}
	}
}

func TestObjectSetGetSlot(t *testing.T) {
	heap := NewHeap()
	class := NewClassWithIVars("Point", nil, []string{"x", "y"})
	obj := objectFromObj(heap.NewObject(class))

	obj.SetSlot(0, CreateSmallInteger(3))
	obj.SetSlot(1, CreateSmallInteger(4))

	if GetInteger(obj.GetSlot(0)) != 3 || GetInteger(obj.GetSlot(1)) != 4 {
		t.Error("SetSlot/GetSlot did not round-trip")
	}
}

func TestObjectSlotAddrAliasesStorage(t *testing.T) {
	heap := NewHeap()
	class := NewClassWithIVars("Counter", nil, []string{"n"})
	obj := objectFromObj(heap.NewObject(class))

	addr := obj.SlotAddr(0)
	*addr = CreateSmallInteger(9)
	if GetInteger(obj.GetSlot(0)) != 9 {
		t.Error("SlotAddr should alias the same storage as GetSlot/SetSlot")
	}
}

// ---------------------------------------------------------------------------
// isa tests (spec §4.1)
// ---------------------------------------------------------------------------

func TestIsaOfSmallInteger(t *testing.T) {
	if IsaOf(CreateSmallInteger(1)) != SmallIntClass {
		t.Error("isa of a small integer should be SmallIntClass")
	}
}

func TestIsaOfNull(t *testing.T) {
	if IsaOf(Null) != nil {
		t.Error("isa of Null should be nil")
	}
}

func TestIsaOfHeapObject(t *testing.T) {
	heap := NewHeap()
	class := NewClass("Widget", nil)
	v := heap.NewObject(class)
	if IsaOf(v) != class {
		t.Error("isa of a heap object should be the class it was allocated with")
	}
}

// ---------------------------------------------------------------------------
// String tests
// ---------------------------------------------------------------------------

func TestNewStringCopiesBytes(t *testing.T) {
	heap := NewHeap()
	data := []byte("hello")
	v := heap.NewString(data)

	s := stringFromObj(v)
	if string(s.Bytes()) != "hello" {
		t.Errorf("Bytes() = %q, want %q", s.Bytes(), "hello")
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}

	data[0] = 'H'
	if s.Bytes()[0] == 'H' {
		t.Error("NewString must copy its input, not alias it")
	}
}

func TestIsaOfString(t *testing.T) {
	heap := NewHeap()
	if IsaOf(heap.NewString([]byte("x"))) != StringClass {
		t.Error("isa of a String should be StringClass")
	}
}
