package vm

import (
	"runtime"
	"sync/atomic"
)

// Heap is the contract this core needs from a conservative tracing
// collector: allocate, register permanent roots for interpreter value
// cells, free a root, and run a full collection. It is not itself a
// tracing GC — it stands in for one, deferring to Go's own collector for
// the actual reachability analysis.
//
// Go's real garbage collector cannot trace through a Obj once it has been
// reduced to a tagged uintptr: the low bits that make the encoding useful
// are exactly the bits that make it unrecognizable as a pointer to Go's
// scanner. heapObjects exists to bridge that gap: every heap allocation
// this package performs is registered here, so a strong, ordinary Go
// reference keeps it alive for as long as the Heap considers it live.
type Heap struct {
	heapObjects map[Obj]any // tagged address -> the allocated Go value
	cells       map[*Cell]struct{}

	allocCount  uint64
	liveObjects atomic.Int64
}

// NewHeap creates and initializes a Heap. Callers must call NewHeap
// before constructing any Object, String, or Closure.
func NewHeap() *Heap {
	return &Heap{
		heapObjects: make(map[Obj]any),
		cells:       make(map[*Cell]struct{}),
	}
}

// register records a heap allocation as live, keyed by its tagged
// address, and returns the address unchanged. Every constructor in this
// package that creates a heap object (NewObject, NewString, newClosure)
// must route its result through here.
func (h *Heap) register(tag Obj, obj any) Obj {
	h.heapObjects[tag] = obj
	h.allocCount++
	h.liveObjects.Add(1)
	return tag
}

// HeapStats is a snapshot of allocation counters for REPL telemetry.
type HeapStats struct {
	TotalAllocations uint64
	LiveObjects      int64
	GoHeapBytes       uint64 // runtime.MemStats.HeapAlloc, informational only
}

// HeapStats reports allocation counters plus a snapshot of the Go
// runtime's own heap size, for the CLI's `-m` flag.
func (h *Heap) HeapStats() HeapStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return HeapStats{
		TotalAllocations: h.allocCount,
		LiveObjects:      h.liveObjects.Load(),
		GoHeapBytes:      ms.HeapAlloc,
	}
}

// Collect performs a full collection. This core never reclaims a heap
// object whose tagged address is reachable from any retained Cell, any
// class, or any live AST node — which in this implementation of the
// contract is every object ever allocated, since reachability analysis
// belongs to the collector this type stands in for. It still calls
// runtime.GC so the process's real Go heap is compacted.
func (h *Heap) Collect() {
	runtime.GC()
}

// Cell is an interpreter value cell: a wrapper around an Obj used for
// globals. The invariant it maintains: whenever the held value needsGC,
// the cell is registered as a GC root so the collector sees it; when the
// value stops needing GC, the root is released.
type Cell struct {
	heap  *Heap
	value Obj
}

// NewCell creates a value cell initialized to Null. Null never needsGC,
// so no root is created yet.
func (h *Heap) NewCell() *Cell {
	return &Cell{heap: h}
}

// Get returns the cell's current value.
func (c *Cell) Get() Obj {
	return c.value
}

// Set stores a new value in the cell, performing the root transition:
// none -> root on a transition into needsGC, root -> none on a
// transition out, root -> root (update in place) otherwise.
func (c *Cell) Set(v Obj) {
	wasRoot := needsGC(c.value)
	willBeRoot := needsGC(v)
	c.value = v

	switch {
	case !wasRoot && willBeRoot:
		c.heap.cells[c] = struct{}{}
	case wasRoot && !willBeRoot:
		delete(c.heap.cells, c)
	// wasRoot && willBeRoot: same cell, already registered, value updated above.
	default:
	}
}

// IsRoot reports whether the cell is currently registered as a GC root.
// Exposed for tests of property #2 (GC visibility).
func (c *Cell) IsRoot() bool {
	_, ok := c.heap.cells[c]
	return ok
}
