package alloc

// Heap allocates on the Go heap.
// The zero value is ready to use and every Heap is identical to every other.
type Heap struct{}

// NewHeap returns the heap allocator.
func NewHeap() Allocator {
	return Heap{}
}

// Name implements Allocator.
func (Heap) Name() string { return "heap" }

// Realloc implements Allocator.
func (Heap) Realloc(mem []byte, elementSize, count int) []byte {
	n, ok := requestSize("heap", elementSize, count)
	if !ok {
		return nil
	}
	if n == 0 {
		return nil
	}
	if mem != nil && n <= cap(mem) {
		return mem[:n]
	}
	out := make([]byte, n)
	copy(out, mem)
	return out
}
