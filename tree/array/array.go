package array

import (
	"fmt"

	"github.com/joshuapare/ownkit/tree"
)

// Kind is the node kind of arrays.
const Kind = "NodeArray"

// DefaultStartCapacity is the capacity NewString uses for short strings.
const DefaultStartCapacity = 8

// Array is a node owning one element buffer.
type Array struct {
	*tree.Node
	memory      []byte // (capacity+1)*elementSize bytes, owned by Node
	elementSize int
	num         int
	capacity    int
	front       int
	policy      Policy
}

// New creates an array child of parent holding num elements copied from
// data (zeroed when data is nil). The capacity is at least num; the front
// reserve starts where the policy keeps its slack.
func New(parent *tree.Node, data []byte, elementSize, num, startCapacity int, policy Policy) *Array {
	if elementSize <= 0 {
		tree.Panicf("array.New", "element size %d must be positive", elementSize)
	}
	if policy < GrowExact || policy > GrowDoubledCenter {
		tree.Panicf("array.New", "unknown growth policy %d", policy)
	}
	num = max(num, 0)
	if data != nil && len(data) < num*elementSize {
		tree.Panicf("array.New", "data holds %d bytes, need %d", len(data), num*elementSize)
	}

	n := tree.New(parent)
	n.SetKind(Kind)

	capacity := max(startCapacity, num)
	a := &Array{
		Node:        n,
		elementSize: elementSize,
		num:         num,
		capacity:    capacity,
		front:       policy.initialFront(capacity, num),
		policy:      policy,
	}
	n.Bind(a)
	a.memory = n.Alloc(elementSize, capacity+1)
	if data != nil {
		copy(a.Data(), data[:num*elementSize])
	}
	return a
}

// NewDyn creates an array with the doubled growth policy.
func NewDyn(parent *tree.Node, data []byte, elementSize, num, startCapacity int) *Array {
	return New(parent, data, elementSize, num, startCapacity, GrowDoubled)
}

// NewString creates a byte array holding s.
func NewString(parent *tree.Node, s string) *Array {
	return New(parent, []byte(s), 1, len(s), max(len(s), DefaultStartCapacity), GrowDoubled)
}

// From returns the array bound to n. n must be an array node.
func From(n *tree.Node) *Array {
	return tree.Cast[*Array](n, Kind)
}

// Len returns the number of elements.
func (a *Array) Len() int {
	a.Check("array.Len", Kind)
	return a.num
}

// Cap returns the capacity in elements, excluding the terminator.
func (a *Array) Cap() int { return a.capacity }

// Front returns the free slots before the data.
func (a *Array) Front() int { return a.front }

// Back returns the free slots after the data.
func (a *Array) Back() int { return a.capacity - a.front - a.num }

// ElementSize returns the size of one element in bytes.
func (a *Array) ElementSize() int { return a.elementSize }

// ByteSize returns the data size in bytes.
func (a *Array) ByteSize() int { return a.num * a.elementSize }

// Policy returns the growth policy.
func (a *Array) Policy() Policy { return a.policy }

// SetPolicy changes the growth policy for future growth.
func (a *Array) SetPolicy(p Policy) {
	a.Check("array.SetPolicy", Kind)
	if p < GrowExact || p > GrowDoubledCenter {
		tree.Panicf("array.SetPolicy", "unknown growth policy %d", p)
	}
	a.policy = p
}

// Describe summarizes the layout for tree dumps.
func (a *Array) Describe() string {
	return fmt.Sprintf("array: %d x %d bytes, capacity %d, front %d, %s",
		a.num, a.elementSize, a.capacity, a.front, a.policy)
}

// Data returns the elements as one byte slice.
func (a *Array) Data() []byte {
	a.Check("array.Data", Kind)
	start := a.front * a.elementSize
	end := start + a.num*a.elementSize
	return a.memory[start:end:end]
}

// Terminated returns the elements followed by the zero terminator element.
func (a *Array) Terminated() []byte {
	a.Check("array.Terminated", Kind)
	start := a.front * a.elementSize
	end := start + (a.num+1)*a.elementSize
	return a.memory[start:end:end]
}

// String returns the data as a string.
func (a *Array) String() string {
	return string(a.Data())
}

// At returns element i.
func (a *Array) At(i int) []byte {
	a.Check("array.At", Kind)
	if i < 0 || i >= a.num {
		tree.Panicf("array.At", "index %d out of range [0, %d)", i, a.num)
	}
	start := (a.front + i) * a.elementSize
	end := start + a.elementSize
	return a.memory[start:end:end]
}

// Set overwrites element i with elem.
func (a *Array) Set(i int, elem []byte) {
	copy(a.At(i), elem[:a.elementSize])
}

// terminate zeroes the element after the data.
func (a *Array) terminate() {
	start := (a.front + a.num) * a.elementSize
	clear(a.memory[start : start+a.elementSize])
}

// shift moves the data to front, keeping at most capacity-front elements.
// The buffer must already hold capacity+1 elements.
func (a *Array) shift(front, capacity int) {
	es := a.elementSize
	front = min(max(front, 0), capacity)
	num := min(a.num, capacity-front)
	if front != a.front {
		copy(a.memory[front*es:(front+num)*es], a.memory[a.front*es:(a.front+num)*es])
	}
	a.front = front
	a.num = num
	a.terminate()
}

// Relocate sets the capacity and front reserve explicitly. Elements that do
// not fit are dropped from the back.
func (a *Array) Relocate(capacity, front int) {
	a.Check("array.Relocate", Kind)
	a.relocate(capacity, front)
}

func (a *Array) relocate(capacity, front int) {
	capacity = max(capacity, 0)
	if capacity < a.capacity {
		a.shift(front, capacity)
	}
	if capacity != a.capacity {
		a.memory = a.Node.Realloc(a.memory, a.elementSize, capacity+1)
		a.capacity = capacity
	}
	a.shift(front, a.capacity)
}

// grow makes room for needFront slots before and needBack after the data.
func (a *Array) grow(op string, needFront, needBack int) {
	capacity, front, ok := a.policy.layout(a.capacity, a.num, needFront, needBack)
	if !ok {
		tree.Panicf(op, "%s policy cannot grow capacity %d to %d elements",
			a.policy, a.capacity, a.num+needFront+needBack)
	}
	a.relocate(capacity, front)
}

// Resize sets the length by adding zeroed elements at or dropping elements
// from the back. Shrinking never reallocates.
func (a *Array) Resize(num int) {
	a.Check("array.Resize", Kind)
	num = max(num, 0)
	if num == a.num {
		return
	}
	if num < a.num {
		a.num = num
		a.terminate()
		return
	}

	add := num - a.num
	if add > a.Back() {
		a.grow("array.Resize", 0, add)
	}
	start := (a.front + a.num) * a.elementSize
	clear(a.memory[start : start+add*a.elementSize])
	a.num = num
	a.terminate()
}

// ResizeFront sets the length by adding zeroed elements at or dropping
// elements from the front. Shrinking never reallocates.
func (a *Array) ResizeFront(num int) {
	a.Check("array.ResizeFront", Kind)
	num = max(num, 0)
	if num == a.num {
		return
	}
	if num < a.num {
		a.front += a.num - num
		a.num = num
		a.terminate()
		return
	}

	add := num - a.num
	if add > a.front {
		a.grow("array.ResizeFront", add, 0)
	}
	a.front -= add
	a.num = num
	clear(a.memory[a.front*a.elementSize : (a.front+add)*a.elementSize])
	a.terminate()
}

// Append adds count elements at the back, copied from data or zeroed when
// data is nil, and returns them.
func (a *Array) Append(data []byte, count int) []byte {
	if count <= 0 {
		return nil
	}
	old := a.num
	a.Resize(a.num + count)
	out := a.Data()[old*a.elementSize:]
	if data != nil {
		copy(out, data[:count*a.elementSize])
	}
	return out
}

// AppendFront adds count elements at the front, copied from data or zeroed
// when data is nil, and returns them.
func (a *Array) AppendFront(data []byte, count int) []byte {
	if count <= 0 {
		return nil
	}
	a.ResizeFront(a.num + count)
	out := a.Data()[:count*a.elementSize]
	if data != nil {
		copy(out, data[:count*a.elementSize])
	}
	return out
}

// Take removes the last count elements, copying them into out when non-nil.
func (a *Array) Take(out []byte, count int) {
	if count <= 0 {
		return
	}
	a.Check("array.Take", Kind)
	if count > a.num {
		tree.Panicf("array.Take", "taking %d of %d elements", count, a.num)
	}
	if out != nil {
		copy(out, a.Data()[(a.num-count)*a.elementSize:])
	}
	a.Resize(a.num - count)
}

// TakeFront removes the first count elements, copying them into out when non-nil.
func (a *Array) TakeFront(out []byte, count int) {
	if count <= 0 {
		return
	}
	a.Check("array.TakeFront", Kind)
	if count > a.num {
		tree.Panicf("array.TakeFront", "taking %d of %d elements", count, a.num)
	}
	if out != nil {
		copy(out, a.Data()[:count*a.elementSize])
	}
	a.ResizeFront(a.num - count)
}

// InsertAt inserts count elements before index idx and returns them.
// The shorter side of the array is shifted to open the gap.
func (a *Array) InsertAt(idx int, data []byte, count int) []byte {
	if count <= 0 {
		return nil
	}
	a.Check("array.InsertAt", Kind)
	switch {
	case idx == 0:
		return a.AppendFront(data, count)
	case idx == a.num:
		return a.Append(data, count)
	case idx < 0 || idx > a.num:
		tree.Panicf("array.InsertAt", "index %d out of range [0, %d]", idx, a.num)
	}

	es := a.elementSize
	old := a.num
	if idx < old-idx {
		a.ResizeFront(old + count)
		d := a.Data()
		copy(d[:idx*es], d[count*es:(count+idx)*es])
	} else {
		a.Resize(old + count)
		d := a.Data()
		copy(d[(idx+count)*es:], d[idx*es:old*es])
	}

	out := a.Data()[idx*es : (idx+count)*es]
	if data != nil {
		copy(out, data[:count*es])
	} else {
		clear(out)
	}
	return out
}

// RemoveAt removes count elements starting at idx, copying them into out
// when non-nil. The shorter side of the array is shifted to close the gap.
func (a *Array) RemoveAt(idx int, out []byte, count int) {
	if count <= 0 {
		return
	}
	a.Check("array.RemoveAt", Kind)
	if idx < 0 || idx+count > a.num {
		tree.Panicf("array.RemoveAt", "range [%d, %d) out of [0, %d)", idx, idx+count, a.num)
	}
	switch {
	case idx == 0:
		a.TakeFront(out, count)
		return
	case idx+count == a.num:
		a.Take(out, count)
		return
	}

	es := a.elementSize
	d := a.Data()
	if out != nil {
		copy(out, d[idx*es:(idx+count)*es])
	}
	if idx < a.num-idx-count {
		copy(d[count*es:(count+idx)*es], d[:idx*es])
		a.ResizeFront(a.num - count)
	} else {
		copy(d[idx*es:], d[(idx+count)*es:])
		a.Resize(a.num - count)
	}
}

// Push appends one element.
func (a *Array) Push(elem []byte) []byte {
	return a.Append(elem, 1)
}

// Pop removes the last element, copying it into out when non-nil.
func (a *Array) Pop(out []byte) {
	a.Take(out, 1)
}

// AppendString appends s to a byte array.
func (a *Array) AppendString(s string) {
	if a.elementSize != 1 {
		tree.Panicf("array.AppendString", "element size is %d, not 1", a.elementSize)
	}
	a.Append([]byte(s), len(s))
}

// AppendStringf appends formatted text to a byte array and returns its length.
func (a *Array) AppendStringf(format string, args ...any) int {
	s := fmt.Sprintf(format, args...)
	a.AppendString(s)
	return len(s)
}

// ElementSizeReset reinterprets the buffer with a new element size. The data
// size must be a multiple of size. Slack is kept where it still holds whole
// elements; a front reserve that does not is dropped by moving the data to the
// start. The buffer only grows when the terminator no longer fits.
func (a *Array) ElementSizeReset(size int) {
	a.Check("array.ElementSizeReset", Kind)
	byteSize := a.ByteSize()
	if size <= 0 || byteSize%size != 0 {
		tree.Panicf("array.ElementSizeReset", "data size %d is not a multiple of %d", byteSize, size)
	}
	if size == a.elementSize {
		return
	}

	frontBytes := a.front * a.elementSize
	if frontBytes%size != 0 {
		a.shift(0, a.capacity)
		frontBytes = 0
	}
	front := frontBytes / size
	num := byteSize / size
	capacity := len(a.memory)/size - 1
	if capacity < front+num {
		capacity = front + num
		a.memory = a.Node.Realloc(a.memory, size, capacity+1)
	} else {
		a.memory = a.memory[:(capacity+1)*size]
	}

	a.elementSize = size
	a.num = num
	a.front = front
	a.capacity = capacity
	a.terminate()
}
