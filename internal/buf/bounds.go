// Package buf contains overflow-safe size arithmetic for element buffers.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when the
// result would overflow int or either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// ByteSize returns elementSize*count for an allocation request.
// Negative operands are clamped to zero, so a negative count reads as a free.
func ByteSize(elementSize, count int) (int, error) {
	n, ok := MulOverflowSafe(max(0, elementSize), max(0, count))
	if !ok {
		return 0, fmt.Errorf("overflow: elementSize=%d * count=%d", elementSize, count)
	}
	return n, nil
}

// CheckRange validates that count elements of elementSize bytes starting at
// element index idx fit inside a buffer of bufLen bytes. It returns the byte
// offsets [start, end) of the range.
//
//	start, end, err := buf.CheckRange(len(mem), idx, count, elementSize)
//	if err != nil {
//	    return fmt.Errorf("array: %w", err)
//	}
//	copy(out, mem[start:end])
func CheckRange(bufLen, idx, count, elementSize int) (int, int, error) {
	if idx < 0 {
		return 0, 0, fmt.Errorf("negative index: %d", idx)
	}
	if count < 0 {
		return 0, 0, fmt.Errorf("negative count: %d", count)
	}
	if elementSize <= 0 {
		return 0, 0, fmt.Errorf("invalid element size: %d", elementSize)
	}

	start, ok := MulOverflowSafe(idx, elementSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: idx=%d * elemSize=%d", idx, elementSize)
	}
	size, ok := MulOverflowSafe(count, elementSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: count=%d * elemSize=%d", count, elementSize)
	}
	end, ok := AddOverflowSafe(start, size)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: offset=%d + size=%d", start, size)
	}
	if end > bufLen {
		return 0, 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return start, end, nil
}

// AlignUp rounds n up to the next multiple of align (a power of two).
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
