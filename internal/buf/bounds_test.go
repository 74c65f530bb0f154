package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "expected overflow when adding to MaxInt")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "expected underflow when subtracting from MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	p, ok := MulOverflowSafe(16, 4)
	require.True(t, ok)
	require.Equal(t, 64, p)

	p, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	require.Zero(t, p)

	_, ok = MulOverflowSafe(math.MaxInt/2+1, 2)
	require.False(t, ok)

	_, ok = MulOverflowSafe(-1, 2)
	require.False(t, ok)
}

func TestByteSize(t *testing.T) {
	n, err := ByteSize(8, 3)
	require.NoError(t, err)
	require.Equal(t, 24, n)

	n, err = ByteSize(8, -3)
	require.NoError(t, err)
	require.Zero(t, n, "negative count reads as a free")

	_, err = ByteSize(math.MaxInt, 2)
	require.Error(t, err)
}

func TestCheckRange(t *testing.T) {
	start, end, err := CheckRange(64, 2, 3, 8)
	require.NoError(t, err)
	require.Equal(t, 16, start)
	require.Equal(t, 40, end)

	_, _, err = CheckRange(64, 7, 2, 8)
	require.ErrorContains(t, err, "bounds")

	_, _, err = CheckRange(64, -1, 1, 8)
	require.ErrorContains(t, err, "negative index")

	_, _, err = CheckRange(64, 0, 1, 0)
	require.ErrorContains(t, err, "element size")
}

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, AlignUp(0, 8))
	require.Equal(t, 8, AlignUp(1, 8))
	require.Equal(t, 8, AlignUp(8, 8))
	require.Equal(t, 32, AlignUp(17, 16))
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	require.False(t, ok, "Slice should fail when extending beyond len")

	_, ok = Slice(data, -1, 1)
	require.False(t, ok, "Slice should reject negative offset")

	_, ok = Slice(data, 1, -1)
	require.False(t, ok, "Slice should reject negative length")
}
