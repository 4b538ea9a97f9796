package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// iotaBytes returns n single-byte elements 0..n-1.
func iotaBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestGather_Row(t *testing.T) {
	dims := []uint64{5, 4}
	sel := &Hyperslab{Start: []uint64{3, 0}, Count: []uint64{1, 4}}
	require.True(t, sel.IsContiguous(dims))

	out, err := Gather(iotaBytes(20), dims, 1, sel)
	require.NoError(t, err)
	require.Equal(t, []byte{12, 13, 14, 15}, out)
}

func TestGather_Strided(t *testing.T) {
	dims := []uint64{4, 6}
	sel := &Hyperslab{Start: []uint64{1, 1}, Stride: []uint64{2, 2}, Count: []uint64{2, 3}}
	require.False(t, sel.IsContiguous(dims))

	out, err := Gather(iotaBytes(24), dims, 1, sel)
	require.NoError(t, err)
	require.Equal(t, []byte{7, 9, 11, 19, 21, 23}, out)
}

func TestGather_MultiByteColumn(t *testing.T) {
	dims := []uint64{3, 2}
	src := []byte{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	}
	sel := &Hyperslab{Start: []uint64{0, 1}, Count: []uint64{3, 1}}
	out, err := Gather(src, dims, 2, sel)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3, 6, 7, 10, 11}, out)
}

func TestGather_OutOfBounds(t *testing.T) {
	sel := &Hyperslab{Start: []uint64{4}, Count: []uint64{2}}
	_, err := Gather(iotaBytes(5), []uint64{5}, 1, sel)
	require.ErrorContains(t, err, "exceeds bounds")
}

func TestScatter_InverseOfGather(t *testing.T) {
	dims := []uint64{3, 3, 2}
	sel := &Hyperslab{Start: []uint64{1, 0, 1}, Stride: []uint64{1, 2, 1}, Count: []uint64{2, 2, 1}}

	dst := make([]byte, 18)
	require.NoError(t, Scatter(dst, dims, 1, sel, []byte{10, 20, 30, 40}))

	// Only the four selected cells changed.
	nonZero := 0
	for _, b := range dst {
		if b != 0 {
			nonZero++
		}
	}
	require.Equal(t, 4, nonZero)

	got, err := Gather(dst, dims, 1, sel)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30, 40}, got)
}

func TestScatter_SizeMismatch(t *testing.T) {
	err := Scatter(make([]byte, 4), []uint64{4}, 1, FullSelection([]uint64{4}), []byte{1, 2})
	require.ErrorContains(t, err, "size mismatch")
}

func TestLinearOffset(t *testing.T) {
	require.Equal(t, uint64(0), LinearOffset([]uint64{0, 0, 0}, []uint64{2, 3, 4}))
	require.Equal(t, uint64(23), LinearOffset([]uint64{1, 2, 3}, []uint64{2, 3, 4}))
	require.Equal(t, uint64(7), LinearOffset([]uint64{7}, []uint64{10}))
}

func TestDataspace(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		ds, err := NewDataspace(nil, nil, nil)
		require.NoError(t, err)
		require.True(t, ds.IsScalar())
		require.Equal(t, []uint64{1}, ds.Extents())
		require.Equal(t, uint64(1), ds.TotalElements())
		require.Equal(t, "scalar", ds.String())
	})

	t.Run("unlimited requires chunks", func(t *testing.T) {
		_, err := NewDataspace([]uint64{10}, []uint64{Unlimited}, nil)
		require.ErrorContains(t, err, "chunked")
	})

	t.Run("extent checks", func(t *testing.T) {
		ds, err := NewDataspace([]uint64{10, 4}, []uint64{Unlimited, 8}, []uint64{5, 4})
		require.NoError(t, err)
		require.Equal(t, "[10/inf x 4/8]", ds.String())
		require.NoError(t, ds.CheckExtent([]uint64{1000, 8}))
		require.ErrorContains(t, ds.CheckExtent([]uint64{10, 9}), "exceeds maximum")
		require.ErrorContains(t, ds.CheckExtent([]uint64{10}), "rank")
	})

	t.Run("fixed size cannot change", func(t *testing.T) {
		ds, err := NewDataspace([]uint64{3}, nil, nil)
		require.NoError(t, err)
		require.ErrorContains(t, ds.CheckExtent([]uint64{3}), "chunked")
	})

	t.Run("max smaller than dims", func(t *testing.T) {
		_, err := NewDataspace([]uint64{10}, []uint64{5}, nil)
		require.ErrorContains(t, err, "smaller")
	})
}

func TestPermute_Transpose(t *testing.T) {
	out, err := Permute(iotaBytes(6), []uint64{2, 3}, 1, []int{1, 0})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 3, 1, 4, 2, 5}, out)

	back, err := Permute(out, []uint64{3, 2}, 1, InversePermutation([]int{1, 0}))
	require.NoError(t, err)
	require.Equal(t, iotaBytes(6), back)
}

func TestPermute_ThreeAxes(t *testing.T) {
	shape := []uint64{2, 3, 4}
	perm := []int{2, 0, 1}
	src := iotaBytes(24)

	out, err := Permute(src, shape, 1, perm)
	require.NoError(t, err)
	// out[c][a][b] = src[a][b][c]
	require.Equal(t, byte(0), out[0])
	require.Equal(t, src[1*12+2*4+3], out[3*6+1*3+2])

	back, err := Permute(out, []uint64{4, 2, 3}, 1, InversePermutation(perm))
	require.NoError(t, err)
	require.Equal(t, src, back)
}

func TestPermute_Errors(t *testing.T) {
	_, err := Permute(iotaBytes(6), []uint64{2, 3}, 1, []int{0, 0})
	require.Error(t, err)
	_, err = Permute(iotaBytes(5), []uint64{2, 3}, 1, []int{1, 0})
	require.ErrorContains(t, err, "block size mismatch")
}
