package memstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/h5object"
)

func TestHeap_PutGet(t *testing.T) {
	h := newHeap()
	first := h.put([]byte("alpha"))
	second := h.put([]byte("beta"))

	// Collection 1, objects 1 and 2.
	require.Equal(t, uint64(1<<heapIndexBits|1), first)
	require.Equal(t, uint64(1<<heapIndexBits|2), second)

	got, err := h.get(second)
	require.NoError(t, err)
	require.Equal(t, []byte("beta"), got)

	// Returned data is a copy.
	got[0] = 'X'
	again, err := h.get(second)
	require.NoError(t, err)
	require.Equal(t, []byte("beta"), again)
}

func TestHeap_NewCollection(t *testing.T) {
	h := newHeap()
	big := bytes.Repeat([]byte{7}, 3000)
	a := h.put(big)
	b := h.put(big)
	require.Len(t, h.collections, 2)
	require.Equal(t, uint64(1), a>>heapIndexBits)
	require.Equal(t, uint64(2), b>>heapIndexBits)

	// Objects larger than the minimum get a collection of their own size.
	huge := bytes.Repeat([]byte{1}, 10000)
	id := h.put(huge)
	got, err := h.get(id)
	require.NoError(t, err)
	require.Len(t, got, 10000)
	require.GreaterOrEqual(t, h.current().size, uint64(10000))
}

func TestHeap_Errors(t *testing.T) {
	h := newHeap()
	_, err := h.get(1 << heapIndexBits)
	require.ErrorIs(t, err, h5object.ErrNotFound)

	id := h.put([]byte("x"))
	_, err = h.get(id &^ (1<<heapIndexBits - 1))
	require.ErrorIs(t, err, h5object.ErrNotFound, "index 0 is reserved")
	_, err = h.get(id + 1)
	require.ErrorIs(t, err, h5object.ErrNotFound)
}

func TestAlignTo8(t *testing.T) {
	require.Equal(t, uint64(0), alignTo8(0))
	require.Equal(t, uint64(8), alignTo8(1))
	require.Equal(t, uint64(8), alignTo8(8))
	require.Equal(t, uint64(16), alignTo8(9))
}
