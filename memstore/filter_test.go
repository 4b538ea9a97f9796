package memstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/h5object"
)

func TestFilters_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{1, 0, 0, 0, 2, 0, 0, 0}, 64)
	for _, id := range []FilterID{FilterDeflate, FilterShuffle, FilterFletcher32, FilterSnappy} {
		t.Run(id.String(), func(t *testing.T) {
			f, err := newFilter(id, 4, 6)
			require.NoError(t, err)
			require.Equal(t, id, f.ID())
			out, err := f.Apply(data)
			require.NoError(t, err)
			back, err := f.Remove(out)
			require.NoError(t, err)
			require.Equal(t, data, back)
		})
	}

	_, err := newFilter(FilterID(99), 4, 6)
	require.Error(t, err)
	require.Equal(t, "filter(99)", FilterID(99).String())
}

func TestShuffle(t *testing.T) {
	f := shuffleFilter{elemSize: 2}
	out, err := f.Apply([]byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 3, 5, 2, 4, 6}, out)

	_, err = f.Apply([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestFletcher32_Mismatch(t *testing.T) {
	out, err := fletcher32Filter{}.Apply([]byte("chunk"))
	require.NoError(t, err)
	require.Len(t, out, 9)

	out[0] ^= 0xFF
	_, err = fletcher32Filter{}.Remove(out)
	require.ErrorContains(t, err, "checksum mismatch")
	_, err = fletcher32Filter{}.Remove([]byte{1})
	require.Error(t, err)
}

func TestPipeline_Order(t *testing.T) {
	p, err := newPipeline([]FilterID{FilterShuffle, FilterDeflate, FilterFletcher32}, 4, 6)
	require.NoError(t, err)
	data := bytes.Repeat([]byte{0, 0, 0x80, 0x3F}, 256)

	stored, err := p.apply(data)
	require.NoError(t, err)
	require.Less(t, len(stored), len(data))

	back, err := p.remove(stored)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestChunkGrid(t *testing.T) {
	g := newChunkGrid([]uint64{5, 3}, []uint64{2, 2})
	require.Equal(t, 6, g.len())

	last := g.selection(5)
	require.Equal(t, []uint64{4, 2}, last.Start)
	require.Equal(t, []uint64{1, 1}, last.Count, "edge chunks are clipped")

	require.Equal(t, 0, newChunkGrid([]uint64{0, 3}, []uint64{2, 2}).len())
}

func TestStore_ChunkedFilteredDataset(t *testing.T) {
	s := MustNew(WithChunkFilters(FilterShuffle, FilterDeflate, FilterFletcher32), WithDeflateLevel(9))
	f, err := h5object.Create(s, "chunked.h5")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	i32, err := h5object.NewDatatype(h5object.ClassInteger, 4, h5object.OrderLittleEndian, h5object.SignTwosComplement)
	require.NoError(t, err)
	ds, err := f.CreateDataset("m", nil, i32, []uint64{5, 3},
		h5object.WithChunkDims(2, 2), h5object.WithMaxDims(h5object.Unlimited, 3))
	require.NoError(t, err)

	values := make([]int32, 15)
	for i := range values {
		values[i] = int32(i)
	}
	require.NoError(t, ds.Write(values))

	got, err := ds.Read()
	require.NoError(t, err)
	require.Equal(t, values, got)

	require.NoError(t, ds.Extend(6, 3))
	got, err = ds.Read()
	require.NoError(t, err)
	require.Equal(t, append(values, 0, 0, 0), got)

	// Every stored chunk went through the pipeline.
	entry, err := s.files["chunked.h5"].resolve("/m", 0)
	require.NoError(t, err)
	require.Len(t, entry.chunked.chunks, 6)
	require.Nil(t, entry.data)

	entry.chunked.chunks[0][0] ^= 0xFF
	_, err = ds.Read()
	require.Error(t, err)
}

func TestStore_FilterOptions(t *testing.T) {
	_, err := New(WithChunkFilters(FilterID(7)))
	require.Error(t, err)
	_, err = New(WithDeflateLevel(0))
	require.Error(t, err)
	_, err = New(WithDeflateLevel(10))
	require.Error(t, err)
}
