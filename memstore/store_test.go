package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/h5object"
)

func rawInt32(t *testing.T) []byte {
	t.Helper()
	dt, err := h5object.NewDatatype(h5object.ClassInteger, 4, h5object.OrderLittleEndian, h5object.SignTwosComplement)
	require.NoError(t, err)
	raw, err := dt.RawType()
	require.NoError(t, err)
	return raw
}

func TestStore_FileLifecycle(t *testing.T) {
	s := MustNew(WithFileNumberBase(7))
	fh, err := s.CreateFile("a.h5")
	require.NoError(t, err)

	_, err = s.CreateFile("a.h5")
	require.Error(t, err, "an open file cannot be replaced")

	n, err := s.OpenCount(fh)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)
	info, err := s.ObjectInfo(root)
	require.NoError(t, err)
	require.Equal(t, h5object.ObjectInfo{Kind: h5object.KindGroup, Name: "/", FileNo: 7, Addr: firstAddress}, info)

	n, err = s.OpenCount(fh)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, s.CloseObject(root))
	require.ErrorIs(t, s.CloseObject(root), h5object.ErrInvalidHandle)
	require.NoError(t, s.CloseFile(fh))
	require.ErrorIs(t, s.CloseFile(fh), h5object.ErrInvalidHandle)

	_, err = s.OpenFile("missing.h5", false)
	require.ErrorIs(t, err, h5object.ErrNotFound)

	_, err = New(WithFileNumberBase(0))
	require.Error(t, err)
	require.Panics(t, func() { MustNew(WithFileNumberBase(0)) })
}

func TestStore_TreeAndAddresses(t *testing.T) {
	s := MustNew()
	fh, err := s.CreateFile("tree.h5")
	require.NoError(t, err)
	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)

	g, err := s.CreateGroup(root, "g")
	require.NoError(t, err)
	ds, err := s.CreateDataset(g, "d", rawInt32(t), h5object.Extents{Dims: []uint64{2}})
	require.NoError(t, err)
	require.NoError(t, s.CreateSoftLink(root, "l", "g/d"))

	_, err = s.CreateGroup(root, "g")
	require.ErrorIs(t, err, h5object.ErrDuplicateName)
	_, err = s.CreateGroup(root, "a/b")
	require.ErrorIs(t, err, h5object.ErrInvalidName)
	_, err = s.CreateGroup(ds, "x")
	require.ErrorIs(t, err, h5object.ErrTypeMismatch)

	members, err := s.Members(root)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "g", members[0].Name)
	require.Equal(t, uint64(firstAddress+8), members[0].Addr)
	require.Equal(t, h5object.KindLink, members[1].Kind)
	require.Equal(t, "/g/d", members[1].Target)

	dinfo, err := s.ObjectInfo(ds)
	require.NoError(t, err)

	// Moving keeps the address; old paths stop resolving.
	require.NoError(t, s.Move(fh, "/g/d", "/moved"))
	moved, err := s.OpenObject(fh, "/moved")
	require.NoError(t, err)
	minfo, err := s.ObjectInfo(moved)
	require.NoError(t, err)
	require.Equal(t, dinfo.Addr, minfo.Addr)
	require.Equal(t, "moved", minfo.Name)
	_, err = s.OpenObject(fh, "/g/d")
	require.ErrorIs(t, err, h5object.ErrNotFound)

	require.ErrorIs(t, s.Move(fh, "/g", "/g/inner"), h5object.ErrInvalidName)
	require.ErrorIs(t, s.Move(fh, "/", "/x"), h5object.ErrInvalidName)
	require.ErrorIs(t, s.Move(fh, "/moved", "/g"), h5object.ErrDuplicateName)

	// Deleting invalidates open handles below the object.
	require.NoError(t, s.Delete(fh, "/moved"))
	_, err = s.ObjectInfo(moved)
	require.ErrorIs(t, err, h5object.ErrInvalidHandle)
	require.ErrorIs(t, s.Delete(fh, "/"), h5object.ErrInvalidName)

	for _, h := range []h5object.Handle{root, g, ds, moved} {
		_ = s.CloseObject(h)
	}
	n, err := s.OpenCount(fh)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestStore_ReadOnly(t *testing.T) {
	s := MustNew()
	fh, err := s.CreateFile("ro.h5")
	require.NoError(t, err)
	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)
	ds, err := s.CreateDataset(root, "d", rawInt32(t), h5object.Extents{Dims: []uint64{1}})
	require.NoError(t, err)
	require.NoError(t, s.CloseObject(ds))
	require.NoError(t, s.CloseObject(root))
	require.NoError(t, s.CloseFile(fh))

	fh, err = s.OpenFile("ro.h5", true)
	require.NoError(t, err)
	root, err = s.OpenObject(fh, "/")
	require.NoError(t, err)
	ds, err = s.OpenObject(fh, "/d")
	require.NoError(t, err)

	_, err = s.CreateGroup(root, "g")
	require.ErrorIs(t, err, h5object.ErrReadOnly)
	require.ErrorIs(t, s.Delete(fh, "/d"), h5object.ErrReadOnly)
	require.ErrorIs(t, s.Move(fh, "/d", "/e"), h5object.ErrReadOnly)
	full := h5object.Hyperslab{Start: []uint64{0}, Count: []uint64{1}}
	require.ErrorIs(t, s.WriteElements(ds, full, make([]byte, 4)), h5object.ErrReadOnly)
	_, err = s.HeapPut(ds, []byte("x"))
	require.ErrorIs(t, err, h5object.ErrReadOnly)
	_, err = s.ReadElements(ds, full)
	require.NoError(t, err)
}

func TestStore_ElementsAndExtent(t *testing.T) {
	s := MustNew()
	fh, err := s.CreateFile("data.h5")
	require.NoError(t, err)
	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)
	ds, err := s.CreateDataset(root, "m", rawInt32(t), h5object.Extents{
		Dims:      []uint64{2, 2},
		MaxDims:   []uint64{h5object.Unlimited, 4},
		ChunkDims: []uint64{1, 2},
	})
	require.NoError(t, err)

	all := h5object.Hyperslab{Start: []uint64{0, 0}, Count: []uint64{2, 2}}
	data := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0}
	require.NoError(t, s.WriteElements(ds, all, data))
	require.ErrorIs(t, s.WriteElements(ds, all, data[:4]), h5object.ErrSizeMismatch)

	col := h5object.Hyperslab{Start: []uint64{0, 1}, Count: []uint64{2, 1}}
	got, err := s.ReadElements(ds, col)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 0, 0, 4, 0, 0, 0}, got)

	_, err = s.ReadElements(ds, h5object.Hyperslab{Start: []uint64{2, 0}, Count: []uint64{1, 1}})
	require.ErrorIs(t, err, h5object.ErrInvalidSelection)

	require.NoError(t, s.SetExtent(ds, []uint64{3, 3}))
	ext, err := s.Dataspace(ds)
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 3}, ext.Dims)
	require.Equal(t, []uint64{h5object.Unlimited, 4}, ext.MaxDims)

	got, err = s.ReadElements(ds, h5object.Hyperslab{Start: []uint64{0, 0}, Count: []uint64{3, 3}})
	require.NoError(t, err)
	want := []byte{
		1, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0,
		3, 0, 0, 0, 4, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	require.Equal(t, want, got)

	require.ErrorIs(t, s.SetExtent(ds, []uint64{3, 5}), h5object.ErrInvalidSelection)

	_, err = s.DescribeType(root)
	require.ErrorIs(t, err, h5object.ErrTypeMismatch)
	raw, err := s.DescribeType(ds)
	require.NoError(t, err)
	require.Equal(t, rawInt32(t), raw)
}

func TestStore_Attributes(t *testing.T) {
	s := MustNew()
	fh, err := s.CreateFile("attrs.h5")
	require.NoError(t, err)
	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)

	rec := h5object.AttributeRecord{Name: "a", RawType: rawInt32(t), Dims: []uint64{1}, Data: []byte{1, 0, 0, 0}}
	require.NoError(t, s.WriteAttribute(root, rec))
	rec.Data[0] = 9 // the store keeps its own copy
	recs, err := s.Attributes(root)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, byte(1), recs[0].Data[0])

	bad := h5object.AttributeRecord{Name: "b", RawType: rawInt32(t), Dims: []uint64{2}, Data: []byte{1}}
	require.ErrorIs(t, s.WriteAttribute(root, bad), h5object.ErrSizeMismatch)

	require.NoError(t, s.WriteAttribute(root, h5object.AttributeRecord{
		Name: "b", RawType: rawInt32(t), Data: []byte{2, 0, 0, 0},
	}))
	require.ErrorIs(t, s.RenameAttribute(root, "a", "b"), h5object.ErrDuplicateName)
	require.ErrorIs(t, s.RenameAttribute(root, "zz", "c"), h5object.ErrNotFound)
	require.NoError(t, s.RenameAttribute(root, "a", "c"))
	require.NoError(t, s.DeleteAttribute(root, "b"))
	require.ErrorIs(t, s.DeleteAttribute(root, "b"), h5object.ErrNotFound)

	recs, err = s.Attributes(root)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "c", recs[0].Name)
}

func TestStore_Heap(t *testing.T) {
	s := MustNew()
	fh, err := s.CreateFile("heap.h5")
	require.NoError(t, err)
	root, err := s.OpenObject(fh, "/")
	require.NoError(t, err)

	id, err := s.HeapPut(root, []byte("hello"))
	require.NoError(t, err)
	got, err := s.HeapGet(root, id)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	_, err = s.HeapGet(root, id+1)
	require.ErrorIs(t, err, h5object.ErrNotFound)
	_, err = s.HeapPut(fh, []byte("x"))
	require.ErrorIs(t, err, h5object.ErrInvalidHandle)
}
