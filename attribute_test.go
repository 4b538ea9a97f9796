package h5object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/h5object"
	"github.com/scigolib/h5object/memstore"
)

func stringType(t *testing.T, n int) *h5object.Datatype {
	t.Helper()
	dt, err := h5object.NewStringType(n, h5object.PadNullTerm, h5object.CharsetASCII)
	require.NoError(t, err)
	return dt
}

func TestAttribute_WriteThrough(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "attrs.h5")
	ds, err := f.CreateDataset("temps", nil, float64Type(t), []uint64{2})
	require.NoError(t, err)
	require.False(t, ds.HasAttribute())

	units, err := h5object.NewAttribute("units", stringType(t, 8), []uint64{1}, []string{"kelvin"})
	require.NoError(t, err)
	require.False(t, units.IsPersisted())
	require.Nil(t, units.Owner())

	require.NoError(t, ds.WriteMetadata(units))
	require.True(t, units.IsPersisted())
	require.True(t, ds.HasAttribute())
	require.True(t, units.Owner().EqualsOID(ds.OID()))

	scale, err := h5object.NewAttribute("scale", int32Type(t), nil, []int32{100})
	require.NoError(t, err)
	require.NoError(t, ds.WriteMetadata(scale))

	f = reopen(t, f)
	ds, err = f.GetDataset("/temps")
	require.NoError(t, err)
	attrs, err := ds.Metadata()
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	require.Equal(t, "units", attrs[0].Name())
	require.Equal(t, "scale", attrs[1].Name())
	require.True(t, attrs[0].IsPersisted())

	v, err := attrs[0].Value()
	require.NoError(t, err)
	require.Equal(t, []string{"kelvin"}, v)
	v, err = attrs[1].Value()
	require.NoError(t, err)
	require.Equal(t, []int32{100}, v)
	require.Empty(t, attrs[1].Dims())
	require.Equal(t, "String, length = 8, padding = H5T_STR_NULLTERM, cset = H5T_CSET_ASCII",
		attrs[0].Datatype().Description())
}

func TestAttribute_Replace(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "replace.h5")
	g, err := f.CreateGroup("run", nil)
	require.NoError(t, err)

	a, err := h5object.NewAttribute("count", int32Type(t), []uint64{2}, []int32{1, 2})
	require.NoError(t, err)
	require.NoError(t, g.WriteMetadata(a))

	a.SetValue([]int32{3, 4})
	require.NoError(t, g.WriteMetadata(a))

	f = reopen(t, f)
	g, err = f.GetGroup("/run")
	require.NoError(t, err)
	got, err := g.Attribute("count")
	require.NoError(t, err)
	v, err := got.Value()
	require.NoError(t, err)
	require.Equal(t, []int32{3, 4}, v)

	attrs, err := g.Metadata()
	require.NoError(t, err)
	require.Len(t, attrs, 1)

	_, err = g.Attribute("missing")
	require.ErrorIs(t, err, h5object.ErrNotFound)
}

func TestAttribute_RenameAndRemove(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "rename.h5")
	root := f.Root()
	for _, name := range []string{"a", "b"} {
		attr, err := h5object.NewAttribute(name, int32Type(t), []uint64{1}, []int32{1})
		require.NoError(t, err)
		require.NoError(t, root.WriteMetadata(attr))
	}
	a, err := root.Attribute("a")
	require.NoError(t, err)

	require.ErrorIs(t, root.RenameMetadata(a, "b"), h5object.ErrDuplicateName)
	require.ErrorIs(t, root.RenameMetadata(a, ""), h5object.ErrInvalidName)
	require.NoError(t, root.RenameMetadata(a, "c"))
	require.Equal(t, "c", a.Name())

	b, err := root.Attribute("b")
	require.NoError(t, err)
	require.NoError(t, root.RemoveMetadata(b))
	require.False(t, b.IsPersisted())

	f = reopen(t, f)
	attrs, err := f.Root().Metadata()
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	require.Equal(t, "c", attrs[0].Name())

	require.NoError(t, f.Root().RemoveMetadata(attrs[0]))
	require.False(t, f.Root().HasAttribute())
}

func TestAttribute_SetParentObject(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "owners.h5")
	ds, err := f.CreateDataset("src", nil, int32Type(t), []uint64{1})
	require.NoError(t, err)
	g, err := f.CreateGroup("dst", nil)
	require.NoError(t, err)

	attr, err := h5object.NewAttribute("origin", stringType(t, 16), []uint64{1}, []string{"sensor-7"})
	require.NoError(t, err)
	require.NoError(t, ds.WriteMetadata(attr))

	attr.SetParentObject(ds)
	require.True(t, attr.IsPersisted())

	attr.SetParentObject(g)
	require.False(t, attr.IsPersisted())
	require.Same(t, g, attr.Owner())
	require.NoError(t, g.WriteMetadata(attr))
	require.True(t, attr.IsPersisted())

	f = reopen(t, f)
	for _, path := range []string{"/src", "/dst"} {
		n, err := f.Get(path)
		require.NoError(t, err)
		a, err := n.Attribute("origin")
		require.NoError(t, err, path)
		v, err := a.Value()
		require.NoError(t, err)
		require.Equal(t, []string{"sensor-7"}, v, path)
	}
}

func TestAttribute_MoveAcrossFiles(t *testing.T) {
	store := memstore.MustNew()
	src := createFile(t, store, "a.h5")
	dt, err := h5object.NewStringType(h5object.NativeSize, h5object.PadNullTerm, h5object.CharsetUTF8)
	require.NoError(t, err)
	ds, err := src.CreateDataset("src", nil, int32Type(t), []uint64{1})
	require.NoError(t, err)
	note, err := h5object.NewAttribute("note", dt, []uint64{2}, []string{"first", "second"})
	require.NoError(t, err)
	require.NoError(t, ds.WriteMetadata(note))

	// A fresh read leaves the value undecoded until it is needed.
	src = reopen(t, src)
	ds, err = src.GetDataset("/src")
	require.NoError(t, err)
	stored, err := ds.Attribute("note")
	require.NoError(t, err)

	dst := createFile(t, store, "b.h5")
	g, err := dst.CreateGroup("dst", nil)
	require.NoError(t, err)
	stored.SetParentObject(g)
	require.NoError(t, g.WriteMetadata(stored))

	dst = reopen(t, dst)
	g, err = dst.GetGroup("/dst")
	require.NoError(t, err)
	moved, err := g.Attribute("note")
	require.NoError(t, err)
	v, err := moved.Value()
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, v)
}

func TestAttribute_VarLenString(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "vlen-attr.h5")
	dt, err := h5object.NewStringType(h5object.NativeSize, h5object.PadNullTerm, h5object.CharsetASCII)
	require.NoError(t, err)
	attr, err := h5object.NewAttribute("tags", dt, []uint64{3}, []string{"raw", "", "calibrated"})
	require.NoError(t, err)
	require.NoError(t, f.Root().WriteMetadata(attr))

	f = reopen(t, f)
	got, err := f.Root().Attribute("tags")
	require.NoError(t, err)
	require.True(t, got.Datatype().IsVariableString())
	v, err := got.Value()
	require.NoError(t, err)
	require.Equal(t, []string{"raw", "", "calibrated"}, v)
}

func TestAttribute_Errors(t *testing.T) {
	f := createFile(t, memstore.MustNew(), "attr-errors.h5")

	_, err := h5object.NewAttribute("a/b", int32Type(t), nil, []int32{1})
	require.ErrorIs(t, err, h5object.ErrInvalidName)
	_, err = h5object.NewAttribute("x", nil, nil, []int32{1})
	require.ErrorIs(t, err, h5object.ErrInvalidType)

	short, err := h5object.NewAttribute("short", int32Type(t), []uint64{3}, []int32{1})
	require.NoError(t, err)
	require.ErrorIs(t, f.Root().WriteMetadata(short), h5object.ErrSizeMismatch)

	wrong, err := h5object.NewAttribute("wrong", int32Type(t), []uint64{1}, []string{"1"})
	require.NoError(t, err)
	require.ErrorIs(t, f.Root().WriteMetadata(wrong), h5object.ErrTypeMismatch)
	require.False(t, f.Root().HasAttribute())

	ok, err := h5object.NewAttribute("ok", int32Type(t), []uint64{1}, []int32{1})
	require.NoError(t, err)
	require.NoError(t, f.Root().WriteMetadata(ok))

	f = reopen(t, f, h5object.WithReadOnly())
	stored, err := f.Root().Attribute("ok")
	require.NoError(t, err)
	require.ErrorIs(t, f.Root().WriteMetadata(ok), h5object.ErrReadOnly)
	require.ErrorIs(t, f.Root().RemoveMetadata(stored), h5object.ErrReadOnly)
	require.ErrorIs(t, f.Root().RenameMetadata(stored, "other"), h5object.ErrReadOnly)
}
