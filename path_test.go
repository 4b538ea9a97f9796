package h5object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	require.Empty(t, SplitPath("/"))
	require.Equal(t, []string{"foo", "bar"}, SplitPath("/foo//bar/"))
	require.Equal(t, "/", CleanPath(""))
	require.Equal(t, "/a/b", CleanPath("a/b/"))
	require.Equal(t, "/a", JoinPath("/", "a"))
	require.Equal(t, "/a/b", JoinPath("/a/", "b"))

	dir, name := ParentPath("/a/b/c")
	require.Equal(t, "/a/b", dir)
	require.Equal(t, "c", name)
	dir, name = ParentPath("/top")
	require.Equal(t, "/", dir)
	require.Equal(t, "top", name)
	dir, name = ParentPath("/")
	require.Equal(t, "", dir)
	require.Equal(t, "/", name)
}

func TestValidateName(t *testing.T) {
	require.NoError(t, validateName("data"))
	for _, bad := range []string{"", "a/b", ".", ".."} {
		require.ErrorIs(t, validateName(bad), ErrInvalidName, bad)
	}
}

func TestMemberList_NoOps(t *testing.T) {
	a := &Group{object: object{name: "a", oid: []uint64{1, 100}}}
	a.self = a
	b := &Group{object: object{name: "b", oid: []uint64{1, 108}}}
	b.self = b

	var list MemberList
	list.Add(a)
	list.Add(nil)
	list.Add(a)
	require.Equal(t, 1, list.Len())

	list.Remove(nil)
	list.Remove(b)
	require.Equal(t, 1, list.Len())

	list.Add(b)
	require.Equal(t, 2, list.Len())
	require.Same(t, b, list.Find("b"))
	require.Nil(t, list.Find("c"))

	list.Remove(a)
	require.Equal(t, 1, list.Len())
	require.Same(t, b, list.At(0))
}
