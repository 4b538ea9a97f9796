package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func recordMembers() []Member {
	return []Member{
		{Name: "a", Offset: 0, Type: &Datatype{Class: DatatypeFixed, Size: 1}},
		{Name: "b", Offset: 1, Type: &Datatype{Class: DatatypeFixed, Size: 2}},
		{Name: "c", Offset: 3, Type: &Datatype{Class: DatatypeFixed, Size: 1}},
	}
}

func TestExtractMembers_Subset(t *testing.T) {
	members := recordMembers()
	records := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	out, err := ExtractMembers(records, 4, []Member{members[0], members[2]})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 4, 5, 8}, out)
}

func TestMergeMembers_LeavesOthersUntouched(t *testing.T) {
	members := recordMembers()
	records := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	require.NoError(t, MergeMembers(records, 4, []Member{members[1]}, []byte{0xA, 0xB, 0xC, 0xD}))
	require.Equal(t, []byte{1, 0xA, 0xB, 4, 5, 0xC, 0xD, 8}, records)

	err := MergeMembers(records, 4, []Member{members[1]}, []byte{1})
	require.ErrorContains(t, err, "size mismatch")
}

func TestMemberColumn_PackColumns(t *testing.T) {
	members := recordMembers()
	packed := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}
	b, err := MemberColumn(packed, members, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3, 6, 7}, b)

	a, err := MemberColumn(packed, members, 0)
	require.NoError(t, err)
	c, err := MemberColumn(packed, members, 2)
	require.NoError(t, err)

	rebuilt, err := PackColumns([][]byte{a, b, c}, members, 2)
	require.NoError(t, err)
	require.Equal(t, packed, rebuilt)

	_, err = MemberColumn(packed, members, 3)
	require.ErrorContains(t, err, "out of range")
}

func TestExtractMembers_Errors(t *testing.T) {
	_, err := ExtractMembers([]byte{1, 2, 3}, 4, recordMembers())
	require.ErrorContains(t, err, "not a multiple")

	_, err = ExtractMembers([]byte{1, 2}, 2, recordMembers())
	require.ErrorContains(t, err, "overflows")
}
