package h5object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, class Class, size int, order Order, sign Sign) *Datatype {
	t.Helper()
	dt, err := NewDatatype(class, size, order, sign)
	require.NoError(t, err)
	return dt
}

func TestDescription_PhraseTable(t *testing.T) {
	tests := []struct {
		name  string
		class Class
		size  int
		sign  Sign
		want  string
	}{
		{"int8", ClassInteger, 1, SignTwosComplement, "8-bit integer"},
		{"int16", ClassInteger, 2, SignTwosComplement, "16-bit integer"},
		{"int32", ClassInteger, 4, SignTwosComplement, "32-bit integer"},
		{"int64", ClassInteger, 8, SignTwosComplement, "64-bit integer"},
		{"native int", ClassInteger, NativeSize, SignTwosComplement, "native integer"},
		{"uint8", ClassInteger, 1, SignUnsigned, "8-bit unsigned integer"},
		{"uint64", ClassInteger, 8, SignUnsigned, "64-bit unsigned integer"},
		{"native uint", ClassInteger, NativeSize, SignUnsigned, "native unsigned integer"},
		{"float16", ClassFloat, 2, SignNone, "16-bit floating-point"},
		{"float32", ClassFloat, 4, SignNone, "32-bit floating-point"},
		{"float64", ClassFloat, 8, SignNone, "64-bit floating-point"},
		{"native float", ClassFloat, NativeSize, SignNone, "native floating-point"},
		{"bitfield8", ClassBitfield, 1, SignUnsigned, "8-bit bitfield"},
		{"native bitfield", ClassBitfield, NativeSize, SignUnsigned, "native bitfield"},
		{"opaque4", ClassOpaque, 4, SignNone, "32-bit opaque"},
		{"native opaque", ClassOpaque, NativeSize, SignNone, "native opaque"},
		{"odd opaque", ClassOpaque, 12, SignNone, "Opaque"},
		{"enum16", ClassEnum, 2, SignTwosComplement, "16-bit enum"},
		{"native enum", ClassEnum, NativeSize, SignTwosComplement, "native enum"},
		{"unknown", ClassUnknown, NativeSize, SignNone, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := mustType(t, tt.class, tt.size, OrderNative, tt.sign)
			require.Equal(t, tt.want, dt.Description())
			require.Equal(t, tt.want, dt.OuterDescription())
		})
	}
}

func TestDescription_Strings(t *testing.T) {
	fixed, err := NewStringType(20, PadNullTerm, CharsetASCII)
	require.NoError(t, err)
	require.Equal(t, "String, length = 20, padding = H5T_STR_NULLTERM, cset = H5T_CSET_ASCII", fixed.Description())

	vlen, err := NewStringType(NativeSize, PadSpacePad, CharsetUTF8)
	require.NoError(t, err)
	require.True(t, vlen.IsVariableString())
	require.Equal(t, "String, length = variable, padding = H5T_STR_SPACEPAD, cset = H5T_CSET_UTF8", vlen.Description())

	_, err = NewStringType(0, PadNullPad, CharsetASCII)
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestDescription_ReferencesAndVarLen(t *testing.T) {
	require.Equal(t, "Object reference", NewReferenceType(RefObject).Description())
	require.Equal(t, "Dataset region reference", NewReferenceType(RefRegion).Description())

	vl, err := NewVarLenType(mustType(t, ClassInteger, 2, OrderNative, SignUnsigned))
	require.NoError(t, err)
	require.Equal(t, "Variable-length of 16-bit unsigned integer", vl.Description())
	require.Equal(t, NativeSize, vl.Size())

	bare := &Datatype{class: ClassVarLen, size: NativeSize}
	require.Equal(t, "Variable-length", bare.Description())
}

func TestDescription_Array(t *testing.T) {
	arr, err := NewArrayType(mustType(t, ClassFloat, 8, OrderNative, SignNone), 2, 3)
	require.NoError(t, err)
	require.Equal(t, "Array [2 x 3] of 64-bit floating-point", arr.Description())
	require.Equal(t, 6, arr.ArrayOrder())
	require.Equal(t, 48, arr.ElementSize())
}

// A three-member compound reads "Compound" in the outer view while every
// member keeps its own phrase.
func TestDescription_CompoundScenario(t *testing.T) {
	str, err := NewStringType(20, PadNullTerm, CharsetASCII)
	require.NoError(t, err)
	dt, err := NewCompoundType(
		Member{Name: "id", Type: mustType(t, ClassInteger, 4, OrderNative, SignTwosComplement)},
		Member{Name: "value", Type: mustType(t, ClassFloat, 4, OrderNative, SignNone)},
		Member{Name: "label", Type: str},
	)
	require.NoError(t, err)

	require.Equal(t, "Compound", dt.OuterDescription())
	members := dt.Members()
	require.Len(t, members, 3)
	require.Equal(t, "32-bit integer", members[0].Type.Description())
	require.Equal(t, "32-bit floating-point", members[1].Type.Description())
	require.Equal(t, "String, length = 20, padding = H5T_STR_NULLTERM, cset = H5T_CSET_ASCII", members[2].Type.Description())

	require.Equal(t,
		"Compound {id: 32-bit integer, value: 32-bit floating-point, "+
			"label: String, length = 20, padding = H5T_STR_NULLTERM, cset = H5T_CSET_ASCII}",
		dt.Description())
	require.Equal(t, NativeSize, dt.Size())
	require.Equal(t, 28, dt.ElementSize())
}

func TestDescription_NestedCompound(t *testing.T) {
	f32 := mustType(t, ClassFloat, 4, OrderNative, SignNone)
	point, err := NewCompoundType(Member{Name: "x", Type: f32}, Member{Name: "y", Type: f32})
	require.NoError(t, err)
	dt, err := NewCompoundType(
		Member{Name: "pos", Type: point},
		Member{Name: "hist", Type: mustType(t, ClassInteger, 2, OrderNative, SignUnsigned), Dims: []int{4}},
	)
	require.NoError(t, err)

	require.Equal(t,
		"Compound {pos: Compound {x: 32-bit floating-point, y: 32-bit floating-point}, "+
			"hist: Array [4] of 16-bit unsigned integer}",
		dt.Description())
	require.Equal(t, "Compound", dt.OuterDescription())
	require.Equal(t, 16, dt.ElementSize())
}

func TestIsUnsigned(t *testing.T) {
	tests := []struct {
		name string
		dt   *Datatype
		want bool
	}{
		{"unsigned int", mustType(t, ClassInteger, 4, OrderNative, SignUnsigned), true},
		{"signed int", mustType(t, ClassInteger, 4, OrderNative, SignTwosComplement), false},
		{"unsigned enum", mustType(t, ClassEnum, 1, OrderNative, SignUnsigned), true},
		{"bitfield", mustType(t, ClassBitfield, 1, OrderNative, SignUnsigned), true},
		{"float ignores sign", mustType(t, ClassFloat, 4, OrderNative, SignUnsigned), false},
		{"opaque ignores sign", mustType(t, ClassOpaque, 4, OrderNative, SignUnsigned), false},
		{"reference", NewReferenceType(RefObject), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.dt.IsUnsigned())
		})
	}
}

func TestNewDatatype_InvalidWidths(t *testing.T) {
	for _, class := range []Class{ClassInteger, ClassFloat, ClassBitfield, ClassEnum} {
		_, err := NewDatatype(class, 3, OrderNative, SignTwosComplement)
		require.ErrorIs(t, err, ErrInvalidType, class.String())
	}
	_, err := NewDatatype(ClassCompound, NativeSize, OrderNone, SignNone)
	require.ErrorIs(t, err, ErrInvalidType)
	_, err = NewDatatype(ClassInteger, 4, OrderVax, SignTwosComplement)
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestNewCompoundType_Validation(t *testing.T) {
	i32 := mustType(t, ClassInteger, 4, OrderNative, SignTwosComplement)

	_, err := NewCompoundType()
	require.ErrorIs(t, err, ErrInvalidType)
	_, err = NewCompoundType(Member{Name: "a", Type: i32}, Member{Name: "a", Type: i32})
	require.ErrorIs(t, err, ErrInvalidType)
	_, err = NewCompoundType(Member{Name: "a/b", Type: i32})
	require.ErrorIs(t, err, ErrInvalidType)
	_, err = NewCompoundType(Member{Name: "a", Type: i32, Dims: []int{0}})
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestEnumMembers(t *testing.T) {
	dt := mustType(t, ClassEnum, 1, OrderNative, SignTwosComplement)
	require.NoError(t, dt.SetEnumMembers("0=RED,  1 = GREEN,2=BLUE"))
	require.Equal(t, "0=RED, 1=GREEN, 2=BLUE", dt.EnumMembersString())
	require.Equal(t, "8-bit enum (0=RED, 1=GREEN, 2=BLUE)", dt.Description())

	name, ok := dt.EnumName(1)
	require.True(t, ok)
	require.Equal(t, "GREEN", name)
	v, ok := dt.EnumValue("BLUE")
	require.True(t, ok)
	require.Equal(t, int64(2), v)

	// One-time fill-in.
	require.ErrorIs(t, dt.SetEnumMembers("3=CYAN"), ErrInvalidType)

	// Round trip through the normalized form.
	again := mustType(t, ClassEnum, 1, OrderNative, SignTwosComplement)
	require.NoError(t, again.SetEnumMembers(dt.EnumMembersString()))
	require.Equal(t, dt.EnumMembersString(), again.EnumMembersString())
}

func TestEnumMembers_Malformed(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"no equals", "0 RED"},
		{"bad value", "x=RED"},
		{"empty name", "0="},
		{"duplicate name", "0=A, 1=A"},
		{"duplicate value", "0=A, 0=B"},
		{"out of range", "128=BIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := mustType(t, ClassEnum, 1, OrderNative, SignTwosComplement)
			require.ErrorIs(t, dt.SetEnumMembers(tt.spec), ErrMalformedSpec)
		})
	}

	notEnum := mustType(t, ClassInteger, 4, OrderNative, SignTwosComplement)
	require.ErrorIs(t, notEnum.SetEnumMembers("0=A"), ErrInvalidType)
}

func TestEnumMembers_UnsignedRange(t *testing.T) {
	tests := []struct {
		size int
		spec string
		over string
	}{
		{1, "1=LOW, 200=HIGH", "256=X"},
		{2, "1=LOW, 65000=HIGH", "65536=X"},
		{4, "1=LOW, 4000000000=HIGH", "4294967296=X"},
	}
	for _, tt := range tests {
		dt := mustType(t, ClassEnum, tt.size, OrderBigEndian, SignUnsigned)
		require.NoError(t, dt.SetEnumMembers(tt.spec))

		raw, err := dt.RawType()
		require.NoError(t, err)
		back, err := fromRawType(raw)
		require.NoError(t, err)
		require.Equal(t, tt.spec, back.EnumMembersString())
		require.True(t, back.IsUnsigned())

		over := mustType(t, ClassEnum, tt.size, OrderBigEndian, SignUnsigned)
		require.ErrorIs(t, over.SetEnumMembers(tt.over), ErrMalformedSpec)
	}
}

func TestFromNative_NullObject(t *testing.T) {
	dt := FromNative(nil, 0)
	require.NotNil(t, dt)
	require.True(t, dt.IsEmpty())
	require.NotEqual(t, ClassInteger, dt.Class())
	require.NotEqual(t, 4, dt.Size())
	require.Equal(t, "Unknown", dt.Description())
}

func TestMaterialize_RoundTrip(t *testing.T) {
	enum := mustType(t, ClassEnum, 2, OrderBigEndian, SignUnsigned)
	require.NoError(t, enum.SetEnumMembers("1=ON, 0=OFF"))
	vstr, err := NewStringType(NativeSize, PadNullTerm, CharsetUTF8)
	require.NoError(t, err)
	opaque, err := NewOpaqueType(6, "blob")
	require.NoError(t, err)

	types := []*Datatype{
		mustType(t, ClassInteger, 8, OrderLittleEndian, SignUnsigned),
		mustType(t, ClassFloat, 8, OrderBigEndian, SignNone),
		mustType(t, ClassFloat, 4, OrderVax, SignNone),
		mustType(t, ClassBitfield, 2, OrderLittleEndian, SignUnsigned),
		enum, vstr, opaque,
		NewReferenceType(RefRegion),
	}
	for _, dt := range types {
		t.Run(dt.Description(), func(t *testing.T) {
			raw, err := dt.RawType()
			require.NoError(t, err)
			back, err := fromRawType(raw)
			require.NoError(t, err)
			require.True(t, dt.Equal(back))
			require.Equal(t, dt.Description(), back.Description())
		})
	}
}

func TestMaterialize_NativeResolution(t *testing.T) {
	ct, err := mustType(t, ClassInteger, NativeSize, OrderNative, SignTwosComplement).Materialize()
	require.NoError(t, err)
	require.Equal(t, uint32(nativeIntSize), ct.Size)

	back := fromCore(ct)
	require.Equal(t, 4, back.Size())
	require.Equal(t, "32-bit integer", back.Description())

	_, err = (&Datatype{class: ClassUnknown, size: NativeSize}).Materialize()
	require.ErrorIs(t, err, ErrInvalidType)
}
