package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/h5object/internal/core"
)

func intType(size uint32, order core.ByteOrder, signed bool) *core.Datatype {
	return &core.Datatype{Class: core.DatatypeFixed, Size: size, Order: order, Signed: signed}
}

func floatType(size uint32, order core.ByteOrder) *core.Datatype {
	return &core.Datatype{Class: core.DatatypeFloat, Size: size, Order: order}
}

func TestDecode_IntegerByteOrder(t *testing.T) {
	le, err := Decode(intType(4, core.OrderLE, true), []byte{0x01, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x7F})
	require.NoError(t, err)
	require.Equal(t, []int32{1, math.MaxInt32}, le)

	be, err := Decode(intType(2, core.OrderBE, true), []byte{0x00, 0x01, 0x80, 0x00})
	require.NoError(t, err)
	require.Equal(t, []int16{1, math.MinInt16}, be)
}

func TestEncode_WideInputTruncates(t *testing.T) {
	dt := intType(1, core.OrderLE, false)
	out, err := Encode(dt, []int16{255, 128, 0})
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0x80, 0x00}, out)

	decoded, err := Decode(dt, out)
	require.NoError(t, err)
	require.Equal(t, []int16{255, 128, 0}, WidenSigned(decoded))
}

func TestEncodeDecode_Floats(t *testing.T) {
	tests := []struct {
		name  string
		dt    *core.Datatype
		value any
		want  any
	}{
		{"float64 LE", floatType(8, core.OrderLE), []float64{1.5, -2.25}, []float64{1.5, -2.25}},
		{"float32 BE", floatType(4, core.OrderBE), []float32{3.5, 0}, []float32{3.5, 0}},
		{"float32 VAX", floatType(4, core.OrderVAX), []float32{-7.75}, []float32{-7.75}},
		{"half", floatType(2, core.OrderLE), []float32{0.5, 1024}, []float32{0.5, 1024}},
		{"fp8", floatType(1, core.OrderLE), []float64{2, -0.25}, []float32{2, -0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.dt, tt.value)
			require.NoError(t, err)
			got, err := Decode(tt.dt, raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_FloatBigEndianBytes(t *testing.T) {
	out, err := Encode(floatType(8, core.OrderBE), []float64{1.0})
	require.NoError(t, err)
	require.Equal(t, []byte{0x3F, 0xF0, 0, 0, 0, 0, 0, 0}, out)
}

func TestEncode_TypeMismatch(t *testing.T) {
	_, err := Encode(intType(4, core.OrderLE, true), []float64{1})
	require.ErrorIs(t, err, ErrValueType)

	_, err = Encode(floatType(4, core.OrderLE), []string{"x"})
	require.ErrorIs(t, err, ErrValueType)

	_, err = Encode(&core.Datatype{Class: core.DatatypeString, Size: 4}, []int32{1})
	require.ErrorIs(t, err, ErrValueType)
}

func TestEncodeDecode_ArrayOfInts(t *testing.T) {
	dt := &core.Datatype{
		Class: core.DatatypeArray, Size: 12, Dims: []uint32{3},
		Base: intType(4, core.OrderLE, true), Order: core.OrderNone,
	}
	raw, err := Encode(dt, []int32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Len(t, raw, 24)

	got, err := Decode(dt, raw)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3, 4, 5, 6}, got)

	_, err = Encode(dt, []int32{1, 2})
	require.Error(t, err)
}

func TestEncodeDecode_References(t *testing.T) {
	obj := &core.Datatype{Class: core.DatatypeReference, Size: core.ObjectRefSize, RefKind: core.RefObject}
	raw, err := Encode(obj, []uint64{96, 800})
	require.NoError(t, err)
	got, err := Decode(obj, raw)
	require.NoError(t, err)
	require.Equal(t, []uint64{96, 800}, got)

	region := &core.Datatype{Class: core.DatatypeReference, Size: core.RegionRefSize, RefKind: core.RefRegion}
	_, err = Encode(region, []uint64{1})
	require.ErrorIs(t, err, ErrValueType)
}

func TestDecode_Opaque(t *testing.T) {
	dt := &core.Datatype{Class: core.DatatypeOpaque, Size: 3, Tag: "blob"}
	got, err := Decode(dt, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, got)

	_, err = Decode(dt, []byte{1, 2})
	require.Error(t, err)
}
