// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"

	"github.com/scigolib/h5object/internal/core"
)

// ErrValueType is returned when a Go value cannot be stored as a datatype.
var ErrValueType = errors.New("value type does not match datatype")

// Decode converts raw element bytes into a flat Go slice.
//
// Result types by class:
//   - integer, bitfield, enum: []int8, []int16, []int32 or []int64 by width
//   - float: []float32 (1, 2 and 4 bytes) or []float64
//   - string: []string
//   - opaque: []byte
//   - object reference: []uint64; region reference: [][]byte
//   - array: flat slice of the element type
//
// Compound and variable-length data need member or heap access and are
// handled by the caller.
func Decode(dt *core.Datatype, data []byte) (any, error) {
	size := int(dt.Size)
	if size == 0 {
		return nil, fmt.Errorf("cannot decode zero-sized %s elements", dt)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of element size %d", len(data), size)
	}

	switch dt.Class {
	case core.DatatypeFixed, core.DatatypeBitfield, core.DatatypeEnum:
		return decodeInts(data, size, dt.Order)
	case core.DatatypeFloat:
		if dt.Order == core.OrderVAX {
			data = swapWords(data, size)
		}
		return decodeFloats(data, size, dt.Order)
	case core.DatatypeString:
		return DecodeFixedStrings(data, size, dt.Padding, dt.CharSet)
	case core.DatatypeOpaque:
		return append([]byte(nil), data...), nil
	case core.DatatypeReference:
		return decodeReferences(data, dt)
	case core.DatatypeArray:
		return Decode(dt.Base, data)
	default:
		return nil, fmt.Errorf("cannot decode %s elements directly", dt)
	}
}

// Encode converts a Go value into raw element bytes. Integer inputs may be any
// Go integer slice; values wider than the stored width are truncated.
func Encode(dt *core.Datatype, value any) ([]byte, error) {
	size := int(dt.Size)
	if size == 0 {
		return nil, fmt.Errorf("cannot encode zero-sized %s elements", dt)
	}

	switch dt.Class {
	case core.DatatypeFixed, core.DatatypeBitfield, core.DatatypeEnum:
		ints, ok := toInt64s(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrValueType, value, dt)
		}
		return encodeInts(ints, size, dt.Order)
	case core.DatatypeFloat:
		floats, ok := toFloat64s(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrValueType, value, dt)
		}
		out, err := encodeFloats(floats, size, dt.Order)
		if err != nil {
			return nil, err
		}
		if dt.Order == core.OrderVAX {
			out = swapWords(out, size)
		}
		return out, nil
	case core.DatatypeString:
		strs, ok := toStrings(value)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrValueType, value, dt)
		}
		return EncodeFixedStrings(strs, size, dt.Padding, dt.CharSet)
	case core.DatatypeOpaque:
		raw, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrValueType, value, dt)
		}
		if len(raw)%size != 0 {
			return nil, fmt.Errorf("opaque data length %d is not a multiple of %d", len(raw), size)
		}
		return append([]byte(nil), raw...), nil
	case core.DatatypeReference:
		return encodeReferences(value, dt)
	case core.DatatypeArray:
		out, err := Encode(dt.Base, value)
		if err != nil {
			return nil, err
		}
		if len(out)%size != 0 {
			return nil, fmt.Errorf("array data holds %d elements, not a multiple of %d",
				len(out)/int(dt.Base.Size), dt.ArrayLen())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot encode %s elements directly", dt)
	}
}

func readAll[T any](n int, read func() (T, error)) ([]T, error) {
	out := make([]T, n)
	for i := range out {
		v, err := read()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeInts(data []byte, size int, order core.ByteOrder) (any, error) {
	n := len(data) / size
	s := kaitai.NewStream(bytes.NewReader(data))
	be := order == core.OrderBE
	switch size {
	case 1:
		return readAll(n, s.ReadS1)
	case 2:
		if be {
			return readAll(n, s.ReadS2be)
		}
		return readAll(n, s.ReadS2le)
	case 4:
		if be {
			return readAll(n, s.ReadS4be)
		}
		return readAll(n, s.ReadS4le)
	case 8:
		if be {
			return readAll(n, s.ReadS8be)
		}
		return readAll(n, s.ReadS8le)
	default:
		return nil, fmt.Errorf("unsupported integer size: %d", size)
	}
}

func decodeFloats(data []byte, size int, order core.ByteOrder) (any, error) {
	n := len(data) / size
	s := kaitai.NewStream(bytes.NewReader(data))
	be := order == core.OrderBE
	switch size {
	case 1:
		return readAll(n, func() (float32, error) {
			b, err := s.ReadU1()
			return FP8ToFloat32(b), err
		})
	case 2:
		read := s.ReadU2le
		if be {
			read = s.ReadU2be
		}
		return readAll(n, func() (float32, error) {
			b, err := read()
			return Float16ToFloat32(b), err
		})
	case 4:
		if be {
			return readAll(n, s.ReadF4be)
		}
		return readAll(n, s.ReadF4le)
	case 8:
		if be {
			return readAll(n, s.ReadF8be)
		}
		return readAll(n, s.ReadF8le)
	default:
		return nil, fmt.Errorf("unsupported float size: %d", size)
	}
}

func encodeInts(values []int64, size int, order core.ByteOrder) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(values)*size))
	w := kaitai.NewWriter(buf)
	be := order == core.OrderBE
	for i, v := range values {
		var err error
		//nolint:gosec // G115: truncation to the stored width intended
		switch {
		case size == 1:
			err = w.WriteS1(int8(v))
		case size == 2 && be:
			err = w.WriteS2be(int16(v))
		case size == 2:
			err = w.WriteS2le(int16(v))
		case size == 4 && be:
			err = w.WriteS4be(int32(v))
		case size == 4:
			err = w.WriteS4le(int32(v))
		case size == 8 && be:
			err = w.WriteS8be(v)
		case size == 8:
			err = w.WriteS8le(v)
		default:
			return nil, fmt.Errorf("unsupported integer size: %d", size)
		}
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func encodeFloats(values []float64, size int, order core.ByteOrder) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, len(values)*size))
	w := kaitai.NewWriter(buf)
	be := order == core.OrderBE
	for i, v := range values {
		var err error
		switch {
		case size == 1:
			err = w.WriteU1(Float32ToFP8(float32(v)))
		case size == 2 && be:
			err = w.WriteU2be(Float32ToFloat16(float32(v)))
		case size == 2:
			err = w.WriteU2le(Float32ToFloat16(float32(v)))
		case size == 4 && be:
			err = w.WriteF4be(float32(v))
		case size == 4:
			err = w.WriteF4le(float32(v))
		case size == 8 && be:
			err = w.WriteF8be(v)
		case size == 8:
			err = w.WriteF8le(v)
		default:
			return nil, fmt.Errorf("unsupported float size: %d", size)
		}
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func decodeReferences(data []byte, dt *core.Datatype) (any, error) {
	size := int(dt.Size)
	n := len(data) / size
	if dt.RefKind == core.RefObject {
		out := make([]uint64, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(data[i*size:])
		}
		return out, nil
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = append([]byte(nil), data[i*size:(i+1)*size]...)
	}
	return out, nil
}

func encodeReferences(value any, dt *core.Datatype) ([]byte, error) {
	size := int(dt.Size)
	switch v := value.(type) {
	case []uint64:
		if dt.RefKind != core.RefObject {
			break
		}
		out := make([]byte, 0, len(v)*size)
		for _, addr := range v {
			out = binary.LittleEndian.AppendUint64(out, addr)
		}
		return out, nil
	case [][]byte:
		out := make([]byte, 0, len(v)*size)
		for i, ref := range v {
			if len(ref) != size {
				return nil, fmt.Errorf("reference %d: expected %d bytes, got %d", i, size, len(ref))
			}
			out = append(out, ref...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T for %s", ErrValueType, value, dt)
}

// swapWords reverses the order of 16-bit words inside every element, mapping
// VAX order to little-endian and back.
func swapWords(data []byte, size int) []byte {
	out := make([]byte, len(data))
	words := size / 2
	for off := 0; off+size <= len(data); off += size {
		for w := 0; w < words; w++ {
			src := off + w*2
			dst := off + (words-1-w)*2
			out[dst], out[dst+1] = data[src], data[src+1]
		}
	}
	return out
}

func toInt64s(value any) ([]int64, bool) {
	switch v := value.(type) {
	case []int8:
		return widenTo64(v), true
	case []int16:
		return widenTo64(v), true
	case []int32:
		return widenTo64(v), true
	case []int64:
		return v, true
	case []int:
		return widenTo64(v), true
	case []uint8:
		return widenTo64(v), true
	case []uint16:
		return widenTo64(v), true
	case []uint32:
		return widenTo64(v), true
	case []uint64:
		return widenTo64(v), true
	case int:
		return []int64{int64(v)}, true
	case int32:
		return []int64{int64(v)}, true
	case int64:
		return []int64{v}, true
	default:
		return nil, false
	}
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func widenTo64[T integer](src []T) []int64 {
	out := make([]int64, len(src))
	for i, v := range src {
		out[i] = int64(v) //nolint:gosec // G115: bit pattern preserved for uint64
	}
	return out
}

func toFloat64s(value any) ([]float64, bool) {
	switch v := value.(type) {
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, true
	case []float64:
		return v, true
	case float32:
		return []float64{float64(v)}, true
	case float64:
		return []float64{v}, true
	default:
		return nil, false
	}
}

func toStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case string:
		return []string{v}, true
	default:
		return nil, false
	}
}
