// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/scigolib/h5object/internal/convert"
	"github.com/scigolib/h5object/internal/core"
)

// valueCodec converts between stored element bytes and Go values. Variable
// length data lives in the file heap, reached through the handle of the
// object that owns the values.
type valueCodec struct {
	engine    Engine
	handle    Handle
	enumNames bool
}

// decode returns the Go value of the elements in data.
//
// Unsigned integers are widened (8-bit to []int16, 16-bit to []int32,
// 32-bit to []int64, 64-bit to []uint64). Variable-length strings decode to
// []string and other sequences to []any holding one slice per element.
func (c valueCodec) decode(ct *core.Datatype, data []byte) (any, error) {
	switch ct.Class {
	case core.DatatypeVarLen:
		return c.decodeVarLen(ct, data)
	case core.DatatypeArray:
		if ct.Base.Class == core.DatatypeCompound {
			return append([]byte(nil), data...), nil
		}
		return c.decode(ct.Base, data)
	case core.DatatypeCompound:
		return append([]byte(nil), data...), nil
	}

	values, err := convert.Decode(ct, data)
	if err != nil {
		return nil, err
	}
	switch ct.Class {
	case core.DatatypeEnum, core.DatatypeFixed, core.DatatypeBitfield:
	default:
		return values, nil
	}
	if !ct.Signed {
		values = convert.WidenSigned(values)
	}
	if ct.Class == core.DatatypeEnum && c.enumNames {
		return enumNames(ct, values), nil
	}
	return values, nil
}

func enumNames(ct *core.Datatype, values any) []string {
	ints, _ := signedInts(values)
	out := make([]string, len(ints))
	for i, v := range ints {
		out[i] = strconv.FormatInt(v, 10)
		for k, ev := range ct.EnumValues {
			if ev == v {
				out[i] = ct.EnumNames[k]
				break
			}
		}
	}
	return out
}

func signedInts(values any) ([]int64, bool) {
	switch v := values.(type) {
	case []int8:
		return widen(v), true
	case []int16:
		return widen(v), true
	case []int32:
		return widen(v), true
	case []int64:
		return v, true
	case []uint64:
		out := make([]int64, len(v))
		for i, u := range v {
			out[i] = int64(u) //nolint:gosec // G115: enum values keep the stored bit pattern
		}
		return out, true
	}
	return nil, false
}

func widen[T int8 | int16 | int32](src []T) []int64 {
	out := make([]int64, len(src))
	for i, v := range src {
		out[i] = int64(v)
	}
	return out
}

func (c valueCodec) decodeVarLen(ct *core.Datatype, data []byte) (any, error) {
	if len(data)%core.VarLenElementSize != 0 {
		return nil, fmt.Errorf("variable-length data length %d is not a multiple of %d", len(data), core.VarLenElementSize)
	}
	n := len(data) / core.VarLenElementSize
	payloads := make([][]byte, n)
	for i := range payloads {
		elem := data[i*core.VarLenElementSize:]
		length := binary.LittleEndian.Uint64(elem)
		id := binary.LittleEndian.Uint64(elem[8:])
		if length == 0 {
			continue
		}
		p, err := c.engine.HeapGet(c.handle, id)
		if err != nil {
			return nil, fmt.Errorf("variable-length element %d: %w", i, err)
		}
		payloads[i] = p
	}

	if ct.VarLenString {
		out := make([]string, n)
		for i, p := range payloads {
			s, err := convert.DecodeString(p, ct.CharSet)
			if err != nil {
				return nil, fmt.Errorf("variable-length element %d: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	}

	out := make([]any, n)
	for i, p := range payloads {
		v, err := c.decode(ct.Base, p)
		if err != nil {
			return nil, fmt.Errorf("variable-length element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// encode returns the stored bytes of value and the number of elements it
// holds.
func (c valueCodec) encode(ct *core.Datatype, value any) ([]byte, uint64, error) {
	var (
		data []byte
		err  error
	)
	switch ct.Class {
	case core.DatatypeVarLen:
		data, err = c.encodeVarLen(ct, value)
	case core.DatatypeEnum:
		if names, ok := value.([]string); ok {
			value, err = enumValues(ct, names)
			if err != nil {
				return nil, 0, err
			}
		}
		data, err = convert.Encode(ct, value)
	case core.DatatypeCompound:
		raw, ok := value.([]byte)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %T for a compound element", ErrTypeMismatch, value)
		}
		data = raw
	case core.DatatypeArray:
		if ct.Base.Class == core.DatatypeVarLen {
			data, err = c.encodeVarLen(ct.Base, value)
			break
		}
		if ct.Base.Class == core.DatatypeCompound {
			raw, ok := value.([]byte)
			if !ok {
				return nil, 0, fmt.Errorf("%w: %T for an array of compounds", ErrTypeMismatch, value)
			}
			data = raw
			break
		}
		data, err = convert.Encode(ct, value)
	default:
		data, err = convert.Encode(ct, value)
	}
	if err != nil {
		if errors.Is(err, convert.ErrValueType) {
			return nil, 0, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
		}
		return nil, 0, err
	}
	if len(data)%int(ct.Size) != 0 {
		return nil, 0, fmt.Errorf("%w: %d bytes do not divide into %d-byte elements", ErrSizeMismatch, len(data), ct.Size)
	}
	return data, uint64(len(data) / int(ct.Size)), nil
}

func enumValues(ct *core.Datatype, names []string) ([]int64, error) {
	out := make([]int64, len(names))
	for i, name := range names {
		found := false
		for k, n := range ct.EnumNames {
			if n == name {
				out[i] = ct.EnumValues[k]
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q is not an enum member", ErrTypeMismatch, name)
		}
	}
	return out, nil
}

func (c valueCodec) encodeVarLen(ct *core.Datatype, value any) ([]byte, error) {
	var payloads [][]byte
	var lengths []uint64

	switch {
	case ct.VarLenString:
		var strs []string
		switch v := value.(type) {
		case []string:
			strs = v
		case string:
			strs = []string{v}
		default:
			return nil, fmt.Errorf("%w: %T for a variable-length string", ErrTypeMismatch, value)
		}
		for _, s := range strs {
			p, err := convert.EncodeString(s, ct.CharSet)
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, p)
			lengths = append(lengths, uint64(len(p)))
		}
	default:
		seqs, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T for a variable-length sequence (want []any)", ErrTypeMismatch, value)
		}
		for i, seq := range seqs {
			p, n, err := c.encode(ct.Base, seq)
			if err != nil {
				return nil, fmt.Errorf("sequence %d: %w", i, err)
			}
			payloads = append(payloads, p)
			lengths = append(lengths, n)
		}
	}

	out := make([]byte, 0, len(payloads)*core.VarLenElementSize)
	for i, p := range payloads {
		var id uint64
		if lengths[i] > 0 {
			var err error
			if id, err = c.engine.HeapPut(c.handle, p); err != nil {
				return nil, fmt.Errorf("variable-length element %d: %w", i, err)
			}
		}
		out = binary.LittleEndian.AppendUint64(out, lengths[i])
		out = binary.LittleEndian.AppendUint64(out, id)
	}
	return out, nil
}
