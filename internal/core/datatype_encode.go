// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Datatype message versions written by EncodeDatatype.
const (
	datatypeVersionBasic = 1
	datatypeVersionV3    = 3
)

// EncodeDatatype encodes a datatype as a datatype message.
//
// Layout (shared with ParseDatatype):
//   - Bytes 0-3: Class (4 bits) | Version (4 bits) | Class bit field (24 bits)
//   - Bytes 4-7: Size of one element in bytes
//   - Properties (class specific, see the encode* helpers)
//
// Compound, enum and array types are written as version 3; all other classes
// as version 1.
func EncodeDatatype(dt *Datatype) ([]byte, error) {
	if dt == nil {
		return nil, errors.New("nil datatype")
	}
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return encodeDatatype(nil, dt)
}

func encodeDatatype(buf []byte, dt *Datatype) ([]byte, error) {
	switch dt.Class {
	case DatatypeFixed, DatatypeBitfield:
		return encodeFixed(buf, dt), nil
	case DatatypeFloat:
		return encodeFloat(buf, dt), nil
	case DatatypeString:
		bits := uint32(dt.Padding&0x0F) | uint32(dt.CharSet&0x0F)<<4
		return appendHeader(buf, dt.Class, datatypeVersionBasic, bits, dt.Size), nil
	case DatatypeOpaque:
		return encodeOpaque(buf, dt), nil
	case DatatypeCompound:
		return encodeCompound(buf, dt)
	case DatatypeReference:
		return appendHeader(buf, dt.Class, datatypeVersionBasic, uint32(dt.RefKind&0x0F), dt.Size), nil
	case DatatypeEnum:
		return encodeEnum(buf, dt)
	case DatatypeVarLen:
		return encodeVarLen(buf, dt)
	case DatatypeArray:
		return encodeArray(buf, dt)
	default:
		return nil, fmt.Errorf("unsupported datatype class: %d", dt.Class)
	}
}

func appendHeader(buf []byte, class DatatypeClass, version uint8, bits, size uint32) []byte {
	classAndVersion := uint32(class) | uint32(version)<<4 | bits<<8
	buf = binary.LittleEndian.AppendUint32(buf, classAndVersion)
	return binary.LittleEndian.AppendUint32(buf, size)
}

// encodeFixed writes fixed-point and bitfield types.
// Bit field: bit 0 byte order (1 = big-endian), bit 3 signed.
// Properties: bit offset (2 bytes) + bit precision (2 bytes).
func encodeFixed(buf []byte, dt *Datatype) []byte {
	var bits uint32
	if dt.Order == OrderBE {
		bits |= 0x01
	}
	if dt.Signed {
		bits |= 0x08
	}
	buf = appendHeader(buf, dt.Class, datatypeVersionBasic, bits, dt.Size)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	//nolint:gosec // G115: size validated to 1..8
	return binary.LittleEndian.AppendUint16(buf, uint16(dt.Size*8))
}

// encodeFloat writes IEEE 754 layouts.
// Bit field: bits 0 and 6 byte order (00 LE, 01 BE, 11 VAX), bit 3-5 padding,
// bits 8-15 sign location.
// Properties (12 bytes): bit offset, precision, exponent location and size,
// mantissa location and size, exponent bias.
func encodeFloat(buf []byte, dt *Datatype) []byte {
	var expBits, mantBits uint8
	var bias uint32
	switch dt.Size {
	case 1: // FP8 E4M3
		expBits, mantBits, bias = 4, 3, 7
	case 2:
		expBits, mantBits, bias = 5, 10, 15
	case 4:
		expBits, mantBits, bias = 8, 23, 127
	default:
		expBits, mantBits, bias = 11, 52, 1023
	}
	precision := uint16(dt.Size * 8) //nolint:gosec // G115: size validated to 1..8

	var bits uint32
	switch dt.Order {
	case OrderBE:
		bits |= 0x01
	case OrderVAX:
		bits |= 0x41
	}
	bits |= uint32(precision-1) << 8

	buf = appendHeader(buf, dt.Class, datatypeVersionBasic, bits, dt.Size)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint16(buf, precision)
	buf = append(buf, mantBits, expBits, 0, mantBits)
	return binary.LittleEndian.AppendUint32(buf, bias)
}

// encodeOpaque writes the tag NUL padded to a multiple of 8 bytes.
// Bit field: padded tag length.
func encodeOpaque(buf []byte, dt *Datatype) []byte {
	tagLen := 0
	if dt.Tag != "" {
		tagLen = (len(dt.Tag) + 8) / 8 * 8
	}
	//nolint:gosec // G115: tag length validated to <= 255
	buf = appendHeader(buf, dt.Class, datatypeVersionBasic, uint32(tagLen), dt.Size)
	tag := make([]byte, tagLen)
	copy(tag, dt.Tag)
	return append(buf, tag...)
}

// encodeCompound writes a version 3 compound: member count (4 bytes), then per
// member the NUL terminated name, the byte offset (4 bytes) and the member
// datatype inline.
func encodeCompound(buf []byte, dt *Datatype) ([]byte, error) {
	//nolint:gosec // G115: member count bounded by memory
	buf = appendHeader(buf, dt.Class, datatypeVersionV3, uint32(len(dt.Members))&0xFFFF, dt.Size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(dt.Members))) //nolint:gosec // G115: see above
	for _, m := range dt.Members {
		buf = append(buf, m.Name...)
		buf = append(buf, 0)
		buf = binary.LittleEndian.AppendUint32(buf, m.Offset)
		var err error
		if buf, err = encodeDatatype(buf, m.Type); err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
	}
	return buf, nil
}

// encodeEnum writes the base type, the NUL terminated names and then the
// values packed in the base type's size and order.
func encodeEnum(buf []byte, dt *Datatype) ([]byte, error) {
	//nolint:gosec // G115: member count bounded by memory
	buf = appendHeader(buf, dt.Class, datatypeVersionV3, uint32(len(dt.EnumNames))&0xFFFF, dt.Size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(dt.EnumNames))) //nolint:gosec // G115: see above
	var err error
	if buf, err = encodeDatatype(buf, dt.Base); err != nil {
		return nil, fmt.Errorf("enum base: %w", err)
	}
	for _, name := range dt.EnumNames {
		buf = append(buf, name...)
		buf = append(buf, 0)
	}
	order := byteOrder(dt.Base.Order)
	for _, v := range dt.EnumValues {
		buf = appendSized(buf, uint64(v), int(dt.Size), order) //nolint:gosec // G115: two's complement bit pattern
	}
	return buf, nil
}

// encodeVarLen writes a variable-length type.
// Bit field: bits 0-3 kind (0 sequence, 1 string), bits 4-7 padding,
// bits 8-11 character set. Properties: base type (sequences only).
func encodeVarLen(buf []byte, dt *Datatype) ([]byte, error) {
	var bits uint32
	if dt.VarLenString {
		bits = 0x01 | uint32(dt.Padding&0x0F)<<4 | uint32(dt.CharSet&0x0F)<<8
	}
	buf = appendHeader(buf, dt.Class, datatypeVersionBasic, bits, dt.Size)
	if dt.VarLenString {
		return buf, nil
	}
	return encodeDatatype(buf, dt.Base)
}

// encodeArray writes a version 3 array: rank (1 byte), dims (4 bytes each),
// then the element type.
func encodeArray(buf []byte, dt *Datatype) ([]byte, error) {
	buf = appendHeader(buf, dt.Class, datatypeVersionV3, 0, dt.Size)
	buf = append(buf, byte(len(dt.Dims)))
	for _, d := range dt.Dims {
		buf = binary.LittleEndian.AppendUint32(buf, d)
	}
	return encodeDatatype(buf, dt.Base)
}

// sizedOrder reads and appends fixed-width integers in one byte order.
type sizedOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func byteOrder(order ByteOrder) sizedOrder {
	if order == OrderBE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func appendSized(buf []byte, v uint64, size int, order sizedOrder) []byte {
	switch size {
	case 1:
		return append(buf, byte(v))
	case 2:
		return order.AppendUint16(buf, uint16(v)) //nolint:gosec // G115: truncation intended
	case 4:
		return order.AppendUint32(buf, uint32(v)) //nolint:gosec // G115: truncation intended
	default:
		return order.AppendUint64(buf, v)
	}
}

func readSized(data []byte, size int, order sizedOrder, signed bool) int64 {
	switch size {
	case 1:
		if signed {
			return int64(int8(data[0]))
		}
		return int64(data[0])
	case 2:
		v := order.Uint16(data)
		if signed {
			return int64(int16(v)) //nolint:gosec // G115: two's complement reinterpretation
		}
		return int64(v)
	case 4:
		v := order.Uint32(data)
		if signed {
			return int64(int32(v)) //nolint:gosec // G115: two's complement reinterpretation
		}
		return int64(v)
	default:
		return int64(order.Uint64(data)) //nolint:gosec // G115: two's complement reinterpretation
	}
}
