// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package core

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// maxTypeDepth bounds recursion through nested compound/array/enum/vlen types.
const maxTypeDepth = 32

// ParseDatatype parses a complete datatype message.
func ParseDatatype(data []byte) (*Datatype, error) {
	dt, n, err := parseDatatype(data, 0)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("datatype message has %d trailing bytes", len(data)-n)
	}
	return dt, nil
}

// parseDatatype parses one datatype at the start of data and returns the
// number of bytes consumed.
func parseDatatype(data []byte, depth int) (*Datatype, int, error) {
	if depth > maxTypeDepth {
		return nil, 0, errors.New("datatype nesting too deep")
	}
	if len(data) < 8 {
		return nil, 0, errors.New("datatype message too short")
	}

	classAndVersion := binary.LittleEndian.Uint32(data[0:4])
	dt := &Datatype{
		//nolint:gosec // G115: HDF5 binary format unpacking
		Class: DatatypeClass(classAndVersion & 0x0F),
		//nolint:gosec // G115: HDF5 binary format unpacking
		Version: uint8((classAndVersion >> 4) & 0x0F),
		Size:    binary.LittleEndian.Uint32(data[4:8]),
		Order:   OrderNone,
	}
	bits := (classAndVersion >> 8) & 0x00FFFFFF
	props := data[8:]

	var n int
	var err error
	switch dt.Class {
	case DatatypeFixed, DatatypeBitfield:
		n, err = parseFixed(dt, bits, props)
	case DatatypeFloat:
		n, err = parseFloat(dt, bits, props)
	case DatatypeString:
		dt.Padding = StringPadding(bits & 0x0F)        //nolint:gosec // G115: 4-bit field
		dt.CharSet = CharacterSet((bits >> 4) & 0x0F) //nolint:gosec // G115: 4-bit field
	case DatatypeOpaque:
		n, err = parseOpaque(dt, bits, props)
	case DatatypeCompound:
		n, err = parseCompound(dt, props, depth)
	case DatatypeReference:
		dt.RefKind = ReferenceKind(bits & 0x0F) //nolint:gosec // G115: 4-bit field
	case DatatypeEnum:
		n, err = parseEnum(dt, props, depth)
	case DatatypeVarLen:
		n, err = parseVarLen(dt, bits, props, depth)
	case DatatypeArray:
		n, err = parseArray(dt, props, depth)
	default:
		return nil, 0, fmt.Errorf("unsupported datatype class: %d", dt.Class)
	}
	if err != nil {
		return nil, 0, err
	}
	return dt, 8 + n, nil
}

func parseFixed(dt *Datatype, bits uint32, props []byte) (int, error) {
	if len(props) < 4 {
		return 0, fmt.Errorf("%s properties truncated", dt.className())
	}
	dt.Order = OrderLE
	if bits&0x01 != 0 {
		dt.Order = OrderBE
	}
	dt.Signed = bits&0x08 != 0
	return 4, nil
}

func parseFloat(dt *Datatype, bits uint32, props []byte) (int, error) {
	if len(props) < 12 {
		return 0, errors.New("float properties truncated")
	}
	switch bits & 0x41 {
	case 0x00:
		dt.Order = OrderLE
	case 0x01:
		dt.Order = OrderBE
	case 0x41:
		dt.Order = OrderVAX
	default:
		return 0, fmt.Errorf("invalid float byte order bits: 0x%x", bits&0x41)
	}
	return 12, nil
}

func parseOpaque(dt *Datatype, bits uint32, props []byte) (int, error) {
	tagLen := int(bits & 0xFF)
	if len(props) < tagLen {
		return 0, errors.New("opaque tag truncated")
	}
	end := 0
	for end < tagLen && props[end] != 0 {
		end++
	}
	dt.Tag = string(props[:end])
	return tagLen, nil
}

func parseCompound(dt *Datatype, props []byte, depth int) (int, error) {
	if dt.Version != datatypeVersionV3 {
		return 0, fmt.Errorf("unsupported compound datatype version: %d", dt.Version)
	}
	if len(props) < 4 {
		return 0, errors.New("compound v3 properties too short")
	}
	count := binary.LittleEndian.Uint32(props[0:4])
	offset := 4

	dt.Members = make([]Member, 0, count)
	for i := uint32(0); i < count; i++ {
		name, next, err := readCString(props, offset)
		if err != nil {
			return 0, fmt.Errorf("member %d: %w", i, err)
		}
		offset = next
		if offset+4 > len(props) {
			return 0, fmt.Errorf("member %d (%s): offset truncated", i, name)
		}
		memberOffset := binary.LittleEndian.Uint32(props[offset : offset+4])
		offset += 4

		memberType, n, err := parseDatatype(props[offset:], depth+1)
		if err != nil {
			return 0, fmt.Errorf("member %d (%s): failed to parse datatype: %w", i, name, err)
		}
		offset += n

		dt.Members = append(dt.Members, Member{Name: name, Offset: memberOffset, Type: memberType})
	}
	return offset, nil
}

func parseEnum(dt *Datatype, props []byte, depth int) (int, error) {
	if len(props) < 4 {
		return 0, errors.New("enum properties too short")
	}
	count := int(binary.LittleEndian.Uint32(props[0:4]))
	offset := 4

	base, n, err := parseDatatype(props[offset:], depth+1)
	if err != nil {
		return 0, fmt.Errorf("enum base: %w", err)
	}
	if base.Class != DatatypeFixed {
		return 0, errors.New("enum base type must be an integer")
	}
	offset += n
	dt.Base = base
	dt.Order = base.Order
	dt.Signed = base.Signed

	dt.EnumNames = make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, next, err := readCString(props, offset)
		if err != nil {
			return 0, fmt.Errorf("enum name %d: %w", i, err)
		}
		dt.EnumNames = append(dt.EnumNames, name)
		offset = next
	}

	size := int(dt.Size)
	if offset+count*size > len(props) {
		return 0, errors.New("enum values truncated")
	}
	order := byteOrder(base.Order)
	dt.EnumValues = make([]int64, count)
	for i := 0; i < count; i++ {
		dt.EnumValues[i] = readSized(props[offset:], size, order, base.Signed)
		offset += size
	}
	return offset, nil
}

func parseVarLen(dt *Datatype, bits uint32, props []byte, depth int) (int, error) {
	if bits&0x0F == 1 {
		dt.VarLenString = true
		dt.Padding = StringPadding((bits >> 4) & 0x0F) //nolint:gosec // G115: 4-bit field
		dt.CharSet = CharacterSet((bits >> 8) & 0x0F)  //nolint:gosec // G115: 4-bit field
		return 0, nil
	}
	base, n, err := parseDatatype(props, depth+1)
	if err != nil {
		return 0, fmt.Errorf("variable-length base: %w", err)
	}
	dt.Base = base
	return n, nil
}

func parseArray(dt *Datatype, props []byte, depth int) (int, error) {
	if len(props) < 1 {
		return 0, errors.New("array properties too short")
	}
	rank := int(props[0])
	offset := 1
	if offset+4*rank > len(props) {
		return 0, errors.New("array dimensions truncated")
	}
	dt.Dims = make([]uint32, rank)
	for i := range dt.Dims {
		dt.Dims[i] = binary.LittleEndian.Uint32(props[offset:])
		offset += 4
	}
	base, n, err := parseDatatype(props[offset:], depth+1)
	if err != nil {
		return 0, fmt.Errorf("array base: %w", err)
	}
	dt.Base = base
	return offset + n, nil
}

func readCString(data []byte, start int) (string, int, error) {
	end := start
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", 0, errors.New("name not null-terminated")
	}
	return string(data[start:end]), end + 1, nil
}
