// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package core implements the raw structures exchanged between the object
// layer and a storage engine: the datatype message wire format, dataspace
// extents, hyperslab gather/scatter over row-major buffers and compound
// record member access.
package core

import (
	"fmt"
	"strings"
)

// DatatypeClass represents HDF5 datatype class.
type DatatypeClass uint8

// Datatype class constants identify different HDF5 data types for datasets.
const (
	DatatypeFixed     DatatypeClass = 0  // Fixed-point (integers).
	DatatypeFloat     DatatypeClass = 1  // Floating-point.
	DatatypeTime      DatatypeClass = 2  // Time.
	DatatypeString    DatatypeClass = 3  // String.
	DatatypeBitfield  DatatypeClass = 4  // Bitfield.
	DatatypeOpaque    DatatypeClass = 5  // Opaque.
	DatatypeCompound  DatatypeClass = 6  // Compound.
	DatatypeReference DatatypeClass = 7  // Reference.
	DatatypeEnum      DatatypeClass = 8  // Enumerated.
	DatatypeVarLen    DatatypeClass = 9  // Variable-length.
	DatatypeArray     DatatypeClass = 10 // Array.
)

// ByteOrder is the stored byte order of numeric classes.
type ByteOrder uint8

// Byte order constants.
const (
	OrderLE   ByteOrder = 0
	OrderBE   ByteOrder = 1
	OrderVAX  ByteOrder = 2
	OrderNone ByteOrder = 3
)

// StringPadding represents how fixed-length strings are padded.
type StringPadding uint8

// String padding constants.
const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpacePad StringPadding = 2
)

// CharacterSet represents the character encoding of string data.
type CharacterSet uint8

// Character set constants.
const (
	CharsetASCII CharacterSet = 0
	CharsetUTF8  CharacterSet = 1
)

// ReferenceKind distinguishes object and region references.
type ReferenceKind uint8

// Reference kinds.
const (
	RefObject ReferenceKind = 0
	RefRegion ReferenceKind = 1
)

// Storage sizes of the fixed-size reference and variable-length descriptors.
const (
	ObjectRefSize     = 8
	RegionRefSize     = 12
	VarLenElementSize = 16 // uint64 sequence length + uint64 heap ID.
)

// Member is a single field of a compound datatype.
// Members with array shape carry an Array-class Type.
type Member struct {
	Name   string
	Offset uint32
	Type   *Datatype
}

// Datatype is the decoded form of a datatype message.
type Datatype struct {
	Class   DatatypeClass
	Version uint8
	Size    uint32

	// Fixed-point, floating-point, bitfield and enum base.
	Order  ByteOrder
	Signed bool

	// String and variable-length string.
	Padding StringPadding
	CharSet CharacterSet

	// Compound.
	Members []Member

	// Array element, enum base, variable-length base.
	Base *Datatype
	Dims []uint32

	// Enum.
	EnumNames  []string
	EnumValues []int64

	// Opaque.
	Tag string

	// Reference.
	RefKind ReferenceKind

	// Variable-length.
	VarLenString bool
}

// IsFloat64 checks if datatype is IEEE 754 double precision (64-bit).
func (dt *Datatype) IsFloat64() bool {
	return dt.Class == DatatypeFloat && dt.Size == 8
}

// IsFloat32 checks if datatype is IEEE 754 single precision (32-bit).
func (dt *Datatype) IsFloat32() bool {
	return dt.Class == DatatypeFloat && dt.Size == 4
}

// IsCompound checks if datatype is a compound type (struct).
func (dt *Datatype) IsCompound() bool {
	return dt.Class == DatatypeCompound
}

// IsVariableString checks if datatype is a variable-length string.
func (dt *Datatype) IsVariableString() bool {
	return dt.Class == DatatypeVarLen && dt.VarLenString
}

// IsInteger reports whether values of the type are stored as integers.
func (dt *Datatype) IsInteger() bool {
	switch dt.Class {
	case DatatypeFixed, DatatypeEnum:
		return true
	default:
		return false
	}
}

// ArrayLen returns the number of base elements of an array type.
func (dt *Datatype) ArrayLen() uint64 {
	n := uint64(1)
	for _, d := range dt.Dims {
		n *= uint64(d)
	}
	return n
}

// Validate checks class/size consistency recursively.
func (dt *Datatype) Validate() error {
	switch dt.Class {
	case DatatypeFixed, DatatypeBitfield:
		if !validNumericSize(dt.Size) {
			return fmt.Errorf("invalid %s size: %d (must be 1, 2, 4, or 8)", dt.className(), dt.Size)
		}
	case DatatypeFloat:
		if dt.Size != 1 && dt.Size != 2 && dt.Size != 4 && dt.Size != 8 {
			return fmt.Errorf("invalid float size: %d", dt.Size)
		}
		if dt.Signed {
			return fmt.Errorf("float datatype cannot carry a sign flag")
		}
	case DatatypeString:
		if dt.Size == 0 {
			return fmt.Errorf("fixed-length strings must have size > 0")
		}
	case DatatypeOpaque:
		if dt.Size == 0 {
			return fmt.Errorf("opaque datatype must have size > 0")
		}
		if len(dt.Tag) > 255 {
			return fmt.Errorf("opaque tag too long: %d bytes", len(dt.Tag))
		}
	case DatatypeCompound:
		return dt.validateCompound()
	case DatatypeReference:
		if dt.RefKind == RefObject && dt.Size != ObjectRefSize {
			return fmt.Errorf("object reference size must be %d, got %d", ObjectRefSize, dt.Size)
		}
		if dt.RefKind == RefRegion && dt.Size != RegionRefSize {
			return fmt.Errorf("region reference size must be %d, got %d", RegionRefSize, dt.Size)
		}
	case DatatypeEnum:
		return dt.validateEnum()
	case DatatypeVarLen:
		if dt.Size != VarLenElementSize {
			return fmt.Errorf("variable-length size must be %d, got %d", VarLenElementSize, dt.Size)
		}
		if !dt.VarLenString && dt.Base == nil {
			return fmt.Errorf("variable-length sequence has no base type")
		}
		if dt.Base != nil {
			return dt.Base.Validate()
		}
	case DatatypeArray:
		return dt.validateArray()
	default:
		return fmt.Errorf("unsupported datatype class: %d", dt.Class)
	}
	return nil
}

func (dt *Datatype) validateCompound() error {
	if len(dt.Members) == 0 {
		return fmt.Errorf("compound datatype has no members")
	}
	seen := make(map[string]bool, len(dt.Members))
	for i, m := range dt.Members {
		if m.Name == "" {
			return fmt.Errorf("compound member %d has empty name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate compound member %q", m.Name)
		}
		seen[m.Name] = true
		if m.Type == nil {
			return fmt.Errorf("compound member %q has no type", m.Name)
		}
		if err := m.Type.Validate(); err != nil {
			return fmt.Errorf("compound member %q: %w", m.Name, err)
		}
		if uint64(m.Offset)+uint64(m.Type.Size) > uint64(dt.Size) {
			return fmt.Errorf("compound member %q overflows record size %d", m.Name, dt.Size)
		}
	}
	return nil
}

func (dt *Datatype) validateEnum() error {
	if dt.Base == nil || dt.Base.Class != DatatypeFixed {
		return fmt.Errorf("enum base type must be an integer")
	}
	if err := dt.Base.Validate(); err != nil {
		return err
	}
	if dt.Size != dt.Base.Size {
		return fmt.Errorf("enum size %d does not match base size %d", dt.Size, dt.Base.Size)
	}
	if len(dt.EnumNames) != len(dt.EnumValues) {
		return fmt.Errorf("enum has %d names but %d values", len(dt.EnumNames), len(dt.EnumValues))
	}
	return nil
}

func (dt *Datatype) validateArray() error {
	if dt.Base == nil {
		return fmt.Errorf("array type has no base type")
	}
	if len(dt.Dims) == 0 {
		return fmt.Errorf("array type has no dimensions")
	}
	for i, d := range dt.Dims {
		if d == 0 {
			return fmt.Errorf("array dimension %d is zero", i)
		}
	}
	if err := dt.Base.Validate(); err != nil {
		return err
	}
	if uint64(dt.Size) != dt.ArrayLen()*uint64(dt.Base.Size) {
		return fmt.Errorf("array size %d does not match %d x %d", dt.Size, dt.ArrayLen(), dt.Base.Size)
	}
	return nil
}

func validNumericSize(size uint32) bool {
	switch size {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

func (dt *Datatype) className() string {
	switch dt.Class {
	case DatatypeFixed:
		return "integer"
	case DatatypeFloat:
		return "float"
	case DatatypeTime:
		return "time"
	case DatatypeString:
		return "string"
	case DatatypeBitfield:
		return "bitfield"
	case DatatypeOpaque:
		return "opaque"
	case DatatypeCompound:
		return "compound"
	case DatatypeReference:
		return "reference"
	case DatatypeEnum:
		return "enum"
	case DatatypeVarLen:
		return "vlen"
	case DatatypeArray:
		return "array"
	default:
		return fmt.Sprintf("class_%d", dt.Class)
	}
}

// String returns a compact debugging description.
func (dt *Datatype) String() string {
	switch dt.Class {
	case DatatypeCompound:
		parts := make([]string, len(dt.Members))
		for i, m := range dt.Members {
			parts[i] = fmt.Sprintf("%s:%s@%d", m.Name, m.Type, m.Offset)
		}
		return fmt.Sprintf("compound{size=%d, members=[%s]}", dt.Size, strings.Join(parts, ", "))
	case DatatypeArray, DatatypeEnum, DatatypeVarLen:
		if dt.Base != nil {
			return fmt.Sprintf("%s<%s> (size=%d bytes)", dt.className(), dt.Base, dt.Size)
		}
	}
	return fmt.Sprintf("%s (size=%d bytes)", dt.className(), dt.Size)
}

// Equal reports whether two datatypes describe the same storage.
func (dt *Datatype) Equal(other *Datatype) bool {
	if dt == nil || other == nil {
		return dt == other
	}
	if dt.Class != other.Class || dt.Size != other.Size || dt.Order != other.Order ||
		dt.Signed != other.Signed || dt.Padding != other.Padding || dt.CharSet != other.CharSet ||
		dt.Tag != other.Tag || dt.RefKind != other.RefKind || dt.VarLenString != other.VarLenString {
		return false
	}
	if len(dt.Members) != len(other.Members) || len(dt.Dims) != len(other.Dims) ||
		len(dt.EnumNames) != len(other.EnumNames) {
		return false
	}
	for i := range dt.Members {
		a, b := dt.Members[i], other.Members[i]
		if a.Name != b.Name || a.Offset != b.Offset || !a.Type.Equal(b.Type) {
			return false
		}
	}
	for i := range dt.Dims {
		if dt.Dims[i] != other.Dims[i] {
			return false
		}
	}
	for i := range dt.EnumNames {
		if dt.EnumNames[i] != other.EnumNames[i] || dt.EnumValues[i] != other.EnumValues[i] {
			return false
		}
	}
	return dt.Base.Equal(other.Base)
}
