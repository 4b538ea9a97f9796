// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"
)

// Class is the datatype class of stored values.
type Class int

// Datatype classes.
const (
	ClassUnknown Class = iota
	ClassInteger
	ClassFloat
	ClassString
	ClassBitfield
	ClassOpaque
	ClassCompound
	ClassReference
	ClassEnum
	ClassArray
	ClassVarLen
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "integer"
	case ClassFloat:
		return "floating-point"
	case ClassString:
		return "string"
	case ClassBitfield:
		return "bitfield"
	case ClassOpaque:
		return "opaque"
	case ClassCompound:
		return "compound"
	case ClassReference:
		return "reference"
	case ClassEnum:
		return "enum"
	case ClassArray:
		return "array"
	case ClassVarLen:
		return "variable-length"
	default:
		return "unknown"
	}
}

// Order is the byte order of numeric values.
type Order int

// Byte orders. OrderNative resolves to the host order when the type is
// materialized.
const (
	OrderNative Order = iota
	OrderLittleEndian
	OrderBigEndian
	OrderVax
	OrderNone
)

// Sign is the signedness of integer-like values.
type Sign int

// Signs. SignNone applies to every class except Integer, Enum and Bitfield.
const (
	SignTwosComplement Sign = iota
	SignUnsigned
	SignNone
)

// Padding is the padding policy of fixed-length strings.
type Padding int

// String padding policies.
const (
	PadNullTerm Padding = iota
	PadNullPad
	PadSpacePad
)

// Charset is the character set of strings.
type Charset int

// Character sets.
const (
	CharsetASCII Charset = iota
	CharsetUTF8
)

// RefKind distinguishes object and dataset region references.
type RefKind int

// Reference kinds.
const (
	RefObject RefKind = iota
	RefRegion
)

// NativeSize is the width sentinel meaning "platform width". For strings it
// means variable length.
const NativeSize = -1

// Member is one field of a compound datatype. Dims is nil for scalar members
// and holds the array shape otherwise.
type Member struct {
	Name string
	Type *Datatype
	Dims []int
}

// Order returns the number of elements the member holds (1 for scalars).
func (m Member) Order() int {
	n := 1
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

// Datatype describes the shape and interpretation of stored values.
//
// A Datatype is immutable once constructed, except for the enum member table,
// which may be filled in once with SetEnumMembers.
type Datatype struct {
	class Class
	size  int
	order Order
	sign  Sign

	// Enum.
	enumValues []int64
	enumNames  []string

	// Compound.
	members []Member

	// Array element or variable-length base.
	base *Datatype
	dims []int

	// String.
	padding Padding
	charset Charset

	// Opaque.
	tag string

	// Reference.
	refKind RefKind

	// Storage bytes per element as reported by the engine (0 when unknown).
	storageSize int
}

// NewDatatype builds an atomic datatype.
//
// Integer, Float, Bitfield and Enum widths must be 1, 2, 4, 8 or NativeSize.
// Opaque widths may be any positive value or NativeSize. Compound, Reference,
// VarLen and Unknown always report NativeSize; use the dedicated constructors
// to build those. The sign is forced to SignNone for classes other than
// Integer, Enum and Bitfield.
func NewDatatype(class Class, size int, order Order, sign Sign) (*Datatype, error) {
	dt := &Datatype{class: class, size: size, order: order, sign: sign}
	switch class {
	case ClassInteger, ClassFloat, ClassBitfield, ClassEnum:
		if !validWidth(size) {
			return nil, fmt.Errorf("%w: %s width %d (must be 1, 2, 4, 8 or native)", ErrInvalidType, class, size)
		}
		if class == ClassFloat && order == OrderNone {
			return nil, fmt.Errorf("%w: floating-point needs a byte order", ErrInvalidType)
		}
		if order == OrderVax && class != ClassFloat {
			return nil, fmt.Errorf("%w: VAX order applies to floating-point only", ErrInvalidType)
		}
	case ClassOpaque:
		if size <= 0 && size != NativeSize {
			return nil, fmt.Errorf("%w: opaque width %d", ErrInvalidType, size)
		}
		dt.order = OrderNone
	case ClassString:
		if size <= 0 && size != NativeSize {
			return nil, fmt.Errorf("%w: string length %d", ErrInvalidType, size)
		}
		dt.order = OrderNone
	case ClassUnknown:
		dt.size = NativeSize
		dt.order = OrderNone
	default:
		return nil, fmt.Errorf("%w: %s types need their dedicated constructor", ErrInvalidType, class)
	}
	if !signApplies(class) {
		dt.sign = SignNone
	}
	return dt, nil
}

// NewStringType builds a string type. A length of NativeSize declares a
// variable-length string.
func NewStringType(length int, padding Padding, charset Charset) (*Datatype, error) {
	dt, err := NewDatatype(ClassString, length, OrderNone, SignNone)
	if err != nil {
		return nil, err
	}
	dt.padding = padding
	dt.charset = charset
	return dt, nil
}

// NewOpaqueType builds an opaque type of the given width with a descriptive tag.
func NewOpaqueType(size int, tag string) (*Datatype, error) {
	dt, err := NewDatatype(ClassOpaque, size, OrderNone, SignNone)
	if err != nil {
		return nil, err
	}
	if len(tag) > 255 {
		return nil, fmt.Errorf("%w: opaque tag longer than 255 bytes", ErrInvalidType)
	}
	dt.tag = tag
	return dt, nil
}

// NewCompoundType builds a compound type from its ordered members.
func NewCompoundType(members ...Member) (*Datatype, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: compound type needs at least one member", ErrInvalidType)
	}
	seen := make(map[string]bool, len(members))
	for i, m := range members {
		if err := validateName(m.Name); err != nil {
			return nil, fmt.Errorf("%w: member %d: %w", ErrInvalidType, i, err)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidType, m.Name)
		}
		seen[m.Name] = true
		if m.Type == nil || m.Type.class == ClassUnknown {
			return nil, fmt.Errorf("%w: member %q has no type", ErrInvalidType, m.Name)
		}
		for _, d := range m.Dims {
			if d <= 0 {
				return nil, fmt.Errorf("%w: member %q has dimension %d", ErrInvalidType, m.Name, d)
			}
		}
	}
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = Member{Name: m.Name, Type: m.Type, Dims: slices.Clone(m.Dims)}
	}
	return &Datatype{class: ClassCompound, size: NativeSize, order: OrderNone, sign: SignNone, members: out}, nil
}

// NewArrayType builds a fixed-shape array of elem.
func NewArrayType(elem *Datatype, dims ...int) (*Datatype, error) {
	if elem == nil || elem.class == ClassUnknown {
		return nil, fmt.Errorf("%w: array needs an element type", ErrInvalidType)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: array needs at least one dimension", ErrInvalidType)
	}
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: array dimension %d", ErrInvalidType, d)
		}
	}
	return &Datatype{
		class: ClassArray, size: NativeSize, order: OrderNone, sign: SignNone,
		base: elem, dims: slices.Clone(dims),
	}, nil
}

// NewReferenceType builds an object or dataset region reference type.
func NewReferenceType(kind RefKind) *Datatype {
	return &Datatype{class: ClassReference, size: NativeSize, order: OrderNone, sign: SignNone, refKind: kind}
}

// NewVarLenType builds a variable-length sequence of base.
func NewVarLenType(base *Datatype) (*Datatype, error) {
	if base == nil || base.class == ClassUnknown {
		return nil, fmt.Errorf("%w: variable-length type needs a base type", ErrInvalidType)
	}
	return &Datatype{class: ClassVarLen, size: NativeSize, order: OrderNone, sign: SignNone, base: base}, nil
}

func validWidth(size int) bool {
	switch size {
	case 1, 2, 4, 8, NativeSize:
		return true
	default:
		return false
	}
}

func signApplies(class Class) bool {
	return class == ClassInteger || class == ClassEnum || class == ClassBitfield
}

// Class returns the datatype class.
func (dt *Datatype) Class() Class { return dt.class }

// Size returns the declared width in bytes, or NativeSize. For strings it is
// the declared character length.
func (dt *Datatype) Size() int { return dt.size }

// Order returns the declared byte order.
func (dt *Datatype) Order() Order { return dt.order }

// Sign returns the declared signedness.
func (dt *Datatype) Sign() Sign { return dt.sign }

// IsUnsigned reports whether values are unsigned integers.
func (dt *Datatype) IsUnsigned() bool {
	return signApplies(dt.class) && dt.sign == SignUnsigned
}

// IsCompound reports whether the type is a compound.
func (dt *Datatype) IsCompound() bool { return dt.class == ClassCompound }

// IsVariableString reports whether the type is a variable-length string.
func (dt *Datatype) IsVariableString() bool {
	return dt.class == ClassString && dt.size == NativeSize
}

// Members returns the compound members. The slice must not be modified.
func (dt *Datatype) Members() []Member { return dt.members }

// BaseType returns the array element or variable-length base type.
func (dt *Datatype) BaseType() *Datatype { return dt.base }

// ArrayDims returns the array shape.
func (dt *Datatype) ArrayDims() []int { return slices.Clone(dt.dims) }

// ArrayOrder returns the number of elements per array value (1 for non-arrays).
func (dt *Datatype) ArrayOrder() int {
	n := 1
	for _, d := range dt.dims {
		n *= d
	}
	return n
}

// Padding returns the string padding policy.
func (dt *Datatype) Padding() Padding { return dt.padding }

// Charset returns the string character set.
func (dt *Datatype) Charset() Charset { return dt.charset }

// Tag returns the opaque tag.
func (dt *Datatype) Tag() string { return dt.tag }

// ReferenceKind returns the reference subkind.
func (dt *Datatype) ReferenceKind() RefKind { return dt.refKind }

// ElementSize returns the storage bytes per element. Native widths are
// resolved the same way Materialize resolves them; compound members are packed.
// It returns 0 for types that cannot be materialized.
func (dt *Datatype) ElementSize() int {
	if dt.storageSize > 0 {
		return dt.storageSize
	}
	raw, err := dt.Materialize()
	if err != nil {
		return 0
	}
	return int(raw.Size)
}

// Equal reports whether two datatypes describe the same stored layout.
func (dt *Datatype) Equal(other *Datatype) bool {
	if dt == nil || other == nil {
		return dt == other
	}
	a, errA := dt.Materialize()
	b, errB := other.Materialize()
	if errA != nil || errB != nil {
		return errA != nil && errB != nil && dt.class == other.class && dt.size == other.size
	}
	return a.Equal(b)
}

// String implements fmt.Stringer.
func (dt *Datatype) String() string {
	return dt.Description()
}
