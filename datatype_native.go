// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"encoding/binary"
	"fmt"

	"github.com/scigolib/h5object/internal/core"
)

// Platform widths used when a native width is materialized.
const (
	nativeIntSize      = 4
	nativeFloatSize    = 4
	nativeBitfieldSize = 1
	nativeOpaqueSize   = 1
)

var hostBigEndian = binary.NativeEndian.Uint16([]byte{0x00, 0x01}) == 0x0001

// FromNative describes the datatype of an open dataset, attribute owner or
// named datatype handle.
//
// FromNative never fails: when the handle is invalid, closed or does not
// carry a type, it returns an empty descriptor of class ClassUnknown with
// width 0 so callers can check it before use.
func FromNative(e Engine, h Handle) *Datatype {
	if e == nil {
		return emptyDatatype()
	}
	raw, err := e.DescribeType(h)
	if err != nil {
		return emptyDatatype()
	}
	dt, err := fromRawType(raw)
	if err != nil {
		return emptyDatatype()
	}
	return dt
}

func emptyDatatype() *Datatype {
	return &Datatype{class: ClassUnknown, size: 0, order: OrderNone, sign: SignNone}
}

// IsEmpty reports whether the descriptor is the empty result of a failed
// FromNative.
func (dt *Datatype) IsEmpty() bool {
	return dt.class == ClassUnknown && dt.size == 0
}

// fromRawType parses an encoded datatype.
func fromRawType(raw []byte) (*Datatype, error) {
	ct, err := core.ParseDatatype(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidType, err)
	}
	return fromCore(ct), nil
}

func fromCore(ct *core.Datatype) *Datatype {
	dt := &Datatype{size: int(ct.Size), order: OrderNone, sign: SignNone, storageSize: int(ct.Size)}
	switch ct.Class {
	case core.DatatypeFixed, core.DatatypeBitfield, core.DatatypeEnum:
		dt.class = ClassInteger
		if ct.Class == core.DatatypeBitfield {
			dt.class = ClassBitfield
		}
		dt.order = orderFromCore(ct.Order)
		dt.sign = SignUnsigned
		if ct.Signed {
			dt.sign = SignTwosComplement
		}
		if ct.Class == core.DatatypeEnum {
			dt.class = ClassEnum
			dt.enumNames = append([]string(nil), ct.EnumNames...)
			dt.enumValues = append([]int64(nil), ct.EnumValues...)
		}
	case core.DatatypeFloat:
		dt.class = ClassFloat
		dt.order = orderFromCore(ct.Order)
	case core.DatatypeString:
		dt.class = ClassString
		dt.padding = Padding(ct.Padding)
		dt.charset = Charset(ct.CharSet)
	case core.DatatypeOpaque:
		dt.class = ClassOpaque
		dt.tag = ct.Tag
	case core.DatatypeCompound:
		dt.class = ClassCompound
		dt.size = NativeSize
		dt.members = make([]Member, len(ct.Members))
		for i, m := range ct.Members {
			dt.members[i] = memberFromCore(m)
		}
	case core.DatatypeReference:
		dt.class = ClassReference
		dt.size = NativeSize
		dt.refKind = RefKind(ct.RefKind)
	case core.DatatypeVarLen:
		if ct.VarLenString {
			dt.class = ClassString
			dt.size = NativeSize
			dt.padding = Padding(ct.Padding)
			dt.charset = Charset(ct.CharSet)
			break
		}
		dt.class = ClassVarLen
		dt.size = NativeSize
		dt.base = fromCore(ct.Base)
	case core.DatatypeArray:
		dt.class = ClassArray
		dt.size = NativeSize
		dt.base = fromCore(ct.Base)
		dt.dims = make([]int, len(ct.Dims))
		for i, d := range ct.Dims {
			dt.dims[i] = int(d)
		}
	default:
		dt.class = ClassUnknown
		dt.size = NativeSize
	}
	return dt
}

// memberFromCore unwraps array-typed members into element type plus dims.
func memberFromCore(m core.Member) Member {
	if m.Type.Class == core.DatatypeArray {
		dims := make([]int, len(m.Type.Dims))
		for i, d := range m.Type.Dims {
			dims[i] = int(d)
		}
		return Member{Name: m.Name, Type: fromCore(m.Type.Base), Dims: dims}
	}
	return Member{Name: m.Name, Type: fromCore(m.Type)}
}

func orderFromCore(o core.ByteOrder) Order {
	switch o {
	case core.OrderLE:
		return OrderLittleEndian
	case core.OrderBE:
		return OrderBigEndian
	case core.OrderVAX:
		return OrderVax
	default:
		return OrderNone
	}
}

func (dt *Datatype) coreOrder() core.ByteOrder {
	switch dt.order {
	case OrderLittleEndian:
		return core.OrderLE
	case OrderBigEndian:
		return core.OrderBE
	case OrderVax:
		return core.OrderVAX
	default:
		if hostBigEndian {
			return core.OrderBE
		}
		return core.OrderLE
	}
}

// resolvedSize returns the concrete width, substituting the platform width
// for NativeSize.
func (dt *Datatype) resolvedSize(native int) uint32 {
	if dt.size == NativeSize {
		return uint32(native) //nolint:gosec // G115: small constant
	}
	return uint32(dt.size) //nolint:gosec // G115: validated positive
}

// Materialize resolves native widths and orders and returns the concrete
// storage layout handed to the engine.
func (dt *Datatype) Materialize() (*core.Datatype, error) {
	ct, err := dt.materialize(0)
	if err != nil {
		return nil, err
	}
	if err := ct.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidType, err)
	}
	return ct, nil
}

// RawType returns the encoded datatype passed to Engine calls.
func (dt *Datatype) RawType() ([]byte, error) {
	ct, err := dt.Materialize()
	if err != nil {
		return nil, err
	}
	raw, err := core.EncodeDatatype(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidType, err)
	}
	return raw, nil
}

func (dt *Datatype) materialize(depth int) (*core.Datatype, error) {
	if depth > 32 {
		return nil, fmt.Errorf("%w: type nesting too deep", ErrInvalidType)
	}
	switch dt.class {
	case ClassInteger, ClassEnum:
		base := &core.Datatype{
			Class:  core.DatatypeFixed,
			Size:   dt.resolvedSize(nativeIntSize),
			Order:  dt.coreOrder(),
			Signed: dt.sign != SignUnsigned,
		}
		if dt.class == ClassInteger {
			return base, nil
		}
		return &core.Datatype{
			Class: core.DatatypeEnum, Size: base.Size, Order: base.Order, Signed: base.Signed,
			Base: base, EnumNames: append([]string(nil), dt.enumNames...),
			EnumValues: append([]int64(nil), dt.enumValues...),
		}, nil
	case ClassFloat:
		return &core.Datatype{Class: core.DatatypeFloat, Size: dt.resolvedSize(nativeFloatSize), Order: dt.coreOrder()}, nil
	case ClassBitfield:
		return &core.Datatype{
			Class: core.DatatypeBitfield, Size: dt.resolvedSize(nativeBitfieldSize),
			Order: dt.coreOrder(), Signed: dt.sign == SignTwosComplement,
		}, nil
	case ClassOpaque:
		return &core.Datatype{
			Class: core.DatatypeOpaque, Size: dt.resolvedSize(nativeOpaqueSize), Order: core.OrderNone, Tag: dt.tag,
		}, nil
	case ClassString:
		if dt.size == NativeSize {
			return &core.Datatype{
				Class: core.DatatypeVarLen, Size: core.VarLenElementSize, Order: core.OrderNone,
				VarLenString: true, Padding: core.StringPadding(dt.padding), CharSet: core.CharacterSet(dt.charset),
			}, nil
		}
		return &core.Datatype{
			Class: core.DatatypeString, Size: uint32(dt.size), Order: core.OrderNone, //nolint:gosec // G115: validated positive
			Padding: core.StringPadding(dt.padding), CharSet: core.CharacterSet(dt.charset),
		}, nil
	case ClassCompound:
		return dt.materializeCompound(depth)
	case ClassReference:
		size := uint32(core.ObjectRefSize)
		if dt.refKind == RefRegion {
			size = core.RegionRefSize
		}
		return &core.Datatype{
			Class: core.DatatypeReference, Size: size, Order: core.OrderNone, RefKind: core.ReferenceKind(dt.refKind),
		}, nil
	case ClassVarLen:
		if dt.base == nil {
			return nil, fmt.Errorf("%w: variable-length type without base", ErrInvalidType)
		}
		base, err := dt.base.materialize(depth + 1)
		if err != nil {
			return nil, err
		}
		return &core.Datatype{Class: core.DatatypeVarLen, Size: core.VarLenElementSize, Order: core.OrderNone, Base: base}, nil
	case ClassArray:
		if dt.base == nil {
			return nil, fmt.Errorf("%w: array type without element type", ErrInvalidType)
		}
		base, err := dt.base.materialize(depth + 1)
		if err != nil {
			return nil, err
		}
		return arrayOf(base, dt.dims), nil
	default:
		return nil, fmt.Errorf("%w: cannot materialize %s type", ErrInvalidType, dt.class)
	}
}

// materializeCompound packs members back to back in declaration order.
func (dt *Datatype) materializeCompound(depth int) (*core.Datatype, error) {
	if len(dt.members) == 0 {
		return nil, fmt.Errorf("%w: compound type without members", ErrInvalidType)
	}
	ct := &core.Datatype{Class: core.DatatypeCompound, Order: core.OrderNone, Members: make([]core.Member, len(dt.members))}
	offset := uint32(0)
	for i, m := range dt.members {
		mt, err := m.Type.materialize(depth + 1)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
		if len(m.Dims) > 0 {
			mt = arrayOf(mt, m.Dims)
		}
		ct.Members[i] = core.Member{Name: m.Name, Offset: offset, Type: mt}
		offset += mt.Size
	}
	ct.Size = offset
	return ct, nil
}

func arrayOf(base *core.Datatype, dims []int) *core.Datatype {
	cd := make([]uint32, len(dims))
	n := uint32(1)
	for i, d := range dims {
		cd[i] = uint32(d) //nolint:gosec // G115: validated positive
		n *= cd[i]
	}
	return &core.Datatype{Class: core.DatatypeArray, Size: n * base.Size, Order: core.OrderNone, Dims: cd, Base: base}
}
