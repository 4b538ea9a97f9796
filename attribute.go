// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object/internal/core"
	"github.com/scigolib/h5object/internal/utils"
)

// Attribute is a small named value attached to a Node.
//
// An Attribute built with NewAttribute is detached until it is written with
// Node.WriteMetadata. SetParentObject moves an attribute to another owner;
// the value is written there by the next WriteMetadata.
type Attribute struct {
	name  string
	dtype *Datatype
	dims  []uint64
	value any

	raw     []byte
	rawType *core.Datatype
	source  Node // node whose storage raw was read from

	owner     Node
	persisted bool
}

// NewAttribute builds a detached attribute. Empty dims declare a scalar.
func NewAttribute(name string, dt *Datatype, dims []uint64, value any) (*Attribute, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if dt == nil || dt.IsEmpty() {
		return nil, fmt.Errorf("%w: attribute %q has no type", ErrInvalidType, name)
	}
	if _, err := utils.ElementCount(dims); err != nil {
		return nil, fmt.Errorf("%w: attribute %q: %w", ErrInvalidSelection, name, err)
	}
	return &Attribute{name: name, dtype: dt, dims: slices.Clone(dims), value: value}, nil
}

func attributeFromRecord(owner Node, rec AttributeRecord) (*Attribute, error) {
	ct, err := core.ParseDatatype(rec.RawType)
	if err != nil {
		return nil, fmt.Errorf("%w: attribute %q: %w", ErrInvalidType, rec.Name, err)
	}
	return &Attribute{
		name:      rec.Name,
		dtype:     fromCore(ct),
		dims:      slices.Clone(rec.Dims),
		raw:       rec.Data,
		rawType:   ct,
		source:    owner,
		owner:     owner,
		persisted: true,
	}, nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Datatype returns the attribute type.
func (a *Attribute) Datatype() *Datatype { return a.dtype }

// Dims returns the attribute shape (empty for a scalar).
func (a *Attribute) Dims() []uint64 { return slices.Clone(a.dims) }

// Owner returns the node the attribute belongs to, or nil.
func (a *Attribute) Owner() Node { return a.owner }

// SetParentObject reassigns the owner. The attribute counts as detached
// until it is written to the new owner. A stored value not yet decoded is
// still read from the previous owner.
func (a *Attribute) SetParentObject(n Node) {
	if a.owner != nil && n != nil && sameNode(a.owner, n) {
		return
	}
	a.owner = n
	a.persisted = false
}

// IsPersisted reports whether the attribute is stored on its owner.
func (a *Attribute) IsPersisted() bool { return a.persisted }

// SetValue replaces the in-memory value. It is stored by the next
// WriteMetadata.
func (a *Attribute) SetValue(value any) {
	a.value = value
	a.raw = nil
	a.source = nil
}

// Value returns the attribute value, decoding stored bytes on first use.
func (a *Attribute) Value() (any, error) {
	if a.value != nil || a.raw == nil {
		return a.value, nil
	}
	if a.source == nil {
		return nil, fmt.Errorf("%w: attribute %q has no owner", ErrInvalidHandle, a.name)
	}
	o := a.source.base()
	var v any
	err := o.withHandle(func(h Handle) error {
		codec := valueCodec{engine: o.file.engine, handle: h, enumNames: o.file.cfg.enumNames}
		var err error
		v, err = codec.decode(a.rawType, a.raw)
		return err
	})
	if err != nil {
		return nil, utils.WrapPathError("attribute read failed", o.FullName()+"@"+a.name, err)
	}
	a.value = v
	return v, nil
}

func (a *Attribute) elementCount() uint64 {
	n, _ := utils.ElementCount(a.dims)
	return n
}
