// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object/internal/utils"
)

// Metadata returns the attributes of the object in storage order, loading
// them on first use. The returned slice must not be modified.
func (o *object) Metadata() ([]*Attribute, error) {
	if o.attrsLoaded {
		return o.attrs, nil
	}
	var recs []AttributeRecord
	err := o.withHandle(func(h Handle) error {
		var err error
		recs, err = o.file.engine.Attributes(h)
		return err
	})
	if err != nil {
		return nil, utils.WrapPathError("attribute list failed", o.FullName(), err)
	}

	attrs := make([]*Attribute, 0, len(recs))
	for _, rec := range recs {
		a, err := attributeFromRecord(o.self, rec)
		if err != nil {
			return nil, utils.WrapPathError("attribute list failed", o.FullName(), err)
		}
		attrs = append(attrs, a)
	}
	o.attrs = attrs
	o.attrsLoaded = true
	return attrs, nil
}

// HasAttribute reports whether the object carries at least one attribute.
func (o *object) HasAttribute() bool {
	attrs, err := o.Metadata()
	return err == nil && len(attrs) > 0
}

// Attribute returns the attribute called name.
func (o *object) Attribute(name string) (*Attribute, error) {
	attrs, err := o.Metadata()
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		if a.name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: attribute %q on %s", ErrNotFound, name, o.FullName())
}

// WriteMetadata stores attr on the object, replacing a stored attribute of
// the same name, and adds it to the attribute list. A detached attribute, or
// one owned by another object, becomes owned by this object.
func (o *object) WriteMetadata(attr *Attribute) error {
	if attr == nil {
		return fmt.Errorf("%w: nil attribute", ErrInvalidName)
	}
	if err := o.file.checkWritable(); err != nil {
		return err
	}
	attrs, err := o.Metadata()
	if err != nil {
		return err
	}
	value, err := attr.Value()
	if err != nil {
		return err
	}
	ct, err := attr.dtype.Materialize()
	if err != nil {
		return err
	}
	rawType, err := attr.dtype.RawType()
	if err != nil {
		return err
	}

	err = o.withHandle(func(h Handle) error {
		codec := valueCodec{engine: o.file.engine, handle: h, enumNames: o.file.cfg.enumNames}
		data, n, err := codec.encode(ct, value)
		if err != nil {
			return err
		}
		if want := attr.elementCount(); n != want {
			return fmt.Errorf("%w: got %d elements, attribute holds %d", ErrSizeMismatch, n, want)
		}
		return o.file.engine.WriteAttribute(h, AttributeRecord{
			Name:    attr.name,
			RawType: rawType,
			Dims:    slices.Clone(attr.dims),
			Data:    data,
		})
	})
	if err != nil {
		return utils.WrapPathError("attribute write failed", o.FullName()+"@"+attr.name, err)
	}

	attr.owner = o.self
	attr.value = value
	attr.raw, attr.rawType, attr.source = nil, ct, nil
	attr.persisted = true
	for i, a := range attrs {
		if a.name == attr.name {
			o.attrs[i] = attr
			return nil
		}
	}
	o.attrs = append(o.attrs, attr)
	return nil
}

// RemoveMetadata deletes attr from storage and from the attribute list.
func (o *object) RemoveMetadata(attr *Attribute) error {
	if attr == nil {
		return nil
	}
	if err := o.file.checkWritable(); err != nil {
		return err
	}
	if _, err := o.Metadata(); err != nil {
		return err
	}
	err := o.withHandle(func(h Handle) error {
		return o.file.engine.DeleteAttribute(h, attr.name)
	})
	if err != nil {
		return utils.WrapPathError("attribute delete failed", o.FullName()+"@"+attr.name, err)
	}
	o.attrs = slices.DeleteFunc(o.attrs, func(a *Attribute) bool { return a.name == attr.name })
	attr.persisted = false
	return nil
}

// RenameMetadata renames a stored attribute.
func (o *object) RenameMetadata(attr *Attribute, name string) error {
	if attr == nil {
		return fmt.Errorf("%w: nil attribute", ErrInvalidName)
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := o.file.checkWritable(); err != nil {
		return err
	}
	attrs, err := o.Metadata()
	if err != nil {
		return err
	}
	if name == attr.name {
		return nil
	}
	for _, a := range attrs {
		if a.name == name {
			return utils.WrapPathError("attribute rename failed", o.FullName()+"@"+name, ErrDuplicateName)
		}
	}
	err = o.withHandle(func(h Handle) error {
		return o.file.engine.RenameAttribute(h, attr.name, name)
	})
	if err != nil {
		return utils.WrapPathError("attribute rename failed", o.FullName()+"@"+attr.name, err)
	}
	for _, a := range o.attrs {
		if a.name == attr.name {
			a.name = name
		}
	}
	attr.name = name
	return nil
}
