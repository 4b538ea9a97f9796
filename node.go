// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object/internal/utils"
)

// Node is any named, identity-bearing object in a file: a Group, Dataset,
// NamedDatatype or Link.
//
// Nodes are not safe for concurrent use. Every handle returned by Open must
// be released with exactly one Close.
type Node interface {
	// Name returns the leaf name ("/" for the root group).
	Name() string
	// Path returns the parent path with a trailing slash ("" for the root).
	Path() string
	// FullName returns Path()+Name().
	FullName() string
	// OID returns the object identifier {file number, address}. It does not
	// change when the object is renamed.
	OID() []uint64
	EqualsOID(oid []uint64) bool
	Kind() ObjectKind
	Parent() *Group
	File() *File

	Open() (Handle, error)
	Close(h Handle) error
	SetName(name string) error

	Metadata() ([]*Attribute, error)
	Attribute(name string) (*Attribute, error)
	WriteMetadata(attr *Attribute) error
	RemoveMetadata(attr *Attribute) error
	RenameMetadata(attr *Attribute, name string) error
	HasAttribute() bool

	base() *object
}

// object holds the state shared by every Node variant.
type object struct {
	self   Node
	file   *File
	kind   ObjectKind
	name   string
	path   string
	oid    []uint64
	parent *Group

	attrs       []*Attribute
	attrsLoaded bool
	deleted     bool
}

func newObject(f *File, info ObjectInfo, parent *Group) object {
	path := ""
	if parent != nil {
		path = parent.FullName()
		if path != "/" {
			path += "/"
		}
	}
	return object{
		file:   f,
		kind:   info.Kind,
		name:   info.Name,
		path:   path,
		oid:    []uint64{info.FileNo, info.Addr},
		parent: parent,
	}
}

func (o *object) base() *object { return o }

// Name returns the leaf name.
func (o *object) Name() string { return o.name }

// Path returns the parent path with a trailing slash.
func (o *object) Path() string { return o.path }

// FullName returns the absolute path of the object.
func (o *object) FullName() string { return o.path + o.name }

// OID returns a copy of the object identifier.
func (o *object) OID() []uint64 { return slices.Clone(o.oid) }

// EqualsOID reports whether oid identifies this object.
func (o *object) EqualsOID(oid []uint64) bool { return slices.Equal(o.oid, oid) }

// Kind returns the object variant.
func (o *object) Kind() ObjectKind { return o.kind }

// Parent returns the containing group (nil for the root).
func (o *object) Parent() *Group { return o.parent }

// File returns the owning file.
func (o *object) File() *File { return o.file }

// Open acquires an engine handle for the object.
func (o *object) Open() (Handle, error) {
	if o.deleted {
		return 0, utils.WrapPathError("open", o.FullName(), ErrInvalidHandle)
	}
	fh, err := o.file.fileHandle()
	if err != nil {
		return 0, err
	}
	h, err := o.file.engine.OpenObject(fh, o.FullName())
	if err != nil {
		return 0, utils.WrapPathError("open", o.FullName(), err)
	}
	return h, nil
}

// Close releases a handle returned by Open.
func (o *object) Close(h Handle) error {
	if err := o.file.engine.CloseObject(h); err != nil {
		return utils.WrapPathError("close", o.FullName(), err)
	}
	return nil
}

// withHandle runs fn with a freshly opened handle and closes it afterwards.
func (o *object) withHandle(fn func(h Handle) error) error {
	h, err := o.Open()
	if err != nil {
		return err
	}
	err = fn(h)
	if cerr := o.Close(h); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// SetName renames the object within its parent group. The object identity
// is preserved; the old path stops resolving immediately.
func (o *object) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if o.parent == nil {
		return fmt.Errorf("%w: the root group cannot be renamed", ErrInvalidName)
	}
	if name == o.name {
		return nil
	}
	if err := o.file.checkWritable(); err != nil {
		return err
	}
	members, err := o.parent.MemberList()
	if err != nil {
		return err
	}
	if members.Find(name) != nil {
		return utils.WrapPathError("rename", JoinPath(o.parent.FullName(), name), ErrDuplicateName)
	}

	fh, err := o.file.fileHandle()
	if err != nil {
		return err
	}
	oldPath := o.FullName()
	newPath := JoinPath(o.parent.FullName(), name)
	if err := o.file.engine.Move(fh, oldPath, newPath); err != nil {
		return utils.WrapPathError("rename", oldPath, err)
	}
	o.name = name
	if g, ok := o.self.(*Group); ok {
		g.rewriteChildPaths()
	}
	return nil
}
