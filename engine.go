// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import "fmt"

// Handle is an opaque engine identifier for an open file or object.
// The zero Handle is never valid. A handle must not be used after it has
// been closed.
type Handle uint64

// ObjectKind identifies the variant of a stored object.
type ObjectKind uint8

// Object kinds.
const (
	KindGroup ObjectKind = iota
	KindDataset
	KindDatatype
	KindLink
)

// String returns the kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDataset:
		return "dataset"
	case KindDatatype:
		return "datatype"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// ObjectInfo describes a stored object without opening it.
type ObjectInfo struct {
	Kind   ObjectKind
	Name   string
	FileNo uint64
	Addr   uint64 // Stable for the lifetime of the object; survives renames.
	Target string // Soft link target path (KindLink only).
}

// Extents are the current, maximum and chunk dimensions of a dataset.
// MaxDims entries may be Unlimited. ChunkDims is nil for contiguous storage.
type Extents struct {
	Dims      []uint64
	MaxDims   []uint64
	ChunkDims []uint64
}

// Hyperslab is a per-axis start/stride/count selection passed to the engine.
type Hyperslab struct {
	Start  []uint64
	Stride []uint64
	Count  []uint64
}

// AttributeRecord is the stored form of an attribute.
// RawType holds the encoded datatype; Data holds the raw element bytes.
type AttributeRecord struct {
	Name    string
	RawType []byte
	Dims    []uint64
	Data    []byte
}

// Engine is the native storage engine the object layer runs on.
//
// The engine owns persistence and object identity. Every handle returned by
// CreateFile, OpenFile, OpenObject, CreateGroup, CreateDataset and
// CommitDatatype must be released with CloseFile or CloseObject; calls on a
// released handle fail with ErrInvalidHandle. Object paths are absolute.
//
// Datatypes cross the interface in their encoded form (see Datatype.RawType).
// Element data crosses it as raw bytes in the stored byte order; selections
// are gathered in row-major order.
//
// Engines are not required to be safe for concurrent use of one file.
type Engine interface {
	CreateFile(path string) (Handle, error)
	OpenFile(path string, readOnly bool) (Handle, error)
	CloseFile(file Handle) error

	OpenObject(file Handle, path string) (Handle, error)
	CloseObject(obj Handle) error
	ObjectInfo(obj Handle) (ObjectInfo, error)
	Members(group Handle) ([]ObjectInfo, error)

	CreateGroup(parent Handle, name string) (Handle, error)
	CreateDataset(parent Handle, name string, rawType []byte, extents Extents) (Handle, error)
	CommitDatatype(parent Handle, name string, rawType []byte) (Handle, error)
	CreateSoftLink(parent Handle, name, target string) error
	Move(file Handle, from, to string) error
	Delete(file Handle, path string) error

	DescribeType(obj Handle) ([]byte, error)
	Dataspace(dataset Handle) (Extents, error)
	SetExtent(dataset Handle, dims []uint64) error
	ReadElements(dataset Handle, sel Hyperslab) ([]byte, error)
	WriteElements(dataset Handle, sel Hyperslab, data []byte) error

	// HeapPut stores variable-length data in the file owning obj and returns
	// its heap ID. HeapGet retrieves it.
	HeapPut(obj Handle, data []byte) (uint64, error)
	HeapGet(obj Handle, id uint64) ([]byte, error)

	Attributes(obj Handle) ([]AttributeRecord, error)
	WriteAttribute(obj Handle, rec AttributeRecord) error
	DeleteAttribute(obj Handle, name string) error
	RenameAttribute(obj Handle, oldName, newName string) error

	// OpenCount returns the number of open handles of a file, the file handle
	// included.
	OpenCount(file Handle) (int, error)
}
