// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"errors"
	"fmt"

	"github.com/scigolib/h5object/internal/core"
	"github.com/scigolib/h5object/internal/utils"
)

// File is an open container file and the entry point to its object tree.
//
// A File holds exactly one engine handle while open. Handles acquired by
// Node.Open must be closed by the caller; every other operation closes the
// handles it opens before returning.
type File struct {
	engine Engine
	path   string
	handle Handle
	cfg    fileConfig
	root   *Group
	closed bool
}

// Open opens an existing file through the engine.
func Open(e Engine, path string, opts ...OpenOption) (*File, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	h, err := e.OpenFile(path, cfg.readOnly)
	if err != nil {
		return nil, utils.WrapPathError("file open failed", path, err)
	}
	return newFile(e, path, h, cfg)
}

// Create creates a new, empty file, replacing any file at path.
func Create(e Engine, path string, opts ...OpenOption) (*File, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.readOnly {
		return nil, fmt.Errorf("%w: cannot create a file read-only", ErrReadOnly)
	}
	h, err := e.CreateFile(path)
	if err != nil {
		return nil, utils.WrapPathError("file create failed", path, err)
	}
	return newFile(e, path, h, cfg)
}

func buildConfig(opts []OpenOption) (fileConfig, error) {
	cfg := defaultFileConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, fmt.Errorf("invalid option: %w", err)
		}
	}
	return cfg, nil
}

func newFile(e Engine, path string, h Handle, cfg fileConfig) (*File, error) {
	f := &File{engine: e, path: path, handle: h, cfg: cfg}

	rh, err := e.OpenObject(h, "/")
	if err != nil {
		_ = e.CloseFile(h)
		return nil, utils.WrapError("root group open failed", err)
	}
	info, err := e.ObjectInfo(rh)
	if cerr := e.CloseObject(rh); err == nil {
		err = cerr
	}
	if err != nil {
		_ = e.CloseFile(h)
		return nil, utils.WrapError("root group info failed", err)
	}
	info.Name = "/"
	f.root = newGroup(f, info, nil).(*Group)
	return f, nil
}

// Close releases the file handle. Nodes of a closed file can no longer be
// opened. A failed Close leaves the file open so it can be retried.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	if err := f.engine.CloseFile(f.handle); err != nil {
		return utils.WrapPathError("file close failed", f.path, err)
	}
	f.closed = true
	return nil
}

// Path returns the file path passed to Open or Create.
func (f *File) Path() string { return f.path }

// Engine returns the storage engine.
func (f *File) Engine() Engine { return f.engine }

// ReadOnly reports whether the file was opened WithReadOnly.
func (f *File) ReadOnly() bool { return f.cfg.readOnly }

// Root returns the root group.
func (f *File) Root() *Group { return f.root }

// OpenCount returns the engine's count of open handles for this file, the
// file handle included.
func (f *File) OpenCount() (int, error) {
	h, err := f.fileHandle()
	if err != nil {
		return 0, err
	}
	return f.engine.OpenCount(h)
}

func (f *File) fileHandle() (Handle, error) {
	if f.closed {
		return 0, utils.WrapPathError("file", f.path, ErrInvalidHandle)
	}
	return f.handle, nil
}

func (f *File) checkWritable() error {
	if f.cfg.readOnly {
		return utils.WrapPathError("write", f.path, ErrReadOnly)
	}
	return nil
}

// Get returns the object at path. Soft links in intermediate components are
// followed; a link in the final component is returned as a *Link.
func (f *File) Get(path string) (Node, error) {
	if _, err := f.fileHandle(); err != nil {
		return nil, err
	}
	return f.resolve(path, 0)
}

func (f *File) resolve(path string, depth int) (Node, error) {
	var n Node = f.root
	for _, name := range SplitPath(path) {
		for {
			link, ok := n.(*Link)
			if !ok {
				break
			}
			if depth++; depth > MaxLinkDepth {
				return nil, fmt.Errorf("%w: too many soft links resolving %s", ErrNotFound, path)
			}
			target, err := f.resolve(link.target, depth)
			if err != nil {
				return nil, err
			}
			n = target
		}
		g, ok := n.(*Group)
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s is not a group)", ErrNotFound, path, n.FullName())
		}
		child, err := g.Member(name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, CleanPath(path))
			}
			return nil, err
		}
		n = child
	}
	return n, nil
}

// GetGroup returns the group at path.
func (f *File) GetGroup(path string) (*Group, error) {
	n, err := f.Get(path)
	if err != nil {
		return nil, err
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a group", ErrTypeMismatch, path, n.Kind())
	}
	return g, nil
}

// GetDataset returns the dataset at path, following a final soft link.
func (f *File) GetDataset(path string) (*Dataset, error) {
	n, err := f.Get(path)
	if err != nil {
		return nil, err
	}
	if link, ok := n.(*Link); ok {
		if n, err = link.Resolve(); err != nil {
			return nil, err
		}
	}
	d, ok := n.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s, not a dataset", ErrTypeMismatch, path, n.Kind())
	}
	return d, nil
}

func (f *File) parentOrRoot(parent *Group) *Group {
	if parent == nil {
		return f.root
	}
	return parent
}

// CreateGroup creates a group called name in parent (nil means the root).
func (f *File) CreateGroup(name string, parent *Group) (*Group, error) {
	n, err := f.create(name, parent, func(ph Handle) (Handle, error) {
		return f.engine.CreateGroup(ph, name)
	})
	if err != nil {
		return nil, err
	}
	return n.(*Group), nil
}

// CreateDataset creates a dataset of type dt and shape dims in parent.
// Zero-length dims creates a scalar dataset.
func (f *File) CreateDataset(name string, parent *Group, dt *Datatype, dims []uint64, opts ...DatasetOption) (*Dataset, error) {
	var cfg datasetConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("invalid dataset option: %w", err)
		}
	}
	if dt == nil {
		return nil, fmt.Errorf("%w: nil datatype", ErrInvalidType)
	}
	raw, err := dt.RawType()
	if err != nil {
		return nil, err
	}
	space, err := core.NewDataspace(dims, cfg.maxDims, cfg.chunkDims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	extents := Extents{Dims: space.Dims, MaxDims: space.MaxDims, ChunkDims: space.ChunkDims}

	n, err := f.create(name, parent, func(ph Handle) (Handle, error) {
		return f.engine.CreateDataset(ph, name, raw, extents)
	})
	if err != nil {
		return nil, err
	}
	return n.(*Dataset), nil
}

// CreateDatatype commits dt to the file under name.
func (f *File) CreateDatatype(name string, parent *Group, dt *Datatype) (*NamedDatatype, error) {
	if dt == nil {
		return nil, fmt.Errorf("%w: nil datatype", ErrInvalidType)
	}
	raw, err := dt.RawType()
	if err != nil {
		return nil, err
	}
	n, err := f.create(name, parent, func(ph Handle) (Handle, error) {
		return f.engine.CommitDatatype(ph, name, raw)
	})
	if err != nil {
		return nil, err
	}
	t := n.(*NamedDatatype)
	t.dtype = dt
	return t, nil
}

// CreateLink creates a soft link called name in parent pointing at target.
// The target need not exist.
func (f *File) CreateLink(name string, parent *Group, target string) (*Link, error) {
	parent = f.parentOrRoot(parent)
	if err := f.precheckCreate(name, parent); err != nil {
		return nil, err
	}
	target = CleanPath(target)
	err := parent.withHandle(func(ph Handle) error {
		return f.engine.CreateSoftLink(ph, name, target)
	})
	if err != nil {
		return nil, utils.WrapPathError("create link", JoinPath(parent.FullName(), name), err)
	}
	// Links have no handle of their own; resolve the new entry by listing.
	info, err := f.lookupInfo(parent, name)
	if err != nil {
		return nil, err
	}
	l := newLink(f, info, parent).(*Link)
	parent.addMember(l)
	return l, nil
}

func (f *File) precheckCreate(name string, parent *Group) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, err := f.fileHandle(); err != nil {
		return err
	}
	if err := f.checkWritable(); err != nil {
		return err
	}
	members, err := parent.MemberList()
	if err != nil {
		return err
	}
	if members.Find(name) != nil {
		return utils.WrapPathError("create", JoinPath(parent.FullName(), name), ErrDuplicateName)
	}
	return nil
}

// create runs an engine create call under the parent's handle and wraps the
// result as a Node added to the parent's member list.
func (f *File) create(name string, parent *Group, call func(ph Handle) (Handle, error)) (Node, error) {
	parent = f.parentOrRoot(parent)
	if err := f.precheckCreate(name, parent); err != nil {
		return nil, err
	}

	var info ObjectInfo
	err := parent.withHandle(func(ph Handle) error {
		h, err := call(ph)
		if err != nil {
			return err
		}
		info, err = f.engine.ObjectInfo(h)
		if cerr := f.engine.CloseObject(h); err == nil {
			err = cerr
		}
		return err
	})
	if err != nil {
		return nil, utils.WrapPathError("create", JoinPath(parent.FullName(), name), err)
	}

	n, err := newNode(f, info, parent)
	if err != nil {
		return nil, err
	}
	parent.addMember(n)
	return n, nil
}

func (f *File) lookupInfo(parent *Group, name string) (ObjectInfo, error) {
	var infos []ObjectInfo
	err := parent.withHandle(func(ph Handle) error {
		var err error
		infos, err = f.engine.Members(ph)
		return err
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, JoinPath(parent.FullName(), name))
}

// Delete removes n from the file. Its identity becomes invalid; later Open
// calls fail.
func (f *File) Delete(n Node) error {
	if n == nil {
		return nil
	}
	if n.Parent() == nil {
		return fmt.Errorf("%w: the root group cannot be deleted", ErrInvalidName)
	}
	fh, err := f.fileHandle()
	if err != nil {
		return err
	}
	if err := f.checkWritable(); err != nil {
		return err
	}
	if err := f.engine.Delete(fh, n.FullName()); err != nil {
		return utils.WrapPathError("delete", n.FullName(), err)
	}
	markDeleted(n)
	if list := n.Parent().members; list != nil {
		list.Remove(n)
	}
	return nil
}

func markDeleted(n Node) {
	n.base().deleted = true
	if g, ok := n.(*Group); ok && g.members != nil {
		for _, child := range g.members.nodes {
			markDeleted(child)
		}
	}
}

// WalkFunc is called for every object visited by Walk.
type WalkFunc func(n Node) error

// SkipGroup may be returned by a WalkFunc to skip the members of a group.
var SkipGroup = errors.New("skip group")

// Walk visits every object depth-first in creation order, starting with the
// root group. Soft links are visited but not followed.
func (f *File) Walk(fn WalkFunc) error {
	err := walkNode(f.root, fn)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkNode(n Node, fn WalkFunc) error {
	if err := fn(n); err != nil {
		return err
	}
	g, ok := n.(*Group)
	if !ok {
		return nil
	}
	members, err := g.Members()
	if err != nil {
		return err
	}
	for _, m := range members {
		if err := walkNode(m, fn); err != nil && !errors.Is(err, SkipGroup) {
			return err
		}
	}
	return nil
}
