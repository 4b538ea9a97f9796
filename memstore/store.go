// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package memstore is an in-memory storage engine for h5object.
//
// Files live in the Store for its whole lifetime, so closing and reopening a
// path sees the stored objects again. Every object gets a stable address
// that survives renames; handles are counted per file.
package memstore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/scigolib/h5object"
	"github.com/scigolib/h5object/internal/core"
	"github.com/scigolib/h5object/internal/utils"
)

// Option configures a Store.
type Option func(*Store) error

// WithFileNumberBase sets the file number given to the first created file.
// Later files count up from it.
func WithFileNumberBase(n uint64) Option {
	return func(s *Store) error {
		if n == 0 {
			return errors.New("file number base must be > 0")
		}
		s.nextFileNo = n
		return nil
	}
}

// WithChunkFilters sets the filter pipeline applied to every chunk of
// datasets created with chunked storage. Filters run in the given order on
// write and in reverse on read.
func WithChunkFilters(ids ...FilterID) Option {
	return func(s *Store) error {
		for _, id := range ids {
			if _, err := newFilter(id, 1, s.deflateLevel); err != nil {
				return err
			}
		}
		s.chunkFilters = slices.Clone(ids)
		return nil
	}
}

// WithDeflateLevel sets the compression level (1-9) of FilterDeflate.
func WithDeflateLevel(level int) Option {
	return func(s *Store) error {
		if level < 1 || level > 9 {
			return fmt.Errorf("deflate level %d out of range 1-9", level)
		}
		s.deflateLevel = level
		return nil
	}
}

// Store implements h5object.Engine in memory.
//
// The mutex guards the store maps so independent files can be used from
// separate goroutines. One file is still single-threaded.
type Store struct {
	mu         sync.Mutex
	files      map[string]*file
	handles    map[h5object.Handle]*handle
	nextHandle h5object.Handle
	nextFileNo uint64

	chunkFilters []FilterID
	deflateLevel int
}

// firstAddress is the address of a root group, mirroring the superblock
// size of a real container.
const firstAddress = 96

type file struct {
	path     string
	fileNo   uint64
	root     *entry
	nextAddr uint64
	heap     *heap
}

type entry struct {
	kind     h5object.ObjectKind
	name     string
	addr     uint64
	parent   *entry
	children []*entry
	deleted  bool

	target string // soft link

	rawType []byte
	dtype   *core.Datatype
	space   *core.Dataspace
	data    []byte       // contiguous storage
	chunked *chunkedData // chunked storage, nil when contiguous

	attrs []h5object.AttributeRecord
}

type handle struct {
	file     *file
	obj      *entry // nil for a file handle
	readOnly bool
}

// New creates an empty store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		files:        make(map[string]*file),
		handles:      make(map[h5object.Handle]*handle),
		nextFileNo:   1,
		deflateLevel: 6,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return s, nil
}

// MustNew is New for tests and examples; it panics on an invalid option.
func MustNew(opts ...Option) *Store {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store) newHandle(h *handle) h5object.Handle {
	s.nextHandle++
	s.handles[s.nextHandle] = h
	return s.nextHandle
}

func (s *Store) lookup(h h5object.Handle) (*handle, error) {
	he, ok := s.handles[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", h5object.ErrInvalidHandle, h)
	}
	if he.obj != nil && he.obj.deleted {
		return nil, fmt.Errorf("%w: object was deleted", h5object.ErrInvalidHandle)
	}
	return he, nil
}

func (s *Store) lookupObject(h h5object.Handle, kinds ...h5object.ObjectKind) (*handle, error) {
	he, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if he.obj == nil {
		return nil, fmt.Errorf("%w: %d is a file handle", h5object.ErrInvalidHandle, h)
	}
	if len(kinds) > 0 && !slices.Contains(kinds, he.obj.kind) {
		return nil, fmt.Errorf("%w: %s %q", h5object.ErrTypeMismatch, he.obj.kind, he.obj.name)
	}
	return he, nil
}

func (s *Store) lookupFile(h h5object.Handle) (*handle, error) {
	he, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if he.obj != nil {
		return nil, fmt.Errorf("%w: %d is an object handle", h5object.ErrInvalidHandle, h)
	}
	return he, nil
}

func (h *handle) checkWritable() error {
	if h.readOnly {
		return fmt.Errorf("%w: %s", h5object.ErrReadOnly, h.file.path)
	}
	return nil
}

func (f *file) allocate() uint64 {
	addr := f.nextAddr
	f.nextAddr += 8
	return addr
}

func (e *entry) path() string {
	if e.parent == nil {
		return "/"
	}
	return h5object.JoinPath(e.parent.path(), e.name)
}

func (e *entry) child(name string) *entry {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (e *entry) detach() {
	if e.parent == nil {
		return
	}
	e.parent.children = slices.DeleteFunc(e.parent.children, func(c *entry) bool { return c == e })
	e.parent = nil
}

func (e *entry) markDeleted() {
	e.deleted = true
	for _, c := range e.children {
		c.markDeleted()
	}
}

// resolve walks path from the root. Soft links in intermediate components
// are followed; a link in the final component is returned as is.
func (f *file) resolve(path string, depth int) (*entry, error) {
	cur := f.root
	for _, name := range h5object.SplitPath(path) {
		for cur.kind == h5object.KindLink {
			if depth++; depth > h5object.MaxLinkDepth {
				return nil, fmt.Errorf("%w: too many soft links resolving %s", h5object.ErrNotFound, path)
			}
			target, err := f.resolve(cur.target, depth)
			if err != nil {
				return nil, err
			}
			cur = target
		}
		if cur.kind != h5object.KindGroup {
			return nil, fmt.Errorf("%w: %s (%s is not a group)", h5object.ErrNotFound, path, cur.path())
		}
		next := cur.child(name)
		if next == nil {
			return nil, fmt.Errorf("%w: %s", h5object.ErrNotFound, h5object.CleanPath(path))
		}
		cur = next
	}
	return cur, nil
}

func (s *Store) info(f *file, e *entry) h5object.ObjectInfo {
	name := e.name
	if e.parent == nil {
		name = "/"
	}
	return h5object.ObjectInfo{Kind: e.kind, Name: name, FileNo: f.fileNo, Addr: e.addr, Target: e.target}
}

// CreateFile creates an empty file, replacing any file stored at path.
func (s *Store) CreateFile(path string) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		return 0, fmt.Errorf("%w: empty file path", h5object.ErrInvalidName)
	}
	for _, h := range s.handles {
		if h.file.path == path && s.files[path] == h.file {
			return 0, fmt.Errorf("file %q is open", path)
		}
	}

	f := &file{path: path, fileNo: s.nextFileNo, nextAddr: firstAddress, heap: newHeap()}
	s.nextFileNo++
	f.root = &entry{kind: h5object.KindGroup, addr: f.allocate()}
	s.files[path] = f
	return s.newHandle(&handle{file: f}), nil
}

// OpenFile opens a file created earlier in this store.
func (s *Store) OpenFile(path string, readOnly bool) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[path]
	if !ok {
		return 0, fmt.Errorf("%w: file %s", h5object.ErrNotFound, path)
	}
	return s.newHandle(&handle{file: f, readOnly: readOnly}), nil
}

// CloseFile releases a file handle. Object handles opened through it stay
// valid until closed.
func (s *Store) CloseFile(fh h5object.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupFile(fh); err != nil {
		return err
	}
	delete(s.handles, fh)
	return nil
}

// OpenObject opens the object at an absolute path.
func (s *Store) OpenObject(fh h5object.Handle, path string) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fe, err := s.lookupFile(fh)
	if err != nil {
		return 0, err
	}
	e, err := fe.file.resolve(path, 0)
	if err != nil {
		return 0, err
	}
	return s.newHandle(&handle{file: fe.file, obj: e, readOnly: fe.readOnly}), nil
}

// CloseObject releases an object handle.
func (s *Store) CloseObject(h h5object.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	he, ok := s.handles[h]
	if !ok || he.obj == nil {
		return fmt.Errorf("%w: %d", h5object.ErrInvalidHandle, h)
	}
	delete(s.handles, h)
	return nil
}

// ObjectInfo describes an open object.
func (s *Store) ObjectInfo(h h5object.Handle) (h5object.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h)
	if err != nil {
		return h5object.ObjectInfo{}, err
	}
	return s.info(oh.file, oh.obj), nil
}

// Members lists the members of a group in creation order.
func (s *Store) Members(h h5object.Handle) ([]h5object.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gh, err := s.lookupObject(h, h5object.KindGroup)
	if err != nil {
		return nil, err
	}
	out := make([]h5object.ObjectInfo, len(gh.obj.children))
	for i, c := range gh.obj.children {
		out[i] = s.info(gh.file, c)
	}
	return out, nil
}

// addChild links a new entry under the group behind parent.
func (s *Store) addChild(parent h5object.Handle, name string, e *entry) (*handle, error) {
	ph, err := s.lookupObject(parent, h5object.KindGroup)
	if err != nil {
		return nil, err
	}
	if err := ph.checkWritable(); err != nil {
		return nil, err
	}
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", h5object.ErrInvalidName, name)
	}
	if ph.obj.child(name) != nil {
		return nil, fmt.Errorf("%w: %s", h5object.ErrDuplicateName, h5object.JoinPath(ph.obj.path(), name))
	}
	e.name = name
	e.addr = ph.file.allocate()
	e.parent = ph.obj
	ph.obj.children = append(ph.obj.children, e)
	return ph, nil
}

// CreateGroup creates a group and returns an open handle to it.
func (s *Store) CreateGroup(parent h5object.Handle, name string) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{kind: h5object.KindGroup}
	ph, err := s.addChild(parent, name, e)
	if err != nil {
		return 0, err
	}
	return s.newHandle(&handle{file: ph.file, obj: e}), nil
}

// CreateDataset creates a zero-filled dataset and returns an open handle.
func (s *Store) CreateDataset(parent h5object.Handle, name string, rawType []byte, ext h5object.Extents) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt, err := parseType(rawType)
	if err != nil {
		return 0, err
	}
	space, err := core.NewDataspace(ext.Dims, ext.MaxDims, ext.ChunkDims)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", h5object.ErrInvalidSelection, err)
	}
	size, err := byteSize(space.Extents(), dt.Size)
	if err != nil {
		return 0, err
	}

	e := &entry{
		kind:    h5object.KindDataset,
		rawType: slices.Clone(rawType),
		dtype:   dt,
		space:   space,
	}
	if space.ChunkDims != nil {
		p, err := newPipeline(s.chunkFilters, dt.Size, s.deflateLevel)
		if err != nil {
			return 0, err
		}
		e.chunked = &chunkedData{pipeline: p}
	}
	if err := e.setContents(make([]byte, size)); err != nil {
		return 0, err
	}
	ph, err := s.addChild(parent, name, e)
	if err != nil {
		return 0, err
	}
	return s.newHandle(&handle{file: ph.file, obj: e}), nil
}

// CommitDatatype stores a named datatype and returns an open handle.
func (s *Store) CommitDatatype(parent h5object.Handle, name string, rawType []byte) (h5object.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt, err := parseType(rawType)
	if err != nil {
		return 0, err
	}
	e := &entry{kind: h5object.KindDatatype, rawType: slices.Clone(rawType), dtype: dt}
	ph, err := s.addChild(parent, name, e)
	if err != nil {
		return 0, err
	}
	return s.newHandle(&handle{file: ph.file, obj: e}), nil
}

// CreateSoftLink creates a soft link. The target is not checked.
func (s *Store) CreateSoftLink(parent h5object.Handle, name, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.addChild(parent, name, &entry{kind: h5object.KindLink, target: h5object.CleanPath(target)})
	return err
}

// Move renames or relocates an object. Its address is kept.
func (s *Store) Move(fh h5object.Handle, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fe, err := s.lookupFile(fh)
	if err != nil {
		return err
	}
	if err := fe.checkWritable(); err != nil {
		return err
	}
	src, err := fe.file.resolve(from, 0)
	if err != nil {
		return err
	}
	if src.parent == nil {
		return fmt.Errorf("%w: the root group cannot be moved", h5object.ErrInvalidName)
	}

	dir, name := h5object.ParentPath(to)
	dst, err := fe.file.resolve(dir, 0)
	if err != nil {
		return err
	}
	if dst.kind != h5object.KindGroup {
		return fmt.Errorf("%w: %s is not a group", h5object.ErrNotFound, dir)
	}
	for p := dst; p != nil; p = p.parent {
		if p == src {
			return fmt.Errorf("%w: cannot move %s into itself", h5object.ErrInvalidName, from)
		}
	}
	if dst.child(name) != nil {
		return fmt.Errorf("%w: %s", h5object.ErrDuplicateName, h5object.CleanPath(to))
	}

	src.detach()
	src.name = name
	src.parent = dst
	dst.children = append(dst.children, src)
	return nil
}

// Delete unlinks an object. Open handles to it, or to anything below it,
// become invalid.
func (s *Store) Delete(fh h5object.Handle, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fe, err := s.lookupFile(fh)
	if err != nil {
		return err
	}
	if err := fe.checkWritable(); err != nil {
		return err
	}
	e, err := fe.file.resolve(path, 0)
	if err != nil {
		return err
	}
	if e.parent == nil {
		return fmt.Errorf("%w: the root group cannot be deleted", h5object.ErrInvalidName)
	}
	e.detach()
	e.markDeleted()
	return nil
}

// DescribeType returns the encoded type of a dataset or named datatype.
func (s *Store) DescribeType(h h5object.Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h, h5object.KindDataset, h5object.KindDatatype)
	if err != nil {
		return nil, err
	}
	return slices.Clone(oh.obj.rawType), nil
}

// Dataspace returns the extents of a dataset.
func (s *Store) Dataspace(h h5object.Handle) (h5object.Extents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dh, err := s.lookupObject(h, h5object.KindDataset)
	if err != nil {
		return h5object.Extents{}, err
	}
	sp := dh.obj.space
	ext := h5object.Extents{
		Dims:      slices.Clone(sp.Dims),
		MaxDims:   slices.Clone(sp.EffectiveMaxDims()),
		ChunkDims: slices.Clone(sp.ChunkDims),
	}
	return ext, nil
}

// SetExtent resizes a chunked dataset, keeping the elements that remain
// inside the new extent and zero-filling new ones.
func (s *Store) SetExtent(h h5object.Handle, dims []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dh, err := s.lookupObject(h, h5object.KindDataset)
	if err != nil {
		return err
	}
	if err := dh.checkWritable(); err != nil {
		return err
	}
	e := dh.obj
	if err := e.space.CheckExtent(dims); err != nil {
		return fmt.Errorf("%w: %w", h5object.ErrInvalidSelection, err)
	}
	flat, err := e.contents()
	if err != nil {
		return err
	}
	data, err := resize(flat, e.space.Dims, dims, int(e.dtype.Size))
	if err != nil {
		return err
	}
	old := e.space.Dims
	e.space.Dims = slices.Clone(dims)
	if err := e.setContents(data); err != nil {
		e.space.Dims = old
		return err
	}
	return nil
}

// ReadElements gathers the selected elements in row-major order.
func (s *Store) ReadElements(h h5object.Handle, sel h5object.Hyperslab) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dh, err := s.lookupObject(h, h5object.KindDataset)
	if err != nil {
		return nil, err
	}
	e := dh.obj
	hs, err := checkSelection(e.space, sel)
	if err != nil {
		return nil, err
	}
	flat, err := e.contents()
	if err != nil {
		return nil, err
	}
	return core.Gather(flat, e.space.Extents(), int(e.dtype.Size), hs)
}

// WriteElements scatters data over the selected elements.
func (s *Store) WriteElements(h h5object.Handle, sel h5object.Hyperslab, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dh, err := s.lookupObject(h, h5object.KindDataset)
	if err != nil {
		return err
	}
	if err := dh.checkWritable(); err != nil {
		return err
	}
	e := dh.obj
	hs, err := checkSelection(e.space, sel)
	if err != nil {
		return err
	}
	want, err := byteSize(hs.Count, e.dtype.Size)
	if err != nil {
		return err
	}
	if len(data) != want {
		return fmt.Errorf("%w: expected %d bytes, got %d bytes", h5object.ErrSizeMismatch, want, len(data))
	}
	flat, err := e.contents()
	if err != nil {
		return err
	}
	if err := core.Scatter(flat, e.space.Extents(), int(e.dtype.Size), hs, data); err != nil {
		return err
	}
	return e.setContents(flat)
}

// HeapPut stores variable-length data in the file of obj.
func (s *Store) HeapPut(obj h5object.Handle, data []byte) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(obj)
	if err != nil {
		return 0, err
	}
	if err := oh.checkWritable(); err != nil {
		return 0, err
	}
	return oh.file.heap.put(data), nil
}

// HeapGet returns variable-length data stored by HeapPut.
func (s *Store) HeapGet(obj h5object.Handle, id uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(obj)
	if err != nil {
		return nil, err
	}
	return oh.file.heap.get(id)
}

// Attributes returns the attributes of an object in creation order.
func (s *Store) Attributes(h h5object.Handle) ([]h5object.AttributeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h)
	if err != nil {
		return nil, err
	}
	out := make([]h5object.AttributeRecord, len(oh.obj.attrs))
	for i, a := range oh.obj.attrs {
		out[i] = cloneRecord(a)
	}
	return out, nil
}

// WriteAttribute creates an attribute or replaces the one with the same name.
func (s *Store) WriteAttribute(h h5object.Handle, rec h5object.AttributeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h)
	if err != nil {
		return err
	}
	if err := oh.checkWritable(); err != nil {
		return err
	}
	dt, err := parseType(rec.RawType)
	if err != nil {
		return err
	}
	want, err := byteSize(rec.Dims, dt.Size)
	if err != nil {
		return err
	}
	if len(rec.Data) != want {
		return fmt.Errorf("%w: attribute %q: expected %d bytes, got %d bytes",
			h5object.ErrSizeMismatch, rec.Name, want, len(rec.Data))
	}

	rec = cloneRecord(rec)
	for i, a := range oh.obj.attrs {
		if a.Name == rec.Name {
			oh.obj.attrs[i] = rec
			return nil
		}
	}
	oh.obj.attrs = append(oh.obj.attrs, rec)
	return nil
}

// DeleteAttribute removes an attribute.
func (s *Store) DeleteAttribute(h h5object.Handle, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h)
	if err != nil {
		return err
	}
	if err := oh.checkWritable(); err != nil {
		return err
	}
	i := slices.IndexFunc(oh.obj.attrs, func(a h5object.AttributeRecord) bool { return a.Name == name })
	if i < 0 {
		return fmt.Errorf("%w: attribute %q", h5object.ErrNotFound, name)
	}
	oh.obj.attrs = slices.Delete(oh.obj.attrs, i, i+1)
	return nil
}

// RenameAttribute renames an attribute in place.
func (s *Store) RenameAttribute(h h5object.Handle, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oh, err := s.lookupObject(h)
	if err != nil {
		return err
	}
	if err := oh.checkWritable(); err != nil {
		return err
	}
	attrs := oh.obj.attrs
	i := slices.IndexFunc(attrs, func(a h5object.AttributeRecord) bool { return a.Name == oldName })
	if i < 0 {
		return fmt.Errorf("%w: attribute %q", h5object.ErrNotFound, oldName)
	}
	if slices.ContainsFunc(attrs, func(a h5object.AttributeRecord) bool { return a.Name == newName }) {
		return fmt.Errorf("%w: attribute %q", h5object.ErrDuplicateName, newName)
	}
	attrs[i].Name = newName
	return nil
}

// OpenCount returns the number of open handles on the file behind fh, fh
// included.
func (s *Store) OpenCount(fh h5object.Handle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fe, err := s.lookupFile(fh)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, h := range s.handles {
		if h.file == fe.file {
			n++
		}
	}
	return n, nil
}

func parseType(raw []byte) (*core.Datatype, error) {
	dt, err := core.ParseDatatype(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", h5object.ErrInvalidType, err)
	}
	if err := dt.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", h5object.ErrInvalidType, err)
	}
	return dt, nil
}

func byteSize(dims []uint64, elemSize uint32) (int, error) {
	n, err := utils.ElementCount(dims)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", h5object.ErrInvalidSelection, err)
	}
	size, err := utils.ByteSize(n, uint64(elemSize))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", h5object.ErrInvalidSelection, err)
	}
	return size, nil
}

func checkSelection(space *core.Dataspace, sel h5object.Hyperslab) (*core.Hyperslab, error) {
	hs := &core.Hyperslab{Start: sel.Start, Stride: sel.Stride, Count: sel.Count}
	if err := hs.Validate(space.Extents()); err != nil {
		return nil, fmt.Errorf("%w: %w", h5object.ErrInvalidSelection, err)
	}
	return hs, nil
}

// contents returns the row-major elements of a dataset. For contiguous
// storage this is the backing buffer itself.
func (e *entry) contents() ([]byte, error) {
	if e.chunked == nil {
		return e.data, nil
	}
	return e.chunked.assemble(e.space.Extents(), e.space.ChunkDims, int(e.dtype.Size))
}

func (e *entry) setContents(flat []byte) error {
	if e.chunked == nil {
		e.data = flat
		return nil
	}
	return e.chunked.split(flat, e.space.Extents(), e.space.ChunkDims, int(e.dtype.Size))
}

// resize copies the overlap of the old and new extents into a fresh buffer.
func resize(data []byte, oldDims, newDims []uint64, elemSize int) ([]byte, error) {
	size, err := byteSize(newDims, uint32(elemSize)) //nolint:gosec // G115: element sizes are small
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	overlap := make([]uint64, len(newDims))
	for i := range newDims {
		overlap[i] = min(oldDims[i], newDims[i])
		if overlap[i] == 0 {
			return out, nil
		}
	}
	sel := &core.Hyperslab{Start: make([]uint64, len(newDims)), Count: overlap}
	block, err := core.Gather(data, oldDims, elemSize, sel)
	if err != nil {
		return nil, err
	}
	if err := core.Scatter(out, newDims, elemSize, sel, block); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneRecord(r h5object.AttributeRecord) h5object.AttributeRecord {
	return h5object.AttributeRecord{
		Name:    r.Name,
		RawType: slices.Clone(r.RawType),
		Dims:    slices.Clone(r.Dims),
		Data:    slices.Clone(r.Data),
	}
}
