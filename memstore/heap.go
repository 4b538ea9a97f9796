// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package memstore

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object"
)

// heap stores variable-length data the way a container's global heap does:
// objects are packed into fixed-capacity collections and addressed by
// collection number plus object index.
type heap struct {
	collections       []*heapCollection
	minCollectionSize uint64
}

type heapCollection struct {
	size      uint64
	usedSpace uint64
	objects   [][]byte
}

// Object header: 2 (index) + 2 (refcount) + 4 (reserved) + 8 (size) bytes.
const (
	heapObjectHeaderSize = 16
	heapCollectionHeader = 16
	heapIndexBits        = 16
)

func newHeap() *heap {
	return &heap{minCollectionSize: 4096}
}

// put stores data and returns its heap ID.
func (h *heap) put(data []byte) uint64 {
	need := heapObjectHeaderSize + alignTo8(uint64(len(data)))
	cur := h.current()
	if cur == nil || !cur.hasSpace(need) || len(cur.objects) == 1<<heapIndexBits-1 {
		size := max(h.minCollectionSize, need+heapCollectionHeader)
		cur = &heapCollection{size: size, usedSpace: heapCollectionHeader}
		h.collections = append(h.collections, cur)
	}
	cur.objects = append(cur.objects, slices.Clone(data))
	cur.usedSpace += need

	// Object index 0 is reserved for free space, as in the file format.
	collection := uint64(len(h.collections))
	index := uint64(len(cur.objects))
	return collection<<heapIndexBits | index
}

// get returns a copy of the object with the given heap ID.
func (h *heap) get(id uint64) ([]byte, error) {
	collection := id >> heapIndexBits
	index := id & (1<<heapIndexBits - 1)
	if collection == 0 || collection > uint64(len(h.collections)) {
		return nil, fmt.Errorf("%w: heap collection %d", h5object.ErrNotFound, collection)
	}
	c := h.collections[collection-1]
	if index == 0 || index > uint64(len(c.objects)) {
		return nil, fmt.Errorf("%w: heap object %d in collection %d", h5object.ErrNotFound, index, collection)
	}
	return slices.Clone(c.objects[index-1]), nil
}

func (h *heap) current() *heapCollection {
	if len(h.collections) == 0 {
		return nil
	}
	return h.collections[len(h.collections)-1]
}

func (c *heapCollection) hasSpace(n uint64) bool {
	return c.usedSpace+n <= c.size
}

// alignTo8 rounds size up to a multiple of 8 bytes.
func alignTo8(size uint64) uint64 {
	return (size + 7) &^ 7
}
