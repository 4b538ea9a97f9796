// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package memstore

import (
	"fmt"

	"github.com/scigolib/h5object/internal/core"
)

// chunkGrid enumerates the chunks covering a dataset extent. Edge chunks are
// clipped to the extent rather than padded.
type chunkGrid struct {
	dims   []uint64
	chunk  []uint64
	counts []uint64 // chunks per axis
}

func newChunkGrid(dims, chunk []uint64) chunkGrid {
	g := chunkGrid{dims: dims, chunk: chunk, counts: make([]uint64, len(dims))}
	for i := range dims {
		g.counts[i] = (dims[i] + chunk[i] - 1) / chunk[i]
	}
	return g
}

func (g chunkGrid) len() int {
	n := uint64(1)
	for _, c := range g.counts {
		n *= c
	}
	return int(n) //nolint:gosec // G115: chunk counts are bounded by the element count
}

// selection returns the hyperslab of chunk i in row-major chunk order.
func (g chunkGrid) selection(i int) *core.Hyperslab {
	rank := len(g.dims)
	hs := &core.Hyperslab{Start: make([]uint64, rank), Count: make([]uint64, rank)}
	rem := uint64(i) //nolint:gosec // G115: i is non-negative
	for axis := rank - 1; axis >= 0; axis-- {
		c := rem % g.counts[axis]
		rem /= g.counts[axis]
		hs.Start[axis] = c * g.chunk[axis]
		hs.Count[axis] = min(g.chunk[axis], g.dims[axis]-hs.Start[axis])
	}
	return hs
}

// chunkedData is the chunk-by-chunk storage of a chunked dataset. Each chunk
// is kept as it comes out of the filter pipeline.
type chunkedData struct {
	pipeline *pipeline
	chunks   [][]byte
}

// split cuts a flat row-major buffer into filtered chunks.
func (c *chunkedData) split(flat []byte, dims, chunk []uint64, elemSize int) error {
	g := newChunkGrid(dims, chunk)
	chunks := make([][]byte, g.len())
	for i := range chunks {
		raw, err := core.Gather(flat, dims, elemSize, g.selection(i))
		if err != nil {
			return err
		}
		if chunks[i], err = c.pipeline.apply(raw); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	c.chunks = chunks
	return nil
}

// assemble rebuilds the flat row-major buffer from the stored chunks.
func (c *chunkedData) assemble(dims, chunk []uint64, elemSize int) ([]byte, error) {
	size, err := byteSize(dims, uint32(elemSize)) //nolint:gosec // G115: element sizes are small
	if err != nil {
		return nil, err
	}
	flat := make([]byte, size)
	g := newChunkGrid(dims, chunk)
	if g.len() != len(c.chunks) {
		return nil, fmt.Errorf("chunk count %d does not match extent %v", len(c.chunks), dims)
	}
	for i, stored := range c.chunks {
		raw, err := c.pipeline.remove(stored)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if err := core.Scatter(flat, dims, elemSize, g.selection(i), raw); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	return flat, nil
}
