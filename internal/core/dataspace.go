// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Unlimited marks a maximum dimension that may grow without bound.
const Unlimited = math.MaxUint64

// MaxRank is the largest supported dataspace rank.
const MaxRank = 32

// Dataspace describes the extents of a dataset.
// A scalar dataspace has no dimensions and holds exactly one element.
type Dataspace struct {
	Dims      []uint64
	MaxDims   []uint64 // Nil when fixed-size.
	ChunkDims []uint64 // Nil when not chunked.
}

// NewDataspace validates and builds a dataspace.
//
// Rules (H5Sselect.c / H5Dint.c):
//   - maxDims, when given, must match rank and be >= dims (or Unlimited)
//   - an Unlimited dimension requires chunking
//   - chunk dims must match rank and be non-zero
func NewDataspace(dims, maxDims, chunkDims []uint64) (*Dataspace, error) {
	if len(dims) > MaxRank {
		return nil, fmt.Errorf("rank %d exceeds maximum %d", len(dims), MaxRank)
	}
	if maxDims != nil && len(maxDims) != len(dims) {
		return nil, fmt.Errorf("maxDims rank (%d) != dims rank (%d)", len(maxDims), len(dims))
	}
	if chunkDims != nil && len(chunkDims) != len(dims) {
		return nil, fmt.Errorf("chunk rank (%d) != dims rank (%d)", len(chunkDims), len(dims))
	}

	unlimited := false
	for i := range maxDims {
		if maxDims[i] == Unlimited {
			unlimited = true
			continue
		}
		if maxDims[i] < dims[i] {
			return nil, fmt.Errorf("maxDims[%d]=%d is smaller than dims[%d]=%d", i, maxDims[i], i, dims[i])
		}
	}
	if unlimited && chunkDims == nil {
		return nil, errors.New("unlimited dimensions require chunked storage")
	}
	for i, c := range chunkDims {
		if c == 0 {
			return nil, fmt.Errorf("chunk dimension %d is zero", i)
		}
	}

	return &Dataspace{
		Dims:      append([]uint64(nil), dims...),
		MaxDims:   cloneDims(maxDims),
		ChunkDims: cloneDims(chunkDims),
	}, nil
}

func cloneDims(d []uint64) []uint64 {
	if d == nil {
		return nil
	}
	return append([]uint64(nil), d...)
}

// Rank returns the number of dimensions (0 for scalar).
func (ds *Dataspace) Rank() int {
	return len(ds.Dims)
}

// IsScalar reports whether the dataspace holds a single un-dimensioned value.
func (ds *Dataspace) IsScalar() bool {
	return len(ds.Dims) == 0
}

// Extents returns the dims used for addressing: scalars address as [1].
func (ds *Dataspace) Extents() []uint64 {
	if ds.IsScalar() {
		return []uint64{1}
	}
	return ds.Dims
}

// TotalElements returns the number of elements in the dataspace.
func (ds *Dataspace) TotalElements() uint64 {
	total := uint64(1)
	for _, d := range ds.Dims {
		total *= d
	}
	return total
}

// EffectiveMaxDims returns MaxDims, or Dims when the dataspace is fixed-size.
func (ds *Dataspace) EffectiveMaxDims() []uint64 {
	if ds.MaxDims != nil {
		return ds.MaxDims
	}
	return ds.Dims
}

// CheckExtent validates a new set of dims against the maximum dimensions.
func (ds *Dataspace) CheckExtent(newDims []uint64) error {
	if len(newDims) != len(ds.Dims) {
		return fmt.Errorf("new dims rank (%d) != dataset rank (%d)", len(newDims), len(ds.Dims))
	}
	if ds.ChunkDims == nil {
		return errors.New("only chunked datasets can change extent")
	}
	maxDims := ds.EffectiveMaxDims()
	for i, d := range newDims {
		if maxDims[i] != Unlimited && d > maxDims[i] {
			return fmt.Errorf("dimension %d: %d exceeds maximum %d", i, d, maxDims[i])
		}
	}
	return nil
}

// String returns human-readable dataspace description.
func (ds *Dataspace) String() string {
	if ds.IsScalar() {
		return "scalar"
	}
	parts := make([]string, len(ds.Dims))
	for i, d := range ds.Dims {
		parts[i] = fmt.Sprint(d)
		if ds.MaxDims != nil {
			if ds.MaxDims[i] == Unlimited {
				parts[i] += "/inf"
			} else if ds.MaxDims[i] != d {
				parts[i] += fmt.Sprintf("/%d", ds.MaxDims[i])
			}
		}
	}
	return "[" + strings.Join(parts, " x ") + "]"
}
