// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package core

import (
	"fmt"

	"github.com/scigolib/h5object/internal/utils"
)

// Hyperslab is a rectangular, optionally strided selection:
// per axis, Count elements starting at Start, Stride apart.
type Hyperslab struct {
	Start  []uint64
	Stride []uint64 // Nil means all 1s.
	Count  []uint64
}

// FullSelection selects every element of dims.
func FullSelection(dims []uint64) *Hyperslab {
	h := &Hyperslab{
		Start: make([]uint64, len(dims)),
		Count: append([]uint64(nil), dims...),
	}
	h.fillDefaults()
	return h
}

// fillDefaults fills a nil Stride with 1s.
func (h *Hyperslab) fillDefaults() {
	if h.Stride == nil {
		h.Stride = make([]uint64, len(h.Start))
		for i := range h.Stride {
			h.Stride[i] = 1
		}
	}
}

// Validate checks the selection against dims.
func (h *Hyperslab) Validate(dims []uint64) error {
	h.fillDefaults()
	return utils.ValidateHyperslabBounds(h.Start, h.Stride, h.Count, dims)
}

// Elements returns the number of selected elements.
func (h *Hyperslab) Elements() uint64 {
	total := uint64(1)
	for _, c := range h.Count {
		total *= c
	}
	return total
}

// IsContiguous reports whether the selection maps to one contiguous run of
// the row-major buffer: unit strides and every axis after the first
// partially-selected one is fully selected.
func (h *Hyperslab) IsContiguous(dims []uint64) bool {
	h.fillDefaults()
	for i := range dims {
		if h.Count[i] > 1 && h.Stride[i] != 1 {
			return false
		}
	}
	for i := len(dims) - 1; i > 0; i-- {
		if h.Count[i] != dims[i] {
			// Every axis before i must select a single index.
			for j := 0; j < i; j++ {
				if h.Count[j] != 1 {
					return false
				}
			}
			return true
		}
	}
	return true
}

// LinearOffset returns the row-major element index of coords.
func LinearOffset(coords, dims []uint64) uint64 {
	offset := uint64(0)
	stride := uint64(1)

	// Start from last dimension (varies fastest in row-major order)
	for i := len(coords) - 1; i >= 0; i-- {
		offset += coords[i] * stride
		stride *= dims[i]
	}

	return offset
}

// Gather copies the selected elements of a row-major buffer into a new
// packed buffer, iterating the selection in row-major order.
func Gather(src []byte, dims []uint64, elemSize int, sel *Hyperslab) ([]byte, error) {
	if err := sel.Validate(dims); err != nil {
		return nil, err
	}
	size, err := utils.ByteSize(sel.Elements(), uint64(elemSize)) //nolint:gosec // G115: elemSize positive
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if sel.IsContiguous(dims) {
		start := int(LinearOffset(sel.Start, dims)) * elemSize //nolint:gosec // G115: bounded by len(src)
		if start+size > len(src) {
			return nil, fmt.Errorf("data truncated: need %d bytes, have %d", start+size, len(src))
		}
		copy(out, src[start:start+size])
		return out, nil
	}

	pos := 0
	err = walkSelection(dims, sel, func(linear uint64) error {
		off := int(linear) * elemSize //nolint:gosec // G115: bounded by len(src)
		if off+elemSize > len(src) {
			return fmt.Errorf("data truncated at element %d", linear)
		}
		copy(out[pos:pos+elemSize], src[off:off+elemSize])
		pos += elemSize
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scatter writes a packed buffer of selected elements into a row-major
// buffer, the inverse of Gather.
func Scatter(dst []byte, dims []uint64, elemSize int, sel *Hyperslab, data []byte) error {
	if err := sel.Validate(dims); err != nil {
		return err
	}
	want, err := utils.ByteSize(sel.Elements(), uint64(elemSize)) //nolint:gosec // G115: elemSize positive
	if err != nil {
		return err
	}
	if len(data) != want {
		return fmt.Errorf("data size mismatch: expected %d bytes, got %d bytes", want, len(data))
	}

	pos := 0
	return walkSelection(dims, sel, func(linear uint64) error {
		off := int(linear) * elemSize //nolint:gosec // G115: bounded by len(dst)
		if off+elemSize > len(dst) {
			return fmt.Errorf("destination truncated at element %d", linear)
		}
		copy(dst[off:off+elemSize], data[pos:pos+elemSize])
		pos += elemSize
		return nil
	})
}

// walkSelection visits the row-major linear index of every selected element.
func walkSelection(dims []uint64, sel *Hyperslab, visit func(linear uint64) error) error {
	coords := make([]uint64, len(dims))
	copy(coords, sel.Start)
	return walkAxis(dims, sel, coords, 0, visit)
}

func walkAxis(dims []uint64, sel *Hyperslab, coords []uint64, axis int, visit func(uint64) error) error {
	if axis == len(dims) {
		return visit(LinearOffset(coords, dims))
	}
	for c := uint64(0); c < sel.Count[axis]; c++ {
		coords[axis] = sel.Start[axis] + c*sel.Stride[axis]
		if err := walkAxis(dims, sel, coords, axis+1, visit); err != nil {
			return err
		}
	}
	return nil
}

// Permute reorders the axes of a row-major block of the given shape.
// Axis k of the result is axis perm[k] of src.
func Permute(src []byte, shape []uint64, elemSize int, perm []int) ([]byte, error) {
	if len(perm) != len(shape) {
		return nil, fmt.Errorf("permutation rank %d does not match shape rank %d", len(perm), len(shape))
	}
	seen := make([]bool, len(shape))
	for _, p := range perm {
		if p < 0 || p >= len(shape) || seen[p] {
			return nil, fmt.Errorf("invalid axis permutation %v", perm)
		}
		seen[p] = true
	}
	n, err := utils.ElementCount(shape)
	if err != nil {
		return nil, err
	}
	if uint64(len(src)) != n*uint64(elemSize) { //nolint:gosec // G115: elemSize is positive
		return nil, fmt.Errorf("block size mismatch: expected %d bytes, got %d bytes", n*uint64(elemSize), len(src)) //nolint:gosec // G115
	}

	outShape := make([]uint64, len(shape))
	for k, p := range perm {
		outShape[k] = shape[p]
	}
	out := make([]byte, len(src))
	coords := make([]uint64, len(shape))
	pos := 0
	full := FullSelection(outShape)
	err = walkSelection(outShape, full, func(linear uint64) error {
		// Recover output coordinates, then map them back onto src axes.
		rem := linear
		for k := len(outShape) - 1; k >= 0; k-- {
			coords[perm[k]] = rem % outShape[k]
			rem /= outShape[k]
		}
		off := int(LinearOffset(coords, shape)) * elemSize //nolint:gosec // G115: bounded by len(src)
		copy(out[pos:pos+elemSize], src[off:off+elemSize])
		pos += elemSize
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InversePermutation returns the permutation undoing perm.
func InversePermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for k, p := range perm {
		inv[p] = k
	}
	return inv
}
