// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object/internal/core"
	"github.com/scigolib/h5object/internal/utils"
)

// Unlimited marks a maximum dimension that may grow without bound.
const Unlimited = core.Unlimited

// Phase is the state of a Selection.
type Phase int

// Selection phases. A selection is Selected as soon as any of its start,
// stride, selected dims or selected index differ from the defaults, and goes
// back to Initialized on the next Init.
const (
	PhaseUninitialized Phase = iota
	PhaseInitialized
	PhaseSelected
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseSelected:
		return "selected"
	default:
		return "uninitialized"
	}
}

// Selection is the view state of one dataset: the extents read from storage
// and the start/stride/count window carved out of them.
//
// StartDims, Stride, SelectedDims and SelectedIndex return the live backing
// slices. Callers narrow the selection by writing into them before Read or
// Write; the next Init discards such edits.
//
// SelectedIndex names the display axes: entry 0 is the row axis, entry 1 the
// column axis and entry 2 (rank > 2) the depth axis.
type Selection struct {
	rank      int
	dims      []uint64
	maxDims   []uint64
	chunkDims []uint64

	start         []uint64
	stride        []uint64
	selectedDims  []uint64
	selectedIndex []int

	maxElements uint64
	initialized bool
}

// init (re)derives the extents and resets the window to the defaults.
// A scalar dataset is addressed as a single element of rank 1.
func (s *Selection) init(ext Extents, maxElements uint64) {
	dims := slices.Clone(ext.Dims)
	maxDims := slices.Clone(ext.MaxDims)
	if len(dims) == 0 {
		dims = []uint64{1}
		maxDims = []uint64{1}
	}
	if len(maxDims) != len(dims) {
		maxDims = slices.Clone(dims)
	}

	s.rank = len(dims)
	s.dims = dims
	s.maxDims = maxDims
	s.chunkDims = slices.Clone(ext.ChunkDims)
	s.maxElements = maxElements

	s.start = make([]uint64, s.rank)
	s.stride = make([]uint64, s.rank)
	s.selectedDims = make([]uint64, s.rank)
	for i := range s.stride {
		s.stride[i] = 1
		s.selectedDims[i] = 1
	}
	s.selectedIndex = defaultSelectedIndex(s.rank)

	// Full extent on the row and column axes, a single slice elsewhere.
	for _, axis := range s.selectedIndex[:min(2, len(s.selectedIndex))] {
		s.selectedDims[axis] = s.dims[axis]
	}
	s.initialized = true
}

func defaultSelectedIndex(rank int) []int {
	switch {
	case rank <= 1:
		return []int{0}
	case rank == 2:
		return []int{0, 1}
	default:
		return []int{rank - 2, rank - 1, rank - 3}
	}
}

// Rank returns the number of axes.
func (s *Selection) Rank() int { return s.rank }

// Dims returns the current extents.
func (s *Selection) Dims() []uint64 { return slices.Clone(s.dims) }

// MaxDims returns the maximum extents; entries may be Unlimited.
func (s *Selection) MaxDims() []uint64 { return slices.Clone(s.maxDims) }

// ChunkDims returns the chunk shape, or nil for contiguous storage.
func (s *Selection) ChunkDims() []uint64 { return slices.Clone(s.chunkDims) }

// StartDims returns the live start offsets.
func (s *Selection) StartDims() []uint64 { return s.start }

// Stride returns the live strides.
func (s *Selection) Stride() []uint64 { return s.stride }

// SelectedDims returns the live per-axis element counts.
func (s *Selection) SelectedDims() []uint64 { return s.selectedDims }

// SelectedIndex returns the live display axis mapping.
func (s *Selection) SelectedIndex() []int { return s.selectedIndex }

// ElementCount returns the number of elements the current selection
// transfers.
func (s *Selection) ElementCount() uint64 {
	n := uint64(1)
	for _, c := range s.selectedDims {
		n *= c
	}
	return n
}

// Height returns the selected count along the row axis.
func (s *Selection) Height() uint64 { return s.countAlong(0) }

// Width returns the selected count along the column axis (1 for rank 1).
func (s *Selection) Width() uint64 { return s.countAlong(1) }

// Depth returns the selected count along the depth axis (1 below rank 3).
func (s *Selection) Depth() uint64 { return s.countAlong(2) }

func (s *Selection) countAlong(role int) uint64 {
	if role >= len(s.selectedIndex) {
		return 1
	}
	axis := s.selectedIndex[role]
	if axis < 0 || axis >= s.rank {
		return 0
	}
	return s.selectedDims[axis]
}

// Phase returns the current state of the selection.
func (s *Selection) Phase() Phase {
	if !s.initialized {
		return PhaseUninitialized
	}
	var def Selection
	def.init(Extents{Dims: s.dims, MaxDims: s.maxDims}, s.maxElements)
	if slices.Equal(s.start, def.start) && slices.Equal(s.stride, def.stride) &&
		slices.Equal(s.selectedDims, def.selectedDims) && slices.Equal(s.selectedIndex, def.selectedIndex) {
		return PhaseInitialized
	}
	return PhaseSelected
}

// Hyperslab validates the selection and returns it in engine form.
func (s *Selection) Hyperslab() (Hyperslab, error) {
	if !s.initialized {
		return Hyperslab{}, fmt.Errorf("%w: selection is not initialized", ErrInvalidSelection)
	}
	if err := s.checkIndex(); err != nil {
		return Hyperslab{}, err
	}
	if err := utils.ValidateHyperslabBounds(s.start, s.stride, s.selectedDims, s.dims); err != nil {
		return Hyperslab{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	if _, err := utils.CalculateHyperslabElements(s.selectedDims, s.maxElements); err != nil {
		return Hyperslab{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return Hyperslab{
		Start:  slices.Clone(s.start),
		Stride: slices.Clone(s.stride),
		Count:  slices.Clone(s.selectedDims),
	}, nil
}

func (s *Selection) checkIndex() error {
	if len(s.selectedIndex) == 0 || len(s.selectedIndex) > 3 {
		return fmt.Errorf("%w: selected index must name 1 to 3 axes, got %d", ErrInvalidSelection, len(s.selectedIndex))
	}
	seen := make(map[int]bool, len(s.selectedIndex))
	for _, axis := range s.selectedIndex {
		if axis < 0 || axis >= s.rank {
			return fmt.Errorf("%w: selected axis %d out of range for rank %d", ErrInvalidSelection, axis, s.rank)
		}
		if seen[axis] {
			return fmt.Errorf("%w: axis %d selected twice", ErrInvalidSelection, axis)
		}
		seen[axis] = true
	}
	return nil
}

// displayPerm returns the axis order of the display buffer: axes outside
// the selected index in storage order, then depth, row and column.
func (s *Selection) displayPerm() []int {
	perm := make([]int, 0, s.rank)
	for axis := 0; axis < s.rank; axis++ {
		if !slices.Contains(s.selectedIndex, axis) {
			perm = append(perm, axis)
		}
	}
	if len(s.selectedIndex) > 2 {
		perm = append(perm, s.selectedIndex[2])
	}
	perm = append(perm, s.selectedIndex[0])
	if len(s.selectedIndex) > 1 {
		perm = append(perm, s.selectedIndex[1])
	}
	return perm
}

// IsNaturalOrder reports whether the display buffer has the same layout as
// storage, so no transposition is needed.
func (s *Selection) IsNaturalOrder() bool {
	if !s.initialized || s.checkIndex() != nil {
		return true
	}
	for k, axis := range s.displayPerm() {
		if k != axis {
			return false
		}
	}
	return true
}

// toDisplay reorders a block read in storage order into display order.
func (s *Selection) toDisplay(data []byte, elemSize int) ([]byte, error) {
	if s.IsNaturalOrder() {
		return data, nil
	}
	return core.Permute(data, s.selectedDims, elemSize, s.displayPerm())
}

// toStorage undoes toDisplay.
func (s *Selection) toStorage(data []byte, elemSize int) ([]byte, error) {
	if s.IsNaturalOrder() {
		return data, nil
	}
	perm := s.displayPerm()
	shape := make([]uint64, len(perm))
	for k, axis := range perm {
		shape[k] = s.selectedDims[axis]
	}
	return core.Permute(data, shape, elemSize, core.InversePermutation(perm))
}
