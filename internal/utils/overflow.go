// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package utils

import (
	"fmt"
	"math"
)

// MaxSelectionElements limits a single selection to 1 billion elements.
const MaxSelectionElements = 1_000_000_000

// CheckMultiplyOverflow checks if multiplying two uint64 values would overflow.
func CheckMultiplyOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}

	if a > math.MaxUint64/b {
		return fmt.Errorf("multiplication overflow: %d * %d exceeds uint64 max", a, b)
	}

	return nil
}

// SafeMultiply multiplies two uint64 values and returns the result if no overflow occurs.
func SafeMultiply(a, b uint64) (uint64, error) {
	if err := CheckMultiplyOverflow(a, b); err != nil {
		return 0, err
	}
	return a * b, nil
}

// ElementCount returns the product of dims with overflow checking.
// An empty dims slice describes a scalar and counts as one element.
func ElementCount(dims []uint64) (uint64, error) {
	total := uint64(1)
	for i, d := range dims {
		if err := CheckMultiplyOverflow(total, d); err != nil {
			return 0, fmt.Errorf("element count overflow at dimension %d: %w", i, err)
		}
		total *= d
	}
	return total, nil
}

// ByteSize returns count*elemSize, failing on overflow or when the result
// does not fit in an int (the largest buffer Go can allocate).
func ByteSize(count, elemSize uint64) (int, error) {
	size, err := SafeMultiply(count, elemSize)
	if err != nil {
		return 0, err
	}
	if size > math.MaxInt {
		return 0, fmt.Errorf("buffer size %d exceeds addressable memory", size)
	}
	return int(size), nil
}

// ValidateHyperslabBounds validates a start/stride/count selection against dims.
// The last selected coordinate start + (count-1)*stride must lie inside the
// dimension.
func ValidateHyperslabBounds(start, stride, count, dims []uint64) error {
	if len(start) != len(dims) || len(count) != len(dims) || len(stride) != len(dims) {
		return fmt.Errorf("hyperslab dimension mismatch: start=%d, stride=%d, count=%d, dims=%d",
			len(start), len(stride), len(count), len(dims))
	}

	for i := range dims {
		if count[i] == 0 {
			return fmt.Errorf("hyperslab count must be > 0 at dimension %d", i)
		}
		if stride[i] == 0 {
			return fmt.Errorf("hyperslab stride must be > 0 at dimension %d", i)
		}

		span, err := SafeMultiply(count[i]-1, stride[i])
		if err != nil {
			return fmt.Errorf("hyperslab stride overflow at dimension %d: %w", i, err)
		}

		if start[i] >= dims[i] || span > dims[i]-1-start[i] {
			return fmt.Errorf("hyperslab selection exceeds bounds at dimension %d: start=%d, count=%d, stride=%d, dim_size=%d",
				i, start[i], count[i], stride[i], dims[i])
		}
	}

	return nil
}

// CalculateHyperslabElements calculates total elements in a selection and
// enforces the given limit (MaxSelectionElements when limit is 0).
func CalculateHyperslabElements(count []uint64, limit uint64) (uint64, error) {
	if limit == 0 {
		limit = MaxSelectionElements
	}

	total := uint64(1)
	for i, c := range count {
		if c == 0 {
			return 0, fmt.Errorf("zero count at dimension %d", i)
		}
		if err := CheckMultiplyOverflow(total, c); err != nil {
			return 0, fmt.Errorf("hyperslab element overflow at dimension %d: %w", i, err)
		}
		total *= c
	}

	if total > limit {
		return 0, fmt.Errorf("hyperslab selection: %d elements exceeds maximum %d", total, limit)
	}

	return total, nil
}
