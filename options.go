// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"errors"

	"github.com/scigolib/h5object/internal/utils"
)

// OpenOption configures a File during Open or Create.
// This follows the Functional Options Pattern.
//
// Example:
//
//	f, err := h5object.Open(store, "data.h5",
//	    h5object.WithReadOnly(),
//	    h5object.WithEnumNames(),
//	)
type OpenOption func(*fileConfig) error

type fileConfig struct {
	readOnly     bool
	enumNames    bool
	maxSelection uint64
}

func defaultFileConfig() fileConfig {
	return fileConfig{maxSelection: utils.MaxSelectionElements}
}

// WithReadOnly opens the file without write access. Writes fail with ErrReadOnly.
func WithReadOnly() OpenOption {
	return func(c *fileConfig) error {
		c.readOnly = true
		return nil
	}
}

// WithEnumNames makes Dataset.Read return enum member names ([]string)
// instead of the stored integer values.
func WithEnumNames() OpenOption {
	return func(c *fileConfig) error {
		c.enumNames = true
		return nil
	}
}

// WithMaxSelection bounds the number of elements a single read or write may
// transfer. Default: 1 billion.
func WithMaxSelection(n uint64) OpenOption {
	return func(c *fileConfig) error {
		if n == 0 {
			return errors.New("max selection must be > 0")
		}
		c.maxSelection = n
		return nil
	}
}

// DatasetOption customizes dataset creation.
type DatasetOption func(*datasetConfig) error

type datasetConfig struct {
	maxDims   []uint64
	chunkDims []uint64
}

// WithMaxDims sets the maximum dimensions of a dataset. Use Unlimited for
// dimensions that may grow without bound; that requires WithChunkDims.
func WithMaxDims(dims ...uint64) DatasetOption {
	return func(c *datasetConfig) error {
		c.maxDims = append([]uint64(nil), dims...)
		return nil
	}
}

// WithChunkDims stores the dataset in chunks of the given shape.
func WithChunkDims(dims ...uint64) DatasetOption {
	return func(c *datasetConfig) error {
		for _, d := range dims {
			if d == 0 {
				return errors.New("chunk dimensions must be > 0")
			}
		}
		c.chunkDims = append([]uint64(nil), dims...)
		return nil
	}
}
