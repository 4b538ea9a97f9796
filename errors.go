// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import "errors"

// Common errors. Engines return the same sentinels so callers can test with
// errors.Is regardless of the storage backend.
var (
	ErrNotFound         = errors.New("object not found")
	ErrInvalidHandle    = errors.New("invalid or closed handle")
	ErrTypeMismatch     = errors.New("value does not match datatype")
	ErrSizeMismatch     = errors.New("element count does not match selection")
	ErrDuplicateName    = errors.New("name already exists")
	ErrMalformedSpec    = errors.New("malformed enum member specification")
	ErrInvalidType      = errors.New("invalid datatype")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrReadOnly         = errors.New("file is read-only")
	ErrInvalidName      = errors.New("invalid object name")
)

// MaxLinkDepth is the maximum number of soft links followed while resolving
// a single path.
const MaxLinkDepth = 100
