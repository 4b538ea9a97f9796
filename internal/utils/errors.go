// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package utils provides small helpers shared by the object layer and the
// storage engines: contextual errors and overflow-checked size arithmetic.
package utils

import "fmt"

// H5Error represents a structured error with the operation context and,
// when known, the object path it happened on.
type H5Error struct {
	Context string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *H5Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %q: %v", e.Context, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *H5Error) Unwrap() error {
	return e.Cause
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &H5Error{
		Context: context,
		Cause:   cause,
	}
}

// WrapPathError creates a contextual error bound to an object path.
func WrapPathError(context, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &H5Error{
		Context: context,
		Path:    path,
		Cause:   cause,
	}
}
