// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package h5object is a typed object model over a hierarchical,
// self-describing container of groups, datasets, named datatypes and
// attributes.
//
// The container itself is kept by a storage Engine; this package never
// touches bytes on disk. It navigates the object tree, describes element
// types with Datatype, and reads or writes rectangular and field-selected
// windows of datasets without manual offset arithmetic.
//
// # Quick Start
//
//	store := memstore.MustNew()
//	f, err := h5object.Create(store, "example.h5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	dt, _ := h5object.NewDatatype(h5object.ClassInteger, 4, h5object.OrderNative, h5object.SignTwosComplement)
//	ds, _ := f.CreateDataset("counts", nil, dt, []uint64{50, 10})
//	_ = ds.Init()
//	_ = ds.Write(make([]int32, 500))
//
// # Selections
//
// Every Dataset has a Selection (start, stride and count per axis plus the
// row, column and depth display axes). Init resets it to the full extent of
// the two rightmost axes; callers narrow it by editing the slices returned
// by StartDims, Stride, SelectedDims and SelectedIndex, then call Read or
// Write. Compound datasets additionally carry a CompoundSelection choosing
// which members are transferred.
//
// # Handles
//
// A File holds one engine handle while open. Node.Open returns an object
// handle that must be released with exactly one Node.Close; every other
// method opens and closes the handles it needs, so after any completed call
// File.OpenCount reports 1.
//
// # Concurrency
//
// Files, nodes and selections are not safe for concurrent use. Using the
// same File or Node from several goroutines is undefined behavior.
package h5object
