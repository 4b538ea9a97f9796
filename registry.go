// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import "fmt"

type nodeConstructor func(f *File, info ObjectInfo, parent *Group) Node

// registry maps each object kind to the constructor of its Node variant.
var registry = map[ObjectKind]nodeConstructor{
	KindGroup:    newGroup,
	KindDataset:  newDataset,
	KindDatatype: newNamedDatatype,
	KindLink:     newLink,
}

// newNode builds the Node variant for info.
func newNode(f *File, info ObjectInfo, parent *Group) (Node, error) {
	ctor, ok := registry[info.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported object kind: %s", info.Kind)
	}
	return ctor(f, info, parent), nil
}
