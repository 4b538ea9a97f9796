// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import "fmt"

// Link is a soft link: a named path to another object.
type Link struct {
	object
	target string
}

func newLink(f *File, info ObjectInfo, parent *Group) Node {
	l := &Link{object: newObject(f, info, parent), target: info.Target}
	l.self = l
	return l
}

// Target returns the path the link points to.
func (l *Link) Target() string { return l.target }

// Resolve returns the object the link points to, following chains of links.
func (l *Link) Resolve() (Node, error) {
	var n Node = l
	for depth := 0; ; depth++ {
		link, ok := n.(*Link)
		if !ok {
			return n, nil
		}
		if depth >= MaxLinkDepth {
			return nil, fmt.Errorf("%w: too many soft links resolving %s", ErrNotFound, l.FullName())
		}
		next, err := l.file.resolve(link.target, depth)
		if err != nil {
			return nil, err
		}
		n = next
	}
}

// NamedDatatype is a datatype committed to the file under a name.
type NamedDatatype struct {
	object
	dtype *Datatype
}

func newNamedDatatype(f *File, info ObjectInfo, parent *Group) Node {
	t := &NamedDatatype{object: newObject(f, info, parent)}
	t.self = t
	return t
}

// Datatype returns the committed type, loading it on first use. A type that
// cannot be described is returned as the empty descriptor.
func (t *NamedDatatype) Datatype() *Datatype {
	if t.dtype != nil {
		return t.dtype
	}
	h, err := t.Open()
	if err != nil {
		return emptyDatatype()
	}
	dt := FromNative(t.file.engine, h)
	_ = t.Close(h)
	if !dt.IsEmpty() {
		t.dtype = dt
	}
	return dt
}
