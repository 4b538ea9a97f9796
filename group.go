// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
)

// Group is a container of named members.
type Group struct {
	object
	members *MemberList
}

// MemberList is the ordered member list of a group, in creation order.
//
// It is the live backing list of the group: changes made through Add and
// Remove are seen by the group itself. They do not touch storage; use
// File.CreateGroup, File.Delete and friends for that.
type MemberList struct {
	nodes []Node
}

// Len returns the number of members.
func (l *MemberList) Len() int { return len(l.nodes) }

// At returns member i.
func (l *MemberList) At(i int) Node { return l.nodes[i] }

// Nodes returns the backing slice.
func (l *MemberList) Nodes() []Node { return l.nodes }

// Add appends n. Nil and already present nodes are ignored.
func (l *MemberList) Add(n Node) {
	if n == nil || l.Contains(n) {
		return
	}
	l.nodes = append(l.nodes, n)
}

// Remove drops n. Nil and absent nodes are ignored.
func (l *MemberList) Remove(n Node) {
	if n == nil {
		return
	}
	for i, m := range l.nodes {
		if sameNode(m, n) {
			l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
			return
		}
	}
}

// Contains reports whether n is in the list.
func (l *MemberList) Contains(n Node) bool {
	for _, m := range l.nodes {
		if sameNode(m, n) {
			return true
		}
	}
	return false
}

// Find returns the member called name, or nil.
func (l *MemberList) Find(name string) Node {
	for _, m := range l.nodes {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

func sameNode(a, b Node) bool {
	return a.base() == b.base() || a.EqualsOID(b.OID())
}

func newGroup(f *File, info ObjectInfo, parent *Group) Node {
	g := &Group{object: newObject(f, info, parent)}
	g.self = g
	return g
}

// IsRoot reports whether g is the root group.
func (g *Group) IsRoot() bool { return g.parent == nil }

// MemberList returns the live member list, loading it from the engine on
// first use.
func (g *Group) MemberList() (*MemberList, error) {
	if g.members != nil {
		return g.members, nil
	}
	var infos []ObjectInfo
	err := g.withHandle(func(h Handle) error {
		var err error
		infos, err = g.file.engine.Members(h)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s: %w", g.FullName(), err)
	}

	list := &MemberList{nodes: make([]Node, 0, len(infos))}
	for _, info := range infos {
		n, err := newNode(g.file, info, g)
		if err != nil {
			return nil, err
		}
		list.nodes = append(list.nodes, n)
	}
	g.members = list
	return list, nil
}

// Members returns the member nodes in creation order.
func (g *Group) Members() ([]Node, error) {
	list, err := g.MemberList()
	if err != nil {
		return nil, err
	}
	return list.Nodes(), nil
}

// Member returns the direct member called name.
func (g *Group) Member(name string) (Node, error) {
	list, err := g.MemberList()
	if err != nil {
		return nil, err
	}
	if n := list.Find(name); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, JoinPath(g.FullName(), name))
}

// rewriteChildPaths updates the cached paths of loaded descendants after a
// rename.
func (g *Group) rewriteChildPaths() {
	if g.members == nil {
		return
	}
	prefix := g.FullName()
	if prefix != "/" {
		prefix += "/"
	}
	for _, n := range g.members.nodes {
		n.base().path = prefix
		if child, ok := n.(*Group); ok {
			child.rewriteChildPaths()
		}
	}
}

// addMember records a newly created child when the member list is loaded.
func (g *Group) addMember(n Node) {
	if g.members != nil {
		g.members.Add(n)
	}
}
