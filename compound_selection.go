// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"slices"

	"github.com/scigolib/h5object/internal/core"
)

// memberSeparator joins the names of nested compound members.
const memberSeparator = "=>"

// CompoundSelection narrows dataset I/O to a subset of compound members.
//
// Nested compounds are flattened: a member "pos" holding a compound with
// fields "x" and "y" appears as the two members "pos=>x" and "pos=>y".
// Array members of compound type are not flattened and are transferred as
// raw bytes.
type CompoundSelection struct {
	names    []string
	types    []*Datatype
	dims     [][]int
	orders   []int
	leaves   []core.Member
	selected []bool
}

func newCompoundSelection(ct *core.Datatype) *CompoundSelection {
	cs := &CompoundSelection{}
	cs.flatten(ct, "", 0)
	cs.selected = make([]bool, len(cs.names))
	cs.SetAllMemberSelection(true)
	return cs
}

func (cs *CompoundSelection) flatten(ct *core.Datatype, prefix string, base uint32) {
	for _, m := range ct.Members {
		name := prefix + m.Name
		offset := base + m.Offset
		if m.Type.Class == core.DatatypeCompound {
			cs.flatten(m.Type, name+memberSeparator, offset)
			continue
		}

		pm := memberFromCore(m)
		order := pm.Order()
		cs.names = append(cs.names, name)
		cs.types = append(cs.types, pm.Type)
		cs.dims = append(cs.dims, pm.Dims)
		cs.orders = append(cs.orders, order)
		cs.leaves = append(cs.leaves, core.Member{Name: name, Offset: offset, Type: m.Type})
	}
}

// MemberCount returns the number of flattened members.
func (cs *CompoundSelection) MemberCount() int { return len(cs.names) }

// MemberNames returns the flattened member names in declaration order.
func (cs *CompoundSelection) MemberNames() []string { return slices.Clone(cs.names) }

// MemberTypes returns the element type of every member.
func (cs *CompoundSelection) MemberTypes() []*Datatype { return slices.Clone(cs.types) }

// MemberOrders returns the number of elements every member holds.
func (cs *CompoundSelection) MemberOrders() []int { return slices.Clone(cs.orders) }

// MemberDims returns the array shape of member i, or nil for a scalar member.
func (cs *CompoundSelection) MemberDims(i int) []int {
	if i < 0 || i >= len(cs.dims) {
		return nil
	}
	return slices.Clone(cs.dims[i])
}

// SetAllMemberSelection selects or deselects every member.
func (cs *CompoundSelection) SetAllMemberSelection(selected bool) {
	for i := range cs.selected {
		cs.selected[i] = selected
	}
}

// SelectMember selects member i without touching the others.
func (cs *CompoundSelection) SelectMember(i int) error {
	return cs.setMember(i, true)
}

// DeselectMember deselects member i without touching the others.
func (cs *CompoundSelection) DeselectMember(i int) error {
	return cs.setMember(i, false)
}

func (cs *CompoundSelection) setMember(i int, selected bool) error {
	if i < 0 || i >= len(cs.selected) {
		return fmt.Errorf("%w: member index %d out of range [0, %d)", ErrInvalidSelection, i, len(cs.selected))
	}
	cs.selected[i] = selected
	return nil
}

// SelectMemberByName selects the member with the given flattened name.
func (cs *CompoundSelection) SelectMemberByName(name string) error {
	i := slices.Index(cs.names, name)
	if i < 0 {
		return fmt.Errorf("%w: compound member %q", ErrNotFound, name)
	}
	cs.selected[i] = true
	return nil
}

// IsMemberSelected reports whether member i is selected.
func (cs *CompoundSelection) IsMemberSelected(i int) bool {
	return i >= 0 && i < len(cs.selected) && cs.selected[i]
}

// SelectedMemberCount returns the number of selected members.
func (cs *CompoundSelection) SelectedMemberCount() int {
	n := 0
	for _, s := range cs.selected {
		if s {
			n++
		}
	}
	return n
}

// SelectedMemberIndices returns the indices of the selected members in
// ascending order.
func (cs *CompoundSelection) SelectedMemberIndices() []int {
	out := make([]int, 0, len(cs.selected))
	for i, s := range cs.selected {
		if s {
			out = append(out, i)
		}
	}
	return out
}

// SelectedMemberOrders returns the element count of every selected member.
func (cs *CompoundSelection) SelectedMemberOrders() []int {
	idx := cs.SelectedMemberIndices()
	out := make([]int, len(idx))
	for k, i := range idx {
		out[k] = cs.orders[i]
	}
	return out
}

// SelectedMemberTypes returns the element type of every selected member.
func (cs *CompoundSelection) SelectedMemberTypes() []*Datatype {
	idx := cs.SelectedMemberIndices()
	out := make([]*Datatype, len(idx))
	for k, i := range idx {
		out[k] = cs.types[i]
	}
	return out
}

// SelectedMemberNames returns the names of the selected members.
func (cs *CompoundSelection) SelectedMemberNames() []string {
	idx := cs.SelectedMemberIndices()
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = cs.names[i]
	}
	return out
}

func (cs *CompoundSelection) selectedLeaves() []core.Member {
	idx := cs.SelectedMemberIndices()
	out := make([]core.Member, len(idx))
	for k, i := range idx {
		out[k] = cs.leaves[i]
	}
	return out
}
