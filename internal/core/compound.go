// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package core

import (
	"fmt"
)

// PackedSize returns the combined byte width of members.
func PackedSize(members []Member) int {
	n := 0
	for _, m := range members {
		n += int(m.Type.Size)
	}
	return n
}

// ExtractMembers copies the given members out of every compound record and
// packs them back to back, in member order, one packed record per input record.
func ExtractMembers(records []byte, recordSize int, members []Member) ([]byte, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("invalid compound record size: %d", recordSize)
	}
	if len(records)%recordSize != 0 {
		return nil, fmt.Errorf("compound data length %d is not a multiple of record size %d", len(records), recordSize)
	}
	if err := checkMemberBounds(recordSize, members); err != nil {
		return nil, err
	}

	n := len(records) / recordSize
	packed := PackedSize(members)
	out := make([]byte, n*packed)
	for i := 0; i < n; i++ {
		rec := records[i*recordSize : (i+1)*recordSize]
		pos := i * packed
		for _, m := range members {
			size := int(m.Type.Size)
			copy(out[pos:pos+size], rec[m.Offset:int(m.Offset)+size])
			pos += size
		}
	}
	return out, nil
}

// MergeMembers is the inverse of ExtractMembers: it writes packed member
// values into the matching fields of existing records, leaving other fields
// untouched.
func MergeMembers(records []byte, recordSize int, members []Member, packed []byte) error {
	if recordSize <= 0 {
		return fmt.Errorf("invalid compound record size: %d", recordSize)
	}
	if err := checkMemberBounds(recordSize, members); err != nil {
		return err
	}
	n := len(records) / recordSize
	width := PackedSize(members)
	if len(packed) != n*width {
		return fmt.Errorf("packed member data size mismatch: expected %d bytes, got %d bytes", n*width, len(packed))
	}

	for i := 0; i < n; i++ {
		rec := records[i*recordSize : (i+1)*recordSize]
		pos := i * width
		for _, m := range members {
			size := int(m.Type.Size)
			copy(rec[m.Offset:int(m.Offset)+size], packed[pos:pos+size])
			pos += size
		}
	}
	return nil
}

// MemberColumn returns member idx of a packed buffer produced by
// ExtractMembers as its own contiguous buffer.
func MemberColumn(packed []byte, members []Member, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(members) {
		return nil, fmt.Errorf("member index %d out of range [0, %d)", idx, len(members))
	}
	width := PackedSize(members)
	if width == 0 || len(packed)%width != 0 {
		return nil, fmt.Errorf("packed data length %d is not a multiple of %d", len(packed), width)
	}
	start := 0
	for _, m := range members[:idx] {
		start += int(m.Type.Size)
	}
	size := int(members[idx].Type.Size)
	n := len(packed) / width
	out := make([]byte, n*size)
	for i := 0; i < n; i++ {
		copy(out[i*size:(i+1)*size], packed[i*width+start:i*width+start+size])
	}
	return out, nil
}

// PackColumns interleaves per-member column buffers into packed records.
func PackColumns(columns [][]byte, members []Member, n int) ([]byte, error) {
	if len(columns) != len(members) {
		return nil, fmt.Errorf("got %d columns for %d members", len(columns), len(members))
	}
	width := PackedSize(members)
	out := make([]byte, n*width)
	start := 0
	for j, m := range members {
		size := int(m.Type.Size)
		if len(columns[j]) != n*size {
			return nil, fmt.Errorf("member %q: expected %d bytes, got %d bytes", m.Name, n*size, len(columns[j]))
		}
		for i := 0; i < n; i++ {
			copy(out[i*width+start:i*width+start+size], columns[j][i*size:(i+1)*size])
		}
		start += size
	}
	return out, nil
}

func checkMemberBounds(recordSize int, members []Member) error {
	for _, m := range members {
		if m.Type == nil {
			return fmt.Errorf("compound member %q has no type", m.Name)
		}
		if int(m.Offset)+int(m.Type.Size) > recordSize {
			return fmt.Errorf("compound member %q overflows record size %d", m.Name, recordSize)
		}
	}
	return nil
}
