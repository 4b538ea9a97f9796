// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SetEnumMembers fills in the member table of an enum type from a
// comma-separated list of value=name pairs, e.g. "0=RED, 1=GREEN".
//
// The table can be filled once; a second call on a populated table fails with
// ErrInvalidType. An empty spec leaves the table empty.
func (dt *Datatype) SetEnumMembers(spec string) error {
	if dt.class != ClassEnum {
		return fmt.Errorf("%w: %s type has no enum members", ErrInvalidType, dt.class)
	}
	if len(dt.enumNames) > 0 {
		return fmt.Errorf("%w: enum member table already populated", ErrInvalidType)
	}
	if strings.TrimSpace(spec) == "" {
		return nil
	}

	lo, hi := dt.enumRange()
	pairs := strings.Split(spec, ",")
	names := make([]string, 0, len(pairs))
	values := make([]int64, 0, len(pairs))
	seenName := make(map[string]bool, len(pairs))
	seenValue := make(map[int64]bool, len(pairs))

	for i, pair := range pairs {
		valueText, name, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("%w: entry %d %q has no '='", ErrMalformedSpec, i, strings.TrimSpace(pair))
		}
		valueText = strings.TrimSpace(valueText)
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: entry %d has an empty name", ErrMalformedSpec, i)
		}
		v, err := strconv.ParseInt(valueText, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: entry %d value %q: %w", ErrMalformedSpec, i, valueText, err)
		}
		if v < lo || v > hi {
			return fmt.Errorf("%w: value %d does not fit %s", ErrMalformedSpec, v, dt.OuterDescription())
		}
		if seenName[name] {
			return fmt.Errorf("%w: duplicate name %q", ErrMalformedSpec, name)
		}
		if seenValue[v] {
			return fmt.Errorf("%w: duplicate value %d", ErrMalformedSpec, v)
		}
		seenName[name] = true
		seenValue[v] = true
		names = append(names, name)
		values = append(values, v)
	}

	dt.enumNames = names
	dt.enumValues = values
	return nil
}

// enumRange returns the values representable by the enum's width and sign.
// Unsigned 64-bit enums are limited to the non-negative int64 range.
func (dt *Datatype) enumRange() (int64, int64) {
	size := dt.size
	if size == NativeSize {
		size = nativeIntSize
	}
	if size == 8 {
		if dt.sign == SignUnsigned {
			return 0, math.MaxInt64
		}
		return math.MinInt64, math.MaxInt64
	}
	bits := uint(size * 8) //nolint:gosec // G115: size is 1, 2 or 4
	if dt.sign == SignUnsigned {
		return 0, 1<<bits - 1
	}
	return -(1 << (bits - 1)), 1<<(bits-1) - 1
}

// EnumMembersString returns the member table as "value=name" pairs joined by
// ", ", in declaration order.
func (dt *Datatype) EnumMembersString() string {
	parts := make([]string, len(dt.enumNames))
	for i, name := range dt.enumNames {
		parts[i] = strconv.FormatInt(dt.enumValues[i], 10) + "=" + name
	}
	return strings.Join(parts, ", ")
}

// EnumMembers returns copies of the member names and values.
func (dt *Datatype) EnumMembers() ([]string, []int64) {
	return append([]string(nil), dt.enumNames...), append([]int64(nil), dt.enumValues...)
}

// EnumName returns the name of an enum value.
func (dt *Datatype) EnumName(v int64) (string, bool) {
	for i, ev := range dt.enumValues {
		if ev == v {
			return dt.enumNames[i], true
		}
	}
	return "", false
}

// EnumValue returns the value of an enum name.
func (dt *Datatype) EnumValue(name string) (int64, bool) {
	for i, n := range dt.enumNames {
		if n == name {
			return dt.enumValues[i], true
		}
	}
	return 0, false
}
