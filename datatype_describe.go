// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"
	"strconv"
	"strings"
)

// Description returns the canonical description of the type. Compound types
// list their members recursively.
//
// Examples:
//
//	"32-bit integer"
//	"native unsigned integer"
//	"64-bit floating-point"
//	"8-bit enum (0=RED, 1=GREEN)"
//	"String, length = 20, padding = H5T_STR_NULLTERM, cset = H5T_CSET_ASCII"
//	"Compound {id: 32-bit integer, name: String, length = variable, ...}"
//	"Array [2 x 3] of 64-bit floating-point"
func (dt *Datatype) Description() string {
	return dt.describe(false)
}

// OuterDescription is Description without compound member listings, for
// callers that show compound fields separately.
func (dt *Datatype) OuterDescription() string {
	return dt.describe(true)
}

func (dt *Datatype) describe(outer bool) string {
	switch dt.class {
	case ClassInteger:
		if dt.sign == SignUnsigned {
			return widthPrefix(dt.size) + " unsigned integer"
		}
		return widthPrefix(dt.size) + " integer"
	case ClassFloat:
		return widthPrefix(dt.size) + " floating-point"
	case ClassBitfield:
		return widthPrefix(dt.size) + " bitfield"
	case ClassOpaque:
		if dt.size != NativeSize && !fixedWidth(dt.size) {
			return "Opaque"
		}
		return widthPrefix(dt.size) + " opaque"
	case ClassEnum:
		desc := widthPrefix(dt.size) + " enum"
		if len(dt.enumNames) > 0 {
			desc += " (" + dt.EnumMembersString() + ")"
		}
		return desc
	case ClassString:
		return dt.describeString()
	case ClassCompound:
		if outer {
			return "Compound"
		}
		parts := make([]string, len(dt.members))
		for i, m := range dt.members {
			parts[i] = m.Name + ": " + m.describe(outer)
		}
		return "Compound {" + strings.Join(parts, ", ") + "}"
	case ClassArray:
		return arrayPhrase(dt.dims, dt.base.describe(outer))
	case ClassReference:
		if dt.refKind == RefRegion {
			return "Dataset region reference"
		}
		return "Object reference"
	case ClassVarLen:
		if dt.base != nil {
			return "Variable-length of " + dt.base.describe(outer)
		}
		return "Variable-length"
	default:
		return "Unknown"
	}
}

func (m Member) describe(outer bool) string {
	desc := m.Type.describe(outer)
	if len(m.Dims) > 0 {
		return arrayPhrase(m.Dims, desc)
	}
	return desc
}

func arrayPhrase(dims []int, elem string) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return "Array [" + strings.Join(parts, " x ") + "] of " + elem
}

func (dt *Datatype) describeString() string {
	length := "variable"
	if dt.size != NativeSize {
		length = strconv.Itoa(dt.size)
	}
	return fmt.Sprintf("String, length = %s, padding = %s, cset = %s", length, dt.padding, dt.charset)
}

func fixedWidth(size int) bool {
	return size == 1 || size == 2 || size == 4 || size == 8
}

func widthPrefix(size int) string {
	if size == NativeSize {
		return "native"
	}
	return strconv.Itoa(size*8) + "-bit"
}

// String returns the canonical padding literal.
func (p Padding) String() string {
	switch p {
	case PadNullPad:
		return "H5T_STR_NULLPAD"
	case PadSpacePad:
		return "H5T_STR_SPACEPAD"
	default:
		return "H5T_STR_NULLTERM"
	}
}

// String returns the canonical character set literal.
func (c Charset) String() string {
	if c == CharsetUTF8 {
		return "H5T_CSET_UTF8"
	}
	return "H5T_CSET_ASCII"
}
