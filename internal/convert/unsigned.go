// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package convert moves element values between the raw byte layout of a
// datatype and Go slices.
//
// Integer storage is always decoded into the signed Go type of the stored
// width. Unsigned datatypes are then widened into the next larger container so
// that the full unsigned range is representable:
//
//	1 byte  -> int16
//	2 bytes -> int32
//	4 bytes -> int64
//	8 bytes -> uint64
//
// Narrowing truncates back to the stored width and reproduces the original
// bit pattern for every input.
package convert

// WidenUint8 reinterprets signed bytes as unsigned values.
func WidenUint8(src []int8) []int16 {
	out := make([]int16, len(src))
	for i, v := range src {
		out[i] = Uint8Value(v)
	}
	return out
}

// WidenUint16 reinterprets signed 16-bit values as unsigned values.
func WidenUint16(src []int16) []int32 {
	out := make([]int32, len(src))
	for i, v := range src {
		out[i] = Uint16Value(v)
	}
	return out
}

// WidenUint32 reinterprets signed 32-bit values as unsigned values.
func WidenUint32(src []int32) []int64 {
	out := make([]int64, len(src))
	for i, v := range src {
		out[i] = Uint32Value(v)
	}
	return out
}

// WidenUint64 reinterprets signed 64-bit values as unsigned values.
func WidenUint64(src []int64) []uint64 {
	out := make([]uint64, len(src))
	for i, v := range src {
		out[i] = uint64(v) //nolint:gosec // G115: two's complement reinterpretation
	}
	return out
}

// NarrowUint8 truncates widened values back to the stored 8-bit pattern.
func NarrowUint8(src []int16) []int8 {
	out := make([]int8, len(src))
	for i, v := range src {
		out[i] = int8(v) //nolint:gosec // G115: truncation intended
	}
	return out
}

// NarrowUint16 truncates widened values back to the stored 16-bit pattern.
func NarrowUint16(src []int32) []int16 {
	out := make([]int16, len(src))
	for i, v := range src {
		out[i] = int16(v) //nolint:gosec // G115: truncation intended
	}
	return out
}

// NarrowUint32 truncates widened values back to the stored 32-bit pattern.
func NarrowUint32(src []int64) []int32 {
	out := make([]int32, len(src))
	for i, v := range src {
		out[i] = int32(v) //nolint:gosec // G115: truncation intended
	}
	return out
}

// NarrowUint64 reinterprets unsigned values as the stored 64-bit pattern.
func NarrowUint64(src []uint64) []int64 {
	out := make([]int64, len(src))
	for i, v := range src {
		out[i] = int64(v) //nolint:gosec // G115: two's complement reinterpretation
	}
	return out
}

// Uint8Value is the scalar form of WidenUint8.
func Uint8Value(v int8) int16 {
	return int16(v) & 0xFF
}

// Uint16Value is the scalar form of WidenUint16.
func Uint16Value(v int16) int32 {
	return int32(v) & 0xFFFF
}

// Uint32Value is the scalar form of WidenUint32.
func Uint32Value(v int32) int64 {
	return int64(v) & 0xFFFFFFFF
}

// WidenSigned applies the widening that matches the concrete type of a signed
// slice produced by Decode. Other values are returned unchanged.
func WidenSigned(values any) any {
	switch v := values.(type) {
	case []int8:
		return WidenUint8(v)
	case []int16:
		return WidenUint16(v)
	case []int32:
		return WidenUint32(v)
	case []int64:
		return WidenUint64(v)
	default:
		return values
	}
}
