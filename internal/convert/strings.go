// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package convert

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/scigolib/h5object/internal/core"
)

// charsetEncoding returns the text encoding of a character set. ASCII data is
// read through ISO-8859-1 so that stray high bytes survive a round trip.
func charsetEncoding(cs core.CharacterSet) encoding.Encoding {
	if cs == core.CharsetUTF8 {
		return unicode.UTF8
	}
	return charmap.ISO8859_1
}

// DecodeString converts raw string bytes in the given character set to a Go string.
func DecodeString(raw []byte, cs core.CharacterSet) (string, error) {
	out, err := charsetEncoding(cs).NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode string: %w", err)
	}
	return string(out), nil
}

// EncodeString converts a Go string to raw bytes in the given character set.
func EncodeString(s string, cs core.CharacterSet) ([]byte, error) {
	out, err := charsetEncoding(cs).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: string %q not representable: %w", ErrValueType, s, err)
	}
	return out, nil
}

// trimPadding strips the padding of one fixed-length string element.
func trimPadding(raw []byte, pad core.StringPadding) []byte {
	switch pad {
	case core.PadNullTerm:
		if idx := bytes.IndexByte(raw, 0); idx >= 0 {
			return raw[:idx]
		}
		return raw
	case core.PadSpacePad:
		return bytes.TrimRight(raw, " ")
	default:
		return bytes.TrimRight(raw, "\x00")
	}
}

// DecodeFixedStrings splits data into size-byte elements and decodes each one.
func DecodeFixedStrings(data []byte, size int, pad core.StringPadding, cs core.CharacterSet) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid string size: %d", size)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("string data length %d is not a multiple of %d", len(data), size)
	}
	out := make([]string, len(data)/size)
	for i := range out {
		s, err := DecodeString(trimPadding(data[i*size:(i+1)*size], pad), cs)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// EncodeFixedStrings writes values as size-byte padded elements. Longer values
// are truncated at a character boundary.
func EncodeFixedStrings(values []string, size int, pad core.StringPadding, cs core.CharacterSet) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid string size: %d", size)
	}
	fill := byte(0)
	if pad == core.PadSpacePad {
		fill = ' '
	}
	out := bytes.Repeat([]byte{fill}, len(values)*size)
	for i, v := range values {
		raw, err := EncodeString(v, cs)
		if err != nil {
			return nil, err
		}
		if len(raw) > size {
			raw = raw[:size]
			if cs == core.CharsetUTF8 {
				for len(raw) > 0 && !utf8.Valid(raw) {
					raw = raw[:len(raw)-1]
				}
			}
		}
		copy(out[i*size:], raw)
	}
	return out, nil
}
