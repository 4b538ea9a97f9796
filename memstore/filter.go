// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package memstore

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// FilterID identifies a chunk filter.
type FilterID uint16

// Chunk filters. The first three use the registered container filter numbers.
const (
	FilterDeflate    FilterID = 1
	FilterShuffle    FilterID = 2
	FilterFletcher32 FilterID = 3
	FilterSnappy     FilterID = 32003
)

// String returns the filter name.
func (id FilterID) String() string {
	switch id {
	case FilterDeflate:
		return "deflate"
	case FilterShuffle:
		return "shuffle"
	case FilterFletcher32:
		return "fletcher32"
	case FilterSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("filter(%d)", uint16(id))
	}
}

// Filter transforms the bytes of one chunk.
// Apply runs on the write path and Remove reverses it on the read path.
type Filter interface {
	ID() FilterID
	Apply(data []byte) ([]byte, error)
	Remove(data []byte) ([]byte, error)
}

// newFilter builds a filter for chunks of elemSize-byte elements.
func newFilter(id FilterID, elemSize uint32, level int) (Filter, error) {
	switch id {
	case FilterDeflate:
		return deflateFilter{level: level}, nil
	case FilterShuffle:
		return shuffleFilter{elemSize: elemSize}, nil
	case FilterFletcher32:
		return fletcher32Filter{}, nil
	case FilterSnappy:
		return snappyFilter{}, nil
	default:
		return nil, fmt.Errorf("unsupported chunk filter %d", uint16(id))
	}
}

// pipeline applies filters in order on write and in reverse on read.
type pipeline struct {
	filters []Filter
}

func newPipeline(ids []FilterID, elemSize uint32, level int) (*pipeline, error) {
	p := &pipeline{}
	for _, id := range ids {
		f, err := newFilter(id, elemSize, level)
		if err != nil {
			return nil, err
		}
		p.filters = append(p.filters, f)
	}
	return p, nil
}

func (p *pipeline) apply(data []byte) ([]byte, error) {
	out := data
	for _, f := range p.filters {
		var err error
		if out, err = f.Apply(out); err != nil {
			return nil, fmt.Errorf("filter %s failed: %w", f.ID(), err)
		}
	}
	return out, nil
}

func (p *pipeline) remove(data []byte) ([]byte, error) {
	out := data
	for i := len(p.filters) - 1; i >= 0; i-- {
		f := p.filters[i]
		var err error
		if out, err = f.Remove(out); err != nil {
			return nil, fmt.Errorf("filter %s remove failed: %w", f.ID(), err)
		}
	}
	return out, nil
}

// shuffleFilter groups byte k of every element together, which helps the
// compressors that follow it.
type shuffleFilter struct {
	elemSize uint32
}

func (shuffleFilter) ID() FilterID { return FilterShuffle }

func (f shuffleFilter) Apply(data []byte) ([]byte, error) {
	return f.transpose(data, false)
}

func (f shuffleFilter) Remove(data []byte) ([]byte, error) {
	return f.transpose(data, true)
}

func (f shuffleFilter) transpose(data []byte, reverse bool) ([]byte, error) {
	size := int(f.elemSize)
	if len(data) == 0 || size <= 1 {
		return data, nil
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("data length %d not multiple of element size %d", len(data), size)
	}
	n := len(data) / size
	out := make([]byte, len(data))
	for b := 0; b < size; b++ {
		for e := 0; e < n; e++ {
			packed, planar := e*size+b, b*n+e
			if reverse {
				out[packed] = data[planar]
			} else {
				out[planar] = data[packed]
			}
		}
	}
	return out, nil
}

type deflateFilter struct {
	level int
}

func (deflateFilter) ID() FilterID { return FilterDeflate }

func (f deflateFilter) Apply(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, f.level)
	if err != nil {
		return nil, fmt.Errorf("deflate writer creation failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("deflate compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (deflateFilter) Remove(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("deflate reader creation failed: %w", err)
	}
	defer func() { _ = r.Close() }()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("deflate decompression failed: %w", err)
	}
	return out, nil
}

// fletcher32Filter appends a little-endian Fletcher-32 checksum.
type fletcher32Filter struct{}

func (fletcher32Filter) ID() FilterID { return FilterFletcher32 }

func (fletcher32Filter) Apply(data []byte) ([]byte, error) {
	out := make([]byte, len(data), len(data)+4)
	copy(out, data)
	return binary.LittleEndian.AppendUint32(out, fletcher32(data)), nil
}

func (fletcher32Filter) Remove(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("data too short for fletcher32: %d bytes", len(data))
	}
	body := data[:len(data)-4]
	stored := binary.LittleEndian.Uint32(data[len(data)-4:])
	if sum := fletcher32(body); sum != stored {
		return nil, fmt.Errorf("fletcher32 checksum mismatch: stored=%08x, calculated=%08x", stored, sum)
	}
	return body, nil
}

func fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32
	i := 0
	for ; i+1 < len(data); i += 2 {
		sum1 = (sum1 + (uint32(data[i]) | uint32(data[i+1])<<8)) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	if i < len(data) {
		sum1 = (sum1 + uint32(data[i])) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	return sum2<<16 | sum1
}

type snappyFilter struct{}

func (snappyFilter) ID() FilterID { return FilterSnappy }

func (snappyFilter) Apply(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyFilter) Remove(data []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompression failed: %w", err)
	}
	return out, nil
}
