// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package h5object

import (
	"fmt"

	"github.com/scigolib/h5object/internal/core"
	"github.com/scigolib/h5object/internal/utils"
)

// Dataset is a typed N-dimensional array of elements.
//
// A Dataset carries its own Selection and, for compound element types, a
// CompoundSelection. Both are reset by Init. Read and Write transfer exactly
// the selected window; row-wise or field-wise access is a narrower selection
// on the same mechanism.
//
// Example:
//
//	ds, _ := f.GetDataset("/table")
//	_ = ds.Init()
//	sel := ds.Selection()
//	sel.StartDims()[0] = 7
//	sel.SelectedDims()[0] = 1
//	row, _ := ds.Read()
type Dataset struct {
	object
	dtype    *Datatype
	raw      *core.Datatype
	sel      Selection
	compound *CompoundSelection
	data     any
}

func newDataset(f *File, info ObjectInfo, parent *Group) Node {
	d := &Dataset{object: newObject(f, info, parent)}
	d.self = d
	return d
}

// Init reads the datatype and extents from storage and resets the selection
// (and the compound member selection) to the defaults. Cached data is
// discarded.
func (d *Dataset) Init() error {
	var (
		rawType []byte
		ext     Extents
	)
	err := d.withHandle(func(h Handle) error {
		var err error
		if rawType, err = d.file.engine.DescribeType(h); err != nil {
			return err
		}
		ext, err = d.file.engine.Dataspace(h)
		return err
	})
	if err != nil {
		return utils.WrapPathError("dataset init failed", d.FullName(), err)
	}

	ct, err := core.ParseDatatype(rawType)
	if err != nil {
		return utils.WrapPathError("dataset init failed", d.FullName(), fmt.Errorf("%w: %w", ErrInvalidType, err))
	}
	if ct.Size == 0 {
		return utils.WrapPathError("dataset init failed", d.FullName(), fmt.Errorf("%w: zero-sized elements", ErrInvalidType))
	}

	d.raw = ct
	d.dtype = fromCore(ct)
	d.sel.init(ext, d.file.cfg.maxSelection)
	d.compound = nil
	if ct.Class == core.DatatypeCompound {
		d.compound = newCompoundSelection(ct)
	}
	d.data = nil
	return nil
}

func (d *Dataset) ensureInit() error {
	if d.sel.initialized {
		return nil
	}
	return d.Init()
}

// Datatype returns the element type, initializing the dataset on first use.
func (d *Dataset) Datatype() (*Datatype, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	return d.dtype, nil
}

// IsCompound reports whether the element type is a compound.
func (d *Dataset) IsCompound() bool {
	return d.ensureInit() == nil && d.raw.Class == core.DatatypeCompound
}

// Selection returns the live selection state. It is uninitialized until
// Init (or the first Read or Write).
func (d *Dataset) Selection() *Selection { return &d.sel }

// CompoundSelection returns the member selection, or nil when the element
// type is not a compound.
func (d *Dataset) CompoundSelection() *CompoundSelection {
	if d.ensureInit() != nil {
		return nil
	}
	return d.compound
}

// Dims returns the current extents.
func (d *Dataset) Dims() []uint64 { return d.sel.Dims() }

// MaxDims returns the maximum extents.
func (d *Dataset) MaxDims() []uint64 { return d.sel.MaxDims() }

// ChunkDims returns the chunk shape, or nil for contiguous storage.
func (d *Dataset) ChunkDims() []uint64 { return d.sel.ChunkDims() }

// Data returns the values of the current selection, reading them on the
// first call and returning the cached result until ClearData.
func (d *Dataset) Data() (any, error) {
	if d.data != nil {
		return d.data, nil
	}
	return d.Read()
}

// ClearData drops the cached values. The selection is left untouched.
func (d *Dataset) ClearData() { d.data = nil }

func (d *Dataset) codec(h Handle) valueCodec {
	return valueCodec{engine: d.file.engine, handle: h, enumNames: d.file.cfg.enumNames}
}

// Read returns the values of the current selection.
//
// Non-compound datasets yield one flat slice of Selection().ElementCount()
// values in display order (see Selection). Compound datasets yield a []any
// holding one slice per selected member, in member order.
func (d *Dataset) Read() (any, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	if d.sel.ElementCount() == 0 {
		out, err := d.readEmpty()
		if err != nil {
			return nil, utils.WrapPathError("dataset read failed", d.FullName(), err)
		}
		d.data = out
		return out, nil
	}
	hs, err := d.sel.Hyperslab()
	if err != nil {
		return nil, err
	}

	var out any
	err = d.withHandle(func(h Handle) error {
		data, err := d.file.engine.ReadElements(h, hs)
		if err != nil {
			return err
		}
		if d.compound != nil {
			out, err = d.decodeCompound(h, data)
			return err
		}
		if data, err = d.sel.toDisplay(data, int(d.raw.Size)); err != nil {
			return err
		}
		out, err = d.codec(h).decode(d.raw, data)
		return err
	})
	if err != nil {
		return nil, utils.WrapPathError("dataset read failed", d.FullName(), err)
	}
	d.data = out
	return out, nil
}

// readEmpty decodes a zero-element selection without touching storage.
func (d *Dataset) readEmpty() (any, error) {
	codec := d.codec(0)
	if d.compound == nil {
		return codec.decode(d.raw, nil)
	}
	leaves := d.compound.selectedLeaves()
	out := make([]any, len(leaves))
	for j, leaf := range leaves {
		var err error
		if out[j], err = codec.decode(leaf.Type, nil); err != nil {
			return nil, fmt.Errorf("member %q: %w", leaf.Name, err)
		}
	}
	return out, nil
}

func (d *Dataset) decodeCompound(h Handle, records []byte) (any, error) {
	leaves := d.compound.selectedLeaves()
	packed, err := core.ExtractMembers(records, int(d.raw.Size), leaves)
	if err != nil {
		return nil, err
	}
	if packed, err = d.sel.toDisplay(packed, core.PackedSize(leaves)); err != nil {
		return nil, err
	}

	codec := d.codec(h)
	out := make([]any, len(leaves))
	for j, leaf := range leaves {
		column, err := core.MemberColumn(packed, leaves, j)
		if err != nil {
			return nil, err
		}
		if out[j], err = codec.decode(leaf.Type, column); err != nil {
			return nil, fmt.Errorf("member %q: %w", leaf.Name, err)
		}
	}
	return out, nil
}

// ReadRaw returns the unconverted bytes of the current selection in storage
// order. For compound datasets only the selected members are returned,
// packed back to back per element.
func (d *Dataset) ReadRaw() ([]byte, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	if d.sel.ElementCount() == 0 {
		return []byte{}, nil
	}
	hs, err := d.sel.Hyperslab()
	if err != nil {
		return nil, err
	}

	var out []byte
	err = d.withHandle(func(h Handle) error {
		data, err := d.file.engine.ReadElements(h, hs)
		if err != nil {
			return err
		}
		if d.compound != nil {
			data, err = core.ExtractMembers(data, int(d.raw.Size), d.compound.selectedLeaves())
		}
		out = data
		return err
	})
	if err != nil {
		return nil, utils.WrapPathError("dataset read failed", d.FullName(), err)
	}
	return out, nil
}

// Write stores value into the current selection.
//
// The element count of value must equal Selection().ElementCount()
// (ErrSizeMismatch), and its Go type must suit the element type
// (ErrTypeMismatch). Compound datasets take a []any with one slice per
// selected member; unselected members keep their stored values.
func (d *Dataset) Write(value any) error {
	if err := d.file.checkWritable(); err != nil {
		return err
	}
	if err := d.ensureInit(); err != nil {
		return err
	}
	want := d.sel.ElementCount()
	if want == 0 {
		if err := d.checkEmpty(value); err != nil {
			return utils.WrapPathError("dataset write failed", d.FullName(), err)
		}
		return nil
	}
	hs, err := d.sel.Hyperslab()
	if err != nil {
		return err
	}

	err = d.withHandle(func(h Handle) error {
		if d.compound != nil {
			return d.writeCompound(h, hs, value, want)
		}
		data, n, err := d.codec(h).encode(d.raw, value)
		if err != nil {
			return err
		}
		if n != want {
			return fmt.Errorf("%w: got %d elements, selection holds %d", ErrSizeMismatch, n, want)
		}
		if data, err = d.sel.toStorage(data, int(d.raw.Size)); err != nil {
			return err
		}
		return d.file.engine.WriteElements(h, hs, data)
	})
	d.data = nil
	if err != nil {
		return utils.WrapPathError("dataset write failed", d.FullName(), err)
	}
	return nil
}

// checkEmpty validates value against a zero-element selection. Nothing is
// written.
func (d *Dataset) checkEmpty(value any) error {
	if d.compound != nil {
		_, err := d.encodeColumns(d.codec(0), value, 0)
		return err
	}
	_, n, err := d.codec(0).encode(d.raw, value)
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("%w: got %d elements, selection holds 0", ErrSizeMismatch, n)
	}
	return nil
}

// encodeColumns encodes one column per selected member, each holding want
// elements.
func (d *Dataset) encodeColumns(codec valueCodec, value any, want uint64) ([][]byte, error) {
	columns, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: compound data must be []any, got %T", ErrTypeMismatch, value)
	}
	leaves := d.compound.selectedLeaves()
	if len(columns) != len(leaves) {
		return nil, fmt.Errorf("%w: got %d member columns, %d members selected", ErrSizeMismatch, len(columns), len(leaves))
	}

	encoded := make([][]byte, len(leaves))
	for j, leaf := range leaves {
		data, n, err := codec.encode(leaf.Type, columns[j])
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", leaf.Name, err)
		}
		if n != want {
			return nil, fmt.Errorf("%w: member %q has %d elements, selection holds %d", ErrSizeMismatch, leaf.Name, n, want)
		}
		encoded[j] = data
	}
	return encoded, nil
}

func (d *Dataset) writeCompound(h Handle, hs Hyperslab, value any, want uint64) error {
	encoded, err := d.encodeColumns(d.codec(h), value, want)
	if err != nil {
		return err
	}
	leaves := d.compound.selectedLeaves()
	packed, err := core.PackColumns(encoded, leaves, int(want)) //nolint:gosec // G115: bounded by max selection
	if err != nil {
		return err
	}
	if packed, err = d.sel.toStorage(packed, core.PackedSize(leaves)); err != nil {
		return err
	}

	records, err := d.file.engine.ReadElements(h, hs)
	if err != nil {
		return err
	}
	if err := core.MergeMembers(records, int(d.raw.Size), leaves, packed); err != nil {
		return err
	}
	return d.file.engine.WriteElements(h, hs, records)
}

// Extend changes the current extents within the maximum extents. Only
// chunked datasets can change extent. The selection is re-initialized.
func (d *Dataset) Extend(dims ...uint64) error {
	if err := d.file.checkWritable(); err != nil {
		return err
	}
	if err := d.ensureInit(); err != nil {
		return err
	}
	space, err := core.NewDataspace(d.sel.dims, d.sel.maxDims, d.sel.chunkDims)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	if err := space.CheckExtent(dims); err != nil {
		return utils.WrapPathError("dataset extend failed", d.FullName(), fmt.Errorf("%w: %w", ErrInvalidSelection, err))
	}
	err = d.withHandle(func(h Handle) error {
		return d.file.engine.SetExtent(h, dims)
	})
	if err != nil {
		return utils.WrapPathError("dataset extend failed", d.FullName(), err)
	}
	return d.Init()
}
