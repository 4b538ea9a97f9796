// Copyright (c) 2025 SciGo HDF5 Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package memstore

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/scigolib/h5object"
)

// Fixture describes the contents of one file. Fixtures are written in YAML
// and built through the h5object API, so a built file is indistinguishable
// from one assembled by hand.
//
// Element values come from CEL fill expressions evaluated once per element
// with the variables i (row-major element index) and idx (coordinates).
//
//	path: sample.h5
//	groups: [/grid]
//	datasets:
//	  - path: /grid/temps
//	    type: {class: float, size: 8}
//	    dims: [50, 10]
//	    fill: "double(idx[0]) + double(idx[1]) / 10.0"
//	attributes:
//	  - object: /grid/temps
//	    name: units
//	    type: {class: string, size: 8}
//	    fill: "'kelvin'"
type Fixture struct {
	Path       string             `yaml:"path"`
	Groups     []string           `yaml:"groups"`
	Datatypes  []DatatypeFixture  `yaml:"datatypes"`
	Datasets   []DatasetFixture   `yaml:"datasets"`
	Links      []LinkFixture      `yaml:"links"`
	Attributes []AttributeFixture `yaml:"attributes"`
}

// TypeFixture describes a datatype. Size 0 means native width (for strings,
// variable length).
type TypeFixture struct {
	Class    string          `yaml:"class"`
	Size     int             `yaml:"size"`
	Order    string          `yaml:"order"`
	Unsigned bool            `yaml:"unsigned"`
	Padding  string          `yaml:"padding"`
	Charset  string          `yaml:"charset"`
	Enum     string          `yaml:"enum"`
	Tag      string          `yaml:"tag"`
	Ref      string          `yaml:"ref"`
	Dims     []int           `yaml:"dims"`
	Base     *TypeFixture    `yaml:"base"`
	Members  []MemberFixture `yaml:"members"`
}

// MemberFixture is one compound member.
type MemberFixture struct {
	Name string      `yaml:"name"`
	Type TypeFixture `yaml:"type"`
	Dims []int       `yaml:"dims"`
}

// DatatypeFixture is a named datatype.
type DatatypeFixture struct {
	Path string      `yaml:"path"`
	Type TypeFixture `yaml:"type"`
}

// DatasetFixture is a dataset and its contents. Compound datasets are filled
// per member with MemberFill; members without an expression keep zeros.
type DatasetFixture struct {
	Path       string            `yaml:"path"`
	Type       TypeFixture       `yaml:"type"`
	Dims       []uint64          `yaml:"dims"`
	MaxDims    []uint64          `yaml:"max_dims"`
	ChunkDims  []uint64          `yaml:"chunk_dims"`
	Fill       string            `yaml:"fill"`
	MemberFill map[string]string `yaml:"member_fill"`
}

// LinkFixture is a soft link.
type LinkFixture struct {
	Path   string `yaml:"path"`
	Target string `yaml:"target"`
}

// AttributeFixture is an attribute of the object at Object.
type AttributeFixture struct {
	Object string      `yaml:"object"`
	Name   string      `yaml:"name"`
	Type   TypeFixture `yaml:"type"`
	Dims   []uint64    `yaml:"dims"`
	Fill   string      `yaml:"fill"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if fx.Path == "" {
		return nil, errors.New("fixture has no path")
	}
	return &fx, nil
}

// LoadFixtureFile reads a YAML fixture from disk and builds it into s.
func LoadFixtureFile(s *Store, path string) (*Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: fixture path chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	fx, err := ParseFixture(data)
	if err != nil {
		return nil, err
	}
	if err := fx.Build(s); err != nil {
		return nil, err
	}
	return fx, nil
}

// Build creates the fixture's file in s, replacing any file at its path.
func (fx *Fixture) Build(s *Store) (err error) {
	f, err := h5object.Create(s, fx.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	fill, err := newFiller()
	if err != nil {
		return err
	}

	for _, path := range fx.Groups {
		if _, err := ensureGroup(f, path); err != nil {
			return fmt.Errorf("group %s: %w", path, err)
		}
	}
	for _, t := range fx.Datatypes {
		if err := buildDatatype(f, t); err != nil {
			return fmt.Errorf("datatype %s: %w", t.Path, err)
		}
	}
	for _, d := range fx.Datasets {
		if err := buildDataset(f, fill, d); err != nil {
			return fmt.Errorf("dataset %s: %w", d.Path, err)
		}
	}
	for _, l := range fx.Links {
		dir, name := h5object.ParentPath(l.Path)
		parent, err := ensureGroup(f, dir)
		if err != nil {
			return fmt.Errorf("link %s: %w", l.Path, err)
		}
		if _, err := f.CreateLink(name, parent, l.Target); err != nil {
			return fmt.Errorf("link %s: %w", l.Path, err)
		}
	}
	for _, a := range fx.Attributes {
		if err := buildAttribute(f, fill, a); err != nil {
			return fmt.Errorf("attribute %s@%s: %w", a.Object, a.Name, err)
		}
	}
	return nil
}

// ensureGroup returns the group at path, creating missing groups on the way.
func ensureGroup(f *h5object.File, path string) (*h5object.Group, error) {
	g := f.Root()
	for _, name := range h5object.SplitPath(path) {
		n, err := g.Member(name)
		switch {
		case err == nil:
			next, ok := n.(*h5object.Group)
			if !ok {
				return nil, fmt.Errorf("%s is a %s", n.FullName(), n.Kind())
			}
			g = next
		case errors.Is(err, h5object.ErrNotFound):
			if g, err = f.CreateGroup(name, g); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}
	return g, nil
}

func buildDatatype(f *h5object.File, t DatatypeFixture) error {
	dt, err := t.Type.Datatype()
	if err != nil {
		return err
	}
	dir, name := h5object.ParentPath(t.Path)
	parent, err := ensureGroup(f, dir)
	if err != nil {
		return err
	}
	_, err = f.CreateDatatype(name, parent, dt)
	return err
}

func buildDataset(f *h5object.File, fill *filler, d DatasetFixture) error {
	dt, err := d.Type.Datatype()
	if err != nil {
		return err
	}
	dir, name := h5object.ParentPath(d.Path)
	parent, err := ensureGroup(f, dir)
	if err != nil {
		return err
	}
	var opts []h5object.DatasetOption
	if d.MaxDims != nil {
		opts = append(opts, h5object.WithMaxDims(d.MaxDims...))
	}
	if d.ChunkDims != nil {
		opts = append(opts, h5object.WithChunkDims(d.ChunkDims...))
	}
	ds, err := f.CreateDataset(name, parent, dt, d.Dims, opts...)
	if err != nil {
		return err
	}
	if d.Fill == "" && len(d.MemberFill) == 0 {
		return nil
	}

	// Write the whole extent in one selection.
	if err := ds.Init(); err != nil {
		return err
	}
	sel := ds.Selection()
	copy(sel.SelectedDims(), sel.Dims())
	dims := sel.Dims()

	if !dt.IsCompound() {
		if len(d.MemberFill) > 0 {
			return fmt.Errorf("%w: member_fill needs a compound type", h5object.ErrTypeMismatch)
		}
		values, err := fill.values(d.Fill, dims, dt)
		if err != nil {
			return err
		}
		return ds.Write(values)
	}

	if d.Fill != "" {
		return fmt.Errorf("%w: compound datasets are filled per member", h5object.ErrTypeMismatch)
	}
	cs := ds.CompoundSelection()
	cs.SetAllMemberSelection(false)
	types := cs.MemberTypes()
	var columns []any
	for i, member := range cs.MemberNames() {
		expr, ok := d.MemberFill[member]
		if !ok {
			continue
		}
		if len(cs.MemberDims(i)) > 0 {
			return fmt.Errorf("member %q: fill expressions apply to scalar members only", member)
		}
		values, err := fill.values(expr, dims, types[i])
		if err != nil {
			return fmt.Errorf("member %q: %w", member, err)
		}
		if err := cs.SelectMember(i); err != nil {
			return err
		}
		columns = append(columns, values)
	}
	for member := range d.MemberFill {
		if !slices.Contains(cs.MemberNames(), member) {
			return fmt.Errorf("%w: compound member %q", h5object.ErrNotFound, member)
		}
	}
	return ds.Write(columns)
}

func buildAttribute(f *h5object.File, fill *filler, a AttributeFixture) error {
	n, err := f.Get(a.Object)
	if err != nil {
		return err
	}
	dt, err := a.Type.Datatype()
	if err != nil {
		return err
	}
	dims := a.Dims
	if len(dims) == 0 {
		dims = []uint64{1}
	}
	values, err := fill.values(a.Fill, dims, dt)
	if err != nil {
		return err
	}
	attr, err := h5object.NewAttribute(a.Name, dt, a.Dims, values)
	if err != nil {
		return err
	}
	return n.WriteMetadata(attr)
}

// Datatype builds the described datatype.
func (t TypeFixture) Datatype() (*h5object.Datatype, error) {
	size := t.Size
	if size == 0 {
		size = h5object.NativeSize
	}
	order, err := parseOrder(t.Order)
	if err != nil {
		return nil, err
	}
	sign := h5object.SignTwosComplement
	if t.Unsigned {
		sign = h5object.SignUnsigned
	}

	switch strings.ToLower(t.Class) {
	case "integer", "int":
		return h5object.NewDatatype(h5object.ClassInteger, size, order, sign)
	case "float":
		return h5object.NewDatatype(h5object.ClassFloat, size, order, h5object.SignNone)
	case "bitfield":
		return h5object.NewDatatype(h5object.ClassBitfield, size, order, h5object.SignUnsigned)
	case "enum":
		dt, err := h5object.NewDatatype(h5object.ClassEnum, size, order, sign)
		if err != nil {
			return nil, err
		}
		if err := dt.SetEnumMembers(t.Enum); err != nil {
			return nil, err
		}
		return dt, nil
	case "string":
		pad, err := parsePadding(t.Padding)
		if err != nil {
			return nil, err
		}
		cs := h5object.CharsetASCII
		if strings.EqualFold(t.Charset, "utf8") || strings.EqualFold(t.Charset, "utf-8") {
			cs = h5object.CharsetUTF8
		}
		return h5object.NewStringType(size, pad, cs)
	case "opaque":
		return h5object.NewOpaqueType(size, t.Tag)
	case "reference":
		kind := h5object.RefObject
		if strings.EqualFold(t.Ref, "region") {
			kind = h5object.RefRegion
		}
		return h5object.NewReferenceType(kind), nil
	case "array", "vlen":
		if t.Base == nil {
			return nil, fmt.Errorf("%w: %s type needs a base", h5object.ErrInvalidType, t.Class)
		}
		base, err := t.Base.Datatype()
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(t.Class, "vlen") {
			return h5object.NewVarLenType(base)
		}
		return h5object.NewArrayType(base, t.Dims...)
	case "compound":
		members := make([]h5object.Member, len(t.Members))
		for i, m := range t.Members {
			mt, err := m.Type.Datatype()
			if err != nil {
				return nil, fmt.Errorf("member %q: %w", m.Name, err)
			}
			members[i] = h5object.Member{Name: m.Name, Type: mt, Dims: m.Dims}
		}
		return h5object.NewCompoundType(members...)
	default:
		return nil, fmt.Errorf("%w: unknown class %q", h5object.ErrInvalidType, t.Class)
	}
}

func parseOrder(s string) (h5object.Order, error) {
	switch strings.ToLower(s) {
	case "", "native":
		return h5object.OrderNative, nil
	case "le", "little":
		return h5object.OrderLittleEndian, nil
	case "be", "big":
		return h5object.OrderBigEndian, nil
	case "vax":
		return h5object.OrderVax, nil
	default:
		return 0, fmt.Errorf("%w: unknown byte order %q", h5object.ErrInvalidType, s)
	}
}

func parsePadding(s string) (h5object.Padding, error) {
	switch strings.ToLower(s) {
	case "", "nullterm":
		return h5object.PadNullTerm, nil
	case "nullpad":
		return h5object.PadNullPad, nil
	case "spacepad":
		return h5object.PadSpacePad, nil
	default:
		return 0, fmt.Errorf("%w: unknown padding %q", h5object.ErrInvalidType, s)
	}
}

// filler evaluates fill expressions.
type filler struct {
	env      *cel.Env
	programs map[string]cel.Program
}

func newFiller() (*filler, error) {
	env, err := cel.NewEnv(
		cel.Variable("i", cel.IntType),
		cel.Variable("idx", cel.ListType(cel.IntType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &filler{env: env, programs: make(map[string]cel.Program)}, nil
}

func (fl *filler) program(expr string) (cel.Program, error) {
	if prg, ok := fl.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := fl.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile fill %q: %w", expr, issues.Err())
	}
	prg, err := fl.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for %q: %w", expr, err)
	}
	fl.programs[expr] = prg
	return prg, nil
}

// values evaluates expr for every element of dims and returns a slice
// suited to dt: []int64, []float64 or []string.
func (fl *filler) values(expr string, dims []uint64, dt *h5object.Datatype) (any, error) {
	if expr == "" {
		return nil, errors.New("empty fill expression")
	}
	prg, err := fl.program(expr)
	if err != nil {
		return nil, err
	}

	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	idx := make([]int64, len(dims))

	var (
		ints   []int64
		floats []float64
		strs   []string
	)
	class := dt.Class()

	for i := uint64(0); i < n; i++ {
		rem := i
		for k := len(dims) - 1; k >= 0; k-- {
			idx[k] = int64(rem % dims[k]) //nolint:gosec // G115: bounded by dims
			rem /= dims[k]
		}
		out, _, err := prg.Eval(map[string]any{"i": int64(i), "idx": slices.Clone(idx)}) //nolint:gosec // G115
		if err != nil {
			return nil, fmt.Errorf("fill %q at element %d: %w", expr, i, err)
		}

		switch class {
		case h5object.ClassInteger, h5object.ClassBitfield:
			v, err := asInt(out.Value())
			if err != nil {
				return nil, fmt.Errorf("fill %q at element %d: %w", expr, i, err)
			}
			ints = append(ints, v)
		case h5object.ClassEnum:
			switch v := out.Value().(type) {
			case string:
				strs = append(strs, v)
			default:
				iv, err := asInt(v)
				if err != nil {
					return nil, fmt.Errorf("fill %q at element %d: %w", expr, i, err)
				}
				ints = append(ints, iv)
			}
		case h5object.ClassFloat:
			v, err := asFloat(out.Value())
			if err != nil {
				return nil, fmt.Errorf("fill %q at element %d: %w", expr, i, err)
			}
			floats = append(floats, v)
		case h5object.ClassString:
			v, ok := out.Value().(string)
			if !ok {
				return nil, fmt.Errorf("%w: fill %q gave %T for a string", h5object.ErrTypeMismatch, expr, out.Value())
			}
			strs = append(strs, v)
		default:
			return nil, fmt.Errorf("%w: fill does not support %s", h5object.ErrTypeMismatch, dt.OuterDescription())
		}
	}

	switch {
	case strs != nil && ints != nil:
		return nil, fmt.Errorf("%w: fill %q mixes names and values", h5object.ErrTypeMismatch, expr)
	case strs != nil:
		return strs, nil
	case floats != nil:
		return floats, nil
	default:
		return ints, nil
	}
}

func asInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case uint64:
		return int64(x), nil //nolint:gosec // G115: bit pattern preserved
	case float64:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T is not a number", h5object.ErrTypeMismatch, v)
	}
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: %T is not a number", h5object.ErrTypeMismatch, v)
	}
}
