// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plotspec describes plots declaratively.
//
// A *Spec is an immutable value. Every configuration method returns
// a new *Spec and leaves its receiver unchanged, so a partially built
// Spec can be shared and extended in several directions:
//
//	base := plotspec.New()
//	base, err = base.Map(plotspec.Aes{plotspec.X: "bill_length_mm", plotspec.Y: "bill_depth_mm"})
//	base, err = base.AddLayer(plotspec.Point, plotspec.Aes{plotspec.Color: "body_mass_g"}, plotspec.Style{Alpha: plotspec.Opacity(0.6)})
//	titled, err := base.SetLabels(plotspec.Labels{plotspec.TitleSlot: "**Bill** dimensions"})
//
// Configuration is validated as it is built: an invalid mapping or
// scale fails at the call that introduces it, before any rendering.
// A Spec holds no data; it is rendered against a table by package
// render.
package plotspec

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aclements/go-plotbook/dataset"
	"github.com/aclements/go-plotbook/palettes"
)

// A Channel is a visual property that a column can be mapped to.
type Channel string

const (
	X     Channel = "x"
	Y     Channel = "y"
	Color Channel = "color"
	Size  Channel = "size"
	Alpha Channel = "alpha"
)

var channels = []Channel{X, Y, Color, Size, Alpha}

func validChannel(ch Channel) bool {
	for _, c := range channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Aes maps channels to column names.
type Aes map[Channel]string

func (a Aes) clone() Aes {
	if a == nil {
		return nil
	}
	b := make(Aes, len(a))
	for k, v := range a {
		b[k] = v
	}
	return b
}

// A Geometry is the kind of mark a layer draws.
type Geometry int

const (
	Point Geometry = iota
	Line
)

type geomInfo struct {
	name     string
	required []Channel
	accepted []Channel
}

var geoms = map[Geometry]geomInfo{
	Point: {"point", []Channel{X, Y}, []Channel{X, Y, Color, Size, Alpha}},
	Line:  {"line", []Channel{X, Y}, []Channel{X, Y, Color, Alpha}},
}

func (g Geometry) String() string {
	if info, ok := geoms[g]; ok {
		return info.name
	}
	return fmt.Sprintf("Geometry(%d)", int(g))
}

// ParseGeometry parses the String form of a Geometry.
func ParseGeometry(s string) (Geometry, error) {
	for g, info := range geoms {
		if info.name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown geometry %q", s)
}

// Accepts reports whether g can draw channel ch.
func (g Geometry) Accepts(ch Channel) bool {
	for _, c := range geoms[g].accepted {
		if c == ch {
			return true
		}
	}
	return false
}

// Style holds constant, layer-wide visual settings. Zero fields take
// the theme's defaults.
type Style struct {
	// Size is the point radius or line width in points.
	Size float64

	// Alpha, if non-nil, is the opacity in [0, 1]. Nil means
	// fully opaque. See Opacity.
	Alpha *float64

	// Color is a constant color for the layer, in any form
	// accepted by palettes.ParseColor. It cannot be combined with
	// a color mapping.
	Color string
}

// Opacity returns a pointer to a, for use as Style.Alpha.
func Opacity(a float64) *float64 {
	return &a
}

// A Layer is one set of marks in a plot.
type Layer struct {
	Geom  Geometry
	Aes   Aes
	Style Style

	// Where filters the table rows this layer draws.
	Where []dataset.Predicate
}

func (l Layer) clone() Layer {
	l.Aes = l.Aes.clone()
	l.Where = append([]dataset.Predicate(nil), l.Where...)
	if l.Style.Alpha != nil {
		l.Style.Alpha = Opacity(*l.Style.Alpha)
	}
	return l
}

// A Slot is a place in a plot that holds a text label.
type Slot string

const (
	TitleSlot    Slot = "title"
	SubtitleSlot Slot = "subtitle"
	CaptionSlot  Slot = "caption"
	XSlot        Slot = "x"
	YSlot        Slot = "y"
	ColorSlot    Slot = "color" // legend title
)

// Slots lists every Slot in drawing order.
var Slots = []Slot{TitleSlot, SubtitleSlot, CaptionSlot, XSlot, YSlot, ColorSlot}

// Labels maps slots to raw label text, which may contain rich-text
// markup.
type Labels map[Slot]string

// Spec is an immutable plot specification.
type Spec struct {
	mapping Aes
	layers  []Layer
	scales  map[Channel]Scale
	theme   []ThemeOption
	labels  Labels
}

// New returns an empty Spec.
func New() *Spec {
	return &Spec{}
}

// MustSpec returns s or panics if err is non-nil.
func MustSpec(s *Spec, err error) *Spec {
	if err != nil {
		panic(err)
	}
	return s
}

// Map sets plot-level mappings inherited by every layer. Mapping a
// channel to "" removes it. Existing layers are checked against the
// new mapping.
func (s *Spec) Map(aes Aes) (*Spec, error) {
	m := s.mapping.clone()
	if m == nil {
		m = make(Aes)
	}
	for ch, col := range aes {
		if !validChannel(ch) {
			return nil, &InvalidMappingError{-1, ch, "unknown channel"}
		}
		if col == "" {
			delete(m, ch)
		} else {
			m[ch] = col
		}
	}
	for _, l := range s.layers {
		if err := checkLayer(m, l); err != nil {
			return nil, err
		}
	}
	n := *s
	n.mapping = m
	return &n, nil
}

// AddLayer appends a layer drawing geometry g. aes overrides the
// plot-level mapping for this layer.
func (s *Spec) AddLayer(g Geometry, aes Aes, style Style, where ...dataset.Predicate) (*Spec, error) {
	l := Layer{g, aes.clone(), style, where}.clone()
	if _, ok := geoms[g]; !ok {
		return nil, &InvalidMappingError{g, "", "unknown geometry"}
	}
	if err := checkLayer(s.mapping, l); err != nil {
		return nil, err
	}
	n := *s
	n.layers = append(append([]Layer(nil), s.layers...), l)
	return &n, nil
}

func checkLayer(mapping Aes, l Layer) error {
	for ch, col := range l.Aes {
		if !validChannel(ch) {
			return &InvalidMappingError{l.Geom, ch, "unknown channel"}
		}
		if !l.Geom.Accepts(ch) {
			return &InvalidMappingError{l.Geom, ch, "channel not supported by geometry"}
		}
		if col == "" {
			return &InvalidMappingError{l.Geom, ch, "empty column name"}
		}
	}
	for _, ch := range geoms[l.Geom].required {
		if l.Aes[ch] == "" && mapping[ch] == "" {
			return &InvalidMappingError{l.Geom, ch, "required channel is not mapped"}
		}
	}
	st := l.Style
	if a := st.Alpha; a != nil && !(0 <= *a && *a <= 1) {
		return &InvalidMappingError{l.Geom, Alpha, fmt.Sprintf("alpha %g outside [0, 1]", *a)}
	}
	if st.Size < 0 || st.Size != st.Size {
		return &InvalidMappingError{l.Geom, Size, fmt.Sprintf("negative size %g", st.Size)}
	}
	if st.Color != "" {
		if _, err := palettes.ParseColor(st.Color); err != nil {
			return &InvalidMappingError{l.Geom, Color, err.Error()}
		}
		if l.Aes[Color] != "" {
			return &InvalidMappingError{l.Geom, Color, "both mapped and set to a constant"}
		}
	}
	return nil
}

// SetScale binds sc to channel ch, replacing any previous scale.
func (s *Spec) SetScale(ch Channel, sc Scale) (*Spec, error) {
	if !validChannel(ch) {
		return nil, &InvalidScaleError{ch, "unknown channel"}
	}
	switch p := sc.(type) {
	case nil:
		return nil, &InvalidScaleError{ch, "nil scale"}
	case *Continuous:
		if p == nil {
			return nil, &InvalidScaleError{ch, "nil scale"}
		}
		sc = *p
	case *ColorScale:
		if p == nil {
			return nil, &InvalidScaleError{ch, "nil scale"}
		}
		sc = *p
	}
	if err := sc.check(ch); err != nil {
		return nil, err
	}
	n := *s
	n.scales = make(map[Channel]Scale, len(s.scales)+1)
	for k, v := range s.scales {
		n.scales[k] = v
	}
	n.scales[ch] = cloneScale(sc)
	return &n, nil
}

// cloneScale returns a copy of sc that shares no memory with it.
func cloneScale(sc Scale) Scale {
	switch sc := sc.(type) {
	case Continuous:
		sc.Breaks = slices.Clone(sc.Breaks)
		sc.Limits = copyRange(sc.Limits)
		return sc
	case ColorScale:
		sc.Breaks = slices.Clone(sc.Breaks)
		sc.Limits = copyRange(sc.Limits)
		return sc
	}
	return sc
}

func copyRange(r *Range) *Range {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// SetLabels sets label text for the given slots. An empty string
// clears a slot.
func (s *Spec) SetLabels(labels Labels) (*Spec, error) {
	n := *s
	n.labels = make(Labels, len(s.labels)+len(labels))
	for k, v := range s.labels {
		n.labels[k] = v
	}
	for slot, text := range labels {
		if !validSlot(slot) {
			return nil, &InvalidMappingError{-1, Channel(slot), "unknown label slot"}
		}
		if text == "" {
			delete(n.labels, slot)
		} else {
			n.labels[slot] = text
		}
	}
	return &n, nil
}

func validSlot(slot Slot) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// SetTheme appends theme overrides. They are applied, in order, on
// top of the default theme at render time.
func (s *Spec) SetTheme(opts ...ThemeOption) *Spec {
	n := *s
	n.theme = append(append([]ThemeOption(nil), s.theme...), opts...)
	return &n
}

// Theme returns base with s's theme overrides applied.
func (s *Spec) Theme(base Theme) Theme {
	return base.With(s.theme...)
}

// Mapping returns a copy of the plot-level mapping.
func (s *Spec) Mapping() Aes {
	return s.mapping.clone()
}

// Layers returns a copy of s's layers.
func (s *Spec) Layers() []Layer {
	ls := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		ls[i] = l.clone()
	}
	return ls
}

// LayerAes returns the effective mapping of layer i: the plot-level
// mapping overridden by the layer's own, restricted to the channels
// the layer's geometry accepts.
func (s *Spec) LayerAes(i int) Aes {
	l := s.layers[i]
	aes := make(Aes)
	for ch, col := range s.mapping {
		if l.Geom.Accepts(ch) {
			aes[ch] = col
		}
	}
	for ch, col := range l.Aes {
		aes[ch] = col
	}
	if l.Style.Color != "" {
		delete(aes, Color)
	}
	return aes
}

// Scale returns the scale bound to ch, or nil.
func (s *Spec) Scale(ch Channel) Scale {
	sc := s.scales[ch]
	if sc == nil {
		return nil
	}
	return cloneScale(sc)
}

// Label returns the raw text of slot, or "".
func (s *Spec) Label(slot Slot) string {
	return s.labels[slot]
}

// Columns returns the sorted set of columns referenced by any layer.
func (s *Spec) Columns() []string {
	set := make(map[string]bool)
	for i := range s.layers {
		for _, col := range s.LayerAes(i) {
			set[col] = true
		}
	}
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
