// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package palettes provides a registry of named color palettes.
//
// A palette maps the unit interval onto colors. Sequential and
// diverging palettes are perceptually ordered and are interpolated
// in CIE L*a*b* space, so equal steps in the input give roughly equal
// perceived steps in color. Qualitative palettes are a fixed list of
// distinct colors meant for categorical data.
//
// All mappings are deterministic: the same input always yields the
// same 8-bit color.
package palettes

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/aclements/go-gg/palette"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Kind classifies a palette by the kind of data it is designed for.
type Kind int

const (
	Sequential Kind = iota
	Diverging
	Qualitative
)

func (k Kind) String() string {
	switch k {
	case Sequential:
		return "sequential"
	case Diverging:
		return "diverging"
	case Qualitative:
		return "qualitative"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// NAColor is the color used for missing or non-finite values.
var NAColor = color.RGBA{0x7f, 0x7f, 0x7f, 0xff}

// A Palette is a named color palette. Palettes are immutable.
type Palette struct {
	Name string
	Kind Kind

	// cont, if non-nil, is a go-gg continuous palette used
	// directly by Map.
	cont palette.Continuous

	// stops are the anchor colors, evenly spaced on [0, 1]. For
	// Qualitative palettes these are the levels.
	stops []colorful.Color

	reversed bool
}

// Map returns the color at position x in [0, 1]. x is clamped to
// [0, 1]; NaN maps to NAColor.
func (p *Palette) Map(x float64) color.RGBA {
	if math.IsNaN(x) {
		return NAColor
	}
	x = math.Max(0, math.Min(1, x))
	if p.reversed {
		x = 1 - x
	}
	if p.cont != nil {
		return color.RGBAModel.Convert(p.cont.Map(x)).(color.RGBA)
	}
	if p.Kind == Qualitative {
		// Treat the levels as equal-width bins.
		i := int(x * float64(len(p.stops)))
		if i >= len(p.stops) {
			i = len(p.stops) - 1
		}
		return toRGBA(p.stops[i])
	}
	if len(p.stops) == 1 {
		return toRGBA(p.stops[0])
	}
	pos := x * float64(len(p.stops)-1)
	i := int(pos)
	if i >= len(p.stops)-1 {
		return toRGBA(p.stops[len(p.stops)-1])
	}
	frac := pos - float64(i)
	if frac == 0 {
		return toRGBA(p.stops[i])
	}
	return toRGBA(p.stops[i].BlendLab(p.stops[i+1], frac))
}

// Level returns the color for level i of n discrete levels. For
// Qualitative palettes, levels cycle through the palette's colors.
// For ordered palettes, levels are spread evenly over the palette.
func (p *Palette) Level(i, n int) color.RGBA {
	if i < 0 || n <= 0 {
		return NAColor
	}
	if p.Kind == Qualitative && p.cont == nil {
		j := i % len(p.stops)
		if p.reversed {
			j = len(p.stops) - 1 - j
		}
		return toRGBA(p.stops[j])
	}
	if n == 1 {
		return p.Map(0.5)
	}
	return p.Map(float64(i) / float64(n-1))
}

// Len returns the number of anchor colors of p, or 0 if p is
// defined by a continuous function.
func (p *Palette) Len() int {
	return len(p.stops)
}

// Reversed returns a copy of p with its direction flipped.
func (p *Palette) Reversed() *Palette {
	q := *p
	q.reversed = !p.reversed
	return &q
}

// IsReversed reports whether p runs in reverse direction.
func (p *Palette) IsReversed() bool {
	return p.reversed
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{r, g, b, 0xff}
}

// New returns a palette interpolating between the given colors. Each
// color may be anything accepted by ParseColor.
func New(name string, kind Kind, colors ...string) (*Palette, error) {
	if name == "" {
		return nil, fmt.Errorf("palette has no name")
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", name)
	}
	p := &Palette{Name: name, Kind: kind}
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", name, err)
		}
		cf, _ := colorful.MakeColor(c)
		p.stops = append(p.stops, cf)
	}
	return p, nil
}

func mustNew(name string, kind Kind, colors ...string) *Palette {
	p, err := New(name, kind, colors...)
	if err != nil {
		panic(err)
	}
	return p
}

var registry = struct {
	sync.RWMutex
	m map[string]*Palette
}{m: make(map[string]*Palette)}

// Register adds p to the registry, replacing any palette with the
// same (case-insensitive) name.
func Register(p *Palette) {
	registry.Lock()
	defer registry.Unlock()
	registry.m[strings.ToLower(p.Name)] = p
}

// Lookup returns the registered palette with the given name. Names
// are case-insensitive.
func Lookup(name string) (*Palette, bool) {
	registry.RLock()
	defer registry.RUnlock()
	p, ok := registry.m[strings.ToLower(name)]
	return p, ok
}

// Names returns the names of all registered palettes in sorted order.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.m))
	for _, p := range registry.m {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(&Palette{Name: "viridis", Kind: Sequential, cont: palette.Viridis})
	for _, p := range builtin {
		Register(p)
	}
}

var builtin = []*Palette{
	mustNew("magma", Sequential,
		"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf"),
	mustNew("inferno", Sequential,
		"#000004", "#1f0c48", "#550f6d", "#88226a", "#ba3655", "#e35933", "#f98e09", "#f9cb35", "#fcffa4"),
	mustNew("plasma", Sequential,
		"#0d0887", "#4c02a1", "#7e03a8", "#a92395", "#cc4778", "#e66c5c", "#f89540", "#fdc527", "#f0f921"),
	mustNew("cividis", Sequential,
		"#00204d", "#00336f", "#39486b", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#ffea46"),
	mustNew("blues", Sequential,
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"),
	mustNew("ylgnbu", Sequential,
		"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4", "#1d91c0", "#225ea8", "#253494", "#081d58"),
	mustNew("rdbu", Diverging,
		"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7", "#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061"),
	mustNew("set2", Qualitative,
		"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3"),
	mustNew("dark2", Qualitative,
		"#1b9e77", "#d95f02", "#7570b3", "#e7298a", "#66a61e", "#e6ab02", "#a6761d", "#666666"),
	mustNew("okabe-ito", Qualitative,
		"#e69f00", "#56b4e9", "#009e73", "#f0e442", "#0072b2", "#d55e00", "#cc79a7", "#000000"),
	// Dark orange, purple, and cyan4: the customary colors for
	// the three penguin species.
	mustNew("penguins", Qualitative, "#ff8c00", "#a034f0", "#159090"),
}
