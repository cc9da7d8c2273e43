// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-plotbook/palettes"
	"github.com/aclements/go-plotbook/plotspec"
)

// expand is the fraction of the domain added on each side of a
// position scale.
const expand = 0.05

// A linearScale trains a continuous domain from data and maps it
// onto [0, 1].
type linearScale struct {
	limits *plotspec.Range
	breaks []float64
	format string

	dataMin, dataMax float64
}

func newLinearScale(limits *plotspec.Range, breaks []float64, format string) *linearScale {
	if format == "" {
		format = "%.6g"
	}
	return &linearScale{
		limits:  limits,
		breaks:  breaks,
		format:  format,
		dataMin: math.NaN(),
		dataMax: math.NaN(),
	}
}

func positionScale(spec *plotspec.Spec, ch plotspec.Channel) *linearScale {
	if sc, ok := spec.Scale(ch).(plotspec.Continuous); ok {
		return newLinearScale(sc.Limits, sc.Breaks, sc.Format)
	}
	return newLinearScale(nil, nil, "")
}

// include widens the trained domain to cover the finite values of xs
// that lie within the scale's limits.
func (s *linearScale) include(xs []float64) {
	for _, x := range xs {
		if !s.keep(x) {
			continue
		}
		if math.IsNaN(s.dataMin) {
			s.dataMin, s.dataMax = x, x
			continue
		}
		s.dataMin = math.Min(s.dataMin, x)
		s.dataMax = math.Max(s.dataMax, x)
	}
}

// keep reports whether x can be drawn on this scale.
func (s *linearScale) keep(x float64) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return false
	}
	return s.limits == nil || s.limits.Contains(x)
}

// domain returns the unexpanded domain.
func (s *linearScale) domain() (min, max float64) {
	switch {
	case s.limits != nil:
		min, max = s.limits.Min, s.limits.Max
	case math.IsNaN(s.dataMin):
		min, max = 0, 1
	default:
		min, max = s.dataMin, s.dataMax
	}
	if min == max {
		d := math.Abs(min) * expand
		if d == 0 {
			d = 0.5
		}
		min, max = min-d, max+d
	}
	return
}

// linear returns the trained scale, expanded for position channels.
func (s *linearScale) linear(pad bool) scale.Linear {
	min, max := s.domain()
	if pad {
		d := (max - min) * expand
		min, max = min-d, max+d
	}
	return scale.Linear{Min: min, Max: max}
}

// ticks returns the major breaks within the domain of ls and their
// labels. If fits is non-nil, automatic breaks are thinned until
// fits accepts their labels.
func (s *linearScale) ticks(ls scale.Linear, maxTicks int, fits func(labels []string) bool) ([]float64, []string) {
	if s.breaks != nil {
		return s.breaks, s.labels(s.breaks)
	}
	o := scale.TickOptions{Max: maxTicks}
	level, ok := o.FindLevel(ls, 0)
	if !ok {
		return nil, nil
	}
	major := inside(ls, ls.TicksAtLevel(level).([]float64))
	for fits != nil && len(major) > 1 && !fits(s.labels(major)) {
		// Higher levels have fewer ticks.
		level++
		major = inside(ls, ls.TicksAtLevel(level).([]float64))
	}
	return major, s.labels(major)
}

func inside(ls scale.Linear, xs []float64) []float64 {
	var out []float64
	for _, x := range xs {
		if ls.Min <= x && x <= ls.Max {
			out = append(out, x)
		}
	}
	return out
}

func (s *linearScale) labels(xs []float64) []string {
	labels := make([]string, len(xs))
	for i, x := range xs {
		if x == 0 {
			x = 0 // no "-0"
		}
		labels[i] = fmt.Sprintf(s.format, x)
	}
	return labels
}

// A colorScale maps numeric values or categorical levels to colors.
type colorScale struct {
	pal *palettes.Palette

	numeric bool
	lin     *linearScale
	ls      scale.Linear

	levels []string
	index  map[string]int
}

func (c *colorScale) mapFloat(v float64) color.RGBA {
	if !c.lin.keep(v) {
		return palettes.NAColor
	}
	return c.pal.Map(c.ls.Map(v))
}

func (c *colorScale) mapLevel(level string) color.RGBA {
	i, ok := c.index[level]
	if !ok {
		return palettes.NAColor
	}
	return c.pal.Level(i, len(c.levels))
}

// defaultPalette is used when the color channel has no ColorScale.
func defaultPalette(numeric bool) string {
	if numeric {
		return "viridis"
	}
	return "okabe-ito"
}

func newColorScale(spec *plotspec.Spec, numeric bool) (*colorScale, error) {
	cs, _ := spec.Scale(plotspec.Color).(plotspec.ColorScale)
	if cs.Palette == "" {
		cs.Palette = defaultPalette(numeric)
	}
	pal, err := cs.Lookup()
	if err != nil {
		return nil, err
	}
	c := &colorScale{pal: pal, numeric: numeric}
	if numeric {
		c.lin = newLinearScale(cs.Limits, cs.Breaks, "")
	} else {
		c.index = make(map[string]int)
	}
	return c, nil
}

func (c *colorScale) addLevels(levels []string) {
	for _, l := range levels {
		if _, ok := c.index[l]; !ok {
			c.index[l] = -1
			c.levels = append(c.levels, l)
		}
	}
}

// train fixes the domain after all layers have been included.
func (c *colorScale) train() {
	if c.numeric {
		c.ls = c.lin.linear(false)
		return
	}
	sort.Strings(c.levels)
	for i, l := range c.levels {
		c.index[l] = i
	}
}

// sizeRange and alphaRange are the outputs of mapped size and alpha
// channels.
var (
	sizeRange  = [2]float64{1, 6}
	alphaRange = [2]float64{0.1, 1}
)

// A rangeScale maps a numeric domain linearly onto an output range.
type rangeScale struct {
	lin *linearScale
	ls  scale.Linear
	out [2]float64
}

func (r *rangeScale) mapFloat(v float64) (float64, bool) {
	if !r.lin.keep(v) {
		return 0, false
	}
	f := r.ls.Map(v)
	return r.out[0] + f*(r.out[1]-r.out[0]), true
}
