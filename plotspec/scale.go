// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plotspec

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-plotbook/palettes"
)

// A Range is a closed interval of data values.
type Range struct {
	Min, Max float64
}

// Limits returns a *Range for use as scale limits.
func Limits(min, max float64) *Range {
	return &Range{min, max}
}

// Contains reports whether x is in r.
func (r Range) Contains(x float64) bool {
	return r.Min <= x && x <= r.Max
}

func (r *Range) check(ch Channel) error {
	if r == nil {
		return nil
	}
	if !isFinite(r.Min) || !isFinite(r.Max) {
		return &InvalidScaleError{ch, fmt.Sprintf("limits [%g, %g] are not finite", r.Min, r.Max)}
	}
	if r.Min >= r.Max {
		return &InvalidScaleError{ch, fmt.Sprintf("limits [%g, %g] are empty", r.Min, r.Max)}
	}
	return nil
}

// A Scale controls how data values map onto a channel. It is one of
// Continuous or ColorScale.
type Scale interface {
	check(ch Channel) error
}

// Continuous is a linear scale for the x, y, size, and alpha
// channels.
type Continuous struct {
	// Limits, if non-nil, fixes the displayed domain. Data outside
	// the limits is not drawn. If nil, the domain is trained from
	// the data.
	Limits *Range

	// Breaks are the tick positions in increasing order. If nil,
	// breaks are chosen automatically.
	Breaks []float64

	// Format is the fmt verb for tick labels. The default is "%g".
	Format string
}

func (s Continuous) check(ch Channel) error {
	switch ch {
	case X, Y, Size, Alpha:
	default:
		return &InvalidScaleError{ch, "continuous scale cannot be used for this channel"}
	}
	if err := s.Limits.check(ch); err != nil {
		return err
	}
	return checkBreaks(ch, s.Breaks, s.Limits)
}

// ColorScale binds the color channel to a named palette.
//
// Numeric columns map linearly from the domain onto the palette.
// Categorical columns take evenly spaced palette colors in sorted
// level order.
type ColorScale struct {
	Palette string
	Reverse bool

	// Limits and Breaks apply to numeric columns and have the same
	// meaning as for Continuous. Values outside Limits are drawn
	// in palettes.NAColor.
	Limits *Range
	Breaks []float64
}

func (s ColorScale) check(ch Channel) error {
	if ch != Color {
		return &InvalidScaleError{ch, "color scale can only be used for the color channel"}
	}
	if _, ok := palettes.Lookup(s.Palette); !ok {
		return &UnknownPaletteError{s.Palette}
	}
	if err := s.Limits.check(ch); err != nil {
		return err
	}
	return checkBreaks(ch, s.Breaks, s.Limits)
}

// Lookup returns the palette of s, reversed if requested.
func (s ColorScale) Lookup() (*palettes.Palette, error) {
	p, ok := palettes.Lookup(s.Palette)
	if !ok {
		return nil, &UnknownPaletteError{s.Palette}
	}
	if s.Reverse {
		p = p.Reversed()
	}
	return p, nil
}

func checkBreaks(ch Channel, breaks []float64, lim *Range) error {
	for _, b := range breaks {
		if !isFinite(b) {
			return &InvalidScaleError{ch, fmt.Sprintf("break %g is not finite", b)}
		}
		if lim != nil && !lim.Contains(b) {
			return &InvalidScaleError{ch, fmt.Sprintf("break %g outside limits [%g, %g]", b, lim.Min, lim.Max)}
		}
	}
	if !sort.Float64sAreSorted(breaks) {
		return &InvalidScaleError{ch, "breaks are not in increasing order"}
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
