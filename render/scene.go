// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"io"
)

// A Scene is a rendered plot as a display list. Coordinates are in
// points with the origin at the top left and y increasing downward.
type Scene struct {
	Width, Height float64
	Title         string // plain text of the title label, for metadata
	Items         []Item
}

// An Item is one drawing operation: *Rect, *Line, *Polyline,
// *Circle, *Text, or *Clip.
type Item interface {
	isItem()
}

// Rect is a filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       color.RGBA
}

// Items that carry an Alpha are drawn with that opacity, from 0
// (invisible) to 1 (opaque).

// Line is a straight stroked segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         color.RGBA
	Width          float64
	Alpha          float64
}

// Polyline is an open stroked path.
type Polyline struct {
	X, Y   []float64
	Stroke color.RGBA
	Width  float64
	Alpha  float64
}

// Circle is a filled circle.
type Circle struct {
	X, Y, R float64
	Fill    color.RGBA
	Alpha   float64
}

// Text is one line of styled text. Spans are placed along the
// baseline starting at (X, Y). If Rotate is set, the line is rotated
// 90 degrees counter-clockwise about (X, Y) and reads bottom to top.
type Text struct {
	X, Y   float64
	Rotate bool
	Spans  []Span
}

// A Span is a run of text in a single face.
type Span struct {
	Dx    float64 // offset along the baseline from the Text origin
	Text  string
	Face  Face
	Color color.RGBA
}

// A Face selects a font.
type Face struct {
	Family       string
	Bold, Italic bool
	Size         float64 // points
}

// Clip restricts Items to a rectangle.
type Clip struct {
	X, Y, W, H float64
	Items      []Item
}

func (*Rect) isItem()     {}
func (*Line) isItem()     {}
func (*Polyline) isItem() {}
func (*Circle) isItem()   {}
func (*Text) isItem()     {}
func (*Clip) isItem()     {}

// Walk calls f for every item in s in drawing order, descending into
// clips.
func (s *Scene) Walk(f func(Item)) {
	walk(s.Items, f)
}

func walk(items []Item, f func(Item)) {
	for _, it := range items {
		f(it)
		if c, ok := it.(*Clip); ok {
			walk(c.Items, f)
		}
	}
}

// Encode serializes s to w in format f. dpi applies only to raster
// formats.
func (s *Scene) Encode(w io.Writer, f Format, dpi float64) error {
	switch f {
	case PDF:
		return s.writePDF(w)
	case SVG:
		return s.writeSVG(w)
	case PNG:
		return s.writePNG(w, dpi)
	}
	return fmt.Errorf("cannot encode %s", f)
}

// opacity clamps an item alpha to [0, 1].
func opacity(a float64) float64 {
	switch {
	case a != a || a > 1:
		return 1
	case a < 0:
		return 0
	}
	return a
}
