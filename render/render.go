// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render draws plot specifications against tables and
// exports them as PDF, SVG, or PNG.
//
// Rendering is a pure function of the spec, the table, the options,
// and the default theme at the time Render is called: rendering the
// same inputs twice produces byte-identical files.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-plotbook/plotspec"
)

// Format is an output file format.
type Format int

const (
	// Auto picks the format from the output file extension,
	// falling back to PDF.
	Auto Format = iota
	PDF
	SVG
	PNG
)

var formatNames = map[Format]string{Auto: "auto", PDF: "pdf", SVG: "svg", PNG: "png"}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a format name such as "pdf".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	for f, n := range formatNames {
		if n == s {
			return f, nil
		}
	}
	return Auto, fmt.Errorf("unknown format %q", s)
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil || f == Auto {
		return Auto, false
	}
	return f, true
}

// PointsPerInch is the size of the output coordinate unit.
const PointsPerInch = 72

// Inches converts inches to points.
func Inches(in float64) float64 {
	return in * PointsPerInch
}

// Pixels converts a pixel count at dpi to points.
func Pixels(px, dpi float64) float64 {
	return px * PointsPerInch / dpi
}

// ParseLength parses a length such as "6in", "2.5cm", "800px" or
// "432pt" and returns it in points. A bare number is in points. Pixel
// lengths are converted at dpi.
func ParseLength(s string, dpi float64) (float64, error) {
	if dpi <= 0 {
		dpi = 150
	}
	units := []struct {
		suffix string
		pts    float64
	}{
		{"in", PointsPerInch},
		{"cm", PointsPerInch / 2.54},
		{"mm", PointsPerInch / 25.4},
		{"pt", 1},
		{"px", PointsPerInch / dpi},
		{"", 1},
	}
	s = strings.TrimSpace(s)
	for _, u := range units {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil || !(v > 0) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("bad length %q", s)
		}
		return v * u.pts, nil
	}
	return 0, fmt.Errorf("bad length %q", s)
}

// Options control rendering and export.
type Options struct {
	// Width and Height are the output size in points. The default
	// is 6 by 4 inches.
	Width, Height float64

	Format Format

	// DPI is the raster resolution. The default is 150.
	DPI float64

	// Theme, if non-nil, replaces the process default theme.
	Theme *plotspec.Theme

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = Inches(6)
	}
	if o.Height <= 0 {
		o.Height = Inches(4)
	}
	if o.DPI <= 0 {
		o.DPI = 150
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// RenderError reports a spec that cannot be drawn against a table,
// such as one that references a missing column.
type RenderError struct {
	What string // the part of the plot that failed
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.What, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ExportError reports a failure to write an output file.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Render lays out spec against tab and returns the resulting scene.
// The default theme is read once, on entry.
func Render(spec *plotspec.Spec, tab *table.Table, opts Options) (*Scene, error) {
	opts = opts.withDefaults()
	var theme plotspec.Theme
	if opts.Theme != nil {
		theme = *opts.Theme
	} else {
		theme = plotspec.DefaultTheme()
	}
	theme = spec.Theme(theme)

	var m measurer = goMeasurer{newFaceCache()}
	if opts.Format == PDF {
		m = newPDFMeasurer()
	}
	b := &builder{
		spec:  spec,
		tab:   tab,
		theme: theme,
		opts:  opts,
		m:     m,
		log:   opts.Logger,
	}
	return b.build()
}
