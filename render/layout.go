// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/richtext"
)

// gap is the space between plot elements, in points.
const gap = 5.5

// A textBlock is a laid out multi-line label.
type textBlock struct {
	lines []textLine
	w, h  float64
}

type textLine struct {
	spans    []Span
	w, h     float64
	baseline float64 // from the top of the line
}

// block lays out runs in the font of role. Run styles override the
// role's font.
func (b *builder) block(runs []richtext.Run, role plotspec.Role) textBlock {
	var tb textBlock
	if len(runs) == 0 {
		return tb
	}
	base := b.theme.Font(role)
	for _, line := range richtext.Lines(runs) {
		baseFace := Face{Family: base.Family, Bold: base.Bold, Size: base.Size}
		asc, desc, size := b.m.ascent(baseFace), b.m.descent(baseFace), base.Size
		var tl textLine
		for _, r := range line {
			f := Face{
				Family: base.Family,
				Bold:   base.Bold || r.Style.Bold,
				Italic: r.Style.Italic,
				Size:   base.Size,
			}
			if r.Style.Family != "" {
				f.Family = r.Style.Family
			}
			if r.Style.Size > 0 {
				f.Size = r.Style.Size
			}
			c := base.Color
			if r.Style.HasColor {
				c = r.Style.Color
			}
			tl.spans = append(tl.spans, Span{Dx: tl.w, Text: r.Text, Face: f, Color: c})
			tl.w += b.m.width(r.Text, f)
			asc = max(asc, b.m.ascent(f))
			desc = max(desc, b.m.descent(f))
			size = max(size, f.Size)
		}
		tl.h = max(size*1.2, asc+desc)
		tl.baseline = (tl.h-asc-desc)/2 + asc
		tb.lines = append(tb.lines, tl)
		tb.w = max(tb.w, tl.w)
		tb.h += tl.h
	}
	return tb
}

// drawBlock draws tb with its top at y. align is the fraction of
// each line's width that lies left of x: 0 for left-aligned text, 0.5
// for centered, and 1 for right-aligned.
func (b *builder) drawBlock(tb textBlock, x, y, align float64) {
	for _, tl := range tb.lines {
		if len(tl.spans) > 0 {
			b.add(&Text{X: x - align*tl.w, Y: y + tl.baseline, Spans: tl.spans})
		}
		y += tl.h
	}
}

// drawBlockUp draws tb rotated to read bottom to top, with its left
// edge at x and each line centered vertically on cy.
func (b *builder) drawBlockUp(tb textBlock, x, cy float64) {
	for _, tl := range tb.lines {
		if len(tl.spans) > 0 {
			b.add(&Text{X: x + tl.baseline, Y: cy + tl.w/2, Rotate: true, Spans: tl.spans})
		}
		x += tl.h
	}
}

func (b *builder) add(it Item) {
	b.scene.Items = append(b.scene.Items, it)
}

func (b *builder) roleFace(role plotspec.Role) (Face, color.RGBA) {
	f := b.theme.Font(role)
	return Face{Family: f.Family, Bold: f.Bold, Size: f.Size}, f.Color
}

// label draws a single plain string in face f.
func (b *builder) label(s string, f Face, c color.RGBA, x, baseline, align float64) {
	w := b.m.width(s, f)
	b.add(&Text{X: x - align*w, Y: baseline, Spans: []Span{{Text: s, Face: f, Color: c}}})
}

type rect struct {
	X, Y, W, H float64
}

func (b *builder) layout() error {
	th := b.theme
	W, H := b.opts.Width, b.opts.Height
	left, top := th.Margins.Left, th.Margins.Top
	right, bottom := W-th.Margins.Right, H-th.Margins.Bottom

	b.add(&Rect{0, 0, W, H, th.Background})

	for _, t := range []struct {
		slot plotspec.Slot
		role plotspec.Role
	}{{plotspec.TitleSlot, plotspec.TitleRole}, {plotspec.SubtitleSlot, plotspec.SubtitleRole}} {
		if runs := b.labels[t.slot]; runs != nil {
			tb := b.block(runs, t.role)
			b.drawBlock(tb, left, top, 0)
			top += tb.h + gap
		}
	}
	if runs := b.labels[plotspec.CaptionSlot]; runs != nil {
		tb := b.block(runs, plotspec.CaptionRole)
		bottom -= tb.h
		b.drawBlock(tb, right, bottom, 1)
		bottom -= gap
	}

	legend := b.legend()
	if legend != nil {
		right -= legend.w + 2*gap
	}

	xTitle := b.block(b.labels[plotspec.XSlot], plotspec.AxisTitleRole)
	yTitle := b.block(b.labels[plotspec.YSlot], plotspec.AxisTitleRole)
	if xTitle.h > 0 {
		bottom -= xTitle.h + gap/2
	}
	yTitleX := left
	if yTitle.h > 0 {
		left += yTitle.h + gap/2
	}

	axisFace, axisColor := b.roleFace(plotspec.AxisTextRole)
	asc, desc := b.m.ascent(axisFace), b.m.descent(axisFace)
	tickSpace := th.TickLength + 2.2
	bottom -= asc + desc + tickSpace

	yBreaks, yLabels := b.y.ticks(b.ys, 8, func(labels []string) bool {
		return float64(len(labels))*(asc+desc)*2.5 <= bottom-top
	})
	yLabelW := 0.0
	for _, l := range yLabels {
		yLabelW = max(yLabelW, b.m.width(l, axisFace))
	}
	left += yLabelW + tickSpace

	panel := rect{left, top, right - left, bottom - top}
	if panel.W < 1 || panel.H < 1 {
		return &RenderError{"layout", fmt.Errorf("%gx%g points is too small for the plot's labels", W, H)}
	}
	xBreaks, xLabels := b.x.ticks(b.xs, 10, func(labels []string) bool {
		total := 0.0
		for _, l := range labels {
			total += b.m.width(l, axisFace) + 2*gap
		}
		return total <= panel.W
	})

	px := func(x float64) float64 { return panel.X + b.xs.Map(x)*panel.W }
	py := func(y float64) float64 { return panel.Y + (1-b.ys.Map(y))*panel.H }

	// Panel and grid.
	b.add(&Rect{panel.X, panel.Y, panel.W, panel.H, th.PanelBackground})
	if th.Grid {
		for _, x := range xBreaks {
			b.add(&Line{px(x), panel.Y, px(x), panel.Y + panel.H, th.GridColor, 0.75, 1})
		}
		for _, y := range yBreaks {
			b.add(&Line{panel.X, py(y), panel.X + panel.W, py(y), th.GridColor, 0.75, 1})
		}
	}

	// Data.
	clip := &Clip{X: panel.X, Y: panel.Y, W: panel.W, H: panel.H}
	for _, ld := range b.layers {
		clip.Items = append(clip.Items, b.marks(ld, px, py)...)
	}
	b.add(clip)

	// Axes.
	pb := panel.Y + panel.H
	for i, x := range xBreaks {
		b.add(&Line{px(x), pb, px(x), pb + th.TickLength, th.TickColor, 0.5, 1})
		b.label(xLabels[i], axisFace, axisColor, px(x), pb+tickSpace+asc, 0.5)
	}
	for i, y := range yBreaks {
		b.add(&Line{panel.X - th.TickLength, py(y), panel.X, py(y), th.TickColor, 0.5, 1})
		b.label(yLabels[i], axisFace, axisColor, panel.X-tickSpace, py(y)+(asc-desc)/2, 1)
	}
	b.drawBlock(xTitle, panel.X+panel.W/2, pb+tickSpace+asc+desc+gap/2, 0.5)
	b.drawBlockUp(yTitle, yTitleX, panel.Y+panel.H/2)

	if legend != nil {
		ly := panel.Y + max(0, (panel.H-legend.h)/2)
		legend.draw(panel.X+panel.W+2*gap, ly)
	}
	return nil
}
