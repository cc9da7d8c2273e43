// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"github.com/aclements/go-plotbook/plotspec"
)

const (
	barWidth  = 12
	barHeight = 72
	barSteps  = 48
)

// A legendBox is a measured legend waiting to be placed.
type legendBox struct {
	w, h float64
	draw func(x, y float64)
}

// legend measures the color legend: a color bar for numeric columns
// or one key per level for categorical columns. It returns nil if
// color is not mapped.
func (b *builder) legend() *legendBox {
	c := b.color
	if c == nil {
		return nil
	}
	title := b.block(b.labels[plotspec.ColorSlot], plotspec.LegendRole)
	face, ink := b.roleFace(plotspec.LegendRole)
	asc, desc := b.m.ascent(face), b.m.descent(face)
	top := title.h
	if top > 0 {
		top += gap / 2
	}

	if c.numeric {
		breaks, labels := c.lin.ticks(c.ls, 5, nil)
		labelW := 0.0
		for _, l := range labels {
			labelW = max(labelW, b.m.width(l, face))
		}
		return &legendBox{
			w: max(title.w, barWidth+gap+labelW),
			h: top + barHeight,
			draw: func(x, y float64) {
				b.drawBlock(title, x, y, 0)
				y += top
				step := float64(barHeight) / barSteps
				for k := 0; k < barSteps; k++ {
					frac := 1 - (float64(k)+0.5)/barSteps
					b.add(&Rect{x, y + float64(k)*step, barWidth, step, c.pal.Map(frac)})
				}
				for i, v := range breaks {
					fy := y + (1-c.ls.Map(v))*barHeight
					b.add(&Line{x, fy, x + barWidth/4, fy, b.theme.Background, 0.5, 1})
					b.add(&Line{x + barWidth*3/4, fy, x + barWidth, fy, b.theme.Background, 0.5, 1})
					b.label(labels[i], face, ink, x+barWidth+gap, fy+(asc-desc)/2, 0)
				}
			},
		}
	}

	rowH := max((asc+desc)*1.4, 4*b.theme.PointSize+2)
	labelW := 0.0
	for _, l := range c.levels {
		labelW = max(labelW, b.m.width(l, face))
	}
	return &legendBox{
		w: max(title.w, rowH+gap+labelW),
		h: top + float64(len(c.levels))*rowH,
		draw: func(x, y float64) {
			b.drawBlock(title, x, y, 0)
			y += top
			for _, l := range c.levels {
				cy := y + rowH/2
				b.add(&Circle{x + rowH/2, cy, b.theme.PointSize * 1.5, c.mapLevel(l), 1})
				b.label(l, face, ink, x+rowH+gap, cy+(asc-desc)/2, 0)
				y += rowH
			}
		},
	}
}
