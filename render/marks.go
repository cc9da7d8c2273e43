// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-plotbook/plotspec"
)

// defaultInk is the color of unmapped marks.
var defaultInk = color.RGBA{0x22, 0x22, 0x22, 0xff}

// rowColor returns the color of row i of ld.
func (b *builder) rowColor(ld *layerData, i int) color.RGBA {
	switch {
	case ld.haveConstCol:
		return ld.constColor
	case ld.colorNum != nil:
		return b.color.mapFloat(ld.colorNum[i])
	case ld.colorLevel != nil:
		return b.color.mapLevel(ld.colorLevel[i])
	}
	return defaultInk
}

func (b *builder) rowAlpha(ld *layerData, i int) (float64, bool) {
	if ld.alpha != nil {
		return b.alpha.mapFloat(ld.alpha[i])
	}
	return layerAlpha(ld.layer), true
}

// layerAlpha returns the constant opacity of l.
func layerAlpha(l plotspec.Layer) float64 {
	if l.Style.Alpha == nil {
		return 1
	}
	return *l.Style.Alpha
}

func (b *builder) marks(ld *layerData, px, py func(float64) float64) []Item {
	var items []Item
	dropped := 0
	switch ld.layer.Geom {
	case plotspec.Point:
		for i := range ld.x {
			x, y := ld.x[i], ld.y[i]
			if !b.x.keep(x) || !b.y.keep(y) {
				dropped++
				continue
			}
			a, aok := b.rowAlpha(ld, i)
			r, rok := ld.layer.Style.Size, true
			if r == 0 {
				r = b.theme.PointSize
			}
			if ld.size != nil {
				r, rok = b.size.mapFloat(ld.size[i])
			}
			if !aok || !rok {
				dropped++
				continue
			}
			items = append(items, &Circle{px(x), py(y), r, b.rowColor(ld, i), a})
		}

	case plotspec.Line:
		items, dropped = b.lines(ld, px, py)
	}
	if dropped > 0 {
		b.log.Warn("removed rows with missing or out of range values",
			"layer", ld.index+1, "geom", ld.layer.Geom.String(), "rows", dropped)
	}
	return items
}

// lines draws ld as paths sorted by x. Categorical colors split the
// data into one path per level. Rows outside the position limits
// break the path.
func (b *builder) lines(ld *layerData, px, py func(float64) float64) ([]Item, int) {
	width := ld.layer.Style.Size
	if width == 0 {
		width = b.theme.LineWidth
	}
	alpha := layerAlpha(ld.layer)

	groups := [][]int{nil}
	if ld.colorLevel != nil && b.color != nil {
		groups = make([][]int, len(b.color.levels)+1)
	}
	dropped := 0
	for i := range ld.x {
		if math.IsNaN(ld.x[i]) {
			// Unordered; drop before sorting.
			dropped++
			continue
		}
		g := 0
		if len(groups) > 1 {
			if li, ok := b.color.index[ld.colorLevel[i]]; ok {
				g = li
			} else {
				g = len(groups) - 1 // missing level
			}
		}
		groups[g] = append(groups[g], i)
	}

	var items []Item
	for _, rows := range groups {
		sort.SliceStable(rows, func(a, c int) bool { return ld.x[rows[a]] < ld.x[rows[c]] })
		var path []int
		flush := func() {
			if len(path) >= 2 {
				items = append(items, b.path(ld, path, px, py, width, alpha)...)
			}
			path = path[:0]
		}
		for _, i := range rows {
			if !b.x.keep(ld.x[i]) || !b.y.keep(ld.y[i]) {
				dropped++
				flush()
				continue
			}
			path = append(path, i)
		}
		flush()
	}
	return items, dropped
}

// path draws the rows of one line segment. A numeric color mapping
// colors each segment by its starting row.
func (b *builder) path(ld *layerData, rows []int, px, py func(float64) float64, width, alpha float64) []Item {
	if ld.colorNum != nil && !ld.haveConstCol {
		items := make([]Item, 0, len(rows)-1)
		for k := 0; k+1 < len(rows); k++ {
			i, j := rows[k], rows[k+1]
			items = append(items, &Line{px(ld.x[i]), py(ld.y[i]), px(ld.x[j]), py(ld.y[j]), b.rowColor(ld, i), width, alpha})
		}
		return items
	}
	pl := &Polyline{Stroke: b.rowColor(ld, rows[0]), Width: width, Alpha: alpha}
	for _, i := range rows {
		pl.X = append(pl.X, px(ld.x[i]))
		pl.Y = append(pl.Y, py(ld.y[i]))
	}
	return []Item{pl}
}
