// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image/color"
	"log/slog"
	"sort"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-plotbook/dataset"
	"github.com/aclements/go-plotbook/palettes"
	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/richtext"
)

// builder holds the state of one Render call.
type builder struct {
	spec  *plotspec.Spec
	tab   *table.Table
	theme plotspec.Theme
	opts  Options
	m     measurer
	log   *slog.Logger

	labels map[plotspec.Slot][]richtext.Run
	layers []*layerData

	x, y  *linearScale
	xs    scale.Linear
	ys    scale.Linear
	color *colorScale
	size  *rangeScale
	alpha *rangeScale

	scene *Scene
}

// layerData is a layer's aesthetics resolved against its rows.
type layerData struct {
	index int
	layer plotspec.Layer
	aes   plotspec.Aes
	tab   *table.Table

	x, y         []float64
	colorNum     []float64
	colorLevel   []string
	size, alpha  []float64
	constColor   color.RGBA
	haveConstCol bool
}

func (b *builder) build() (*Scene, error) {
	if err := b.resolveLabels(); err != nil {
		return nil, err
	}
	if err := b.prepareLayers(); err != nil {
		return nil, err
	}
	if err := b.trainScales(); err != nil {
		return nil, err
	}
	b.scene = &Scene{
		Width:  b.opts.Width,
		Height: b.opts.Height,
		Title:  richtext.Plain(b.labels[plotspec.TitleSlot]),
	}
	if err := b.layout(); err != nil {
		return nil, err
	}
	return b.scene, nil
}

// resolveLabels parses every non-empty label slot. Axis and legend
// titles default to the mapped column name.
func (b *builder) resolveLabels() error {
	b.labels = make(map[plotspec.Slot][]richtext.Run)
	for _, slot := range plotspec.Slots {
		raw := b.spec.Label(slot)
		if raw == "" {
			col := b.defaultColumn(slot)
			if col == "" {
				continue
			}
			raw = richtext.Escape(col)
		}
		runs, err := richtext.Resolve(raw)
		if err != nil {
			return &RenderError{string(slot) + " label", err}
		}
		b.labels[slot] = runs
	}
	return nil
}

// defaultColumn returns the column first mapped to the channel
// labeled by slot.
func (b *builder) defaultColumn(slot plotspec.Slot) string {
	var ch plotspec.Channel
	switch slot {
	case plotspec.XSlot:
		ch = plotspec.X
	case plotspec.YSlot:
		ch = plotspec.Y
	case plotspec.ColorSlot:
		ch = plotspec.Color
	default:
		return ""
	}
	if col := b.spec.Mapping()[ch]; col != "" {
		return col
	}
	for i := range b.spec.Layers() {
		if col := b.spec.LayerAes(i)[ch]; col != "" {
			return col
		}
	}
	return ""
}

func (b *builder) prepareLayers() error {
	for i, l := range b.spec.Layers() {
		ld := &layerData{index: i, layer: l, aes: b.spec.LayerAes(i)}
		what := fmt.Sprintf("layer %d (%s)", i+1, l.Geom)
		cols := make([]string, 0, len(ld.aes))
		for _, col := range ld.aes {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			if b.tab.Column(col) == nil {
				return &RenderError{what, fmt.Errorf("no column %q in table", col)}
			}
		}
		rows, err := dataset.Filter(b.tab, l.Where...)
		if err != nil {
			return &RenderError{what, err}
		}
		ld.tab = rows

		numeric := func(ch plotspec.Channel) ([]float64, error) {
			col := ld.aes[ch]
			if col == "" {
				return nil, nil
			}
			if k, _ := dataset.KindOf(rows, col); k != dataset.Numeric {
				return nil, &RenderError{what, fmt.Errorf("%s column %q is %s, not numeric", ch, col, k)}
			}
			return dataset.Floats(rows, col)
		}
		if ld.x, err = numeric(plotspec.X); err != nil {
			return err
		}
		if ld.y, err = numeric(plotspec.Y); err != nil {
			return err
		}
		if ld.size, err = numeric(plotspec.Size); err != nil {
			return err
		}
		if ld.alpha, err = numeric(plotspec.Alpha); err != nil {
			return err
		}
		if col := ld.aes[plotspec.Color]; col != "" {
			if k, _ := dataset.KindOf(rows, col); k == dataset.Numeric {
				ld.colorNum, _ = dataset.Floats(rows, col)
			} else {
				ld.colorLevel, _ = dataset.Strings(rows, col)
			}
		}
		if l.Style.Color != "" {
			// Checked when the layer was added.
			ld.constColor, _ = palettes.ParseColor(l.Style.Color)
			ld.haveConstCol = true
		}
		b.layers = append(b.layers, ld)
	}
	return nil
}

func (b *builder) trainScales() error {
	b.x = positionScale(b.spec, plotspec.X)
	b.y = positionScale(b.spec, plotspec.Y)
	var numColor, catColor bool
	for _, ld := range b.layers {
		b.x.include(ld.x)
		b.y.include(ld.y)
		numColor = numColor || ld.colorNum != nil
		catColor = catColor || ld.colorLevel != nil
	}
	b.xs = b.x.linear(true)
	b.ys = b.y.linear(true)

	if numColor && catColor {
		return &RenderError{"color scale", fmt.Errorf("color is mapped to both numeric and categorical columns")}
	}
	if numColor || catColor {
		c, err := newColorScale(b.spec, numColor)
		if err != nil {
			return &RenderError{"color scale", err}
		}
		for _, ld := range b.layers {
			if numColor {
				c.lin.include(ld.colorNum)
			} else {
				levels, _ := dataset.Levels(b.tab, ld.aes[plotspec.Color])
				c.addLevels(levels)
			}
		}
		c.train()
		b.color = c
	}

	b.size = b.rangeScale(plotspec.Size, sizeRange, func(ld *layerData) []float64 { return ld.size })
	b.alpha = b.rangeScale(plotspec.Alpha, alphaRange, func(ld *layerData) []float64 { return ld.alpha })
	return nil
}

func (b *builder) rangeScale(ch plotspec.Channel, out [2]float64, col func(*layerData) []float64) *rangeScale {
	lin := positionScale(b.spec, ch)
	found := false
	for _, ld := range b.layers {
		if xs := col(ld); xs != nil {
			lin.include(xs)
			found = true
		}
	}
	if !found {
		return nil
	}
	return &rangeScale{lin: lin, ls: lin.linear(false), out: out}
}
