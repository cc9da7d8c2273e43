// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// oversample is the supersampling factor for raster output. The
// scene is drawn at this multiple of the output resolution and then
// scaled down.
const oversample = 2

// kappa places cubic Bézier control points to approximate a quarter
// circle.
const kappa = 0.5522847498

func (s *Scene) writePNG(w io.Writer, dpi float64) error {
	if dpi <= 0 {
		dpi = 150
	}
	k := dpi / PointsPerInch
	ow := max(1, int(math.Round(s.Width*k)))
	oh := max(1, int(math.Round(s.Height*k)))

	big := image.NewRGBA(image.Rect(0, 0, ow*oversample, oh*oversample))
	r := &raster{dst: big, k: k * oversample, faces: newFaceCache()}
	r.draw(s.Items, big.Bounds())

	out := image.NewRGBA(image.Rect(0, 0, ow, oh))
	draw.BiLinear.Scale(out, out.Bounds(), big, big.Bounds(), draw.Src, nil)
	return png.Encode(w, out)
}

type raster struct {
	dst   *image.RGBA
	k     float64 // pixels per point
	faces *faceCache
}

func (r *raster) draw(items []Item, clip image.Rectangle) {
	for _, it := range items {
		switch it := it.(type) {
		case *Rect:
			r.fill(clip, it.Fill, 1, func(p *pather) {
				p.rect(it.X, it.Y, it.W, it.H)
			})
		case *Circle:
			r.fill(clip, it.Fill, it.Alpha, func(p *pather) {
				p.circle(it.X, it.Y, it.R)
			})
		case *Line:
			r.fill(clip, it.Stroke, it.Alpha, func(p *pather) {
				p.segment(it.X1, it.Y1, it.X2, it.Y2, it.Width/2)
			})
		case *Polyline:
			r.fill(clip, it.Stroke, it.Alpha, func(p *pather) {
				hw := it.Width / 2
				for i := 0; i+1 < len(it.X); i++ {
					p.segment(it.X[i], it.Y[i], it.X[i+1], it.Y[i+1], hw)
				}
				for i := 1; i+1 < len(it.X); i++ {
					p.circle(it.X[i], it.Y[i], hw)
				}
			})
		case *Text:
			r.text(it)
		case *Clip:
			cr := image.Rect(
				int(math.Floor(it.X*r.k)), int(math.Floor(it.Y*r.k)),
				int(math.Ceil((it.X+it.W)*r.k)), int(math.Ceil((it.Y+it.H)*r.k)))
			r.draw(it.Items, cr.Intersect(clip))
		}
	}
}

// A pather collects closed subpaths in pixel space. Every subpath
// winds the same way so that overlapping pieces of one shape union
// instead of cancelling.
type pather struct {
	k    float64
	cmds []func(z *vector.Rasterizer, off image.Point)

	minX, minY, maxX, maxY float64
}

func (p *pather) see(x, y float64) {
	p.minX, p.maxX = math.Min(p.minX, x), math.Max(p.maxX, x)
	p.minY, p.maxY = math.Min(p.minY, y), math.Max(p.maxY, y)
}

func (p *pather) poly(xs, ys []float64) {
	for i := range xs {
		xs[i], ys[i] = xs[i]*p.k, ys[i]*p.k
		p.see(xs[i], ys[i])
	}
	p.cmds = append(p.cmds, func(z *vector.Rasterizer, off image.Point) {
		ox, oy := float64(off.X), float64(off.Y)
		z.MoveTo(float32(xs[0]-ox), float32(ys[0]-oy))
		for i := 1; i < len(xs); i++ {
			z.LineTo(float32(xs[i]-ox), float32(ys[i]-oy))
		}
		z.ClosePath()
	})
}

func (p *pather) rect(x, y, w, h float64) {
	p.poly([]float64{x, x + w, x + w, x}, []float64{y, y, y + h, y + h})
}

// segment adds a stroke of half-width hw from (x1,y1) to (x2,y2).
func (p *pather) segment(x1, y1, x2, y2, hw float64) {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	p.poly(
		[]float64{x1 + nx, x2 + nx, x2 - nx, x1 - nx},
		[]float64{y1 + ny, y2 + ny, y2 - ny, y1 - ny})
}

func (p *pather) circle(cx, cy, rad float64) {
	cx, cy, rad = cx*p.k, cy*p.k, rad*p.k
	p.see(cx-rad, cy-rad)
	p.see(cx+rad, cy+rad)
	c := kappa * rad
	p.cmds = append(p.cmds, func(z *vector.Rasterizer, off image.Point) {
		x, y := float32(cx-float64(off.X)), float32(cy-float64(off.Y))
		r, c := float32(rad), float32(c)
		z.MoveTo(x+r, y)
		z.CubeTo(x+r, y-c, x+c, y-r, x, y-r)
		z.CubeTo(x-c, y-r, x-r, y-c, x-r, y)
		z.CubeTo(x-r, y+c, x-c, y+r, x, y+r)
		z.CubeTo(x+c, y+r, x+r, y+c, x+r, y)
		z.ClosePath()
	})
}

// fill rasterizes the shape built by build and composites it over
// the destination within clip.
func (r *raster) fill(clip image.Rectangle, c color.RGBA, alpha float64, build func(p *pather)) {
	p := &pather{k: r.k, minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	build(p)
	if len(p.cmds) == 0 {
		return
	}
	bounds := image.Rect(
		int(math.Floor(p.minX)), int(math.Floor(p.minY)),
		int(math.Ceil(p.maxX))+1, int(math.Ceil(p.maxY))+1)
	area := bounds.Intersect(clip)
	if area.Empty() {
		return
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	for _, cmd := range p.cmds {
		cmd(z, bounds.Min)
	}
	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	a := uint8(math.Round(float64(c.A) * opacity(alpha)))
	src := image.NewUniform(color.NRGBA{c.R, c.G, c.B, a})
	draw.DrawMask(r.dst, area, src, image.Point{}, mask, area.Min.Sub(bounds.Min), draw.Over)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func (r *raster) text(t *Text) {
	for _, sp := range t.Spans {
		face := r.faces.face(sp.Face, r.k)
		src := image.NewUniform(sp.Color)
		if !t.Rotate {
			d := font.Drawer{
				Dst:  r.dst,
				Src:  src,
				Face: face,
				Dot:  fixed.Point26_6{X: toFixed((t.X + sp.Dx) * r.k), Y: toFixed(t.Y * r.k)},
			}
			d.DrawString(sp.Text)
			continue
		}
		r.textUp(sp.Text, face, src, t.X*r.k, (t.Y-sp.Dx)*r.k)
	}
}

// textUp draws s reading bottom to top with its baseline origin at
// (ox, oy). It draws horizontally into a scratch image and then
// composites the scratch image rotated a quarter turn.
func (r *raster) textUp(s string, face font.Face, src image.Image, ox, oy float64) {
	m := face.Metrics()
	asc, desc := m.Ascent.Ceil(), m.Descent.Ceil()
	w := font.MeasureString(face, s).Ceil()
	if w <= 0 {
		return
	}
	const pad = 1
	tmp := image.NewRGBA(image.Rect(0, 0, w+2*pad, asc+desc+2*pad))
	d := font.Drawer{Dst: tmp, Src: src, Face: face, Dot: fixed.P(pad, pad+asc)}
	d.DrawString(s)

	x0, y0 := int(math.Round(ox)), int(math.Round(oy))
	b := r.dst.Bounds()
	for j := 0; j < tmp.Rect.Dy(); j++ {
		for i := 0; i < tmp.Rect.Dx(); i++ {
			sc := tmp.RGBAAt(i, j)
			if sc.A == 0 {
				continue
			}
			// (i, j) is (along, below) the baseline; rotating
			// counter-clockwise maps along to up and below to right.
			p := image.Pt(x0+(j-pad-asc), y0-(i-pad))
			if !p.In(b) {
				continue
			}
			r.dst.SetRGBA(p.X, p.Y, over(sc, r.dst.RGBAAt(p.X, p.Y)))
		}
	}
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	ia := 255 - uint32(src.A)
	mix := func(s, d uint8) uint8 {
		return uint8(uint32(s) + (uint32(d)*ia+127)/255)
	}
	return color.RGBA{mix(src.R, dst.R), mix(src.G, dst.G), mix(src.B, dst.B), mix(src.A, dst.A)}
}
