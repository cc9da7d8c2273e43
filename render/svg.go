// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/aclements/go-plotbook/palettes"
	"github.com/ajstarks/svgo"
)

// svgUnits is the number of SVG user units per point. svgo takes
// integer coordinates, so the view box is scaled up to keep sub-point
// precision.
const svgUnits = 10

func su(v float64) int {
	return int(math.Round(v * svgUnits))
}

func (s *Scene) writeSVG(w io.Writer) error {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	iw, ih := int(math.Ceil(s.Width)), int(math.Ceil(s.Height))
	canvas.Startview(iw, ih, 0, 0, su(s.Width), su(s.Height))
	if s.Title != "" {
		canvas.Title(s.Title)
	}
	clips := 0
	var draw func(items []Item)
	draw = func(items []Item) {
		for _, it := range items {
			switch it := it.(type) {
			case *Rect:
				canvas.Rect(su(it.X), su(it.Y), su(it.W), su(it.H), fill(it.Fill, 1))
			case *Circle:
				canvas.Circle(su(it.X), su(it.Y), su(it.R), fill(it.Fill, it.Alpha))
			case *Line:
				canvas.Line(su(it.X1), su(it.Y1), su(it.X2), su(it.Y2), stroke(it.Stroke, it.Width, it.Alpha))
			case *Polyline:
				xs, ys := make([]int, len(it.X)), make([]int, len(it.Y))
				for i := range it.X {
					xs[i], ys[i] = su(it.X[i]), su(it.Y[i])
				}
				canvas.Polyline(xs, ys, "fill:none;stroke-linejoin:round;stroke-linecap:round;"+stroke(it.Stroke, it.Width, it.Alpha))
			case *Text:
				svgText(canvas, it)
			case *Clip:
				clips++
				id := fmt.Sprintf("clip%d", clips)
				canvas.ClipPath(`id="` + id + `"`)
				canvas.Rect(su(it.X), su(it.Y), su(it.W), su(it.H))
				canvas.ClipEnd()
				canvas.Group(`clip-path="url(#` + id + `)"`)
				draw(it.Items)
				canvas.Gend()
			}
		}
	}
	draw(s.Items)
	canvas.End()
	_, err := w.Write(buf.Bytes())
	return err
}

func fill(c color.RGBA, alpha float64) string {
	s := "fill:" + palettes.Hex(c)
	if a := opacity(alpha); a < 1 {
		s += fmt.Sprintf(";fill-opacity:%.3g", a)
	}
	return s
}

func stroke(c color.RGBA, width, alpha float64) string {
	s := fmt.Sprintf("stroke:%s;stroke-width:%d", palettes.Hex(c), su(width))
	if a := opacity(alpha); a < 1 {
		s += fmt.Sprintf(";stroke-opacity:%.3g", a)
	}
	return s
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;")

// svgFamily returns a CSS font-family list for f.
func svgFamily(f Face) string {
	generic := [...]string{sansClass: "sans-serif", serifClass: "serif", monoClass: "monospace"}[classify(f.Family)]
	switch strings.ToLower(f.Family) {
	case "", "sans", "serif", "mono", "sans-serif", "monospace":
		return generic
	}
	return "'" + f.Family + "', " + generic
}

func svgText(canvas *svg.SVG, t *Text) {
	x, y := su(t.X), su(t.Y)
	attrs := []string{`xml:space="preserve"`}
	if t.Rotate {
		attrs = append(attrs, fmt.Sprintf(`transform="rotate(-90 %d %d)"`, x, y))
	}
	canvas.Textspan(x, y, "", attrs...)
	for _, sp := range t.Spans {
		a := []string{
			fmt.Sprintf(`x="%d"`, su(t.X+sp.Dx)),
			fmt.Sprintf(`font-family="%s"`, attrEscaper.Replace(svgFamily(sp.Face))),
			fmt.Sprintf(`font-size="%d"`, su(sp.Face.Size)),
			`fill="` + palettes.Hex(sp.Color) + `"`,
		}
		if sp.Face.Bold {
			a = append(a, `font-weight="bold"`)
		}
		if sp.Face.Italic {
			a = append(a, `font-style="italic"`)
		}
		canvas.Span(sp.Text, a...)
	}
	canvas.TextEnd()
}
