// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// A fontClass is the generic family a requested font family falls
// back to.
type fontClass int

const (
	sansClass fontClass = iota
	serifClass
	monoClass
)

func classify(family string) fontClass {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"), strings.Contains(f, "code"):
		return monoClass
	case strings.Contains(f, "sans"):
		return sansClass
	case strings.Contains(f, "serif"), strings.Contains(f, "times"), strings.Contains(f, "georgia"):
		return serifClass
	}
	return sansClass
}

// A measurer reports text metrics in points for a backend's fonts.
type measurer interface {
	width(s string, f Face) float64
	ascent(f Face) float64
	descent(f Face) float64
}

// Go fonts, used by the PNG backend and for SVG layout. There is no
// Go serif face, so serif falls back to Go regular.
var goFonts struct {
	once  sync.Once
	fonts map[goFontKey]*opentype.Font
	err   error
}

type goFontKey struct {
	mono, bold, italic bool
}

func loadGoFonts() (map[goFontKey]*opentype.Font, error) {
	goFonts.once.Do(func() {
		ttfs := map[goFontKey][]byte{
			{false, false, false}: goregular.TTF,
			{false, true, false}:  gobold.TTF,
			{false, false, true}:  goitalic.TTF,
			{false, true, true}:   gobolditalic.TTF,
			{true, false, false}:  gomono.TTF,
			{true, true, false}:   gomonobold.TTF,
			{true, false, true}:   gomonoitalic.TTF,
			{true, true, true}:    gomonobolditalic.TTF,
		}
		goFonts.fonts = make(map[goFontKey]*opentype.Font)
		for k, ttf := range ttfs {
			f, err := opentype.Parse(ttf)
			if err != nil {
				goFonts.err = err
				return
			}
			goFonts.fonts[k] = f
		}
	})
	return goFonts.fonts, goFonts.err
}

// A faceCache holds Go font faces for one render. font.Face values
// are not safe for concurrent use.
type faceCache struct {
	faces map[faceKey]font.Face
}

type faceKey struct {
	font goFontKey
	size float64
}

func newFaceCache() *faceCache {
	return &faceCache{make(map[faceKey]font.Face)}
}

// face returns the Go font face for f scaled by k.
func (c *faceCache) face(f Face, k float64) font.Face {
	key := faceKey{goFontKey{classify(f.Family) == monoClass, f.Bold, f.Italic}, f.Size * k}
	if face, ok := c.faces[key]; ok {
		return face
	}
	fonts, err := loadGoFonts()
	if err != nil {
		panic("parsing Go fonts: " + err.Error())
	}
	face, err := opentype.NewFace(fonts[key.font], &opentype.FaceOptions{
		Size:    key.size,
		DPI:     PointsPerInch,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic("creating Go font face: " + err.Error())
	}
	c.faces[key] = face
	return face
}

type goMeasurer struct {
	c *faceCache
}

func fromFixed(x fixed.Int26_6) float64 {
	return float64(x) / 64
}

func (m goMeasurer) width(s string, f Face) float64 {
	return fromFixed(font.MeasureString(m.c.face(f, 1), s))
}

func (m goMeasurer) ascent(f Face) float64 {
	return fromFixed(m.c.face(f, 1).Metrics().Ascent)
}

func (m goMeasurer) descent(f Face) float64 {
	return fromFixed(m.c.face(f, 1).Metrics().Descent)
}

// PDF output uses the standard Type 1 fonts, which every reader has
// and which need no embedding.
var coreFonts = [...]struct {
	name            string
	ascent, descent float64 // per unit of font size
}{
	sansClass:  {"Helvetica", 0.718, 0.207},
	serifClass: {"Times", 0.683, 0.217},
	monoClass:  {"Courier", 0.629, 0.157},
}

func coreStyle(f Face) string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

type pdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFMeasurer() *pdfMeasurer {
	pdf := fpdf.New("P", "pt", "A4", "")
	return &pdfMeasurer{pdf, pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *pdfMeasurer) width(s string, f Face) float64 {
	m.pdf.SetFont(coreFonts[classify(f.Family)].name, coreStyle(f), f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}

func (m *pdfMeasurer) ascent(f Face) float64 {
	return coreFonts[classify(f.Family)].ascent * f.Size
}

func (m *pdfMeasurer) descent(f Face) float64 {
	return coreFonts[classify(f.Family)].descent * f.Size
}
