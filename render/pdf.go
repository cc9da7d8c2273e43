// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image/color"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// pdfEpoch is the creation and modification date of every PDF, so
// that output depends only on the scene.
var pdfEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	alpha float64
}

func (s *Scene) writePDF(w io.Writer) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: s.Width, Ht: s.Height},
	})
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(true)
	pdf.SetProducer("plotbook", false)
	if s.Title != "" {
		pdf.SetTitle(s.Title, true)
	}
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), alpha: 1}
	pw.draw(s.Items)
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func (pw *pdfWriter) setAlpha(a float64) {
	a = opacity(a)
	if a != pw.alpha {
		pw.pdf.SetAlpha(a, "Normal")
		pw.alpha = a
	}
}

func (pw *pdfWriter) draw(items []Item) {
	pdf := pw.pdf
	for _, it := range items {
		switch it := it.(type) {
		case *Rect:
			pw.setAlpha(1)
			setFill(pdf, it.Fill)
			pdf.Rect(it.X, it.Y, it.W, it.H, "F")
		case *Circle:
			pw.setAlpha(it.Alpha)
			setFill(pdf, it.Fill)
			pdf.Circle(it.X, it.Y, it.R, "F")
		case *Line:
			pw.setAlpha(it.Alpha)
			setStroke(pdf, it.Stroke, it.Width)
			pdf.Line(it.X1, it.Y1, it.X2, it.Y2)
		case *Polyline:
			if len(it.X) == 0 {
				continue
			}
			pw.setAlpha(it.Alpha)
			setStroke(pdf, it.Stroke, it.Width)
			pdf.MoveTo(it.X[0], it.Y[0])
			for i := 1; i < len(it.X); i++ {
				pdf.LineTo(it.X[i], it.Y[i])
			}
			pdf.DrawPath("D")
		case *Text:
			pw.setAlpha(1)
			pw.text(it)
		case *Clip:
			pdf.ClipRect(it.X, it.Y, it.W, it.H, false)
			pw.draw(it.Items)
			pdf.ClipEnd()
		}
	}
}

func setFill(pdf *fpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setStroke(pdf *fpdf.Fpdf, c color.RGBA, width float64) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(width)
}

func (pw *pdfWriter) text(t *Text) {
	pdf := pw.pdf
	if t.Rotate {
		pdf.TransformBegin()
		pdf.TransformRotate(90, t.X, t.Y)
	}
	for _, sp := range t.Spans {
		pdf.SetFont(coreFonts[classify(sp.Face.Family)].name, coreStyle(sp.Face), sp.Face.Size)
		pdf.SetTextColor(int(sp.Color.R), int(sp.Color.G), int(sp.Color.B))
		pdf.Text(t.X+sp.Dx, t.Y, pw.tr(sp.Text))
	}
	if t.Rotate {
		pdf.TransformEnd()
	}
}
