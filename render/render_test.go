// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-plotbook/dataset"
	"github.com/aclements/go-plotbook/palettes"
	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/richtext"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeRows() *table.Table {
	return new(table.Builder).
		Add("x", []float64{39.1, 39.5, 40.3}).
		Add("y", []float64{18.7, 17.4, 18.0}).
		Add("m", []float64{3750, 3800, 3250}).
		Done()
}

func penguins() *table.Table {
	return new(table.Builder).
		Add("species", dataset.Factor{"Adelie", "Gentoo", "Chinstrap", "Adelie", "Gentoo"}).
		Add("bill_length_mm", []float64{39.1, 46.1, 46.5, 36.7, 50.0}).
		Add("bill_depth_mm", []float64{18.7, 13.2, 17.9, 19.3, 16.3}).
		Done()
}

func testOptions(f Format) Options {
	th := plotspec.BaseTheme()
	return Options{Width: 400, Height: 400, Format: f, DPI: 72, Theme: &th}
}

func scenarioSpec(t *testing.T) *plotspec.Spec {
	t.Helper()
	s, err := plotspec.New().Map(plotspec.Aes{plotspec.X: "x", plotspec.Y: "y"})
	require.NoError(t, err)
	s, err = s.AddLayer(plotspec.Point, plotspec.Aes{plotspec.Color: "m"}, plotspec.Style{})
	require.NoError(t, err)
	s, err = s.SetScale(plotspec.Color, plotspec.ColorScale{Palette: "viridis", Limits: plotspec.Limits(3250, 3800)})
	require.NoError(t, err)
	return s
}

func circles(s *Scene) []*Circle {
	var cs []*Circle
	walk(s.Items, func(it Item) {
		if c, ok := it.(*Circle); ok {
			cs = append(cs, c)
		}
	})
	return cs
}

func clipOf(s *Scene) *Clip {
	for _, it := range s.Items {
		if c, ok := it.(*Clip); ok {
			return c
		}
	}
	return nil
}

func TestThreeRowScenario(t *testing.T) {
	scene, err := Render(scenarioSpec(t), threeRows(), testOptions(PDF))
	require.NoError(t, err)

	clip := clipOf(scene)
	require.NotNil(t, clip)
	var pts []*Circle
	for _, it := range clip.Items {
		pts = append(pts, it.(*Circle))
	}
	require.Len(t, pts, 3)

	light := func(c color.RGBA) float64 {
		l, _ := colorful.MakeColor(c)
		L, _, _ := l.Lab()
		return L
	}
	for _, p := range pts {
		assert.NotEqual(t, palettes.NAColor, p.Fill)
	}
	assert.NotEqual(t, pts[0].Fill, pts[1].Fill)
	assert.NotEqual(t, pts[1].Fill, pts[2].Fill)
	assert.NotEqual(t, pts[0].Fill, pts[2].Fill)
	// Viridis gets lighter with value: m is 3750, 3800, 3250.
	assert.Less(t, light(pts[2].Fill), light(pts[0].Fill))
	assert.Less(t, light(pts[0].Fill), light(pts[1].Fill))

	// The continuous legend is drawn.
	var legendText bool
	walk(scene.Items, func(it Item) {
		if tx, ok := it.(*Text); ok && tx.Spans[0].Text == "m" {
			legendText = true
		}
	})
	assert.True(t, legendText)
}

func TestPositionsMonotonic(t *testing.T) {
	xs := []float64{1, 5, 2, 4, 3, 10, -2}
	tab := new(table.Builder).Add("x", xs).Add("y", xs).Done()
	s := plotspec.MustSpec(plotspec.New().AddLayer(plotspec.Point, plotspec.Aes{plotspec.X: "x", plotspec.Y: "y"}, plotspec.Style{}))
	scene, err := Render(s, tab, testOptions(SVG))
	require.NoError(t, err)
	pts := circles(scene)
	require.Len(t, pts, len(xs))
	clip := clipOf(scene)
	for i := range xs {
		for j := range xs {
			if xs[i] < xs[j] {
				assert.Less(t, pts[i].X, pts[j].X)
				assert.Greater(t, pts[i].Y, pts[j].Y, "y grows upward")
			}
		}
		assert.True(t, pts[i].X >= clip.X && pts[i].X <= clip.X+clip.W)
		assert.True(t, pts[i].Y >= clip.Y && pts[i].Y <= clip.Y+clip.H)
	}
}

func TestAutomaticTicks(t *testing.T) {
	s := newLinearScale(nil, nil, "")
	ls := scale.Linear{Min: 0, Max: 100}

	major, labels := s.ticks(ls, 10, nil)
	assert.Equal(t, []float64{0, 50, 100}, major)
	assert.Equal(t, []string{"0", "50", "100"}, labels)

	// Labels that don't fit push the search to sparser levels.
	major, labels = s.ticks(ls, 10, func(labels []string) bool { return len(labels) <= 2 })
	assert.Equal(t, []float64{0, 100}, major)
	assert.Equal(t, []string{"0", "100"}, labels)

	major, _ = s.ticks(ls, 0, nil)
	assert.Empty(t, major)

	explicit := newLinearScale(nil, []float64{10, 20}, "%.1f")
	major, labels = explicit.ticks(ls, 10, func([]string) bool { return false })
	assert.Equal(t, []float64{10, 20}, major)
	assert.Equal(t, []string{"10.0", "20.0"}, labels)
}

func TestLimitsExcludePoints(t *testing.T) {
	s := scenarioSpec(t)
	s, err := s.SetScale(plotspec.X, plotspec.Continuous{Limits: plotspec.Limits(39.2, 40.5), Breaks: []float64{39.5, 40}})
	require.NoError(t, err)
	scene, err := Render(s, threeRows(), testOptions(SVG))
	require.NoError(t, err)

	clip := clipOf(scene)
	assert.Len(t, clip.Items, 2)
	for _, it := range clip.Items {
		c := it.(*Circle)
		assert.True(t, c.X >= clip.X && c.X <= clip.X+clip.W, "x=%g outside panel", c.X)
	}

	// Explicit breaks become the tick labels.
	var labels []string
	walk(scene.Items, func(it Item) {
		if tx, ok := it.(*Text); ok && (tx.Spans[0].Text == "39.5" || tx.Spans[0].Text == "40") {
			labels = append(labels, tx.Spans[0].Text)
		}
	})
	assert.Equal(t, []string{"39.5", "40"}, labels)
}

func TestDeterministic(t *testing.T) {
	s, err := scenarioSpec(t).SetLabels(plotspec.Labels{
		plotspec.TitleSlot:    "**Bill** dimensions",
		plotspec.SubtitleSlot: `<i style="color:#28A87D;">three</i> penguins`,
		plotspec.CaptionSlot:  "Source: palmerpenguins",
		plotspec.YSlot:        "Bill depth (mm)",
	})
	require.NoError(t, err)
	for _, f := range []Format{PDF, SVG, PNG} {
		t.Run(f.String(), func(t *testing.T) {
			opts := testOptions(f)
			opts.Width, opts.Height = 300, 200
			var a, b bytes.Buffer
			require.NoError(t, Write(&a, s, threeRows(), opts))
			require.NoError(t, Write(&b, s, threeRows(), opts))
			assert.NotZero(t, a.Len())
			assert.True(t, bytes.Equal(a.Bytes(), b.Bytes()), "output differs between renders")
		})
	}
}

func TestRichLabels(t *testing.T) {
	s, err := scenarioSpec(t).SetLabels(plotspec.Labels{
		plotspec.TitleSlot: "**Bold** and <span style=\"font-size:20pt\">big</span>",
	})
	require.NoError(t, err)
	scene, err := Render(s, threeRows(), testOptions(SVG))
	require.NoError(t, err)
	assert.Equal(t, "Bold and big", scene.Title)

	var spans []Span
	walk(scene.Items, func(it Item) {
		if tx, ok := it.(*Text); ok && strings.HasPrefix(tx.Spans[0].Text, "Bold") {
			spans = tx.Spans
		}
	})
	require.Len(t, spans, 3)
	assert.True(t, spans[0].Face.Bold)
	assert.False(t, spans[1].Face.Bold)
	assert.Equal(t, 20.0, spans[2].Face.Size)
	assert.Greater(t, spans[1].Dx, spans[0].Dx)
	assert.Greater(t, spans[2].Dx, spans[1].Dx)
}

func TestRenderErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		s := plotspec.MustSpec(plotspec.New().AddLayer(plotspec.Point,
			plotspec.Aes{plotspec.X: "x", plotspec.Y: "nope"}, plotspec.Style{}))
		_, err := Render(s, threeRows(), testOptions(PDF))
		var re *RenderError
		require.True(t, errors.As(err, &re), "got %v", err)
		assert.Contains(t, err.Error(), "nope")
	})
	t.Run("markup", func(t *testing.T) {
		s, err := scenarioSpec(t).SetLabels(plotspec.Labels{plotspec.CaptionSlot: "*unterminated"})
		require.NoError(t, err)
		_, err = Render(s, threeRows(), testOptions(PDF))
		var re *RenderError
		require.True(t, errors.As(err, &re), "got %v", err)
		assert.Equal(t, "caption label", re.What)
		var me *richtext.MarkupParseError
		assert.True(t, errors.As(err, &me))
	})
	t.Run("categorical position", func(t *testing.T) {
		s := plotspec.MustSpec(plotspec.New().AddLayer(plotspec.Point,
			plotspec.Aes{plotspec.X: "species", plotspec.Y: "bill_depth_mm"}, plotspec.Style{}))
		_, err := Render(s, penguins(), testOptions(PDF))
		var re *RenderError
		assert.True(t, errors.As(err, &re), "got %v", err)
	})
	t.Run("too small", func(t *testing.T) {
		opts := testOptions(PDF)
		opts.Width, opts.Height = 20, 20
		_, err := Render(scenarioSpec(t), threeRows(), opts)
		var re *RenderError
		assert.True(t, errors.As(err, &re), "got %v", err)
	})
}

func TestThemeSnapshot(t *testing.T) {
	defer plotspec.ResetDefaultTheme()
	plotspec.UpdateDefaultTheme(plotspec.FontSize(plotspec.AxisTextRole, 14))

	opts := testOptions(SVG)
	opts.Theme = nil
	scene, err := Render(scenarioSpec(t), threeRows(), opts)
	require.NoError(t, err)
	plotspec.UpdateDefaultTheme(plotspec.FontSize(plotspec.AxisTextRole, 4))

	var sizes []float64
	walk(scene.Items, func(it Item) {
		if tx, ok := it.(*Text); ok && tx.Spans[0].Text == "18" {
			sizes = append(sizes, tx.Spans[0].Face.Size)
		}
	})
	require.NotEmpty(t, sizes)
	assert.Equal(t, 14.0, sizes[0])
}

func TestCategoricalColor(t *testing.T) {
	s, err := plotspec.New().Map(plotspec.Aes{plotspec.X: "bill_length_mm", plotspec.Y: "bill_depth_mm", plotspec.Color: "species"})
	require.NoError(t, err)
	s, err = s.AddLayer(plotspec.Point, nil, plotspec.Style{Alpha: plotspec.Opacity(0.5)})
	require.NoError(t, err)
	s, err = s.SetScale(plotspec.Color, plotspec.ColorScale{Palette: "penguins"})
	require.NoError(t, err)
	scene, err := Render(s, penguins(), testOptions(SVG))
	require.NoError(t, err)

	pal, _ := palettes.Lookup("penguins")
	pts := clipOf(scene).Items
	require.Len(t, pts, 5)
	// Levels are sorted: Adelie, Chinstrap, Gentoo.
	assert.Equal(t, pal.Level(0, 3), pts[0].(*Circle).Fill)
	assert.Equal(t, pal.Level(2, 3), pts[1].(*Circle).Fill)
	assert.Equal(t, pal.Level(1, 3), pts[2].(*Circle).Fill)
	assert.Equal(t, 0.5, pts[0].(*Circle).Alpha)

	// Three legend keys outside the panel.
	assert.Len(t, circles(scene), 5+3)
}

func TestLineGeometry(t *testing.T) {
	s, err := plotspec.New().AddLayer(plotspec.Line,
		plotspec.Aes{plotspec.X: "bill_length_mm", plotspec.Y: "bill_depth_mm", plotspec.Color: "species"},
		plotspec.Style{Size: 1})
	require.NoError(t, err)
	scene, err := Render(s, penguins(), testOptions(PNG))
	require.NoError(t, err)

	var lines []*Polyline
	walk(scene.Items, func(it Item) {
		if pl, ok := it.(*Polyline); ok {
			lines = append(lines, pl)
		}
	})
	// Chinstrap has a single row and no segment.
	require.Len(t, lines, 2)
	for _, pl := range lines {
		assert.Len(t, pl.X, 2)
		assert.Less(t, pl.X[0], pl.X[1])
		assert.Equal(t, 1.0, pl.Width)
	}
}

func TestLineSkipsMissingX(t *testing.T) {
	nan := math.NaN()
	tab := new(table.Builder).
		Add("x", []float64{3, nan, 1, nan, 2, 4, 0.5}).
		Add("y", []float64{1, 2, 3, 4, 5, 6, 7}).
		Done()
	s, err := plotspec.New().AddLayer(plotspec.Line, plotspec.Aes{plotspec.X: "x", plotspec.Y: "y"}, plotspec.Style{})
	require.NoError(t, err)
	scene, err := Render(s, tab, testOptions(SVG))
	require.NoError(t, err)

	var lines []*Polyline
	walk(scene.Items, func(it Item) {
		if pl, ok := it.(*Polyline); ok {
			lines = append(lines, pl)
		}
	})
	require.Len(t, lines, 1)
	require.Len(t, lines[0].X, 5)
	assert.True(t, sort.Float64sAreSorted(lines[0].X), "x = %v", lines[0].X)
}

func TestTransparentLayer(t *testing.T) {
	s, err := plotspec.New().AddLayer(plotspec.Point,
		plotspec.Aes{plotspec.X: "x", plotspec.Y: "y"}, plotspec.Style{Alpha: plotspec.Opacity(0)})
	require.NoError(t, err)
	scene, err := Render(s, threeRows(), testOptions(SVG))
	require.NoError(t, err)
	pts := circles(scene)
	require.Len(t, pts, 3)
	for _, c := range pts {
		assert.Equal(t, 0.0, c.Alpha)
	}
	var buf bytes.Buffer
	require.NoError(t, scene.Encode(&buf, SVG, 72))
	assert.Contains(t, buf.String(), "fill-opacity:0")
	// Backgrounds stay opaque.
	assert.Equal(t, 3, strings.Count(buf.String(), "fill-opacity"))

	buf.Reset()
	require.NoError(t, scene.Encode(&buf, PNG, 72))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)

	// Without an alpha, marks are opaque.
	scene, err = Render(scenarioSpec(t), threeRows(), testOptions(SVG))
	require.NoError(t, err)
	for _, c := range circles(scene) {
		assert.Equal(t, 1.0, c.Alpha)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	s := scenarioSpec(t)
	opts := testOptions(Auto)
	opts.Width, opts.Height = Inches(2), Inches(1.5)

	for name, magic := range map[string]string{"p.pdf": "%PDF-", "p.svg": "<?xml", "p.png": "\x89PNG"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Export(s, threeRows(), path, opts))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), magic), "%s starts with %q", name, data[:8])
	}

	f, err := os.Open(filepath.Join(dir, "p.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 144, img.Bounds().Dx())
	assert.Equal(t, 108, img.Bounds().Dy())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files left behind")
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()
	s := scenarioSpec(t)

	err := Export(s, threeRows(), filepath.Join(dir, "missing", "p.pdf"), testOptions(Auto))
	var ee *ExportError
	require.True(t, errors.As(err, &ee), "got %v", err)

	// A directory in the way of the output.
	target := filepath.Join(dir, "taken.svg")
	require.NoError(t, os.Mkdir(target, 0o755))
	err = Export(s, threeRows(), target, testOptions(Auto))
	require.True(t, errors.As(err, &ee), "got %v", err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no partial output")

	// Render failures never touch the file system.
	bad, err := s.SetLabels(plotspec.Labels{plotspec.TitleSlot: "<u>x</u>"})
	require.NoError(t, err)
	err = Export(bad, threeRows(), filepath.Join(dir, "bad.pdf"), testOptions(Auto))
	var re *RenderError
	require.True(t, errors.As(err, &re), "got %v", err)
	_, statErr := os.Stat(filepath.Join(dir, "bad.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormats(t *testing.T) {
	f, ok := FormatOf("out/plot.SVG")
	assert.True(t, ok)
	assert.Equal(t, SVG, f)
	_, ok = FormatOf("plot.jpeg")
	assert.False(t, ok)
	_, err := ParseFormat("gif")
	assert.Error(t, err)
	assert.Equal(t, 432.0, Inches(6))
	assert.Equal(t, 72.0, Pixels(150, 150))
}

func TestParseLength(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want float64
	}{
		{"6in", 432},
		{"2.54cm", 72},
		{"25.4 mm", 72},
		{"300px", 144},
		{"12pt", 12},
		{"12", 12},
	} {
		got, err := ParseLength(tc.in, 150)
		if assert.NoError(t, err, tc.in) {
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
	for _, bad := range []string{"", "in", "-3in", "3 furlongs", "0"} {
		_, err := ParseLength(bad, 150)
		assert.Error(t, err, bad)
	}
}
