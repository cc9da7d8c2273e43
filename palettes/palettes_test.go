// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package palettes

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{"#28A87D", color.RGBA{0x28, 0xa8, 0x7d, 0xff}, false},
		{"#28a87d", color.RGBA{0x28, 0xa8, 0x7d, 0xff}, false},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"darkorange", color.RGBA{0xff, 0x8c, 0x00, 0xff}, false},
		{"DarkOrange", color.RGBA{0xff, 0x8c, 0x00, 0xff}, false},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
		{"notacolor", color.RGBA{}, true},
	} {
		got, err := ParseColor(test.in)
		if test.err {
			assert.Error(t, err, "ParseColor(%q)", test.in)
			continue
		}
		require.NoError(t, err, "ParseColor(%q)", test.in)
		assert.Equal(t, test.want, got, "ParseColor(%q)", test.in)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"viridis", "Viridis", "magma", "penguins", "okabe-ito"} {
		p, ok := Lookup(name)
		require.True(t, ok, "Lookup(%q)", name)
		assert.NotNil(t, p)
	}
	_, ok := Lookup("no-such-palette")
	assert.False(t, ok)
}

func TestMapEndpoints(t *testing.T) {
	p, _ := Lookup("magma")
	assert.Equal(t, color.RGBA{0x00, 0x00, 0x04, 0xff}, p.Map(0))
	assert.Equal(t, color.RGBA{0xfc, 0xfd, 0xbf, 0xff}, p.Map(1))

	// Out of range inputs clamp.
	assert.Equal(t, p.Map(0), p.Map(-3))
	assert.Equal(t, p.Map(1), p.Map(7))
	assert.Equal(t, NAColor, p.Map(math.NaN()))

	r := p.Reversed()
	assert.Equal(t, p.Map(0), r.Map(1))
	assert.Equal(t, p.Map(0.25), r.Map(0.75))
	assert.False(t, p.IsReversed(), "Reversed modified the original")
}

func TestMapDeterministic(t *testing.T) {
	for _, name := range Names() {
		p, _ := Lookup(name)
		for x := 0.0; x <= 1; x += 0.05 {
			assert.Equal(t, p.Map(x), p.Map(x), "%s.Map(%v)", name, x)
		}
	}
}

func TestMapDistinct(t *testing.T) {
	// Sequential palettes should give distinct colors to
	// well-separated inputs.
	for _, name := range []string{"viridis", "magma", "plasma", "cividis", "blues"} {
		p, _ := Lookup(name)
		seen := map[color.RGBA]float64{}
		for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
			c := p.Map(x)
			if prev, ok := seen[c]; ok {
				t.Errorf("%s: Map(%v) == Map(%v) == %v", name, x, prev, c)
			}
			seen[c] = x
		}
	}
}

func TestLevel(t *testing.T) {
	p, _ := Lookup("penguins")
	assert.Equal(t, color.RGBA{0xff, 0x8c, 0x00, 0xff}, p.Level(0, 3))
	assert.Equal(t, color.RGBA{0xa0, 0x34, 0xf0, 0xff}, p.Level(1, 3))
	assert.Equal(t, color.RGBA{0x15, 0x90, 0x90, 0xff}, p.Level(2, 3))
	// Levels cycle.
	assert.Equal(t, p.Level(0, 5), p.Level(3, 5))
	assert.Equal(t, color.RGBA{0x15, 0x90, 0x90, 0xff}, p.Reversed().Level(0, 3))

	v, _ := Lookup("magma")
	assert.Equal(t, v.Map(0), v.Level(0, 3))
	assert.Equal(t, v.Map(1), v.Level(2, 3))
	assert.Equal(t, v.Map(0.5), v.Level(0, 1))
}

func TestRegister(t *testing.T) {
	p, err := New("Test-Species", Qualitative, "#28A87D", "navy")
	require.NoError(t, err)
	Register(p)
	got, ok := Lookup("test-species")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{0x00, 0x00, 0x80, 0xff}, got.Level(1, 2))
	assert.Contains(t, Names(), "Test-Species")

	_, err = New("bad", Sequential, "#28A87D", "nope")
	assert.Error(t, err)
	_, err = New("empty", Sequential)
	assert.Error(t, err)
}
