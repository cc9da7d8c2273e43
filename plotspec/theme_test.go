// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plotspec

import (
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThemeSnapshot(t *testing.T) {
	defer ResetDefaultTheme()

	snap := DefaultTheme()
	UpdateDefaultTheme(BaseFamily("serif"), FontSize(TitleRole, 24))
	assert.Equal(t, "sans", snap.Font(TitleRole).Family)
	assert.Equal(t, "serif", DefaultTheme().Font(CaptionRole).Family)
	assert.Equal(t, 24.0, DefaultTheme().Font(TitleRole).Size)

	ResetDefaultTheme()
	assert.Equal(t, BaseTheme(), DefaultTheme())
}

func TestDefaultThemeConcurrent(t *testing.T) {
	defer ResetDefaultTheme()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			UpdateDefaultTheme(TickLength(float64(i)))
		}()
		go func() {
			defer wg.Done()
			th := DefaultTheme()
			assert.GreaterOrEqual(t, th.TickLength, 0.0)
		}()
	}
	wg.Wait()
}

func TestBaseSize(t *testing.T) {
	th := BaseTheme().With(BaseSize(22))
	assert.InDelta(t, 22, th.Font(AxisTitleRole).Size, 1e-9)
	assert.InDelta(t, 26.4, th.Font(TitleRole).Size, 1e-9)
	assert.InDelta(t, 17.6, th.Font(AxisTextRole).Size, 1e-9)
}

func TestThemeOptions(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	th := BaseTheme().With(
		FontColor(LegendRole, red),
		FontBold(TitleRole, true),
		GridLines(false),
		TickColor(red),
		Minimal(),
	)
	assert.Equal(t, red, th.Font(LegendRole).Color)
	assert.True(t, th.Font(TitleRole).Bold)
	assert.False(t, th.Grid)
	assert.Equal(t, red, th.TickColor)
	assert.Equal(t, th.Background, th.PanelBackground)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("footer")
	assert.Error(t, err)
}
