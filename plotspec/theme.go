// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plotspec

import (
	"fmt"
	"image/color"
	"sync"
)

// A Role is the purpose of a piece of text in a plot. Each role has
// its own font in a Theme.
type Role int

const (
	TitleRole Role = iota
	SubtitleRole
	CaptionRole
	AxisTitleRole // x and y axis labels
	AxisTextRole  // tick labels
	LegendRole    // legend title and keys

	numRoles
)

// Roles lists every Role.
var Roles = []Role{TitleRole, SubtitleRole, CaptionRole, AxisTitleRole, AxisTextRole, LegendRole}

var roleNames = [...]string{"title", "subtitle", "caption", "axis.title", "axis.text", "legend"}

func (r Role) String() string {
	if r >= 0 && r < numRoles {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole parses the String form of a Role.
func ParseRole(s string) (Role, error) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown text role %q", s)
}

// A Font is the text style of a Role. Rich-text markup in a label
// can override any of these per run.
type Font struct {
	Family string
	Size   float64 // points
	Color  color.RGBA
	Bold   bool
}

// Margins are distances in points.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// A Theme is the set of style defaults for a plot.
type Theme struct {
	Fonts [numRoles]Font

	Background      color.RGBA
	PanelBackground color.RGBA

	Grid      bool
	GridColor color.RGBA

	TickColor  color.RGBA
	TickLength float64 // points

	Margins Margins

	// PointSize is the default radius of points in points.
	PointSize float64
	// LineWidth is the default width of lines in points.
	LineWidth float64
}

// Font returns the font for role r.
func (t Theme) Font(r Role) Font {
	return t.Fonts[r]
}

// With returns a copy of t with opts applied in order.
func (t Theme) With(opts ...ThemeOption) Theme {
	for _, o := range opts {
		o(&t)
	}
	return t
}

// BaseTheme returns the built-in defaults: a light gray panel with
// white grid lines, like ggplot2's theme_gray.
func BaseTheme() Theme {
	black := color.RGBA{0x22, 0x22, 0x22, 0xff}
	gray := color.RGBA{0x4d, 0x4d, 0x4d, 0xff}
	t := Theme{
		Background:      color.RGBA{0xff, 0xff, 0xff, 0xff},
		PanelBackground: color.RGBA{0xeb, 0xeb, 0xeb, 0xff},
		Grid:            true,
		GridColor:       color.RGBA{0xff, 0xff, 0xff, 0xff},
		TickColor:       color.RGBA{0x33, 0x33, 0x33, 0xff},
		TickLength:      2.75,
		Margins:         Margins{5.5, 5.5, 5.5, 5.5},
		PointSize:       1.5,
		LineWidth:       0.5,
	}
	t.Fonts[TitleRole] = Font{"sans", 13.2, black, false}
	t.Fonts[SubtitleRole] = Font{"sans", 11, black, false}
	t.Fonts[CaptionRole] = Font{"sans", 8.8, black, false}
	t.Fonts[AxisTitleRole] = Font{"sans", 11, black, false}
	t.Fonts[AxisTextRole] = Font{"sans", 8.8, gray, false}
	t.Fonts[LegendRole] = Font{"sans", 8.8, black, false}
	return t
}

// A ThemeOption modifies a Theme.
type ThemeOption func(*Theme)

// FontFamily sets the font family of role r.
func FontFamily(r Role, family string) ThemeOption {
	return func(t *Theme) { t.Fonts[r].Family = family }
}

// BaseFamily sets the font family of every role.
func BaseFamily(family string) ThemeOption {
	return func(t *Theme) {
		for r := range t.Fonts {
			t.Fonts[r].Family = family
		}
	}
}

// FontSize sets the font size of role r in points.
func FontSize(r Role, size float64) ThemeOption {
	return func(t *Theme) { t.Fonts[r].Size = size }
}

// BaseSize sets the axis title size to size and scales every other
// role proportionally, keeping the theme's relative sizes.
func BaseSize(size float64) ThemeOption {
	return func(t *Theme) {
		base := t.Fonts[AxisTitleRole].Size
		if base <= 0 {
			return
		}
		for r := range t.Fonts {
			t.Fonts[r].Size *= size / base
		}
	}
}

// FontColor sets the text color of role r.
func FontColor(r Role, c color.RGBA) ThemeOption {
	return func(t *Theme) { t.Fonts[r].Color = c }
}

// FontBold sets whether role r is bold by default.
func FontBold(r Role, bold bool) ThemeOption {
	return func(t *Theme) { t.Fonts[r].Bold = bold }
}

// GridLines turns major grid lines on or off.
func GridLines(on bool) ThemeOption {
	return func(t *Theme) { t.Grid = on }
}

// TickColor sets the color of axis ticks.
func TickColor(c color.RGBA) ThemeOption {
	return func(t *Theme) { t.TickColor = c }
}

// TickLength sets the length of axis ticks in points.
func TickLength(l float64) ThemeOption {
	return func(t *Theme) { t.TickLength = l }
}

// PlotMargins sets the outer margins.
func PlotMargins(m Margins) ThemeOption {
	return func(t *Theme) { t.Margins = m }
}

// PanelBackground sets the color behind the data.
func PanelBackground(c color.RGBA) ThemeOption {
	return func(t *Theme) { t.PanelBackground = c }
}

// Minimal removes the panel background and draws gray grid lines,
// like ggplot2's theme_minimal.
func Minimal() ThemeOption {
	return func(t *Theme) {
		t.PanelBackground = t.Background
		t.GridColor = color.RGBA{0xeb, 0xeb, 0xeb, 0xff}
	}
}

// The default theme is process-wide. Renders take a snapshot with
// DefaultTheme when they start, so later updates never affect a
// render in progress.
var defaultTheme = struct {
	sync.RWMutex
	t Theme
}{t: BaseTheme()}

// DefaultTheme returns a snapshot of the current default theme.
func DefaultTheme() Theme {
	defaultTheme.RLock()
	defer defaultTheme.RUnlock()
	return defaultTheme.t
}

// SetDefaultTheme replaces the default theme.
func SetDefaultTheme(t Theme) {
	defaultTheme.Lock()
	defer defaultTheme.Unlock()
	defaultTheme.t = t
}

// UpdateDefaultTheme applies opts to the default theme.
func UpdateDefaultTheme(opts ...ThemeOption) {
	defaultTheme.Lock()
	defer defaultTheme.Unlock()
	defaultTheme.t = defaultTheme.t.With(opts...)
}

// ResetDefaultTheme restores the default theme to BaseTheme.
func ResetDefaultTheme() {
	SetDefaultTheme(BaseTheme())
}
