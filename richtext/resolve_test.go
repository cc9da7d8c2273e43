// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package richtext

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string, st Style) Run { return Run{Kind: TextRun, Text: s, Style: st} }

var (
	br     = Run{Kind: BreakRun}
	plain  = Style{}
	bold   = Style{Bold: true}
	italic = Style{Italic: true}
	both   = Style{Bold: true, Italic: true}
	green  = color.RGBA{0x28, 0xa8, 0x7d, 0xff}
)

func TestResolve(t *testing.T) {
	tests := []struct {
		label string
		want  []Run
	}{
		{"", nil},
		{"plain", []Run{text("plain", plain)}},
		{"**Bold Text**", []Run{text("Bold Text", bold)}},
		{"*it*", []Run{text("it", italic)}},
		{"***both***", []Run{text("both", both)}},
		{"a **b** *c* d", []Run{
			text("a ", plain), text("b", bold), text(" ", plain), text("c", italic), text(" d", plain),
		}},
		{"*a **b** c*", []Run{text("a ", italic), text("b", both), text(" c", italic)}},
		{"**a *b***", []Run{text("a ", bold), text("b", both)}},
		{"***a* b**", []Run{text("a", both), text(" b", bold)}},
		{"***a** b*", []Run{text("a", both), text(" b", italic)}},
		{`2 \* 3`, []Run{text("2 * 3", plain)}},
		{"5 * 3", []Run{text("5 * 3", plain)}},
		{"x*", []Run{text("x*", plain)}},
		{"*", []Run{text("*", plain)}},
		{`a\*b`, []Run{text("a*b", plain)}},
		{"a\nb", []Run{text("a", plain), br, text("b", plain)}},
		{"a<br>b<br/>", []Run{text("a", plain), br, text("b", plain), br}},
		{"Ad&eacute;lie &amp; Gentoo", []Run{text("Ad\u00e9lie & Gentoo", plain)}},
		{`<i style="color:#28A87D;">x</i>`, []Run{
			text("x", Style{Italic: true, Color: green, HasColor: true}),
		}},
		{`<b>bold <i>both</i></b>`, []Run{text("bold ", bold), text("both", both)}},
		{`<span style="font-size: 16px; font-family: 'Go Mono'">m</span>`, []Run{
			text("m", Style{Size: 12, Family: "Go Mono"}),
		}},
		{`<span style="color:red">a <span style="color:#28a87d">b</span> c</span>`, []Run{
			text("a ", Style{Color: color.RGBA{0xff, 0, 0, 0xff}, HasColor: true}),
			text("b", Style{Color: green, HasColor: true}),
			text(" c", Style{Color: color.RGBA{0xff, 0, 0, 0xff}, HasColor: true}),
		}},
		// Markdown inside HTML keeps the HTML color.
		{`<span style="color:#28A87D">**x**</span>`, []Run{
			text("x", Style{Bold: true, Color: green, HasColor: true}),
		}},
		{"a<!-- note -->b", []Run{text("ab", plain)}},
		{"<i></i>x", []Run{text("x", plain)}},
	}
	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			got, err := Resolve(test.label)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		label      string
		start, end int
	}{
		{"*unterminated", 0, 1},
		{"**open", 0, 2},
		{"a*b", 1, 2},
		{"a ****b****", 2, 6},
		{"<b>x", 0, 3},
		{"<b>x</i>", 4, 8},
		{"x</b>", 1, 5},
		{"<u>x</u>", 0, 3},
		{`<b class="c">x</b>`, 0, 13},
		{`<span style="color">x</span>`, 0, 20},
		{`<span style="color:#12">x</span>`, 0, 24},
		{`<span style="font-size:big">x</span>`, 0, 28},
		{`<span style="text-decoration:underline">x</span>`, 0, 40},
		{"<b>*x</b>*", 3, 4},
		{"a <b", 2, 4},
	}
	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			runs, err := Resolve(test.label)
			assert.Nil(t, runs)
			var me *MarkupParseError
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.Equal(t, test.label, me.Label)
			assert.Equal(t, test.start, me.Start, "start: %s", me.Msg)
			assert.Equal(t, test.end, me.End, "end: %s", me.Msg)
		})
	}
}

func TestEscape(t *testing.T) {
	for _, s := range []string{"bill_length_mm", "a*b", "**x**", `x\*y`, "<b>&amp;</b>", "5 * 3"} {
		runs, err := Resolve(Escape(s))
		require.NoError(t, err, s)
		assert.Equal(t, []Run{text(s, plain)}, runs, s)
	}
}

func TestResolveNormalizes(t *testing.T) {
	runs, err := Resolve("Ade\u0301lie")
	require.NoError(t, err)
	assert.Equal(t, []Run{text("Ad\u00e9lie", plain)}, runs)
}

func TestLines(t *testing.T) {
	runs := MustResolve("**a**\nb<br>")
	lines := Lines(runs)
	require.Len(t, lines, 3)
	assert.Equal(t, []Run{text("a", bold)}, lines[0])
	assert.Equal(t, []Run{text("b", plain)}, lines[1])
	assert.Empty(t, lines[2])
	assert.Equal(t, "a\nb\n", Plain(runs))
}

func TestMustResolvePanics(t *testing.T) {
	assert.Panics(t, func() { MustResolve("*x") })
}
