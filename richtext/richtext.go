// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package richtext resolves plot label markup into styled text runs.
//
// A label may mix a small Markdown subset with a small HTML subset:
//
//	*italic*  **bold**  ***both***  \*literal asterisk
//	<i>italic</i>  <b>bold</b>  <span style="color:#28A87D;font-size:12pt">x</span>  <br>
//
// An asterisk run that closes no open emphasis and is followed by a
// space or the end of the label is literal text, as in "5 * 3" or
// "x*". Any other asterisk run opens emphasis that must be closed, so
// "a*b" is an error; write a\*b for a literal asterisk.
//
// Bold and italic accumulate through every enclosing element. The
// color, size, and family of a run come from the innermost enclosing
// HTML element that sets them; Markdown never sets those attributes.
//
// The style attribute accepts the properties color (#RGB, #RRGGBB, or
// an SVG color name), font-size (with a pt or px unit, default pt),
// and font-family.
package richtext

import (
	"fmt"
	"image/color"
	"strings"
)

// Kind distinguishes runs that carry text from line breaks.
type Kind int

const (
	TextRun Kind = iota
	BreakRun
)

func (k Kind) String() string {
	switch k {
	case TextRun:
		return "text"
	case BreakRun:
		return "break"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Style is the resolved style of a run. Zero-valued fields inherit
// the font of the text role the label is drawn in.
type Style struct {
	Bold, Italic bool

	Color    color.RGBA
	HasColor bool

	Size   float64 // points
	Family string
}

// A Run is a piece of uniformly styled text, or a line break.
type Run struct {
	Kind  Kind
	Text  string
	Style Style
}

func (r Run) String() string {
	if r.Kind == BreakRun {
		return "<br>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%q", r.Text)
	st := r.Style
	if st.Bold {
		b.WriteString(" bold")
	}
	if st.Italic {
		b.WriteString(" italic")
	}
	if st.HasColor {
		fmt.Fprintf(&b, " color=#%02x%02x%02x", st.Color.R, st.Color.G, st.Color.B)
	}
	if st.Size != 0 {
		fmt.Fprintf(&b, " size=%g", st.Size)
	}
	if st.Family != "" {
		fmt.Fprintf(&b, " family=%s", st.Family)
	}
	return b.String()
}

// MarkupParseError reports malformed markup in a label. Start and End
// are byte offsets of the offending markup in Label.
type MarkupParseError struct {
	Label      string
	Start, End int
	Msg        string
}

func (e *MarkupParseError) Error() string {
	return fmt.Sprintf("label %q: %s at offset %d", e.Label, e.Msg, e.Start)
}

// markupEscaper quotes the characters that start markup.
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", "*", `\*`)

// Escape quotes s so that it resolves to a single unstyled run with
// the text s. Newlines in s still break lines.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

// Plain returns the text of runs with breaks as newlines.
func Plain(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		if r.Kind == BreakRun {
			b.WriteByte('\n')
		} else {
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// Lines splits runs at line breaks. A label with n breaks always has
// n+1 lines, some of which may be empty.
func Lines(runs []Run) [][]Run {
	lines := [][]Run{nil}
	for _, r := range runs {
		if r.Kind == BreakRun {
			lines = append(lines, nil)
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], r)
	}
	return lines
}
