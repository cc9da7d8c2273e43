// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package richtext

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aclements/go-plotbook/palettes"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// A frame is one open Markdown emphasis or HTML element.
type frame struct {
	start, end int // offsets of the opening markup

	stars int    // 1, 2, or 3 for Markdown frames
	tag   string // element name for HTML frames

	bold, italic bool

	color    color.RGBA
	hasColor bool
	size     float64
	family   string
}

type parser struct {
	label string
	stack []frame
	runs  []Run
}

// Resolve parses label into styled runs. Plain text yields a single
// unstyled run. The empty label yields no runs.
//
// Resolve either succeeds completely or returns a *MarkupParseError.
func Resolve(label string) ([]Run, error) {
	if label == "" {
		return nil, nil
	}
	p := &parser{label: label}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.runs, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve(label string) []Run {
	runs, err := Resolve(label)
	if err != nil {
		panic(err)
	}
	return runs
}

func (p *parser) errorf(start, end int, format string, args ...any) error {
	return &MarkupParseError{p.label, start, end, fmt.Sprintf(format, args...)}
}

func (p *parser) parse() error {
	z := html.NewTokenizer(strings.NewReader(p.label))
	pos := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return p.errorf(pos, len(p.label), "%v", z.Err())
			}
			if pos < len(p.label) {
				return p.errorf(pos, len(p.label), "unterminated tag")
			}
			break
		}
		raw := string(z.Raw())
		start, end := pos, pos+len(raw)
		pos = end

		var err error
		switch tt {
		case html.TextToken:
			err = p.text(raw, start)
		case html.StartTagToken, html.SelfClosingTagToken:
			err = p.startTag(z, tt == html.SelfClosingTagToken, start, end)
		case html.EndTagToken:
			err = p.endTag(z, start, end)
		case html.CommentToken:
		default:
			err = p.errorf(start, end, "unsupported markup %s", raw)
		}
		if err != nil {
			return err
		}
	}
	if n := len(p.stack); n > 0 {
		f := p.stack[n-1]
		if f.tag != "" {
			return p.errorf(f.start, f.end, "unterminated <%s>", f.tag)
		}
		return p.errorf(f.start, f.end, "unterminated %s", strings.Repeat("*", f.stars))
	}
	return nil
}

// text handles Markdown emphasis and line breaks in a text token
// whose raw bytes start at offset base of the label.
func (p *parser) text(raw string, base int) error {
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.emit(html.UnescapeString(lit.String()))
			lit.Reset()
		}
	}
	for i := 0; i < len(raw); {
		switch c := raw[i]; {
		case c == '\\' && i+1 < len(raw) && raw[i+1] == '*':
			lit.WriteByte('*')
			i += 2
		case c == '\n':
			flush()
			p.runs = append(p.runs, Run{Kind: BreakRun})
			i++
		case c == '\r':
			i++
		case c == '*':
			j := i
			for j < len(raw) && raw[j] == '*' {
				j++
			}
			start, end := base+i, base+j
			if j-i > 3 {
				return p.errorf(start, end, "too many asterisks")
			}
			flush()
			lit.WriteString(strings.Repeat("*", p.emphasis(j-i, start, end)))
			i = j
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return nil
}

// emphasis applies an asterisk run of length n at label[start:end]
// and returns how many of its asterisks are literal text. Runs close
// open Markdown frames innermost first.
func (p *parser) emphasis(n, start, end int) int {
	before, _ := utf8.DecodeLastRuneInString(p.label[:start])
	after, _ := utf8.DecodeRuneInString(p.label[end:])
	canClose := start > 0 && !unicode.IsSpace(before)
	canOpen := end < len(p.label) && !unicode.IsSpace(after)

	left := n
	if canClose {
		for left > 0 && len(p.stack) > 0 {
			top := &p.stack[len(p.stack)-1]
			if top.tag != "" {
				break
			}
			if top.stars <= left {
				left -= top.stars
				p.stack = p.stack[:len(p.stack)-1]
				continue
			}
			if top.stars == 3 {
				// Split ***: close the part that matches.
				top.stars -= left
				top.bold, top.italic = top.stars >= 2, top.stars != 2
				left = 0
			}
			break
		}
	}
	if left == 0 || !canOpen {
		return left
	}
	p.stack = append(p.stack, frame{
		start: end - left, end: end,
		stars:  left,
		bold:   left >= 2,
		italic: left != 2,
	})
	return 0
}

var tags = map[string]bool{"b": true, "i": true, "span": true, "br": true}

func (p *parser) startTag(z *html.Tokenizer, selfClosing bool, start, end int) error {
	name, hasAttr := z.TagName()
	tag := string(name)
	if !tags[tag] {
		return p.errorf(start, end, "unsupported tag <%s>", tag)
	}
	f := frame{start: start, end: end, tag: tag, bold: tag == "b", italic: tag == "i"}
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		if string(key) != "style" {
			return p.errorf(start, end, "unsupported attribute %q on <%s>", key, tag)
		}
		if err := p.style(&f, string(val), start, end); err != nil {
			return err
		}
	}
	if tag == "br" {
		p.runs = append(p.runs, Run{Kind: BreakRun})
		return nil
	}
	if !selfClosing {
		p.stack = append(p.stack, f)
	}
	return nil
}

func (p *parser) endTag(z *html.Tokenizer, start, end int) error {
	name, _ := z.TagName()
	tag := string(name)
	if !tags[tag] || tag == "br" {
		return p.errorf(start, end, "unexpected </%s>", tag)
	}
	n := len(p.stack)
	if n == 0 {
		return p.errorf(start, end, "</%s> without <%s>", tag, tag)
	}
	if top := p.stack[n-1]; top.tag != tag {
		if top.tag == "" {
			return p.errorf(top.start, top.end, "unterminated %s before </%s>", strings.Repeat("*", top.stars), tag)
		}
		return p.errorf(start, end, "</%s> does not match <%s>", tag, top.tag)
	}
	p.stack = p.stack[:n-1]
	return nil
}

// style parses a CSS declaration list into f.
func (p *parser) style(f *frame, decls string, start, end int) error {
	for _, decl := range strings.Split(decls, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if !ok || prop == "" || val == "" {
			return p.errorf(start, end, "malformed style %q", decl)
		}
		switch prop {
		case "color":
			c, err := palettes.ParseColor(val)
			if err != nil {
				return p.errorf(start, end, "bad color %q", val)
			}
			f.color, f.hasColor = c, true
		case "font-size":
			size, err := parseSize(val)
			if err != nil {
				return p.errorf(start, end, "bad font-size %q", val)
			}
			f.size = size
		case "font-family":
			f.family = strings.Trim(val, `"'`)
		default:
			return p.errorf(start, end, "unsupported style property %q", prop)
		}
	}
	return nil
}

// parseSize parses a CSS length in pt or px and returns points.
func parseSize(s string) (float64, error) {
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "pt"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "px"):
		s, scale = s[:len(s)-2], 0.75
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !(v > 0) || v > 1000 {
		return 0, fmt.Errorf("size %g out of range", v)
	}
	return v * scale, nil
}

// current folds the open frames into a Style.
func (p *parser) current() Style {
	var st Style
	var haveSize, haveFamily bool
	for i := len(p.stack) - 1; i >= 0; i-- {
		f := &p.stack[i]
		st.Bold = st.Bold || f.bold
		st.Italic = st.Italic || f.italic
		if f.hasColor && !st.HasColor {
			st.Color, st.HasColor = f.color, true
		}
		if f.size != 0 && !haveSize {
			st.Size, haveSize = f.size, true
		}
		if f.family != "" && !haveFamily {
			st.Family, haveFamily = f.family, true
		}
	}
	return st
}

// emit appends text in the current style, merging it into the
// previous run when the styles match.
func (p *parser) emit(text string) {
	if text == "" {
		return
	}
	text = norm.NFC.String(text)
	st := p.current()
	if n := len(p.runs); n > 0 && p.runs[n-1].Kind == TextRun && p.runs[n-1].Style == st {
		p.runs[n-1].Text += text
		return
	}
	p.runs = append(p.runs, Run{Kind: TextRun, Text: text, Style: st})
}
