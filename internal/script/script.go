// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package script interprets plotbook scripts, which replay a plotting
// tutorial as a sequence of data loads, plot specifications, and
// exports.
//
// A script has one command per line. Lines are split into words with
// shell quoting rules, and blank lines and lines starting with # are
// ignored. The commands are:
//
//	load NAME SOURCE [--schema penguins] [--require COL,...] [--where EXPR] [--remap COL:FROM=TO]... [--missing TOKEN]...
//	theme [--plot NAME] [--family [ROLE=]NAME]... [--size [ROLE=]PT]... [--base-size PT]
//	      [--grid=BOOL] [--tick-color C] [--tick-length PT] [--minimal] [--reset]
//	palette NAME COLOR...
//	plot NAME [--from BASE] [--x COL] [--y COL] [--color COL] [--size COL] [--alpha COL]
//	layer NAME point|line [--x COL] [--y COL] [--color COL] [--size-by COL] [--alpha-by COL]
//	      [--size F] [--alpha F] [--fill COLOR] [--where EXPR]
//	scale NAME x|y|size|alpha [--limits A,B] [--breaks A,B,...] [--format FMT]
//	scale NAME color [--palette P] [--reverse] [--limits A,B] [--breaks A,B,...]
//	label NAME SLOT TEXT
//	export NAME TABLE FILE [--width LEN] [--height LEN] [--format pdf|svg|png] [--dpi N]
//
// Plots are immutable: each command that changes plot NAME rebinds
// NAME to a new specification, so a plot derived with --from is
// unaffected by later changes to its base.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/render"
	"github.com/kballard/go-shellquote"
)

// Error is an error in a script command.
type Error struct {
	File string
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// An Interp runs scripts. Tables and plots defined by one script
// remain visible to scripts run later on the same Interp.
type Interp struct {
	// OutDir is the directory relative export paths are written
	// to. If empty, they are relative to the working directory.
	OutDir string

	// Options are the default export options. Export flags
	// override them.
	Options render.Options

	// HTTPClient is used for URL sources. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Stdin is read by the "-" source. If nil, os.Stdin is used.
	Stdin io.Reader

	Logger *slog.Logger

	tables map[string]*table.Table
	plots  map[string]*plotspec.Spec

	// exported lists the files written, in order.
	exported []string

	// dir is the directory of the running script.
	dir string
}

// New returns an Interp with no tables or plots.
func New() *Interp {
	return &Interp{
		tables: make(map[string]*table.Table),
		plots:  make(map[string]*plotspec.Spec),
	}
}

// Table returns the table bound to name.
func (in *Interp) Table(name string) (*table.Table, bool) {
	t, ok := in.tables[name]
	return t, ok
}

// Plot returns the plot bound to name.
func (in *Interp) Plot(name string) (*plotspec.Spec, bool) {
	s, ok := in.plots[name]
	return s, ok
}

// Exported returns the paths of the files exported so far.
func (in *Interp) Exported() []string {
	return append([]string(nil), in.exported...)
}

func (in *Interp) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return in.Logger
}

// RunFile runs the script at path. Relative data sources in the
// script are resolved against the script's directory.
func (in *Interp) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return in.Run(ctx, path, f)
}

// Run runs the script read from r. name identifies the script in
// errors. Run stops at the first failing command and returns an
// *Error.
func (in *Interp) Run(ctx context.Context, name string, r io.Reader) error {
	in.dir = filepath.Dir(name)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		// Join continuation lines.
		start := lineNo
		for strings.HasSuffix(line, `\`) && sc.Scan() {
			lineNo++
			line = strings.TrimSuffix(line, `\`) + " " + strings.TrimSpace(sc.Text())
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return &Error{name, start, err}
		}
		words, err := shellquote.Split(line)
		if err != nil {
			return &Error{name, start, err}
		}
		if err := in.exec(ctx, words); err != nil {
			return &Error{name, start, err}
		}
	}
	if err := sc.Err(); err != nil {
		return &Error{name, lineNo, err}
	}
	return nil
}

func (in *Interp) exec(ctx context.Context, words []string) error {
	cmd, ok := commands[words[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", words[0])
	}
	in.logger().Debug("script command", "cmd", words[0], "args", words[1:])
	return cmd(in, ctx, words[1:])
}

// resolve returns path relative to base unless it is absolute or a
// non-file source.
func resolve(base, path string) string {
	switch {
	case base == "", path == "-", filepath.IsAbs(path),
		strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	}
	if rest, ok := strings.CutPrefix(path, "sqlite:"); ok {
		if filepath.IsAbs(rest) {
			return path
		}
		return "sqlite:" + filepath.Join(base, rest)
	}
	return filepath.Join(base, path)
}

func (in *Interp) plot(name string) (*plotspec.Spec, error) {
	s, ok := in.plots[name]
	if !ok {
		return nil, fmt.Errorf("no plot %q", name)
	}
	return s, nil
}
