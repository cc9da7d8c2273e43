// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-plotbook/dataset"
	"github.com/aclements/go-plotbook/palettes"
	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/render"
	"github.com/spf13/pflag"
)

type command func(in *Interp, ctx context.Context, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"load":    (*Interp).load,
		"theme":   (*Interp).theme,
		"palette": (*Interp).palette,
		"plot":    (*Interp).newPlot,
		"layer":   (*Interp).layer,
		"scale":   (*Interp).scale,
		"label":   (*Interp).label,
		"export":  (*Interp).export,
	}
}

func flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parse parses args into fs and checks the number of positional
// arguments against usage.
func parse(fs *pflag.FlagSet, args []string, nargs int, usage string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Name(), err)
	}
	pos := fs.Args()
	if nargs >= 0 && len(pos) != nargs || nargs < 0 && len(pos) < -nargs {
		return nil, fmt.Errorf("usage: %s %s", fs.Name(), usage)
	}
	return pos, nil
}

func (in *Interp) load(ctx context.Context, args []string) error {
	fs := flagSet("load")
	schema := fs.String("schema", "", "required `schema` (penguins)")
	require := fs.StringSlice("require", nil, "drop rows missing these `columns`")
	where := fs.String("where", "", "keep rows for which `expr` is true")
	remaps := fs.StringArray("remap", nil, "rewrite `col:from=to`")
	missing := fs.StringArray("missing", nil, "missing value `token`")
	pos, err := parse(fs, args, 2, "NAME SOURCE [flags]")
	if err != nil {
		return err
	}
	name, source := pos[0], resolve(in.dir, pos[1])

	opts := []dataset.Option{dataset.WithLogger(in.logger())}
	switch *schema {
	case "":
	case "penguins":
		opts = append(opts, dataset.WithSchema(dataset.Penguins))
	default:
		return fmt.Errorf("load: unknown schema %q", *schema)
	}
	for _, r := range *remaps {
		col, rest, ok1 := strings.Cut(r, ":")
		from, to, ok2 := strings.Cut(rest, "=")
		if !ok1 || !ok2 || col == "" {
			return fmt.Errorf("load: bad remap %q, want col:from=to", r)
		}
		opts = append(opts, dataset.WithRemap(col, from, to))
	}
	if len(*missing) > 0 {
		opts = append(opts, dataset.WithMissing(*missing...))
	}
	var preds []dataset.Predicate
	if len(*require) > 0 {
		preds = append(preds, dataset.Require(*require...))
	}
	if *where != "" {
		p, err := dataset.Where(*where)
		if err != nil {
			return err
		}
		preds = append(preds, p)
	}
	if len(preds) > 0 {
		opts = append(opts, dataset.WithPredicates(preds...))
	}
	if in.HTTPClient != nil {
		opts = append(opts, dataset.WithHTTPClient(in.HTTPClient))
	}
	if in.Stdin != nil {
		opts = append(opts, dataset.WithStdin(in.Stdin))
	}

	t, err := dataset.Load(ctx, source, opts...)
	if err != nil {
		return err
	}
	in.tables[name] = t
	in.logger().Info("loaded table", "name", name, "source", source, "rows", t.Len())
	return nil
}

// roleArg splits "[ROLE=]VALUE". A missing role applies to every
// role.
func roleArg(s string) (role plotspec.Role, all bool, value string, err error) {
	r, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, true, s, nil
	}
	role, err = plotspec.ParseRole(r)
	return role, false, v, err
}

func (in *Interp) theme(ctx context.Context, args []string) error {
	fs := flagSet("theme")
	plot := fs.String("plot", "", "apply to plot `name` instead of the default theme")
	families := fs.StringArray("family", nil, "font family, as `[role=]name`")
	sizes := fs.StringArray("size", nil, "font size, as `[role=]pt`")
	baseSize := fs.Float64("base-size", 0, "scale all fonts so axis titles are `pt`")
	grid := fs.Bool("grid", true, "draw grid lines")
	tickColor := fs.String("tick-color", "", "axis tick `color`")
	tickLength := fs.Float64("tick-length", 0, "axis tick length in `pt`")
	minimal := fs.Bool("minimal", false, "use the minimal panel style")
	reset := fs.Bool("reset", false, "restore the default theme first")
	if _, err := parse(fs, args, 0, "[flags]"); err != nil {
		return err
	}

	var opts []plotspec.ThemeOption
	if *baseSize != 0 {
		if !(*baseSize > 0) {
			return fmt.Errorf("theme: base size must be positive")
		}
		opts = append(opts, plotspec.BaseSize(*baseSize))
	}
	for _, f := range *families {
		role, all, v, err := roleArg(f)
		if err != nil {
			return fmt.Errorf("theme: %w", err)
		}
		if all {
			opts = append(opts, plotspec.BaseFamily(v))
		} else {
			opts = append(opts, plotspec.FontFamily(role, v))
		}
	}
	for _, s := range *sizes {
		role, all, v, err := roleArg(s)
		if err != nil {
			return fmt.Errorf("theme: %w", err)
		}
		pt, err := strconv.ParseFloat(v, 64)
		if err != nil || !(pt > 0) {
			return fmt.Errorf("theme: bad font size %q", v)
		}
		if all {
			opts = append(opts, plotspec.BaseSize(pt))
		} else {
			opts = append(opts, plotspec.FontSize(role, pt))
		}
	}
	if fs.Changed("grid") {
		opts = append(opts, plotspec.GridLines(*grid))
	}
	if *tickColor != "" {
		c, err := palettes.ParseColor(*tickColor)
		if err != nil {
			return fmt.Errorf("theme: %w", err)
		}
		opts = append(opts, plotspec.TickColor(c))
	}
	if fs.Changed("tick-length") {
		if *tickLength < 0 {
			return fmt.Errorf("theme: tick length must not be negative")
		}
		opts = append(opts, plotspec.TickLength(*tickLength))
	}
	if *minimal {
		opts = append(opts, plotspec.Minimal())
	}

	if *plot != "" {
		s, err := in.plot(*plot)
		if err != nil {
			return err
		}
		if *reset {
			return fmt.Errorf("theme: --reset applies only to the default theme")
		}
		in.plots[*plot] = s.SetTheme(opts...)
		return nil
	}
	if *reset {
		plotspec.ResetDefaultTheme()
	}
	plotspec.UpdateDefaultTheme(opts...)
	return nil
}

func (in *Interp) palette(ctx context.Context, args []string) error {
	fs := flagSet("palette")
	pos, err := parse(fs, args, -2, "NAME COLOR...")
	if err != nil {
		return err
	}
	p, err := palettes.New(pos[0], palettes.Qualitative, pos[1:]...)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	palettes.Register(p)
	return nil
}

// aesFlags declares the column mapping flags shared by plot and
// layer.
type aesFlags map[plotspec.Channel]*string

func newAesFlags(fs *pflag.FlagSet, sizeName, alphaName string) aesFlags {
	return aesFlags{
		plotspec.X:     fs.String("x", "", "x `column`"),
		plotspec.Y:     fs.String("y", "", "y `column`"),
		plotspec.Color: fs.String("color", "", "color `column`"),
		plotspec.Size:  fs.String(sizeName, "", "size `column`"),
		plotspec.Alpha: fs.String(alphaName, "", "alpha `column`"),
	}
}

func (a aesFlags) aes() plotspec.Aes {
	aes := make(plotspec.Aes)
	for ch, col := range a {
		if *col != "" {
			aes[ch] = *col
		}
	}
	return aes
}

func (in *Interp) newPlot(ctx context.Context, args []string) error {
	fs := flagSet("plot")
	from := fs.String("from", "", "start from plot `base`")
	af := newAesFlags(fs, "size", "alpha")
	pos, err := parse(fs, args, 1, "NAME [flags]")
	if err != nil {
		return err
	}
	s := plotspec.New()
	if *from != "" {
		if s, err = in.plot(*from); err != nil {
			return err
		}
	}
	if s, err = s.Map(af.aes()); err != nil {
		return err
	}
	in.plots[pos[0]] = s
	return nil
}

func (in *Interp) layer(ctx context.Context, args []string) error {
	fs := flagSet("layer")
	af := newAesFlags(fs, "size-by", "alpha-by")
	size := fs.Float64("size", 0, "constant point radius or line width in `pt`")
	alpha := fs.Float64("alpha", 0, "constant `opacity`")
	fill := fs.String("fill", "", "constant `color`")
	where := fs.String("where", "", "draw only rows for which `expr` is true")
	pos, err := parse(fs, args, 2, "NAME point|line [flags]")
	if err != nil {
		return err
	}
	s, err := in.plot(pos[0])
	if err != nil {
		return err
	}
	g, err := plotspec.ParseGeometry(pos[1])
	if err != nil {
		return err
	}
	var preds []dataset.Predicate
	if *where != "" {
		p, err := dataset.Where(*where)
		if err != nil {
			return err
		}
		preds = append(preds, p)
	}
	style := plotspec.Style{Size: *size, Color: *fill}
	if fs.Changed("alpha") {
		style.Alpha = alpha
	}
	s, err = s.AddLayer(g, af.aes(), style, preds...)
	if err != nil {
		return err
	}
	in.plots[pos[0]] = s
	return nil
}

func parseFloats(s string) ([]float64, error) {
	var xs []float64
	for _, f := range strings.Split(s, ",") {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func parseLimits(s string) (*plotspec.Range, error) {
	if s == "" {
		return nil, nil
	}
	xs, err := parseFloats(s)
	if err != nil {
		return nil, err
	}
	if len(xs) != 2 {
		return nil, fmt.Errorf("limits %q must be two numbers", s)
	}
	return plotspec.Limits(xs[0], xs[1]), nil
}

func (in *Interp) scale(ctx context.Context, args []string) error {
	fs := flagSet("scale")
	limits := fs.String("limits", "", "domain limits `a,b`")
	breaks := fs.String("breaks", "", "tick or legend positions `a,b,...`")
	format := fs.String("format", "", "tick label printf `format`")
	palette := fs.String("palette", "", "color palette `name`")
	reverse := fs.Bool("reverse", false, "reverse the color palette")
	pos, err := parse(fs, args, 2, "NAME CHANNEL [flags]")
	if err != nil {
		return err
	}
	s, err := in.plot(pos[0])
	if err != nil {
		return err
	}
	lim, err := parseLimits(*limits)
	if err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	var br []float64
	if *breaks != "" {
		if br, err = parseFloats(*breaks); err != nil {
			return fmt.Errorf("scale: %w", err)
		}
	}

	ch := plotspec.Channel(pos[1])
	var sc plotspec.Scale
	if ch == plotspec.Color {
		if *format != "" {
			return fmt.Errorf("scale: --format does not apply to color")
		}
		if *palette == "" {
			return fmt.Errorf("scale: color needs --palette")
		}
		sc = plotspec.ColorScale{Palette: *palette, Reverse: *reverse, Limits: lim, Breaks: br}
	} else {
		if *palette != "" || *reverse {
			return fmt.Errorf("scale: --palette applies only to color")
		}
		sc = plotspec.Continuous{Limits: lim, Breaks: br, Format: *format}
	}
	if s, err = s.SetScale(ch, sc); err != nil {
		return err
	}
	in.plots[pos[0]] = s
	return nil
}

func (in *Interp) label(ctx context.Context, args []string) error {
	fs := flagSet("label")
	pos, err := parse(fs, args, 3, "NAME SLOT TEXT")
	if err != nil {
		return err
	}
	s, err := in.plot(pos[0])
	if err != nil {
		return err
	}
	if s, err = s.SetLabels(plotspec.Labels{plotspec.Slot(pos[1]): pos[2]}); err != nil {
		return err
	}
	in.plots[pos[0]] = s
	return nil
}

func (in *Interp) export(ctx context.Context, args []string) error {
	opts := in.Options
	fs := flagSet("export")
	width := fs.String("width", "", "output width, such as `6in`")
	height := fs.String("height", "", "output height, such as `4in`")
	format := fs.String("format", "", "output `format` (pdf, svg, png)")
	dpi := fs.Float64("dpi", opts.DPI, "raster resolution")
	pos, err := parse(fs, args, 3, "NAME TABLE FILE [flags]")
	if err != nil {
		return err
	}
	s, err := in.plot(pos[0])
	if err != nil {
		return err
	}
	tab, ok := in.tables[pos[1]]
	if !ok {
		return fmt.Errorf("no table %q", pos[1])
	}

	opts.DPI = *dpi
	if *width != "" {
		if opts.Width, err = render.ParseLength(*width, opts.DPI); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if *height != "" {
		if opts.Height, err = render.ParseLength(*height, opts.DPI); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if *format != "" {
		if opts.Format, err = render.ParseFormat(*format); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	opts.Logger = in.logger()

	path := pos[2]
	if in.OutDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(in.OutDir, path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return &render.ExportError{Path: path, Err: err}
		}
	}
	if err := render.Export(s, tab, path, opts); err != nil {
		return err
	}
	in.exported = append(in.exported, path)
	return nil
}
