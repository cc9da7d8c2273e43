// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	ggtable "github.com/aclements/go-gg/table"
	"github.com/aclements/go-plotbook/dataset"
	"github.com/aclements/go-plotbook/palettes"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// loadFlags are the data source flags shared by table and describe.
type loadFlags struct {
	schema  string
	where   string
	require []string
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.schema, "schema", "", "require `schema` (penguins)")
	cmd.Flags().StringVar(&f.where, "where", "", "keep rows for which `expr` is true")
	cmd.Flags().StringSliceVar(&f.require, "require", nil, "drop rows missing these `columns`")
}

func (a *app) load(cmd *cobra.Command, source string, f *loadFlags) (*ggtable.Table, error) {
	opts := []dataset.Option{dataset.WithLogger(a.log), dataset.WithStdin(cmd.InOrStdin())}
	switch f.schema {
	case "":
	case "penguins":
		opts = append(opts, dataset.WithSchema(dataset.Penguins))
	default:
		return nil, fmt.Errorf("unknown schema %q", f.schema)
	}
	var preds []dataset.Predicate
	if len(f.require) > 0 {
		preds = append(preds, dataset.Require(f.require...))
	}
	if f.where != "" {
		p, err := dataset.Where(f.where)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) > 0 {
		opts = append(opts, dataset.WithPredicates(preds...))
	}
	return dataset.Load(cmd.Context(), source, opts...)
}

func (a *app) newTableCmd() *cobra.Command {
	var f loadFlags
	cmd := &cobra.Command{
		Use:   "table SOURCE",
		Short: "Print a data set",
		Long:  "Print a data set. SOURCE is a CSV file, an http(s) URL, a sqlite: locator, or - for standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd, args[0], &f)
			if err != nil {
				return err
			}
			return ggtable.Fprint(cmd.OutOrStdout(), t)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newDescribeCmd() *cobra.Command {
	var f loadFlags
	cmd := &cobra.Command{
		Use:   "describe SOURCE",
		Short: "Summarize the columns of a data set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.load(cmd, args[0], &f)
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), t.Len(), dataset.Describe(t))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func writeSummary(w io.Writer, rows int, sums []dataset.Summary) {
	num := func(x float64) string {
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', 6, 64)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Kind", "Count", "Missing", "Min", "Max", "Mean", "Levels"})
	for _, s := range sums {
		levels := ""
		if s.Kind != dataset.Numeric {
			levels = strconv.Itoa(s.Levels)
		}
		tw.AppendRow(table.Row{s.Column, s.Kind.String(), s.Count, s.Missing, num(s.Min), num(s.Max), num(s.Mean), levels})
	}
	tw.Render()
	fmt.Fprintf(w, "(%d rows)\n", rows)
}

func (a *app) newPalettesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "List the registered color palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writePalettes(cmd.OutOrStdout())
			return nil
		},
	}
}

// swatchSteps is the number of samples shown for continuous
// palettes.
const swatchSteps = 8

func writePalettes(w io.Writer) {
	names := palettes.Names()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for _, n := range names {
		p, _ := palettes.Lookup(n)
		var sw strings.Builder
		if p.Kind == palettes.Qualitative {
			for i := 0; i < p.Len(); i++ {
				sw.WriteString(swatch(p.Level(i, p.Len())))
			}
		} else {
			for i := 0; i < swatchSteps; i++ {
				sw.WriteString(swatch(p.Map(float64(i) / (swatchSteps - 1))))
			}
		}
		fmt.Fprintf(w, "%-*s  %-11s  %s\n", width, n, p.Kind, sw.String())
	}
}

func swatch(c color.RGBA) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(palettes.Hex(c))).Render("  ")
}
