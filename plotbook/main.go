// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command plotbook renders the figures of a plotting tutorial from
// plotbook scripts and inspects the data sets they use.
//
// Usage:
//
//	plotbook run [--watch] SCRIPT...
//	plotbook table SOURCE
//	plotbook describe SOURCE
//	plotbook palettes
//
// Output options come from, in increasing priority, built-in
// defaults, ./plotbook.yaml (or --config), PLOTBOOK_* environment
// variables, and command-line flags. See package
// github.com/aclements/go-plotbook/internal/script for the script
// language.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/aclements/go-plotbook/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	log.SetPrefix("plotbook: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

// app is the state shared by all subcommands once the configuration
// is loaded.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := new(app)
	var cfgFile string

	root := &cobra.Command{
		Use:   "plotbook",
		Short: "Render tutorial figures from plotbook scripts",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				a.log.Debug("using config file", "path", cfg.File)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config `file` (default ./"+config.DefaultFile+")")
	pf.BoolP("verbose", "v", false, "log debugging output")
	pf.String("out-dir", ".", "write exported files under `dir`")
	pf.String("format", "auto", "default output `format` (auto, pdf, svg, png)")
	pf.Float64("dpi", 150, "raster output resolution")
	pf.String("width", "6in", "default output `width`")
	pf.String("height", "4in", "default output `height`")
	pf.String("theme-family", "", "base font `family` (sans, serif, mono)")
	pf.Float64("theme-size", 0, "base font size in `points`")

	root.AddCommand(a.newRunCmd(), a.newTableCmd(), a.newDescribeCmd(), a.newPalettesCmd())
	return root
}
