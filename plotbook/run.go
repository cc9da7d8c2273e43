// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aclements/go-plotbook/internal/script"
	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/render"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce is how long the watcher waits for changes to settle
// before re-running.
const debounce = 100 * time.Millisecond

func (a *app) newRunCmd() *cobra.Command {
	var watchFlag bool
	cmd := &cobra.Command{
		Use:   "run SCRIPT...",
		Short: "Run plotbook scripts and export their figures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := a.runScripts(ctx, args)
			if !watchFlag {
				return err
			}
			if err != nil {
				a.log.Error("run failed", "err", err)
			}
			return watch(ctx, args, a.log, func() {
				if err := a.runScripts(ctx, args); err != nil {
					a.log.Error("run failed", "err", err)
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-run when a script or its directory changes")
	return cmd
}

// runScripts runs scripts in order on one interpreter, so later
// scripts can use tables and plots from earlier ones. Each call
// starts from the configured default theme.
func (a *app) runScripts(ctx context.Context, scripts []string) error {
	plotspec.SetDefaultTheme(plotspec.BaseTheme().With(a.cfg.ThemeOptions()...))

	if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
		return err
	}
	in := script.New()
	in.OutDir = a.cfg.OutDir
	in.Options = a.cfg.RenderOptions()
	in.Logger = a.log
	start := time.Now()
	for _, path := range scripts {
		if err := in.RunFile(ctx, path); err != nil {
			return err
		}
	}
	a.log.Info("run complete", "scripts", len(scripts), "files", len(in.Exported()), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// watch calls run after files in the directories of paths change,
// until ctx is done. Watching directories rather than files follows
// editors that save by renaming over the original.
func watch(ctx context.Context, paths []string, log *slog.Logger, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.Info("watching for changes", "dirs", len(dirs))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if base := filepath.Base(ev.Name); base[0] == '.' {
				// Editor swap files and temporary exports.
				continue
			}
			if _, ok := render.FormatOf(ev.Name); ok {
				// Our own output.
				continue
			}
			log.Debug("change", "file", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			run()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}
