// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads plotbook's layered configuration: built-in
// defaults, then plotbook.yaml, then PLOTBOOK_ environment variables,
// then command-line flags that were explicitly set.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/aclements/go-plotbook/plotspec"
	"github.com/aclements/go-plotbook/render"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is the configuration file read from the working
// directory when no file is named explicitly.
const DefaultFile = "plotbook.yaml"

// EnvPrefix prefixes environment variables that set configuration
// keys. PLOTBOOK_THEME_SIZE sets theme.size.
const EnvPrefix = "PLOTBOOK_"

// Config is the resolved configuration.
type Config struct {
	OutDir  string  `koanf:"out_dir"`
	Format  string  `koanf:"format"`
	DPI     float64 `koanf:"dpi"`
	Width   string  `koanf:"width"`
	Height  string  `koanf:"height"`
	Verbose bool    `koanf:"verbose"`
	Theme   Theme   `koanf:"theme"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Theme holds overrides of the base theme.
type Theme struct {
	Family string  `koanf:"family"`
	Size   float64 `koanf:"size"`
}

var defaults = map[string]any{
	"out_dir":      ".",
	"format":       "auto",
	"dpi":          150.0,
	"width":        "6in",
	"height":       "4in",
	"verbose":      false,
	"theme.family": "",
	"theme.size":   0.0,
}

// Load resolves the configuration. If path is empty, DefaultFile is
// read if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("reading config file: %w", err)
	} else {
		path = ""
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps PLOTBOOK_OUT_DIR to out_dir and PLOTBOOK_THEME_SIZE to
// theme.size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(s, "theme_"); ok {
		return "theme." + rest
	}
	return s
}

// flagKey maps --out-dir to out_dir and --theme-family to
// theme.family.
func flagKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "theme-"); ok {
		return "theme." + rest
	}
	return strings.ReplaceAll(name, "-", "_")
}

func (c *Config) validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config format: %w", err)
	}
	if !(c.DPI > 0) {
		return fmt.Errorf("config dpi must be positive, got %g", c.DPI)
	}
	if _, err := render.ParseLength(c.Width, c.DPI); err != nil {
		return fmt.Errorf("config width: %w", err)
	}
	if _, err := render.ParseLength(c.Height, c.DPI); err != nil {
		return fmt.Errorf("config height: %w", err)
	}
	if c.Theme.Size < 0 {
		return fmt.Errorf("config theme.size must not be negative, got %g", c.Theme.Size)
	}
	return nil
}

// RenderOptions returns the export options the configuration
// describes. The theme is left to the process default.
func (c *Config) RenderOptions() render.Options {
	// Validated by Load.
	f, _ := render.ParseFormat(c.Format)
	w, _ := render.ParseLength(c.Width, c.DPI)
	h, _ := render.ParseLength(c.Height, c.DPI)
	return render.Options{Width: w, Height: h, Format: f, DPI: c.DPI}
}

// ThemeOptions returns the theme overrides the configuration sets.
func (c *Config) ThemeOptions() []plotspec.ThemeOption {
	var opts []plotspec.ThemeOption
	if c.Theme.Size > 0 {
		opts = append(opts, plotspec.BaseSize(c.Theme.Size))
	}
	if c.Theme.Family != "" {
		opts = append(opts, plotspec.BaseFamily(c.Theme.Family))
	}
	return opts
}
