// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"golang.org/x/text/unicode/norm"
)

// An Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	schema  Schema
	remaps  []remap
	preds   []Predicate
	missing []string
	client  *http.Client
	stdin   io.Reader
	logger  *slog.Logger
}

type remap struct {
	col, from, to string
}

// WithSchema requires the source to provide the columns of s, parsed
// as their declared kinds.
func WithSchema(s Schema) Option {
	return func(c *loadConfig) { c.schema = s }
}

// WithRemap rewrites value from to value to in column col. Remaps are
// applied in order, before any predicate.
func WithRemap(col, from, to string) Option {
	return func(c *loadConfig) { c.remaps = append(c.remaps, remap{col, from, to}) }
}

// WithPredicates drops rows that fail any of preds.
func WithPredicates(preds ...Predicate) Option {
	return func(c *loadConfig) { c.preds = append(c.preds, preds...) }
}

// WithMissing sets the field values that denote a missing value. The
// default is "" and "NA".
func WithMissing(tokens ...string) Option {
	return func(c *loadConfig) { c.missing = tokens }
}

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(client *http.Client) Option {
	return func(c *loadConfig) { c.client = client }
}

// WithStdin sets the reader used for the "-" source.
func WithStdin(r io.Reader) Option {
	return func(c *loadConfig) { c.stdin = r }
}

// WithLogger sets the logger for load progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *loadConfig) { c.logger = l }
}

// Load reads the table at source, which may be an http or https URL,
// a "sqlite:" locator (see loadSQLite), "-" for standard input, or a
// local file path. Non-SQLite sources must be CSV with a header row.
//
// Load either returns the complete, remapped, and filtered table, or
// a *DataLoadError or *DataFormatError and no table.
func Load(ctx context.Context, source string, opts ...Option) (*table.Table, error) {
	cfg := loadConfig{
		missing: []string{"", "NA"},
		client:  http.DefaultClient,
		stdin:   os.Stdin,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(&cfg)
	}

	var header []string
	var rows [][]string
	var err error
	switch {
	case strings.HasPrefix(source, "sqlite:"):
		header, rows, err = loadSQLite(ctx, source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		header, rows, err = loadHTTP(ctx, source, cfg.client)
	case source == "-":
		header, rows, err = readCSV(source, cfg.stdin)
	default:
		header, rows, err = loadFile(source)
	}
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("read source", "source", source, "columns", len(header), "rows", len(rows))

	t, err := build(source, header, rows, &cfg)
	if err != nil {
		return nil, err
	}
	for _, r := range cfg.remaps {
		if t, err = Remap(t, r.col, r.from, r.to); err != nil {
			return nil, withSource(err, source)
		}
	}
	if len(cfg.preds) > 0 {
		n := t.Len()
		if t, err = Filter(t, cfg.preds...); err != nil {
			return nil, withSource(err, source)
		}
		cfg.logger.Debug("filtered rows", "source", source, "kept", t.Len(), "dropped", n-t.Len())
	}
	return t, nil
}

func withSource(err error, source string) error {
	var fe *DataFormatError
	if errors.As(err, &fe) && fe.Source == "" {
		fe.Source = source
	}
	return err
}

func loadFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &DataLoadError{path, err}
	}
	defer f.Close()
	return readCSV(path, f)
}

func loadHTTP(ctx context.Context, url string, client *http.Client) ([]string, [][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, &DataLoadError{url, err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &DataLoadError{url, err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &DataLoadError{url, fmt.Errorf("HTTP status %s", resp.Status)}
	}
	return readCSV(url, resp.Body)
}

// readCSV reads a CSV stream with a header row. Every record must
// have as many fields as the header.
func readCSV(source string, r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, nil, &DataFormatError{Source: source, Line: pe.Line, Msg: pe.Err.Error()}
		}
		return nil, nil, &DataLoadError{source, err}
	}
	if len(records) == 0 {
		return nil, nil, &DataFormatError{Source: source, Msg: "no header row"}
	}
	return records[0], records[1:], nil
}

// build converts string records into a table. rows[i] is on input
// line i+2.
func build(source string, header []string, rows [][]string, cfg *loadConfig) (*table.Table, error) {
	missing := make(map[string]bool)
	for _, m := range cfg.missing {
		missing[m] = true
	}

	seen := make(map[string]bool)
	for _, h := range header {
		if seen[h] {
			return nil, &DataFormatError{Source: source, Line: 1, Column: h, Msg: "duplicate column"}
		}
		seen[h] = true
	}
	for _, f := range cfg.schema {
		if !seen[f.Name] {
			return nil, &DataFormatError{Source: source, Line: 1, Column: f.Name, Msg: "missing required column"}
		}
	}

	b := new(table.Builder)
	for ci, name := range header {
		kind := String
		if f, ok := cfg.schema.Field(name); ok {
			kind = f.Kind
		} else if cfg.schema == nil && allNumeric(rows, ci, missing) {
			kind = Numeric
		}

		switch kind {
		case Numeric:
			col := make([]float64, len(rows))
			for ri, row := range rows {
				s := strings.TrimSpace(row[ci])
				if missing[s] {
					col[ri] = math.NaN()
					continue
				}
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, &DataFormatError{Source: source, Line: ri + 2, Column: name, Msg: fmt.Sprintf("%q is not a number", row[ci])}
				}
				col[ri] = v
			}
			b.Add(name, col)
		case Categorical:
			col := make(Factor, len(rows))
			for ri, row := range rows {
				if !missing[row[ci]] {
					col[ri] = norm.NFC.String(row[ci])
				}
			}
			b.Add(name, col)
		default:
			col := make([]string, len(rows))
			for ri, row := range rows {
				if !missing[row[ci]] {
					col[ri] = row[ci]
				}
			}
			b.Add(name, col)
		}
	}
	return b.Done(), nil
}

func allNumeric(rows [][]string, ci int, missing map[string]bool) bool {
	found := false
	for _, row := range rows {
		s := strings.TrimSpace(row[ci])
		if missing[s] {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		found = true
	}
	return found
}

// Remap returns a copy of t in which every from value in string or
// categorical column col is replaced with to. Values are compared
// after Unicode NFC normalization.
func Remap(t *table.Table, col, from, to string) (*table.Table, error) {
	from = norm.NFC.String(from)
	switch c := t.Column(col).(type) {
	case nil:
		return nil, &DataFormatError{Column: col, Msg: "remap of unknown column"}
	case Factor:
		nc := make(Factor, len(c))
		for i, v := range c {
			if v == from {
				v = norm.NFC.String(to)
			}
			nc[i] = v
		}
		return table.NewBuilder(t).Add(col, nc).Done(), nil
	case []string:
		nc := make([]string, len(c))
		for i, v := range c {
			if norm.NFC.String(v) == from {
				v = to
			}
			nc[i] = v
		}
		return table.NewBuilder(t).Add(col, nc).Done(), nil
	default:
		return nil, &DataFormatError{Column: col, Msg: "remap of non-string column"}
	}
}
