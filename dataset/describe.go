// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
)

// KindOf returns the kind of column col of t and whether it exists.
func KindOf(t *table.Table, col string) (FieldKind, bool) {
	switch t.Column(col).(type) {
	case nil:
		return 0, false
	case Factor:
		return Categorical, true
	case []string:
		return String, true
	case []float64, []int:
		return Numeric, true
	}
	return String, true
}

// Floats returns numeric column col of t as float64s.
func Floats(t *table.Table, col string) ([]float64, error) {
	data := t.Column(col)
	if data == nil {
		return nil, fmt.Errorf("no column %q", col)
	}
	if k, _ := KindOf(t, col); k != Numeric {
		return nil, fmt.Errorf("column %q is not numeric", col)
	}
	var xs []float64
	slice.Convert(&xs, data)
	return xs, nil
}

// Strings returns string or categorical column col of t.
func Strings(t *table.Table, col string) ([]string, error) {
	switch c := t.Column(col).(type) {
	case nil:
		return nil, fmt.Errorf("no column %q", col)
	case Factor:
		return []string(c), nil
	case []string:
		return c, nil
	}
	return nil, fmt.Errorf("column %q is not a string column", col)
}

// Levels returns the distinct non-missing values of string or
// categorical column col in sorted order.
func Levels(t *table.Table, col string) ([]string, error) {
	ss, err := Strings(t, col)
	if err != nil {
		return nil, err
	}
	if len(ss) == 0 {
		return nil, nil
	}
	nub := slice.Nub(ss).([]string)
	levels := make([]string, 0, len(nub))
	for _, s := range nub {
		if s != "" {
			levels = append(levels, s)
		}
	}
	sort.Strings(levels)
	return levels, nil
}

// A Summary describes one column of a table.
type Summary struct {
	Column  string
	Kind    FieldKind
	Count   int // Non-missing values
	Missing int

	// Min, Max, and Mean are set for numeric columns with at
	// least one value, and NaN otherwise.
	Min, Max, Mean float64

	// Levels is the number of distinct values of a string or
	// categorical column.
	Levels int
}

// Describe summarizes every column of t in column order.
func Describe(t *table.Table) []Summary {
	var out []Summary
	for _, col := range t.Columns() {
		kind, _ := KindOf(t, col)
		s := Summary{Column: col, Kind: kind, Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
		if kind == Numeric {
			xs, _ := Floats(t, col)
			present := make([]float64, 0, len(xs))
			for _, x := range xs {
				if !isMissingFloat(x) {
					present = append(present, x)
				}
			}
			s.Count, s.Missing = len(present), len(xs)-len(present)
			if len(present) > 0 {
				s.Min, s.Max = stats.Bounds(present)
				s.Mean = stats.Mean(present)
			}
		} else {
			ss, _ := Strings(t, col)
			for _, v := range ss {
				if v == "" {
					s.Missing++
				}
			}
			s.Count = len(ss) - s.Missing
			levels, _ := Levels(t, col)
			s.Levels = len(levels)
		}
		out = append(out, s)
	}
	return out
}
