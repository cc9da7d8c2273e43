// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset loads and filters the tables that plots are drawn
// from.
//
// Tables are go-gg tables. Numeric columns are []float64 with missing
// values stored as NaN. Free-form string columns are []string and
// categorical columns are Factor; in both, missing values are the
// empty string. A loaded table is never modified; filtering and
// remapping always build a new table.
package dataset

import (
	"fmt"
	"math"
	"strings"
)

// FieldKind is the type of a column.
type FieldKind int

const (
	String FieldKind = iota
	Numeric
	Categorical
)

func (k FieldKind) String() string {
	switch k {
	case String:
		return "string"
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// A Field is one expected column of a Schema.
type Field struct {
	Name string
	Kind FieldKind
}

// A Schema lists the columns a source must provide. Sources may have
// additional columns, which are loaded as String columns.
type Schema []Field

// Field returns the field named name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Penguins is the schema of the Palmer penguins data set.
var Penguins = Schema{
	{"species", Categorical},
	{"island", Categorical},
	{"bill_length_mm", Numeric},
	{"bill_depth_mm", Numeric},
	{"flipper_length_mm", Numeric},
	{"body_mass_g", Numeric},
	{"sex", Categorical},
	{"year", Numeric},
}

// PenguinsURL is the canonical location of the Palmer penguins CSV.
const PenguinsURL = "https://raw.githubusercontent.com/allisonhorst/palmerpenguins/main/inst/extdata/penguins.csv"

// Factor is the column type of categorical data. Missing values are
// "".
type Factor []string

// isMissingFloat reports whether x represents a missing value.
func isMissingFloat(x float64) bool {
	return math.IsNaN(x)
}

// DataLoadError reports that a source could not be read.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// DataFormatError reports that a source's contents do not match the
// expected shape. Line is the 1-based input line, or 0 if the error
// is not tied to a line. Column is the offending column name, if
// any.
type DataFormatError struct {
	Source string
	Line   int
	Column string
	Msg    string
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}
