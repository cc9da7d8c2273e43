// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"golang.org/x/text/unicode/norm"
)

// A Row is a view of one row of a table.
type Row struct {
	t *table.Table
	i int
}

// Index returns the row's position in its table.
func (r Row) Index() int {
	return r.i
}

// Float returns the value of numeric column col. ok is false if the
// column is missing, not numeric, or the value is missing.
func (r Row) Float(col string) (v float64, ok bool) {
	switch c := r.t.Column(col).(type) {
	case []float64:
		v = c[r.i]
		return v, !isMissingFloat(v)
	case []int:
		return float64(c[r.i]), true
	}
	return 0, false
}

// String returns the value of string or categorical column col. ok
// is false if the column is missing, not a string column, or the
// value is missing.
func (r Row) String(col string) (v string, ok bool) {
	switch c := r.t.Column(col).(type) {
	case Factor:
		v = c[r.i]
	case []string:
		v = c[r.i]
	default:
		return "", false
	}
	return v, v != ""
}

// Missing reports whether row r has no value in column col.
func (r Row) Missing(col string) bool {
	if _, ok := r.Float(col); ok {
		return false
	}
	if _, ok := r.String(col); ok {
		return false
	}
	return true
}

// A Predicate decides which rows of a table to keep.
type Predicate interface {
	// Columns returns the columns the predicate reads. Filter
	// checks that they exist before evaluating any row.
	Columns() []string

	// Keep reports whether to keep row r.
	Keep(r Row) (bool, error)
}

// Require returns a predicate that keeps rows with a value in every
// one of cols.
func Require(cols ...string) Predicate {
	return requireCols(cols)
}

type requireCols []string

func (p requireCols) Columns() []string { return p }

func (p requireCols) Keep(r Row) (bool, error) {
	for _, col := range p {
		if r.Missing(col) {
			return false, nil
		}
	}
	return true, nil
}

func (p requireCols) String() string {
	return "require(" + strings.Join(p, ", ") + ")"
}

// Eq returns a predicate that keeps rows whose string or categorical
// column col equals value after NFC normalization.
func Eq(col, value string) Predicate {
	return eq{col, norm.NFC.String(value)}
}

type eq struct {
	col, value string
}

func (p eq) Columns() []string { return []string{p.col} }

func (p eq) Keep(r Row) (bool, error) {
	v, _ := r.String(p.col)
	return norm.NFC.String(v) == p.value, nil
}

// whereOptions are the Starlark dialect of Where expressions.
var whereOptions = &syntax.FileOptions{}

// Where returns a predicate that evaluates the Starlark expression
// expr for each row. Every free identifier in expr names a column;
// numeric values are Starlark floats, strings are strings, and
// missing values are None. A row is kept if the expression's value
// is truthy.
//
// A row on which expr fails is dropped if any column expr refers to
// is missing in that row, so "body_mass_g > 4000" drops rows with no
// mass. On a row with every column present, the failure is an error.
func Where(expr string) (Predicate, error) {
	e, err := whereOptions.ParseExpr("where", expr, 0)
	if err != nil {
		return nil, fmt.Errorf("where %q: %w", expr, err)
	}
	cols := make(map[string]bool)
	var visit func(n syntax.Node) bool
	visit = func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.DotExpr:
			// Attribute names are not columns.
			syntax.Walk(n.X, visit)
			return false
		case *syntax.Ident:
			if !starlark.Universe.Has(n.Name) {
				cols[n.Name] = true
			}
		}
		return true
	}
	syntax.Walk(e, visit)

	p := &where{src: expr}
	for col := range cols {
		p.cols = append(p.cols, col)
	}
	sort.Strings(p.cols)
	return p, nil
}

type where struct {
	src  string
	cols []string
}

func (p *where) Columns() []string { return p.cols }

func (p *where) Keep(r Row) (bool, error) {
	env := make(starlark.StringDict, len(p.cols))
	for _, col := range p.cols {
		env[col] = starlarkValue(r, col)
	}
	thread := &starlark.Thread{Name: "where"}
	v, err := starlark.EvalOptions(whereOptions, thread, "where", p.src, env)
	if err != nil {
		for _, col := range p.cols {
			if r.Missing(col) {
				return false, nil
			}
		}
		return false, fmt.Errorf("where %q: row %d: %w", p.src, r.i, err)
	}
	return bool(v.Truth()), nil
}

func (p *where) String() string {
	return "where(" + p.src + ")"
}

func starlarkValue(r Row, col string) starlark.Value {
	if v, ok := r.Float(col); ok {
		return starlark.Float(v)
	}
	if v, ok := r.String(col); ok {
		return starlark.String(v)
	}
	return starlark.None
}

// And returns a predicate that keeps rows satisfying all of preds.
func And(preds ...Predicate) Predicate {
	return and(preds)
}

type and []Predicate

func (p and) Columns() []string {
	var cols []string
	for _, q := range p {
		cols = append(cols, q.Columns()...)
	}
	return cols
}

func (p and) Keep(r Row) (bool, error) {
	for _, q := range p {
		if ok, err := q.Keep(r); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

// Filter returns the rows of t that satisfy every one of preds, in
// their original order. It fails without a result if any predicate
// names a column t lacks or fails to evaluate.
func Filter(t *table.Table, preds ...Predicate) (*table.Table, error) {
	p := and(preds)
	for _, col := range p.Columns() {
		if t.Column(col) == nil {
			return nil, &DataFormatError{Column: col, Msg: "filter references unknown column"}
		}
	}

	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		ok, err := p.Keep(Row{t, i})
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == t.Len() {
		return t, nil
	}
	return selectRows(t, keep), nil
}

// selectRows returns a table of the rows of t at indexes, in order.
func selectRows(t *table.Table, indexes []int) *table.Table {
	b := new(table.Builder)
	for _, col := range t.Columns() {
		data := t.Column(col)
		if len(indexes) == 0 {
			// Keep the column's type even when it is empty.
			b.Add(col, reflect.MakeSlice(reflect.TypeOf(data), 0, 0).Interface())
			continue
		}
		b.Add(col, slice.Select(data, indexes))
	}
	return b.Done()
}

// Rows returns a Row for every row of t.
func Rows(t *table.Table) []Row {
	rows := make([]Row, t.Len())
	for i := range rows {
		rows[i] = Row{t, i}
	}
	return rows
}
