// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// loadSQLite reads rows from a SQLite database. The locator has the
// form
//
//	sqlite:PATH?table=NAME
//	sqlite:PATH?query=SELECT+...
//
// Values are converted to their text form so that they go through
// the same schema checks as CSV input. NULL becomes "".
func loadSQLite(ctx context.Context, locator string) ([]string, [][]string, error) {
	rest := strings.TrimPrefix(locator, "sqlite:")
	path, rawQuery, _ := strings.Cut(rest, "?")
	if path == "" {
		return nil, nil, &DataLoadError{locator, fmt.Errorf("missing database path")}
	}
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	query := params.Get("query")
	if tab := params.Get("table"); tab != "" {
		if query != "" {
			return nil, nil, &DataLoadError{locator, fmt.Errorf("both table and query given")}
		}
		query = "SELECT * FROM " + quoteIdent(tab)
	}
	if query == "" {
		return nil, nil, &DataLoadError{locator, fmt.Errorf("need table= or query=")}
	}

	// Opening a missing file would create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	var records [][]string
	vals := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, &DataLoadError{locator, err}
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = sqlText(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &DataLoadError{locator, err}
	}
	return header, records, nil
}

func sqlText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
