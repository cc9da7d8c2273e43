// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const penguinsCSV = `species,island,bill_length_mm,bill_depth_mm,flipper_length_mm,body_mass_g,sex,year
Adelie,Torgersen,39.1,18.7,181,3750,male,2007
Adelie,Torgersen,39.5,17.4,186,3800,female,2007
Adelie,Torgersen,NA,NA,NA,NA,NA,2007
Gentoo,Biscoe,46.1,13.2,211,4500,female,2007
Chinstrap,Dream,46.5,17.9,192,3500,female,2007
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o666))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "penguins.csv", penguinsCSV)
	tab, err := Load(context.Background(), path, WithSchema(Penguins))
	require.NoError(t, err)

	assert.Equal(t, 5, tab.Len())
	assert.Equal(t, []string{"species", "island", "bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "sex", "year"}, tab.Columns())
	assert.Equal(t, Factor{"Adelie", "Adelie", "Adelie", "Gentoo", "Chinstrap"}, tab.Column("species"))
	assert.Equal(t, Factor{"male", "female", "", "female", "female"}, tab.Column("sex"))

	mass := tab.Column("body_mass_g").([]float64)
	assert.Equal(t, 3750.0, mass[0])
	assert.True(t, math.IsNaN(mass[2]), "NA should load as NaN")
}

func TestLoadInfersKinds(t *testing.T) {
	path := writeFile(t, "x.csv", "name,value,mixed\na,1,1\nb,,x\n")
	tab, err := Load(context.Background(), path)
	require.NoError(t, err)

	v := tab.Column("value").([]float64)
	assert.Equal(t, 1.0, v[0])
	assert.True(t, math.IsNaN(v[1]))
	assert.Equal(t, []string{"a", "b"}, tab.Column("name"))
	assert.Equal(t, []string{"1", "x"}, tab.Column("mixed"))
}

func TestLoadFormatErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		data   string
		line   int
		column string
	}{
		{"ragged", penguinsCSV + "Adelie,Dream,1\n", 7, ""},
		{"not a number", strings.Replace(penguinsCSV, "39.5", "thirty-nine", 1), 3, "bill_length_mm"},
		{"missing column", "species,island\nAdelie,Dream\n", 1, "bill_length_mm"},
		{"duplicate column", "species,species\n", 1, "species"},
		{"empty", "", 0, ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", test.data)
			tab, err := Load(context.Background(), path, WithSchema(Penguins))
			assert.Nil(t, tab)
			var fe *DataFormatError
			require.True(t, errors.As(err, &fe), "want *DataFormatError, got %T: %v", err, err)
			assert.Equal(t, test.line, fe.Line)
			assert.Equal(t, test.column, fe.Column)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	var le *DataLoadError
	require.True(t, errors.As(err, &le), "want *DataLoadError, got %T", err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/penguins.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(penguinsCSV))
	}))
	defer srv.Close()

	tab, err := Load(context.Background(), srv.URL+"/penguins.csv", WithSchema(Penguins), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, 5, tab.Len())

	_, err = Load(context.Background(), srv.URL+"/missing.csv", WithHTTPClient(srv.Client()))
	var le *DataLoadError
	require.True(t, errors.As(err, &le), "want *DataLoadError, got %T", err)
	assert.Contains(t, le.Error(), "404")
}

func TestLoadStdin(t *testing.T) {
	tab, err := Load(context.Background(), "-", WithStdin(strings.NewReader(penguinsCSV)), WithSchema(Penguins))
	require.NoError(t, err)
	assert.Equal(t, 5, tab.Len())
}

func TestLoadRemapThenFilter(t *testing.T) {
	// The remapped label is written decomposed (e + combining
	// acute) and must compare equal to the composed form.
	path := writeFile(t, "penguins.csv", penguinsCSV)
	tab, err := Load(context.Background(), path,
		WithSchema(Penguins),
		WithRemap("species", "Adelie", "Ade\u0301lie"),
		WithPredicates(Require("bill_length_mm", "bill_depth_mm"), Eq("species", "Ad\u00e9lie")),
	)
	require.NoError(t, err)
	assert.Equal(t, Factor{"Ad\u00e9lie", "Ad\u00e9lie"}, tab.Column("species"))
	assert.Equal(t, []float64{39.1, 39.5}, tab.Column("bill_length_mm"))
}

func TestLoadRemapUnknownColumn(t *testing.T) {
	path := writeFile(t, "penguins.csv", penguinsCSV)
	_, err := Load(context.Background(), path, WithRemap("genus", "a", "b"))
	var fe *DataFormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Source)
	assert.Equal(t, "genus", fe.Column)
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "penguins.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE penguins (species TEXT, island TEXT, bill_length_mm REAL, bill_depth_mm REAL,
		flipper_length_mm INTEGER, body_mass_g INTEGER, sex TEXT, year INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO penguins VALUES
		('Adelie', 'Torgersen', 39.1, 18.7, 181, 3750, 'male', 2007),
		('Gentoo', 'Biscoe', NULL, NULL, NULL, NULL, NULL, 2008)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tab, err := Load(context.Background(), "sqlite:"+path+"?table=penguins", WithSchema(Penguins))
	require.NoError(t, err)
	require.Equal(t, 2, tab.Len())
	assert.Equal(t, Factor{"Adelie", "Gentoo"}, tab.Column("species"))
	mass := tab.Column("body_mass_g").([]float64)
	assert.Equal(t, 3750.0, mass[0])
	assert.True(t, math.IsNaN(mass[1]))

	tab, err = Load(context.Background(), "sqlite:"+path+"?query=SELECT+species,+year+FROM+penguins+WHERE+year+>+2007")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gentoo"}, tab.Column("species"))
	assert.Equal(t, []float64{2008}, tab.Column("year"))

	for _, bad := range []string{
		"sqlite:" + path,
		"sqlite:?table=penguins",
		"sqlite:" + path + "?table=nope",
		"sqlite:" + filepath.Join(t.TempDir(), "missing.db") + "?table=penguins",
	} {
		_, err := Load(context.Background(), bad)
		var le *DataLoadError
		assert.True(t, errors.As(err, &le), "Load(%q): want *DataLoadError, got %v", bad, err)
	}
}
