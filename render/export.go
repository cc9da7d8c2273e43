// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-plotbook/plotspec"
)

// Write renders spec against tab and writes it to w. An Auto format
// writes PDF.
func Write(w io.Writer, spec *plotspec.Spec, tab *table.Table, opts Options) error {
	if opts.Format == Auto {
		opts.Format = PDF
	}
	data, err := encode(spec, tab, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func encode(spec *plotspec.Spec, tab *table.Table, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	scene, err := Render(spec, tab, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := scene.Encode(&buf, opts.Format, opts.DPI); err != nil {
		return nil, &RenderError{opts.Format.String() + " encoding", err}
	}
	return buf.Bytes(), nil
}

// Export renders spec against tab and writes it to the file path.
// An Auto format is chosen from the file extension.
//
// The file is written in full or not at all: output goes to a
// temporary file in the same directory, which is renamed over path
// only once it is complete.
func Export(spec *plotspec.Spec, tab *table.Table, path string, opts Options) error {
	if opts.Format == Auto {
		if f, ok := FormatOf(path); ok {
			opts.Format = f
		} else {
			opts.Format = PDF
		}
	}
	data, err := encode(spec, tab, opts)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return &ExportError{path, err}
	}
	opts.withDefaults().Logger.Info("exported plot", "path", path, "format", opts.Format.String(), "bytes", len(data))
	return nil
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
