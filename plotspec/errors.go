// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plotspec

import "fmt"

// InvalidMappingError reports an aesthetic mapping or layer style
// that is not valid for its geometry.
type InvalidMappingError struct {
	Geometry Geometry // or -1 for plot-level mappings
	Channel  Channel
	Reason   string
}

func (e *InvalidMappingError) Error() string {
	if e.Geometry < 0 {
		return fmt.Sprintf("invalid mapping for %q: %s", e.Channel, e.Reason)
	}
	return fmt.Sprintf("invalid %s mapping for %q: %s", e.Geometry, e.Channel, e.Reason)
}

// InvalidScaleError reports a scale whose limits or breaks are
// inconsistent, or which does not fit its channel.
type InvalidScaleError struct {
	Channel Channel
	Reason  string
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("invalid %s scale: %s", e.Channel, e.Reason)
}

// UnknownPaletteError reports a color scale that names an
// unregistered palette.
type UnknownPaletteError struct {
	Name string
}

func (e *UnknownPaletteError) Error() string {
	return fmt.Sprintf("unknown palette %q", e.Name)
}
