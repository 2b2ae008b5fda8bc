// Package report renders the outcome of a kick analysis: a console summary,
// a per-frame diagnostics CSV, a four-panel PNG and an interactive HTML
// chart page.
package report

import "errors"

// ErrNoFrames is returned when a result has no classified frames to draw.
var ErrNoFrames = errors.New("no classified frames to render")
