package engine

import (
	"math"

	"github.com/piwi3910/StoryMap/internal/model"
)

// SnapValue rounds v to the nearest multiple of size. Values already on the
// grid are returned unchanged. A non-positive size disables snapping.
func SnapValue(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	return math.Round(v/size) * size
}

// SnapRect snaps the position of r when the grid has snapping enabled.
// Width and height are left alone.
func SnapRect(r model.Rect, grid model.Grid) model.Rect {
	if !grid.SnapToGrid {
		return r
	}
	r.Left = SnapValue(r.Left, grid.Size)
	r.Top = SnapValue(r.Top, grid.Size)
	return r
}

// clampOrigin moves r so that neither coordinate is negative.
func clampOrigin(r model.Rect) model.Rect {
	r.Left = math.Max(r.Left, 0)
	r.Top = math.Max(r.Top, 0)
	return r
}
