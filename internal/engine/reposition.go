package engine

import (
	"github.com/piwi3910/StoryMap/internal/model"
)

// MoveRects applies a drag vector to every rect. Results are clamped to
// non-negative coordinates and snapped when the grid has snapping enabled.
// The input slice is not modified.
func MoveRects(rects []model.Rect, dx, dy float64, grid model.Grid) ([]model.Rect, error) {
	if !(model.Point{Left: dx, Top: dy}).IsFinite() {
		return nil, ErrNonFiniteAnchor
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	moved := make([]model.Rect, len(rects))
	for i, r := range rects {
		moved[i] = SnapRect(clampOrigin(r.Translate(dx, dy)), grid)
	}
	return moved, nil
}

// Reposition resolves overlaps left after a drag. The moved rect is snapped,
// then pushed out of each obstacle in turn by Displace, keeping spacing
// between them. Obstacles are visited in order and each push is final, so a
// later push can reintroduce overlap with an earlier obstacle.
func Reposition(moved model.Rect, obstacles []model.Rect, spacing float64, grid model.Grid) (model.Rect, error) {
	if err := moved.Validate(); err != nil {
		return model.Rect{}, err
	}
	if err := grid.Validate(); err != nil {
		return model.Rect{}, err
	}
	if err := validateObstacles(obstacles); err != nil {
		return model.Rect{}, err
	}

	r := SnapRect(moved, grid)
	for _, o := range obstacles {
		r = Displace(r, o, spacing)
	}
	return r, nil
}

// MoveSelected moves every selected passage of story by dx, dy and resolves
// overlaps against the unselected passages. It returns the new rects keyed by
// passage ID for Story.SetRects.
func MoveSelected(story model.Story, dx, dy, spacing float64) (map[string]model.Rect, error) {
	var (
		ids       []string
		rects     []model.Rect
		obstacles []model.Rect
	)
	for _, p := range story.Passages {
		if p.Selected {
			ids = append(ids, p.ID)
			rects = append(rects, p.Rect)
		} else {
			obstacles = append(obstacles, p.Rect)
		}
	}

	grid := story.Grid()
	moved, err := MoveRects(rects, dx, dy, grid)
	if err != nil {
		return nil, err
	}

	result := make(map[string]model.Rect, len(ids))
	for i, id := range ids {
		r, err := Reposition(moved[i], obstacles, spacing, grid)
		if err != nil {
			return nil, err
		}
		result[id] = r
	}
	return result, nil
}
