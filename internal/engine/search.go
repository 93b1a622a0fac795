package engine

import (
	"fmt"

	"github.com/piwi3910/StoryMap/internal/model"
)

// dropMode selects where the search resumes after all probes of a row fail.
type dropMode int

const (
	// dropDiagonal keeps the rightward probe offset when moving down a row.
	dropDiagonal dropMode = iota
	// dropStraight returns to the row's original left before moving down.
	dropStraight
)

// probeSearch walks candidate positions for r until one clears every
// obstacle: the start position, one step right, one step left, then down a
// row. Steps are the candidate's own size plus gap. Every failed row moves the
// candidate strictly downward, so the walk ends once it passes the lowest
// obstacle. A row step that does not change top (coordinates too large for
// the step to register, or a zero step) returns ErrInvalidRect. When
// allowNegative is false, left probes that would leave the candidate at a
// negative x are skipped.
func probeSearch(r model.Rect, obstacles []model.Rect, gap float64, mode dropMode, allowNegative bool) (model.Rect, error) {
	stepX := r.Width + gap
	stepY := r.Height + gap

	for {
		if !IntersectsAny(r, obstacles) {
			return r, nil
		}

		right := r.Translate(stepX, 0)
		if !IntersectsAny(right, obstacles) {
			return right, nil
		}

		left := r.Translate(-stepX, 0)
		if (allowNegative || left.Left >= 0) && !IntersectsAny(left, obstacles) {
			return left, nil
		}

		top := r.Top
		if mode == dropDiagonal {
			r = right
		}
		r = r.Translate(0, stepY)
		if !(r.Top > top) || !r.IsFinite() {
			return model.Rect{}, fmt.Errorf("%w: search cannot move below top %g in steps of %g", ErrInvalidRect, top, stepY)
		}
	}
}

// validateObstacles rejects obstacle sets the search cannot terminate on.
func validateObstacles(obstacles []model.Rect) error {
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("%w: obstacle %d: %v", ErrInvalidRect, i, err)
		}
	}
	return nil
}
