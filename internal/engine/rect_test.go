package engine

import (
	"math/rand"
	"testing"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(left, top, w, h float64) model.Rect {
	return model.Rect{Left: left, Top: top, Width: w, Height: h}
}

func TestIntersects_TouchingEdges(t *testing.T) {
	a := rect(10, 10, 10, 10)

	assert.True(t, Intersects(a, rect(10, 10, 10, 10)), "identical rects")
	assert.True(t, Intersects(a, rect(20, 10, 10, 10)), "touching on the right edge")
	assert.False(t, Intersects(a, rect(21, 10, 10, 10)), "one unit apart")
}

func TestIntersects_BoundaryInclusion(t *testing.T) {
	a := rect(0, 0, 10, 10)
	tests := []struct {
		name     string
		touching model.Rect
		apart    model.Rect
	}{
		{"left", rect(-10, 0, 10, 10), rect(-11, 0, 10, 10)},
		{"right", rect(10, 0, 10, 10), rect(11, 0, 10, 10)},
		{"top", rect(0, -10, 10, 10), rect(0, -11, 10, 10)},
		{"bottom", rect(0, 10, 10, 10), rect(0, 11, 10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Intersects(a, tt.touching))
			assert.False(t, Intersects(a, tt.apart))
		})
	}
}

func TestIntersects_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := rect(float64(rng.Intn(100)), float64(rng.Intn(100)), float64(rng.Intn(50)), float64(rng.Intn(50)))
		b := rect(float64(rng.Intn(100)), float64(rng.Intn(100)), float64(rng.Intn(50)), float64(rng.Intn(50)))
		require.Equal(t, Intersects(a, b), Intersects(b, a), "a=%+v b=%+v", a, b)
	}
}

func TestIntersectsAny(t *testing.T) {
	obstacles := []model.Rect{rect(0, 0, 10, 10), rect(100, 100, 10, 10)}

	assert.True(t, IntersectsAny(rect(105, 105, 1, 1), obstacles))
	assert.False(t, IntersectsAny(rect(50, 50, 10, 10), obstacles))
	assert.False(t, IntersectsAny(rect(0, 0, 10, 10), nil))
}

func TestIntersectionWithLine(t *testing.T) {
	r := rect(10, 10, 10, 10)

	tests := []struct {
		name   string
		start  model.Point
		end    model.Point
		want   model.Point
		wantOK bool
	}{
		{"crosses left edge", model.Point{Left: 0, Top: 15}, model.Point{Left: 15, Top: 15}, model.Point{Left: 10, Top: 15}, true},
		{"crosses right edge", model.Point{Left: 15, Top: 12}, model.Point{Left: 30, Top: 12}, model.Point{Left: 20, Top: 12}, true},
		{"crosses top edge", model.Point{Left: 14, Top: 0}, model.Point{Left: 14, Top: 15}, model.Point{Left: 14, Top: 10}, true},
		{"crosses bottom edge", model.Point{Left: 16, Top: 15}, model.Point{Left: 16, Top: 40}, model.Point{Left: 16, Top: 20}, true},
		{"left edge wins over right", model.Point{Left: 0, Top: 15}, model.Point{Left: 30, Top: 15}, model.Point{Left: 10, Top: 15}, true},
		{"entirely outside", model.Point{Left: 0, Top: 0}, model.Point{Left: 5, Top: 5}, model.Point{}, false},
		{"entirely inside", model.Point{Left: 12, Top: 12}, model.Point{Left: 18, Top: 18}, model.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectionWithLine(r, tt.start, tt.end)
			require.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
		})
	}
}

func TestDisplace_Scenario(t *testing.T) {
	movable := rect(10, 19, 10, 10)
	stationary := rect(10, 10, 10, 10)

	got := Displace(movable, stationary, 3)

	assert.Equal(t, rect(10, 26, 10, 10), got)
	assert.Equal(t, 19.0, movable.Top, "input must not be modified")
}

func TestDisplace_NoOverlapUnchanged(t *testing.T) {
	movable := rect(0, 0, 10, 10)
	assert.Equal(t, movable, Displace(movable, rect(50, 50, 10, 10), 3))
	// Exactly spacing*2 apart: expanded rects touch but do not overlap.
	assert.Equal(t, movable, Displace(movable, rect(16, 0, 10, 10), 3))
}

func TestDisplace_PicksShorterAxis(t *testing.T) {
	tests := []struct {
		name       string
		movable    model.Rect
		stationary model.Rect
		want       model.Rect
	}{
		{"small x overlap moves left", rect(0, 0, 10, 10), rect(8, 0, 10, 10), rect(-2, 0, 10, 10)},
		{"small x overlap moves right", rect(8, 0, 10, 10), rect(0, 0, 10, 10), rect(10, 0, 10, 10)},
		{"small y overlap moves up", rect(0, 0, 10, 10), rect(0, 9, 10, 10), rect(0, -1, 10, 10)},
		{"equal overlap moves vertically", rect(0, 0, 10, 10), rect(5, 5, 10, 10), rect(0, -5, 10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Displace(tt.movable, tt.stationary, 0)
			assert.Equal(t, tt.want, got)
			changedX := got.Left != tt.movable.Left
			changedY := got.Top != tt.movable.Top
			assert.False(t, changedX && changedY, "displacement must be single-axis")
		})
	}
}

func TestDisplace_Separates(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const spacing = 5.0
	for i := 0; i < 300; i++ {
		movable := rect(float64(rng.Intn(60)), float64(rng.Intn(60)), float64(1+rng.Intn(40)), float64(1+rng.Intn(40)))
		stationary := rect(float64(rng.Intn(60)), float64(rng.Intn(60)), float64(1+rng.Intn(40)), float64(1+rng.Intn(40)))

		got := Displace(movable, stationary, spacing)

		m, s := got.Expand(spacing), stationary.Expand(spacing)
		overlapX := min(m.Right(), s.Right()) - max(m.Left, s.Left)
		overlapY := min(m.Bottom(), s.Bottom()) - max(m.Top, s.Top)
		require.False(t, overlapX > 0 && overlapY > 0, "movable=%+v stationary=%+v got=%+v", movable, stationary, got)
	}
}
