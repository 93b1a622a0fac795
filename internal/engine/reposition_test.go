package engine

import (
	"math"
	"testing"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapValue(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		size float64
		want float64
	}{
		{"rounds down", 10, 25, 0},
		{"rounds up", 40, 25, 50},
		{"half rounds away from zero", 12.5, 25, 25},
		{"aligned is unchanged", 75, 25, 75},
		{"negative", -30, 25, -25},
		{"zero size disables", 13, 0, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapValue(tt.v, tt.size))
		})
	}
}

func TestSnapRect_Idempotent(t *testing.T) {
	grid := model.Grid{SnapToGrid: true, Size: 25}
	for _, r := range []model.Rect{rect(13, 37, 100, 100), rect(0, 0, 10, 10), rect(262, 1001, 5, 5)} {
		once := SnapRect(r, grid)
		assert.Equal(t, once, SnapRect(once, grid))
		assert.Equal(t, r.Width, once.Width)
	}

	off := model.Grid{SnapToGrid: false, Size: 25}
	assert.Equal(t, rect(13, 37, 1, 1), SnapRect(rect(13, 37, 1, 1), off))
}

func TestMoveRects(t *testing.T) {
	in := []model.Rect{rect(10, 10, 100, 100), rect(200, 40, 100, 100)}

	moved, err := MoveRects(in, -30, 7, model.Grid{SnapToGrid: true, Size: 25})

	require.NoError(t, err)
	assert.Equal(t, rect(0, 25, 100, 100), moved[0], "clamped then snapped")
	assert.Equal(t, rect(175, 50, 100, 100), moved[1])
	assert.Equal(t, 10.0, in[0].Left, "input must not be modified")

	_, err = MoveRects(in, math.NaN(), 0, model.Grid{})
	assert.Error(t, err)

	_, err = MoveRects(in, 1, 1, model.Grid{SnapToGrid: true})
	assert.ErrorIs(t, err, ErrInvalidGridSize)
}

func TestReposition(t *testing.T) {
	got, err := Reposition(rect(10, 19, 10, 10), []model.Rect{rect(10, 10, 10, 10)}, 3, model.Grid{})
	require.NoError(t, err)
	assert.Equal(t, rect(10, 26, 10, 10), got)

	got, err = Reposition(rect(500, 500, 10, 10), []model.Rect{rect(10, 10, 10, 10)}, 3, model.Grid{})
	require.NoError(t, err)
	assert.Equal(t, rect(500, 500, 10, 10), got, "no overlap leaves the rect alone")

	_, err = Reposition(rect(0, 0, 10, 10), []model.Rect{rect(math.NaN(), 0, 1, 1)}, 0, model.Grid{})
	assert.ErrorIs(t, err, ErrInvalidRect)
}

func TestMoveSelected(t *testing.T) {
	a := model.NewPassage("A", rect(0, 0, 100, 100))
	a.Selected = true
	b := model.NewPassage("B", rect(200, 0, 100, 100))
	story := storyWith(t, a, b)

	rects, err := MoveSelected(story, 150, 0, model.DefaultGap)

	require.NoError(t, err)
	require.Len(t, rects, 1)
	// Dropped onto B, A is pushed back left along the shorter axis.
	assert.Equal(t, rect(50, 0, 100, 100), rects[a.ID])

	story.SetRects(rects)
	moved, _ := story.PassageByID(a.ID)
	assert.Equal(t, 50.0, moved.Left)
}

func TestConnector(t *testing.T) {
	start, end, ok := Connector(rect(0, 0, 100, 100), rect(200, 0, 100, 100))

	require.True(t, ok)
	assert.Equal(t, model.Point{Left: 100, Top: 50}, start)
	assert.Equal(t, model.Point{Left: 200, Top: 50}, end)

	_, _, ok = Connector(rect(0, 0, 100, 100), rect(50, 50, 100, 100))
	assert.False(t, ok, "overlapping rects have no connector")
}

func TestConnector_Vertical(t *testing.T) {
	start, end, ok := Connector(rect(0, 0, 100, 100), rect(0, 300, 100, 100))

	require.True(t, ok)
	assert.Equal(t, model.Point{Left: 50, Top: 100}, start)
	assert.Equal(t, model.Point{Left: 50, Top: 300}, end)
}

func TestStoryConnectors(t *testing.T) {
	a := model.NewPassage("A", rect(0, 0, 100, 100))
	a.Links = []string{"B", "A", "Missing", "B"}
	b := model.NewPassage("B", rect(200, 0, 100, 100))
	b.Links = []string{"A"}
	story := storyWith(t, a, b)

	links := StoryConnectors(story)

	require.Len(t, links, 2)
	assert.Equal(t, a.ID, links[0].FromID)
	assert.Equal(t, b.ID, links[0].ToID)
	assert.Equal(t, b.ID, links[1].FromID)
	assert.Equal(t, model.Point{Left: 200, Top: 50}, links[1].Start)
	assert.Equal(t, model.Point{Left: 100, Top: 50}, links[1].End)
}
