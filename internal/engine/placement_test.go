package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noGrid() model.Grid { return model.Grid{} }

func storyWith(t *testing.T, passages ...model.Passage) model.Story {
	t.Helper()
	s := model.NewStory("Test")
	require.NoError(t, s.AddPassages(passages...))
	return s
}

func TestPlaceNew_EmptyStoryClampsToOrigin(t *testing.T) {
	p := New(model.DefaultSettings())

	r, err := p.PlaceNew(model.Point{Left: 50, Top: 50}, nil, noGrid())

	require.NoError(t, err)
	assert.Equal(t, rect(0, 0, 100, 100), r)
}

func TestPlaceNew_CentresOnAnchor(t *testing.T) {
	p := New(model.DefaultSettings())

	r, err := p.PlaceNew(model.Point{Left: 500, Top: 300}, nil, noGrid())

	require.NoError(t, err)
	assert.Equal(t, rect(450, 250, 100, 100), r)
}

func TestPlaceNew_ProbesRight(t *testing.T) {
	p := New(model.DefaultSettings())
	obstacles := []model.Rect{rect(0, 0, 100, 100)}

	r, err := p.PlaceNew(model.Point{Left: 50, Top: 50}, obstacles, noGrid())

	require.NoError(t, err)
	assert.Equal(t, rect(125, 0, 100, 100), r)
}

func TestPlaceNew_ProbesLeftFromOriginalPosition(t *testing.T) {
	p := New(model.DefaultSettings())
	obstacles := []model.Rect{rect(300, 300, 100, 100), rect(425, 300, 100, 100)}

	r, err := p.PlaceNew(model.Point{Left: 350, Top: 350}, obstacles, noGrid())

	require.NoError(t, err)
	assert.Equal(t, rect(175, 300, 100, 100), r)
}

func TestPlaceNew_DropsDiagonally(t *testing.T) {
	p := New(model.DefaultSettings())
	// Left probe from the origin would go negative and is skipped.
	obstacles := []model.Rect{rect(0, 0, 100, 100), rect(125, 0, 100, 100)}

	r, err := p.PlaceNew(model.Point{Left: 50, Top: 50}, obstacles, noGrid())

	require.NoError(t, err)
	assert.Equal(t, rect(125, 125, 100, 100), r)
}

func TestPlaceNew_SnapsBeforeSearch(t *testing.T) {
	p := New(model.DefaultSettings())
	grid := model.Grid{SnapToGrid: true, Size: 25}

	r, err := p.PlaceNew(model.Point{Left: 90, Top: 90}, nil, grid)

	require.NoError(t, err)
	assert.Equal(t, rect(50, 50, 100, 100), r)

	// Probe offsets are multiples of the grid size, so results stay aligned.
	r, err = p.PlaceNew(model.Point{Left: 90, Top: 90}, []model.Rect{r}, grid)
	require.NoError(t, err)
	assert.Equal(t, 0.0, math.Mod(r.Left, 25))
	assert.Equal(t, 0.0, math.Mod(r.Top, 25))
}

func TestPlaceNew_Errors(t *testing.T) {
	p := New(model.DefaultSettings())

	_, err := p.PlaceNew(model.Point{Left: math.NaN(), Top: 0}, nil, noGrid())
	assert.ErrorIs(t, err, ErrNonFiniteAnchor)

	_, err = p.PlaceNew(model.Point{Left: 0, Top: math.Inf(-1)}, nil, noGrid())
	assert.ErrorIs(t, err, ErrNonFiniteAnchor)

	_, err = p.PlaceNew(model.Point{}, nil, model.Grid{SnapToGrid: true, Size: 0})
	assert.ErrorIs(t, err, ErrInvalidGridSize)

	_, err = p.PlaceNew(model.Point{}, nil, model.Grid{SnapToGrid: true, Size: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidGridSize)

	_, err = p.PlaceNew(model.Point{}, []model.Rect{rect(math.Inf(1), 0, 1, 1)}, noGrid())
	assert.ErrorIs(t, err, ErrInvalidRect)

	_, err = New(model.PlacementSettings{PassageWidth: 100}).PlaceNew(model.Point{}, nil, noGrid())
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestPlaceNew_NeverOverlaps(t *testing.T) {
	p := New(model.DefaultSettings())
	rng := rand.New(rand.NewSource(42))

	var obstacles []model.Rect
	for i := 0; i < 200; i++ {
		anchor := model.Point{Left: float64(rng.Intn(600)), Top: float64(rng.Intn(600))}
		r, err := p.PlaceNew(anchor, obstacles, noGrid())
		require.NoError(t, err)

		require.False(t, IntersectsAny(r, obstacles), "placement %d overlaps: %+v", i, r)
		require.GreaterOrEqual(t, r.Left, 0.0)
		require.GreaterOrEqual(t, r.Top, 0.0)
		obstacles = append(obstacles, r)
	}
}

func TestCreateUntitledPassage_Naming(t *testing.T) {
	p := New(model.DefaultSettings())
	story := storyWith(t, model.NewPassage("Untitled Passage", rect(0, 0, 100, 100)))

	passage, err := p.CreateUntitledPassage(story, model.Point{Left: 50, Top: 50})

	require.NoError(t, err)
	assert.Equal(t, "Untitled Passage 1", passage.Name)
	assert.Equal(t, rect(125, 0, 100, 100), passage.Rect)
	assert.NotEmpty(t, passage.ID)
	assert.Len(t, story.Passages, 1, "story snapshot must not be modified")
}

func TestCreateUntitledPassage_UsesStoryGrid(t *testing.T) {
	p := New(model.DefaultSettings())
	story := model.NewStory("Test")
	story.SnapToGrid = true
	story.GridSize = 0

	_, err := p.CreateUntitledPassage(story, model.Point{Left: 10, Top: 10})
	assert.ErrorIs(t, err, ErrInvalidGridSize)
}

func TestCreateNamedPassage(t *testing.T) {
	p := New(model.DefaultSettings())
	story := storyWith(t, model.NewPassage("Start", rect(0, 0, 100, 100)))

	_, err := p.CreateNamedPassage(story, "Start", model.Point{})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = p.CreateNamedPassage(story, "", model.Point{})
	assert.Error(t, err)

	passage, err := p.CreateNamedPassage(story, "Cave", model.Point{Left: 50, Top: 50})
	require.NoError(t, err)
	assert.Equal(t, "Cave", passage.Name)
	assert.Equal(t, rect(125, 0, 100, 100), passage.Rect)
}

// The row formulas put three links under a 100x100 source at the origin at
// top 125 and lefts -125, 0, 125.
func TestPlaceRow_ThreeLinksUnderOriginSource(t *testing.T) {
	p := New(model.DefaultSettings())
	source := rect(0, 0, 100, 100)

	rects, err := p.PlaceRow(source, 3, []model.Rect{source})

	require.NoError(t, err)
	require.Len(t, rects, 3)
	assert.Equal(t, rect(-125, 125, 100, 100), rects[0])
	assert.Equal(t, rect(0, 125, 100, 100), rects[1])
	assert.Equal(t, rect(125, 125, 100, 100), rects[2])
}

func TestPlaceRow_MovesAsRigidBlock(t *testing.T) {
	p := New(model.DefaultSettings())
	source := rect(0, 0, 100, 100)
	obstacles := []model.Rect{source, rect(0, 150, 100, 100)}

	rects, err := p.PlaceRow(source, 3, obstacles)

	require.NoError(t, err)
	require.Len(t, rects, 3)
	// The right probe steps by the whole row width plus gap.
	assert.Equal(t, 250.0, rects[0].Left)
	for i := 1; i < len(rects); i++ {
		assert.Equal(t, 125.0, rects[i].Left-rects[i-1].Left)
		assert.Equal(t, rects[0].Top, rects[i].Top)
	}
	for _, r := range rects {
		assert.False(t, IntersectsAny(r, obstacles))
	}
}

func TestPlaceRow_DropsStraightDown(t *testing.T) {
	p := New(model.DefaultSettings())
	source := rect(0, 0, 100, 100)
	obstacles := []model.Rect{
		source,
		rect(0, 125, 100, 100),
		rect(125, 125, 100, 100),
		rect(-125, 125, 100, 100),
	}

	rects, err := p.PlaceRow(source, 1, obstacles)

	require.NoError(t, err)
	require.Len(t, rects, 1)
	assert.Equal(t, rect(0, 250, 100, 100), rects[0])
}

// placeWithin runs fn and fails the test if it has not returned within a
// few seconds.
func placeWithin(t *testing.T, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("placement did not terminate")
		return nil
	}
}

func TestPlaceNew_HugeCoordinatesReturnError(t *testing.T) {
	p := New(model.DefaultSettings())
	anchor := model.Point{Left: 1e20, Top: 1e20}
	obstacles := []model.Rect{rect(1e20-1e6, 1e20-1e6, 2e6, 2e6)}

	err := placeWithin(t, func() error {
		_, err := p.PlaceNew(anchor, obstacles, noGrid())
		return err
	})

	assert.ErrorIs(t, err, ErrInvalidRect)
}

func TestPlaceRow_HugeCoordinatesReturnError(t *testing.T) {
	p := New(model.DefaultSettings())
	source := rect(1e20, 1e20, 100, 100)
	obstacles := []model.Rect{source, rect(1e20-1e6, 1e20-1e6, 2e6, 2e6)}

	err := placeWithin(t, func() error {
		_, err := p.PlaceRow(source, 2, obstacles)
		return err
	})

	assert.ErrorIs(t, err, ErrInvalidRect)
}

func TestPlaceRow_EmptyIsNoop(t *testing.T) {
	p := New(model.DefaultSettings())

	rects, err := p.PlaceRow(rect(0, 0, 100, 100), 0, nil)

	assert.NoError(t, err)
	assert.Nil(t, rects)
}

func TestPlaceRow_RigidUnderRandomObstacles(t *testing.T) {
	p := New(model.DefaultSettings())
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		var obstacles []model.Rect
		for j := 0; j < 20; j++ {
			obstacles = append(obstacles, rect(float64(rng.Intn(800)-400), float64(rng.Intn(800)), 100, 100))
		}
		count := 1 + rng.Intn(5)

		rects, err := p.PlaceRow(obstacles[0], count, obstacles)
		require.NoError(t, err)
		require.Len(t, rects, count)

		for k, r := range rects {
			require.False(t, IntersectsAny(r, obstacles))
			if k > 0 {
				require.Equal(t, 125.0, r.Left-rects[k-1].Left)
			}
		}
	}
}

func TestNewLinkNames(t *testing.T) {
	story := storyWith(t,
		model.NewPassage("Start", rect(0, 0, 100, 100)),
		model.NewPassage("Cave", rect(200, 0, 100, 100)),
	)

	got := NewLinkNames(story, []string{"Forest", "Cave", "", "River", "Forest", "Start", "Hill"})

	assert.Equal(t, []string{"Forest", "River", "Hill"}, got)
	assert.Empty(t, NewLinkNames(story, []string{"Cave", "Start"}))
}

func TestCreateLinkedPassages(t *testing.T) {
	p := New(model.DefaultSettings())
	source := model.NewPassage("Start", rect(0, 0, 100, 100))
	story := storyWith(t, source)

	passages, err := p.CreateLinkedPassages(story, source.ID, []string{"A", "B", "A", "Start", "C"})

	require.NoError(t, err)
	require.Len(t, passages, 3)
	assert.Equal(t, "A", passages[0].Name)
	assert.Equal(t, "B", passages[1].Name)
	assert.Equal(t, "C", passages[2].Name)
	assert.Equal(t, -125.0, passages[0].Left)
	assert.Equal(t, 125.0, passages[0].Top)

	require.NoError(t, story.AddPassages(passages...), "new names must be unique within the story")
}

func TestCreateLinkedPassages_NoNewLinks(t *testing.T) {
	p := New(model.DefaultSettings())
	source := model.NewPassage("Start", rect(0, 0, 100, 100))
	story := storyWith(t, source)

	passages, err := p.CreateLinkedPassages(story, source.ID, []string{"Start"})

	assert.NoError(t, err)
	assert.Nil(t, passages)
}

func TestCreateLinkedPassages_UnknownSource(t *testing.T) {
	p := New(model.DefaultSettings())

	_, err := p.CreateLinkedPassages(model.NewStory("Test"), "missing", []string{"A"})

	assert.ErrorIs(t, err, ErrPassageNotFound)
}

func TestPlacerValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings model.PlacementSettings
		wantErr  bool
	}{
		{"defaults", model.DefaultSettings(), false},
		{"zero gap", model.PlacementSettings{PassageWidth: 100, PassageHeight: 100}, false},
		{"zero width", model.PlacementSettings{PassageHeight: 100, Gap: 25}, true},
		{"negative gap", model.PlacementSettings{PassageWidth: 100, PassageHeight: 100, Gap: -1}, true},
		{"infinite gap", model.PlacementSettings{PassageWidth: 100, PassageHeight: 100, Gap: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.settings).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
