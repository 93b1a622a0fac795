package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/StoryMap/internal/model"
)

// Errors returned by placement operations.
var (
	ErrNonFiniteAnchor  = errors.New("anchor point must have finite coordinates")
	ErrInvalidRect      = errors.New("invalid rect")
	ErrPassageNotFound  = errors.New("passage not found")
	ErrInvalidSettings  = errors.New("invalid placement settings")
	ErrInvalidGridSize  = model.ErrInvalidGridSize
	ErrDuplicateName    = model.ErrDuplicateName
	errEmptyPassageName = errors.New("empty passage name")
)

// Placer computes non-overlapping positions for new passages.
// It holds no story state; every call works on the snapshot it is given, so
// callers must commit one result before requesting the next placement.
type Placer struct {
	Settings model.PlacementSettings
}

func New(settings model.PlacementSettings) *Placer {
	return &Placer{Settings: settings}
}

// Validate checks that the settings describe a usable passage size and gap.
func (p *Placer) Validate() error {
	s := p.Settings
	size := model.Rect{Width: s.PassageWidth, Height: s.PassageHeight}
	if err := size.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.PassageWidth == 0 || s.PassageHeight == 0 {
		return fmt.Errorf("%w: passage size must be positive", ErrInvalidSettings)
	}
	if s.Gap < 0 || !(model.Point{Left: s.Gap}).IsFinite() {
		return fmt.Errorf("%w: gap must be a finite non-negative number", ErrInvalidSettings)
	}
	return nil
}

// PlaceNew returns a default-sized rect centred on anchor that does not
// intersect any obstacle. The centred position is clamped to non-negative
// coordinates and snapped to the grid before the search starts, and the
// search never moves it to a negative x.
func (p *Placer) PlaceNew(anchor model.Point, obstacles []model.Rect, grid model.Grid) (model.Rect, error) {
	if !anchor.IsFinite() {
		return model.Rect{}, fmt.Errorf("%w: got %+v", ErrNonFiniteAnchor, anchor)
	}
	if err := grid.Validate(); err != nil {
		return model.Rect{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Rect{}, err
	}
	if err := validateObstacles(obstacles); err != nil {
		return model.Rect{}, err
	}

	w, h := p.Settings.PassageWidth, p.Settings.PassageHeight
	r := model.Rect{
		Left:   anchor.Left - w/2,
		Top:    anchor.Top - h/2,
		Width:  w,
		Height: h,
	}
	r = SnapRect(clampOrigin(r), grid)

	return probeSearch(r, obstacles, p.Settings.Gap, dropDiagonal, false)
}

// CreateUntitledPassage places a new passage around anchor in story and
// names it with the first free "Untitled Passage" name. The story is not
// modified; the caller commits the returned passage.
func (p *Placer) CreateUntitledPassage(story model.Story, anchor model.Point) (model.Passage, error) {
	r, err := p.PlaceNew(anchor, story.Obstacles(), story.Grid())
	if err != nil {
		return model.Passage{}, err
	}
	name := model.UniqueName(model.DefaultPassageName, story.PassageNames())
	return model.NewPassage(name, r), nil
}

// PlaceRow lays out count default-sized rects in a row centred under source,
// spaced PassageWidth+Gap apart, and moves the whole row as one block until
// its bounding box clears every obstacle. It returns nil when count < 1.
func (p *Placer) PlaceRow(source model.Rect, count int, obstacles []model.Rect) ([]model.Rect, error) {
	if count < 1 {
		return nil, nil
	}
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("%w: source: %v", ErrInvalidRect, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateObstacles(obstacles); err != nil {
		return nil, err
	}

	w, h, gap := p.Settings.PassageWidth, p.Settings.PassageHeight, p.Settings.Gap
	rowWidth := float64(count)*w + float64(count-1)*gap

	row := model.Rect{
		Left:   source.Left + (source.Width-rowWidth)/2,
		Top:    source.Top + source.Height + gap,
		Width:  rowWidth,
		Height: h,
	}
	row, err := probeSearch(row, obstacles, gap, dropStraight, true)
	if err != nil {
		return nil, err
	}

	rects := make([]model.Rect, count)
	for i := range rects {
		rects[i] = model.Rect{
			Left:   row.Left + float64(i)*(w+gap),
			Top:    row.Top,
			Width:  w,
			Height: h,
		}
	}
	return rects, nil
}

// NewLinkNames filters link target names down to the passages that must be
// created: duplicates and empty names are dropped, as are names of passages
// that already exist. First-appearance order is kept.
func NewLinkNames(story model.Story, links []string) []string {
	seen := make(map[string]bool, len(story.Passages)+len(links))
	for _, name := range story.PassageNames() {
		seen[name] = true
	}
	var names []string
	for _, l := range links {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		names = append(names, l)
	}
	return names
}

// CreateLinkedPassages builds passages for every link target of the source
// passage that does not exist yet, laid out as a row under the source. The
// story is not modified. No new names means no passages and no error.
func (p *Placer) CreateLinkedPassages(story model.Story, sourceID string, links []string) ([]model.Passage, error) {
	source, ok := story.PassageByID(sourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPassageNotFound, sourceID)
	}

	names := NewLinkNames(story, links)
	if len(names) == 0 {
		return nil, nil
	}

	rects, err := p.PlaceRow(source.Rect, len(names), story.Obstacles())
	if err != nil {
		return nil, err
	}

	passages := make([]model.Passage, len(names))
	for i, name := range names {
		passages[i] = model.NewPassage(name, rects[i])
	}
	return passages, nil
}

// CreateNamedPassage places a passage with an explicit name around anchor.
func (p *Placer) CreateNamedPassage(story model.Story, name string, anchor model.Point) (model.Passage, error) {
	if name == "" {
		return model.Passage{}, errEmptyPassageName
	}
	if story.HasPassageNamed(name) {
		return model.Passage{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r, err := p.PlaceNew(anchor, story.Obstacles(), story.Grid())
	if err != nil {
		return model.Passage{}, err
	}
	return model.NewPassage(name, r), nil
}
