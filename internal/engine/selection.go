package engine

import (
	"math"

	"github.com/piwi3910/StoryMap/internal/model"
)

// DragRect returns the rect spanned by two corner points in any order.
func DragRect(a, b model.Point) model.Rect {
	left, top := math.Min(a.Left, b.Left), math.Min(a.Top, b.Top)
	return model.Rect{
		Left:   left,
		Top:    top,
		Width:  math.Abs(a.Left - b.Left),
		Height: math.Abs(a.Top - b.Top),
	}
}

// HitPassages returns the IDs of passages whose rect intersects r, in
// passage order.
func HitPassages(passages []model.Passage, r model.Rect) []string {
	var ids []string
	for _, p := range passages {
		if Intersects(r, p.Rect) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SelectInRect computes the selection change produced by a drag rect in
// logical coordinates. In exclusive mode hit passages are selected and every
// other passage is deselected. In additive mode hits are added and nothing
// is removed. Passages already in their target state are left out.
func SelectInRect(passages []model.Passage, r model.Rect, mode model.SelectionMode) model.SelectionChange {
	hits := toSet(HitPassages(passages, r))
	return diffSelection(passages, hits, mode)
}

// Marquee tracks one drag-selection gesture from pointer down to pointer up.
// Update fires OnPreview with the IDs that would be selected if the gesture
// ended now; End fires OnCommit exactly once with the resulting change.
// Neither call modifies the story: committing is up to the callbacks.
type Marquee struct {
	OnPreview func(selected []string)
	OnCommit  func(change model.SelectionChange)

	passages []model.Passage
	mode     model.SelectionMode
	zoom     float64
	rect     model.Rect
	hits     map[string]bool
	active   bool
}

// BeginMarquee starts a gesture over a snapshot of the story's passages.
// zoom converts screen rects to logical ones; a non-positive or non-finite
// zoom is treated as 1.
func BeginMarquee(story model.Story, mode model.SelectionMode, zoom float64) *Marquee {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1
	}
	passages := make([]model.Passage, len(story.Passages))
	copy(passages, story.Passages)
	return &Marquee{
		passages: passages,
		mode:     mode,
		zoom:     zoom,
		hits:     map[string]bool{},
		active:   true,
	}
}

// Active reports whether the gesture has not ended yet.
func (m *Marquee) Active() bool { return m.active }

// Mode returns the selection mode the gesture was started with.
func (m *Marquee) Mode() model.SelectionMode { return m.mode }

// Rect returns the current drag rect in logical coordinates.
func (m *Marquee) Rect() model.Rect { return m.rect }

// Update moves the drag rect to screen (in screen pixels) and fires
// OnPreview. It returns the previewed selection. A negative width or height
// spans back from the given corner, as when dragging up or left. Calls after
// End and rects with non-finite fields are ignored.
func (m *Marquee) Update(screen model.Rect) []string {
	if !m.active || !screen.IsFinite() {
		return nil
	}
	screen = DragRect(
		model.Point{Left: screen.Left, Top: screen.Top},
		model.Point{Left: screen.Right(), Top: screen.Bottom()},
	)
	m.rect = model.Rect{
		Left:   screen.Left / m.zoom,
		Top:    screen.Top / m.zoom,
		Width:  screen.Width / m.zoom,
		Height: screen.Height / m.zoom,
	}
	m.hits = toSet(HitPassages(m.passages, m.rect))

	preview := m.Preview()
	if m.OnPreview != nil {
		m.OnPreview(preview)
	}
	return preview
}

// Preview returns the IDs that would be selected if the gesture ended now,
// in passage order.
func (m *Marquee) Preview() []string {
	var ids []string
	for _, p := range m.passages {
		if m.hits[p.ID] || (m.mode == model.SelectAdditive && p.Selected) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// End finishes the gesture, fires OnCommit and returns the change. A
// gesture that never received an Update hits nothing, so an exclusive click
// on empty canvas clears the selection. Calling End twice returns an empty
// change without firing OnCommit again.
func (m *Marquee) End() model.SelectionChange {
	if !m.active {
		return model.SelectionChange{}
	}
	m.active = false

	change := diffSelection(m.passages, m.hits, m.mode)
	if m.OnCommit != nil {
		m.OnCommit(change)
	}
	return change
}

func diffSelection(passages []model.Passage, hits map[string]bool, mode model.SelectionMode) model.SelectionChange {
	var change model.SelectionChange
	for _, p := range passages {
		switch {
		case hits[p.ID] && !p.Selected:
			change.Selected = append(change.Selected, p.ID)
		case !hits[p.ID] && p.Selected && mode == model.SelectExclusive:
			change.Deselected = append(change.Deselected, p.ID)
		}
	}
	return change
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
