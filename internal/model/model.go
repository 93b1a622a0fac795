package model

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
)

// Errors reported by story and grid validation.
var (
	ErrDuplicateName   = errors.New("duplicate passage name")
	ErrInvalidGridSize = errors.New("grid size must be a positive number")
)

// SelectionMode controls how a marquee drag combines with the existing selection.
type SelectionMode int

const (
	SelectExclusive SelectionMode = iota // Hits replace the previous selection
	SelectAdditive                       // Hits are added; nothing is deselected
)

func (m SelectionMode) String() string {
	switch m {
	case SelectAdditive:
		return "Additive"
	default:
		return "Exclusive"
	}
}

// Passage is a node of the story graph drawn as a card on the canvas.
type Passage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rect
	Selected bool     `json:"selected"`
	Text     string   `json:"text,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Links    []string `json:"links,omitempty"` // Target passage names, filled in by the link parser
}

func NewPassage(name string, r Rect) Passage {
	return Passage{
		ID:   uuid.New().String()[:8],
		Name: name,
		Rect: r,
	}
}

// Grid is the story-level snap-to-grid configuration.
type Grid struct {
	SnapToGrid bool    `json:"snap_to_grid"`
	Size       float64 `json:"size"`
}

// Validate rejects a grid that asks for snapping without a usable cell size.
// A grid with snapping disabled is always valid.
func (g Grid) Validate() error {
	if !g.SnapToGrid {
		return nil
	}
	if math.IsNaN(g.Size) || math.IsInf(g.Size, 0) || g.Size <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidGridSize, g.Size)
	}
	return nil
}

// PlacementSettings holds the geometry used when creating passages.
type PlacementSettings struct {
	PassageWidth  float64 `json:"passage_width"`
	PassageHeight float64 `json:"passage_height"`
	Gap           float64 `json:"gap"` // Minimum spacing between probed positions
}

// Default passage geometry and grid cell size in logical pixels.
const (
	DefaultPassageWidth  = 100.0
	DefaultPassageHeight = 100.0
	DefaultGap           = 25.0
	DefaultGridSize      = 25.0
)

func DefaultSettings() PlacementSettings {
	return PlacementSettings{
		PassageWidth:  DefaultPassageWidth,
		PassageHeight: DefaultPassageHeight,
		Gap:           DefaultGap,
	}
}

// Story owns a set of uniquely named passages and the grid settings.
type Story struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Passages   []Passage `json:"passages"`
	SnapToGrid bool      `json:"snap_to_grid"`
	GridSize   float64   `json:"grid_size"`
	Zoom       float64   `json:"zoom"`
}

func NewStory(name string) Story {
	return Story{
		ID:       uuid.New().String(),
		Name:     name,
		Passages: []Passage{},
		GridSize: DefaultGridSize,
		Zoom:     1,
	}
}

// Grid returns the story's grid configuration.
func (s Story) Grid() Grid {
	return Grid{SnapToGrid: s.SnapToGrid, Size: s.GridSize}
}

// PassageNames returns the names of all passages in story order.
func (s Story) PassageNames() []string {
	names := make([]string, len(s.Passages))
	for i, p := range s.Passages {
		names[i] = p.Name
	}
	return names
}

// Obstacles returns a snapshot of every passage rect.
func (s Story) Obstacles() []Rect {
	rects := make([]Rect, len(s.Passages))
	for i, p := range s.Passages {
		rects[i] = p.Rect
	}
	return rects
}

// PassageByID returns the passage with the given ID.
func (s Story) PassageByID(id string) (Passage, bool) {
	for _, p := range s.Passages {
		if p.ID == id {
			return p, true
		}
	}
	return Passage{}, false
}

// PassageByName returns the passage with the given name.
func (s Story) PassageByName(name string) (Passage, bool) {
	for _, p := range s.Passages {
		if p.Name == name {
			return p, true
		}
	}
	return Passage{}, false
}

func (s Story) HasPassageNamed(name string) bool {
	_, ok := s.PassageByName(name)
	return ok
}

// AddPassages appends passages, rejecting the whole batch if any name is
// already taken or repeated within the batch.
func (s *Story) AddPassages(passages ...Passage) error {
	taken := make(map[string]bool, len(s.Passages)+len(passages))
	for _, p := range s.Passages {
		taken[p.Name] = true
	}
	for _, p := range passages {
		if taken[p.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		taken[p.Name] = true
	}
	s.Passages = append(s.Passages, passages...)
	return nil
}

// SetRects replaces the rect of each passage whose ID appears in rects.
func (s *Story) SetRects(rects map[string]Rect) {
	for i := range s.Passages {
		if r, ok := rects[s.Passages[i].ID]; ok {
			s.Passages[i].Rect = r
		}
	}
}

// SelectedIDs returns the IDs of all selected passages in story order.
func (s Story) SelectedIDs() []string {
	var ids []string
	for _, p := range s.Passages {
		if p.Selected {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SelectionChange lists the passages whose selected flag must change.
type SelectionChange struct {
	Selected   []string `json:"selected"`
	Deselected []string `json:"deselected"`
}

// IsEmpty reports whether the change would leave the story untouched.
func (c SelectionChange) IsEmpty() bool {
	return len(c.Selected) == 0 && len(c.Deselected) == 0
}

// ApplySelection commits a selection change to the story.
func (s *Story) ApplySelection(change SelectionChange) {
	set := make(map[string]bool, len(change.Selected)+len(change.Deselected))
	for _, id := range change.Deselected {
		set[id] = false
	}
	for _, id := range change.Selected {
		set[id] = true
	}
	for i := range s.Passages {
		if v, ok := set[s.Passages[i].ID]; ok {
			s.Passages[i].Selected = v
		}
	}
}

// Validate checks passage geometry and name uniqueness.
func (s Story) Validate() error {
	seen := make(map[string]bool, len(s.Passages))
	for _, p := range s.Passages {
		if seen[p.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		seen[p.Name] = true
		if err := p.Rect.Validate(); err != nil {
			return fmt.Errorf("passage %q: %w", p.Name, err)
		}
	}
	return s.Grid().Validate()
}

// AddLinks appends link target names to the passage with the given ID,
// skipping names it already links to. It reports whether the passage exists.
func (s *Story) AddLinks(id string, names []string) bool {
	for i := range s.Passages {
		p := &s.Passages[i]
		if p.ID != id {
			continue
		}
		for _, name := range names {
			if name != "" && !slices.Contains(p.Links, name) {
				p.Links = append(p.Links, name)
			}
		}
		return true
	}
	return false
}

// RemovePassages deletes the passages with the given IDs.
func (s *Story) RemovePassages(ids []string) {
	s.Passages = slices.DeleteFunc(s.Passages, func(p Passage) bool {
		return slices.Contains(ids, p.ID)
	})
}

// RenamePassage gives a passage a new name and rewrites links that pointed
// at the old one. The new name must be unused.
func (s *Story) RenamePassage(id, name string) error {
	idx := slices.IndexFunc(s.Passages, func(p Passage) bool { return p.ID == id })
	if idx < 0 {
		return fmt.Errorf("passage %q not found", id)
	}
	old := s.Passages[idx].Name
	if name == old {
		return nil
	}
	if s.HasPassageNamed(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	s.Passages[idx].Name = name
	for i := range s.Passages {
		for j, l := range s.Passages[i].Links {
			if l == old {
				s.Passages[i].Links[j] = name
			}
		}
	}
	return nil
}
