package importer

import (
	"fmt"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
)

// MergeResult summarises what Merge added to a story.
type MergeResult struct {
	Added   int
	Placed  int      // Passages positioned by the placer
	Renamed []string // "old -> new" for names already taken in the story
}

// Merge adds the imported passages to story. Names that clash with existing
// passages get the next free numbered variant. Passages imported without
// coordinates keep their size and are positioned with the placer's gap
// against everything already on the map, in import order. The story is left
// untouched on error.
func Merge(story *model.Story, result ImportResult, placer *engine.Placer) (MergeResult, error) {
	var mr MergeResult
	if len(result.Passages) == 0 {
		return mr, nil
	}

	work := *story
	work.Passages = append([]model.Passage(nil), story.Passages...)
	names := work.PassageNames()

	incoming := make([]model.Passage, 0, len(result.Passages))
	for _, p := range result.Passages {
		if work.HasPassageNamed(p.Name) {
			renamed := model.UniqueName(p.Name, names)
			mr.Renamed = append(mr.Renamed, fmt.Sprintf("%s -> %s", p.Name, renamed))
			p.Name = renamed
		}
		names = append(names, p.Name)
		incoming = append(incoming, p)
	}

	// Placed passages go in first so the placer sees them as obstacles.
	var pending []model.Passage
	for _, p := range incoming {
		if result.IsPlaced(p.ID) {
			if err := work.AddPassages(p); err != nil {
				return MergeResult{}, err
			}
			continue
		}
		pending = append(pending, p)
	}

	for _, p := range pending {
		// Keep the imported size; only the position comes from the placer.
		sized := engine.New(model.PlacementSettings{PassageWidth: p.Width, PassageHeight: p.Height, Gap: placer.Settings.Gap})
		anchor := model.Point{Left: p.Width / 2, Top: p.Height / 2}
		r, err := sized.PlaceNew(anchor, work.Obstacles(), work.Grid())
		if err != nil {
			return MergeResult{}, fmt.Errorf("failed to place %q: %w", p.Name, err)
		}
		p.Rect = r
		if err := work.AddPassages(p); err != nil {
			return MergeResult{}, err
		}
		mr.Placed++
	}

	mr.Added = len(incoming)
	*story = work
	return mr, nil
}
