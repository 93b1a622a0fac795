package engine

import (
	"github.com/piwi3910/StoryMap/internal/model"
)

// Link is a resolved connector between two passages, clipped to their borders.
type Link struct {
	FromID string
	ToID   string
	Start  model.Point
	End    model.Point
}

// Connector returns the segment joining the centres of from and to, cut where
// it leaves from and where it enters to. ok is false when the rects overlap
// so that no part of the segment lies between them.
func Connector(from, to model.Rect) (start, end model.Point, ok bool) {
	if Intersects(from, to) {
		return model.Point{}, model.Point{}, false
	}
	fc, tc := from.Center(), to.Center()

	start, ok = IntersectionWithLine(from, fc, tc)
	if !ok {
		return model.Point{}, model.Point{}, false
	}
	end, ok = IntersectionWithLine(to, fc, tc)
	if !ok {
		return model.Point{}, model.Point{}, false
	}
	return start, end, true
}

// StoryConnectors resolves every passage's Links by name and returns the
// clipped connectors. Self links, broken links and overlapping pairs are
// skipped. Each directed pair appears once.
func StoryConnectors(story model.Story) []Link {
	byName := make(map[string]model.Passage, len(story.Passages))
	for _, p := range story.Passages {
		byName[p.Name] = p
	}

	var links []Link
	seen := map[[2]string]bool{}
	for _, from := range story.Passages {
		for _, name := range from.Links {
			to, ok := byName[name]
			if !ok || to.ID == from.ID {
				continue
			}
			key := [2]string{from.ID, to.ID}
			if seen[key] {
				continue
			}
			seen[key] = true

			start, end, ok := Connector(from.Rect, to.Rect)
			if !ok {
				continue
			}
			links = append(links, Link{FromID: from.ID, ToID: to.ID, Start: start, End: end})
		}
	}
	return links
}
