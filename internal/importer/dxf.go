package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// segment is a line between two points, used for chaining loose LINE
// entities into closed outlines.
type segment struct {
	start model.Point
	end   model.Point
}

// outline is a closed polygon in DXF coordinates (y grows upward).
type outline []model.Point

func (o outline) bounds() model.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range o {
		minX, maxX = math.Min(minX, p.Left), math.Max(maxX, p.Left)
		minY, maxY = math.Min(minY, p.Top), math.Max(maxY, p.Top)
	}
	return model.Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// ImportDXF imports passages from a DXF storyboard sketch. Every closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs) becomes a passage whose
// rect is the shape's bounding box. The drawing is flipped so that DXF's
// upward y axis maps to the canvas' downward one, and moved so the topmost
// and leftmost shapes touch the origin.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []outline
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := make(outline, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				o = append(o, model.Point{Left: v[0], Top: v[1]})
			}
			if len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			outlines = append(outlines, outline{
				{Left: cx - r, Top: cy - r},
				{Left: cx + r, Top: cy - r},
				{Left: cx + r, Top: cy + r},
				{Left: cx - r, Top: cy + r},
			})

		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point{Left: e.Start[0], Top: e.Start[1]},
				end:   model.Point{Left: e.End[0], Top: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	outlines = append(outlines, chainSegments(segments, 0.01)...)
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	var rects []model.Rect
	for _, o := range outlines {
		b := o.bounds()
		if b.Width < 0.01 || b.Height < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", b.Width, b.Height))
			continue
		}
		rects = append(rects, b)
	}
	if len(rects) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	// Flip y and move the drawing's bounding box to the origin.
	all := model.Bounds(rects)
	for i, r := range rects {
		rects[i] = model.Rect{
			Left:   r.Left - all.Left,
			Top:    all.Bottom() - r.Bottom(),
			Width:  r.Width,
			Height: r.Height,
		}
	}
	sortReadingOrder(rects)

	var names []string
	for _, r := range rects {
		name := model.UniqueName("DXF Passage", names)
		names = append(names, name)
		result.Passages = append(result.Passages, model.NewPassage(name, r))
	}
	return result
}

// sortReadingOrder sorts rects top to bottom, then left to right.
func sortReadingOrder(rects []model.Rect) {
	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Top != rects[j].Top {
			return rects[i].Top < rects[j].Top
		}
		return rects[i].Left < rects[j].Left
	})
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) []outline {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []outline

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, outline(chain[:len(chain)-1]))
		}
	}

	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point, tolerance float64) bool {
	return math.Hypot(a.Left-b.Left, a.Top-b.Top) <= tolerance
}
