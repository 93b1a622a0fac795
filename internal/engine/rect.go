package engine

import (
	"math"

	"github.com/piwi3910/StoryMap/internal/model"
)

// Intersects reports whether two rects overlap. Touching edges count as
// overlapping, so placement keeps probing until there is a real gap.
func Intersects(a, b model.Rect) bool {
	return a.Left <= b.Right() && b.Left <= a.Right() &&
		a.Top <= b.Bottom() && b.Top <= a.Bottom()
}

// IntersectsAny reports whether r intersects at least one obstacle.
func IntersectsAny(r model.Rect, obstacles []model.Rect) bool {
	for _, o := range obstacles {
		if Intersects(r, o) {
			return true
		}
	}
	return false
}

// IntersectionWithLine returns the point where the segment start->end crosses
// the border of r. Edges are tested left, right, top, bottom and the first hit
// wins, which decides the result for segments passing through a corner.
// The second return value is false when the segment crosses no edge.
func IntersectionWithLine(r model.Rect, start, end model.Point) (model.Point, bool) {
	edges := [4][2]model.Point{
		{{Left: r.Left, Top: r.Top}, {Left: r.Left, Top: r.Bottom()}},       // left
		{{Left: r.Right(), Top: r.Top}, {Left: r.Right(), Top: r.Bottom()}}, // right
		{{Left: r.Left, Top: r.Top}, {Left: r.Right(), Top: r.Top}},         // top
		{{Left: r.Left, Top: r.Bottom()}, {Left: r.Right(), Top: r.Bottom()}}, // bottom
	}
	for _, e := range edges {
		if p, ok := segmentIntersection(start, end, e[0], e[1]); ok {
			return p, true
		}
	}
	return model.Point{}, false
}

// segmentIntersection returns the crossing point of segments a->b and c->d.
// Parallel and collinear segments report no crossing.
func segmentIntersection(a, b, c, d model.Point) (model.Point, bool) {
	rx, ry := b.Left-a.Left, b.Top-a.Top
	sx, sy := d.Left-c.Left, d.Top-c.Top

	denom := cross(rx, ry, sx, sy)
	if denom == 0 {
		return model.Point{}, false
	}

	qx, qy := c.Left-a.Left, c.Top-a.Top
	t := cross(qx, qy, sx, sy) / denom
	u := cross(qx, qy, rx, ry) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return model.Point{}, false
	}
	return model.Point{Left: a.Left + t*rx, Top: a.Top + t*ry}, true
}

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// Displace returns a copy of movable shifted along a single axis by the
// minimum distance that separates it from stationary, with spacing added on
// every side. When the (spacing-expanded) rects do not overlap on both axes,
// movable is returned unchanged. The axis needing the shorter move wins;
// ties move vertically.
func Displace(movable, stationary model.Rect, spacing float64) model.Rect {
	m := movable.Expand(spacing)
	s := stationary.Expand(spacing)

	xOverlap := math.Min(m.Right(), s.Right()) - math.Max(m.Left, s.Left)
	yOverlap := math.Min(m.Bottom(), s.Bottom()) - math.Max(m.Top, s.Top)
	if xOverlap <= 0 || yOverlap <= 0 {
		return movable
	}

	// Candidate moves: push movable past stationary's near or far edge.
	xMove := shorter(s.Left-m.Right(), s.Right()-m.Left)
	yMove := shorter(s.Top-m.Bottom(), s.Bottom()-m.Top)

	if math.Abs(xMove) < math.Abs(yMove) {
		return movable.Translate(xMove, 0)
	}
	return movable.Translate(0, yMove)
}

// shorter returns whichever of a (negative direction) and b (positive
// direction) has the smaller magnitude, preferring b on a tie.
func shorter(a, b float64) float64 {
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}
