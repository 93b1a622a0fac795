package model

import (
	"fmt"
	"math"
)

// Point represents a position on the story canvas in logical (unzoomed) pixels.
type Point struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// IsFinite reports whether both coordinates are real numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.Left) && isFinite(p.Top)
}

// Rect is an axis-aligned box in logical (unzoomed) pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{Left: r.Left + r.Width/2, Top: r.Top + r.Height/2}
}

// Translate returns a copy shifted by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Expand returns a copy grown by d on every side (negative d shrinks).
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Left:   r.Left - d,
		Top:    r.Top - d,
		Width:  r.Width + 2*d,
		Height: r.Height + 2*d,
	}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.Left, other.Left)
	top := math.Min(r.Top, other.Top)
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// IsFinite reports whether every field is a real number.
func (r Rect) IsFinite() bool {
	return isFinite(r.Left) && isFinite(r.Top) && isFinite(r.Width) && isFinite(r.Height)
}

// Validate checks that the rect is finite with non-negative dimensions.
func (r Rect) Validate() error {
	if !r.IsFinite() {
		return fmt.Errorf("rect %+v has non-finite coordinates", r)
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("rect %+v has negative size", r)
	}
	return nil
}

// Bounds returns the union of all rects, or the zero Rect for an empty slice.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	b := rects[0]
	for _, r := range rects[1:] {
		b = b.Union(r)
	}
	return b
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
