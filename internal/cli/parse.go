package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/StoryMap/internal/model"
)

// parseFloats parses exactly n comma-separated finite numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		if !(model.Point{Left: v}).IsFinite() {
			return nil, fmt.Errorf("non-finite number %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// parsePoint parses "left,top".
func parsePoint(s string) (model.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{Left: v[0], Top: v[1]}, nil
}

// parseRect parses "left,top,width,height".
func parseRect(s string) (model.Rect, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return model.Rect{}, err
	}
	return model.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}
