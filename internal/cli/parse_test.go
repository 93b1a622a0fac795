package cli

import (
	"testing"

	"github.com/piwi3910/StoryMap/internal/model"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Point
		wantErr bool
	}{
		{"10,20", model.Point{Left: 10, Top: 20}, false},
		{" -5.5 , 3 ", model.Point{Left: -5.5, Top: 3}, false},
		{"10", model.Point{}, true},
		{"10,20,30", model.Point{}, true},
		{"a,b", model.Point{}, true},
		{"Inf,0", model.Point{}, true},
		{"NaN,0", model.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePoint(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePoint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePoint(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRect(t *testing.T) {
	got, err := parseRect("0,0,350,100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.Rect{Width: 350, Height: 100}
	if got != want {
		t.Errorf("parseRect = %+v, want %+v", got, want)
	}

	if _, err := parseRect("0,0,350"); err == nil {
		t.Error("expected error for three numbers")
	}
}
