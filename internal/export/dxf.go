package export

import (
	"fmt"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/yofu/dxf"
)

// DXF layer names.
const (
	LayerPassages = "PASSAGES"
	LayerLinks    = "LINKS"
	LayerNames    = "NAMES"
)

// ExportDXF writes the story map as a DXF drawing: every passage as a closed
// polyline, every connector as a line and every name as text. Canvas y grows
// downward while DXF y grows upward, so y coordinates are negated.
func ExportDXF(path string, story model.Story) error {
	if len(story.Passages) == 0 {
		return ErrEmptyStory
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerPassages, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerPassages, err)
	}
	for _, p := range story.Passages {
		r := p.Rect
		_, err := d.LwPolyline(true,
			[]float64{r.Left, -r.Top},
			[]float64{r.Right(), -r.Top},
			[]float64{r.Right(), -r.Bottom()},
			[]float64{r.Left, -r.Bottom()},
		)
		if err != nil {
			return fmt.Errorf("failed to draw passage %q: %w", p.Name, err)
		}
	}

	if _, err := d.AddLayer(LayerLinks, 5, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerLinks, err)
	}
	for _, link := range engine.StoryConnectors(story) {
		if _, err := d.Line(link.Start.Left, -link.Start.Top, 0, link.End.Left, -link.End.Top, 0); err != nil {
			return fmt.Errorf("failed to draw link: %w", err)
		}
	}

	if _, err := d.AddLayer(LayerNames, 3, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerNames, err)
	}
	for _, p := range story.Passages {
		height := p.Height / 8
		if _, err := d.Text(p.Name, p.Left+height/2, -(p.Top + 1.5*height), 0, height); err != nil {
			return fmt.Errorf("failed to write name %q: %w", p.Name, err)
		}
	}

	return d.SaveAs(path)
}
