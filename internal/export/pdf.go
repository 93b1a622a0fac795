// Package export provides functionality for exporting story maps
// to various file formats.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
)

// ErrEmptyStory is returned when there is nothing to export.
var ErrEmptyStory = errors.New("story has no passages to export")

// passageColor represents an RGB color for a passage card.
type passageColor struct {
	R, G, B int
}

// passageColors mirrors the tag color scheme used in the UI story canvas widget.
var passageColors = []passageColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// untaggedColor is used for passages without tags.
var untaggedColor = passageColor{R: 236, G: 239, B: 241}

// ColorIndex returns the palette index for a passage: untagged passages get
// -1, tagged ones a stable index derived from their first tag.
func ColorIndex(p model.Passage) int {
	if len(p.Tags) == 0 {
		return -1
	}
	h := 0
	for _, r := range p.Tags[0] {
		h = (h*31 + int(r)) % len(passageColors)
	}
	return h
}

func colorFor(p model.Passage) passageColor {
	if i := ColorIndex(p); i >= 0 {
		return passageColors[i]
	}
	return untaggedColor
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	arrowSize    = 2.0
)

// ExportPDF generates a PDF document with the story map on the first page
// followed by a passage index. Connectors are clipped to passage borders.
func ExportPDF(path string, story model.Story) error {
	if len(story.Passages) == 0 {
		return ErrEmptyStory
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderMapPage(pdf, story)

	renderIndexPages(pdf, story)

	return pdf.OutputFileAndClose(path)
}

// mapTransform converts logical story coordinates to page millimetres.
type mapTransform struct {
	bounds  model.Rect
	scale   float64
	offsetX float64
	offsetY float64
}

func newMapTransform(story model.Story, drawWidth, drawHeight float64) mapTransform {
	bounds := model.Bounds(story.Obstacles())
	scale := math.Min(drawWidth/math.Max(bounds.Width, 1), drawHeight/math.Max(bounds.Height, 1))
	canvasW := bounds.Width * scale
	return mapTransform{
		bounds:  bounds,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
	}
}

func (m mapTransform) point(p model.Point) (float64, float64) {
	return m.offsetX + (p.Left-m.bounds.Left)*m.scale, m.offsetY + (p.Top-m.bounds.Top)*m.scale
}

func (m mapTransform) rect(r model.Rect) (x, y, w, h float64) {
	x, y = m.point(model.Point{Left: r.Left, Top: r.Top})
	return x, y, r.Width * m.scale, r.Height * m.scale
}

// renderMapPage draws every passage and connector on the current page.
func renderMapPage(pdf *fpdf.Fpdf, story model.Story) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s (%d passages)", story.Name, len(story.Passages))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	tr := newMapTransform(story, drawWidth, drawHeight)

	// Connectors first so cards are drawn on top of any overlap
	pdf.SetDrawColor(90, 90, 90)
	pdf.SetFillColor(90, 90, 90)
	pdf.SetLineWidth(0.3)
	for _, link := range engine.StoryConnectors(story) {
		x1, y1 := tr.point(link.Start)
		x2, y2 := tr.point(link.End)
		pdf.Line(x1, y1, x2, y2)
		drawArrowHead(pdf, x1, y1, x2, y2)
	}

	for _, p := range story.Passages {
		col := colorFor(p)
		px, py, pw, ph := tr.rect(p.Rect)

		pdf.SetFillColor(col.R, col.G, col.B)
		if p.Selected {
			pdf.SetDrawColor(33, 150, 243)
			pdf.SetLineWidth(0.6)
		} else {
			pdf.SetDrawColor(30, 30, 30)
			pdf.SetLineWidth(0.3)
		}
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 8 && ph > 4 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			name := truncate(pdf, p.Name, pw-2)
			nameW := pdf.GetStringWidth(name)
			pdf.SetXY(px+(pw-nameW)/2, py+ph/2-2)
			pdf.CellFormat(nameW, 4, name, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawArrowHead draws a filled triangle pointing at (x2, y2).
func drawArrowHead(pdf *fpdf.Fpdf, x1, y1, x2, y2 float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	spread := math.Pi / 7
	pdf.Polygon([]fpdf.PointType{
		{X: x2, Y: y2},
		{X: x2 - arrowSize*math.Cos(angle-spread), Y: y2 - arrowSize*math.Sin(angle-spread)},
		{X: x2 - arrowSize*math.Cos(angle+spread), Y: y2 - arrowSize*math.Sin(angle+spread)},
	}, "F")
}

// renderIndexPages lists every passage with its geometry, links and tags.
func renderIndexPages(pdf *fpdf.Fpdf, story model.Story) {
	colWidths := []float64{60, 45, 35, 80, 47}
	headers := []string{"Passage", "Position", "Size", "Links", "Tags"}
	rowHeight := 6.0

	header := func() float64 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft, marginTop)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Passage Index", "", 0, "L", false, 0, "")

		y := marginTop + 14
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for i, h := range headers {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
			x += colWidths[i]
		}
		pdf.SetFont("Helvetica", "", 9)
		return y + rowHeight
	}

	y := header()
	for i, p := range story.Passages {
		if y+rowHeight > pageHeight-marginBottom {
			y = header()
		}
		row := []string{
			p.Name,
			fmt.Sprintf("%.0f, %.0f", p.Left, p.Top),
			fmt.Sprintf("%.0f x %.0f", p.Width, p.Height),
			strings.Join(p.Links, ", "),
			strings.Join(p.Tags, ", "),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		x := marginLeft
		for j, cell := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], rowHeight, truncate(pdf, cell, colWidths[j]-2), "1", 0, "L", true, 0, "")
			x += colWidths[j]
		}
		y += rowHeight
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by StoryMap", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// truncate shortens s with an ellipsis until it fits in width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
