package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/StoryMap/internal/engine"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by ExportXLSX.
const (
	SheetPassages = "Passages"
	SheetLinks    = "Links"
)

// passageHeaders match the column aliases recognised by the importer, so an
// exported workbook can be imported again.
var passageHeaders = []string{"Name", "Left", "Top", "Width", "Height", "Links", "Tags", "Text"}

var linkHeaders = []string{"From", "To", "Start X", "Start Y", "End X", "End Y"}

// ExportXLSX writes the story to an Excel workbook with a passage table and a
// table of resolved connectors.
func ExportXLSX(path string, story model.Story) error {
	if len(story.Passages) == 0 {
		return ErrEmptyStory
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPassages); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLinks); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]interface{}, 0, len(story.Passages))
	for _, p := range story.Passages {
		rows = append(rows, []interface{}{
			p.Name, p.Left, p.Top, p.Width, p.Height,
			strings.Join(p.Links, ", "), strings.Join(p.Tags, ", "), p.Text,
		})
	}
	if err := writeTable(f, SheetPassages, passageHeaders, rows, bold); err != nil {
		return err
	}

	names := make(map[string]string, len(story.Passages))
	for _, p := range story.Passages {
		names[p.ID] = p.Name
	}
	var linkRows [][]interface{}
	for _, l := range engine.StoryConnectors(story) {
		linkRows = append(linkRows, []interface{}{
			names[l.FromID], names[l.ToID], l.Start.Left, l.Start.Top, l.End.Left, l.End.Top,
		})
	}
	if err := writeTable(f, SheetLinks, linkHeaders, linkRows, bold); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetPassages, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetPassages, "F", "H", 36); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return f.SaveAs(path)
}

// writeTable writes a bold header row followed by data rows starting at A1.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", cell, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}
