// Package importer provides CSV, Excel and DXF import of passage tables.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
// Passages listed in Unplaced had no position in the source; their rect is
// default-sized at the origin and the caller is expected to place them.
type ImportResult struct {
	Passages []model.Passage
	Unplaced []string // IDs of passages without coordinates
	Errors   []string
	Warnings []string
}

// IsPlaced reports whether the passage with the given ID came with coordinates.
func (r ImportResult) IsPlaced(id string) bool {
	for _, u := range r.Unplaced {
		if u == id {
			return false
		}
	}
	return true
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name   int
	Left   int
	Top    int
	Width  int
	Height int
	Links  int
	Tags   int
	Text   int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":   {"name", "passage", "passage name", "title", "label"},
	"left":   {"left", "x", "pos x", "position x"},
	"top":    {"top", "y", "pos y", "position y"},
	"width":  {"width", "w"},
	"height": {"height", "h"},
	"links":  {"links", "link", "targets", "goes to"},
	"tags":   {"tags", "tag"},
	"text":   {"text", "body", "content"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (name, left, top, width, height, links) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Left: -1, Top: -1, Width: -1, Height: -1, Links: -1, Tags: -1, Text: -1}
	slots := map[string]*int{
		"name":   &mapping.Name,
		"left":   &mapping.Left,
		"top":    &mapping.Top,
		"width":  &mapping.Width,
		"height": &mapping.Height,
		"links":  &mapping.Links,
		"tags":   &mapping.Tags,
		"text":   &mapping.Text,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Left: 1, Top: 2, Width: 3, Height: 4, Links: 5, Tags: -1, Text: -1}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// splitList splits a multi-value cell on commas, semicolons and pipes.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseOptionalFloat parses a cell that may be empty. ok is false for an
// empty cell; err is set for a non-numeric or non-finite one.
func parseOptionalFloat(s string) (v float64, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if !(model.Point{Left: v}).IsFinite() {
		return 0, false, fmt.Errorf("non-finite value %q", s)
	}
	return v, true, nil
}

// parseRow extracts a passage from a row using the given column mapping.
// placed is false when the row has no left/top.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, existing []string) (p model.Passage, placed bool, errMsg, warning string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = model.UniqueName(model.DefaultPassageName, existing)
	}

	r := model.Rect{Width: model.DefaultPassageWidth, Height: model.DefaultPassageHeight}
	fields := []struct {
		label string
		col   int
		dst   *float64
	}{
		{"left", mapping.Left, &r.Left},
		{"top", mapping.Top, &r.Top},
		{"width", mapping.Width, &r.Width},
		{"height", mapping.Height, &r.Height},
	}
	found := map[string]bool{}
	for _, f := range fields {
		raw := getCell(row, f.col)
		v, ok, err := parseOptionalFloat(raw)
		if err != nil {
			return model.Passage{}, false, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, f.label, raw), ""
		}
		if ok {
			*f.dst = v
			found[f.label] = true
		}
	}

	if r.Width <= 0 || r.Height <= 0 {
		return model.Passage{}, false, fmt.Sprintf("%s: Width and height must be positive", rowLabel), ""
	}

	placed = found["left"] && found["top"]
	if found["left"] != found["top"] {
		warning = fmt.Sprintf("%s: Only one coordinate given, passage will be placed automatically", rowLabel)
	}

	p = model.NewPassage(name, r)
	p.Links = splitList(getCell(row, mapping.Links))
	p.Tags = splitList(getCell(row, mapping.Tags))
	p.Text = getCell(row, mapping.Text)
	return p, placed, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports passages from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports passages from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports passages from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into passages.
// Rows repeating an earlier name are rejected.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		if mapping.Name == -1 {
			result.Errors = append(result.Errors, "Required column not found in header: Name")
			return result
		}
	}

	var names []string
	seen := map[string]bool{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		p, placed, errMsg, warning := parseRow(row, mapping, rowLabel, names)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if seen[p.Name] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Duplicate passage name '%s'", rowLabel, p.Name))
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		seen[p.Name] = true
		names = append(names, p.Name)
		result.Passages = append(result.Passages, p)
		if !placed {
			result.Unplaced = append(result.Unplaced, p.ID)
		}
	}

	if len(result.Passages) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
