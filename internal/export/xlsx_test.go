package export

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/piwi3910/StoryMap/internal/importer"
	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.xlsx")
	story := buildTestStory(t)

	if err := ExportXLSX(path, story); err != nil {
		t.Fatalf("ExportXLSX returned error: %v", err)
	}

	result := importer.ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected import errors: %v", result.Errors)
	}
	if len(result.Passages) != len(story.Passages) {
		t.Fatalf("expected %d passages, got %d", len(story.Passages), len(result.Passages))
	}
	for i, p := range result.Passages {
		want := story.Passages[i]
		if p.Name != want.Name || p.Rect != want.Rect {
			t.Errorf("passage %d: expected %s %+v, got %s %+v", i, want.Name, want.Rect, p.Name, p.Rect)
		}
	}
	if links := result.Passages[0].Links; len(links) != 2 || links[1] != "Forest" {
		t.Errorf("unexpected links: %v", links)
	}
}

func TestExportXLSX_LinksSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.xlsx")
	if err := ExportXLSX(path, buildTestStory(t)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetLinks)
	if err != nil {
		t.Fatal(err)
	}
	// Header plus Start->Cave, Start->Forest, Cave->Start; Forest->Nowhere is broken.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %v", len(rows), rows)
	}
	if rows[1][0] != "Start" || rows[1][1] != "Cave" {
		t.Errorf("unexpected first link row: %v", rows[1])
	}
}

func TestExportXLSX_EmptyStory(t *testing.T) {
	err := ExportXLSX(filepath.Join(t.TempDir(), "empty.xlsx"), model.NewStory("Empty"))
	if !errors.Is(err, ErrEmptyStory) {
		t.Fatalf("expected ErrEmptyStory, got %v", err)
	}
}
