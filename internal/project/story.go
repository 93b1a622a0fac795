package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/StoryMap/internal/model"
)

// FileExtension is the extension used for saved stories.
const FileExtension = ".storymap"

// FormatVersion is written into every story file.
const FormatVersion = "1.0.0"

// ErrMissingVersion is returned when a story file has no version field.
var ErrMissingVersion = errors.New("invalid story file: missing version field")

// StoryFile is the top-level structure of a saved story.
type StoryFile struct {
	Version string      `json:"version"`
	SavedAt string      `json:"saved_at"`
	Story   model.Story `json:"story"`
}

// SaveStory writes a story to path as JSON, creating parent directories.
func SaveStory(path string, story model.Story) error {
	if err := story.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid story: %w", err)
	}
	file := StoryFile{
		Version: FormatVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Story:   story,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create story directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write story file: %w", err)
	}
	return nil
}

// LoadStory reads a story saved by SaveStory and validates it.
func LoadStory(path string) (model.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Story{}, fmt.Errorf("failed to read story file: %w", err)
	}
	var file StoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return model.Story{}, fmt.Errorf("failed to parse story file: %w", err)
	}
	if file.Version == "" {
		return model.Story{}, ErrMissingVersion
	}

	story := file.Story
	// Ensure Passages is never nil
	if story.Passages == nil {
		story.Passages = []model.Passage{}
	}
	if story.Zoom <= 0 {
		story.Zoom = 1
	}
	if err := story.Validate(); err != nil {
		return model.Story{}, fmt.Errorf("invalid story file %s: %w", path, err)
	}
	return story, nil
}

// EnsureExtension appends FileExtension to path if it has no extension.
func EnsureExtension(path string) string {
	if filepath.Ext(path) == "" {
		return path + FileExtension
	}
	return path
}

// StoryNameFromPath derives a story name from its file name.
func StoryNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
