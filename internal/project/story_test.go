package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/StoryMap/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadStory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tale.storymap")

	story := model.NewStory("Tale")
	story.SnapToGrid = true
	start := model.NewPassage("Start", model.Rect{Left: 0, Top: 0, Width: 100, Height: 100})
	start.Links = []string{"Cave"}
	start.Selected = true
	cave := model.NewPassage("Cave", model.Rect{Left: 0, Top: 125, Width: 100, Height: 100})
	require.NoError(t, story.AddPassages(start, cave))

	require.NoError(t, SaveStory(path, story))

	loaded, err := LoadStory(path)
	require.NoError(t, err)
	assert.Equal(t, story.ID, loaded.ID)
	assert.Equal(t, "Tale", loaded.Name)
	assert.True(t, loaded.SnapToGrid)
	require.Len(t, loaded.Passages, 2)
	assert.Equal(t, start, loaded.Passages[0])
	assert.Equal(t, cave.Rect, loaded.Passages[1].Rect)
}

func TestSaveStoryRejectsInvalid(t *testing.T) {
	story := model.NewStory("Bad")
	story.Passages = []model.Passage{
		{ID: "1", Name: "Same", Rect: model.Rect{Width: 1, Height: 1}},
		{ID: "2", Name: "Same", Rect: model.Rect{Width: 1, Height: 1}},
	}

	err := SaveStory(filepath.Join(t.TempDir(), "bad.storymap"), story)
	assert.ErrorIs(t, err, model.ErrDuplicateName)
}

func TestLoadStoryErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadStory(filepath.Join(dir, "missing.storymap"))
	assert.Error(t, err)

	noVersion := filepath.Join(dir, "noversion.storymap")
	require.NoError(t, os.WriteFile(noVersion, []byte(`{"story":{"name":"x"}}`), 0644))
	_, err = LoadStory(noVersion)
	assert.ErrorIs(t, err, ErrMissingVersion)

	garbage := filepath.Join(dir, "garbage.storymap")
	require.NoError(t, os.WriteFile(garbage, []byte("{{{"), 0644))
	_, err = LoadStory(garbage)
	assert.Error(t, err)

	dup := filepath.Join(dir, "dup.storymap")
	data := `{"version":"1.0.0","story":{"name":"x","passages":[
		{"id":"1","name":"A","left":0,"top":0,"width":1,"height":1},
		{"id":"2","name":"A","left":5,"top":0,"width":1,"height":1}]}}`
	require.NoError(t, os.WriteFile(dup, []byte(data), 0644))
	_, err = LoadStory(dup)
	assert.ErrorIs(t, err, model.ErrDuplicateName)
}

func TestLoadStoryDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.storymap")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1.0.0","story":{"name":"Min"}}`), 0644))

	story, err := LoadStory(path)

	require.NoError(t, err)
	assert.NotNil(t, story.Passages)
	assert.Equal(t, 1.0, story.Zoom)
}

func TestEnsureExtension(t *testing.T) {
	assert.Equal(t, "tale.storymap", EnsureExtension("tale"))
	assert.Equal(t, "tale.json", EnsureExtension("tale.json"))
	assert.Equal(t, "tale", StoryNameFromPath("/x/y/tale.storymap"))
}
