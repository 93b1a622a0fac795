package ui

import (
	"testing"

	"github.com/piwi3910/StoryMap/internal/model"
)

// storyOf builds a story holding one 100x100 passage per name.
func storyOf(names ...string) model.Story {
	s := model.NewStory("Test")
	for i, name := range names {
		p := model.NewPassage(name, model.Rect{Left: float64(i) * 125, Width: 100, Height: 100})
		s.Passages = append(s.Passages, p)
	}
	return s
}

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() {
		t.Error("new history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("new history should not be redoable")
	}
}

func TestPushAndUndo(t *testing.T) {
	h := NewHistory()

	// State before adding a passage
	h.Push(MakeSnapshot(storyOf(), "initial"))

	if !h.CanUndo() {
		t.Fatal("should be able to undo after push")
	}

	current := MakeSnapshot(storyOf("Start"), "current")

	restored, ok := h.Undo(current)
	if !ok {
		t.Fatal("undo should succeed")
	}
	if len(restored.Story.Passages) != 0 {
		t.Errorf("expected 0 passages after undo, got %d", len(restored.Story.Passages))
	}
	if restored.Label != "initial" {
		t.Errorf("expected label 'initial', got %q", restored.Label)
	}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(storyOf(), "empty"))
	h.Push(MakeSnapshot(storyOf("Start"), "one passage"))

	current := MakeSnapshot(storyOf("Start", "Cave"), "two passages")

	restored, ok := h.Undo(current)
	if !ok {
		t.Fatal("first undo should succeed")
	}
	if len(restored.Story.Passages) != 1 {
		t.Errorf("expected 1 passage, got %d", len(restored.Story.Passages))
	}

	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo should succeed")
	}
	if len(redone.Story.Passages) != 2 {
		t.Errorf("expected 2 passages after redo, got %d", len(redone.Story.Passages))
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(storyOf(), "empty"))

	if _, ok := h.Undo(MakeSnapshot(storyOf("Start"), "one passage")); !ok {
		t.Fatal("undo should succeed")
	}
	if !h.CanRedo() {
		t.Fatal("should be able to redo after undo")
	}

	h.Push(MakeSnapshot(storyOf(), "new action"))
	if h.CanRedo() {
		t.Error("redo stack should be cleared after push")
	}
}

func TestMaxDepth(t *testing.T) {
	h := &History{maxDepth: 3}

	for i := 0; i < 5; i++ {
		h.Push(MakeSnapshot(storyOf(), ""))
	}

	if len(h.undoStack) != 3 {
		t.Errorf("expected undo stack length 3, got %d", len(h.undoStack))
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h := NewHistory()
	current := MakeSnapshot(storyOf(), "current")
	if _, ok := h.Undo(current); ok {
		t.Error("undo on empty history should return false")
	}
	if _, ok := h.Redo(current); ok {
		t.Error("redo on empty history should return false")
	}
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(storyOf(), "a"))
	h.Push(MakeSnapshot(storyOf(), "b"))
	h.Undo(MakeSnapshot(storyOf(), "current"))

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("after clear, should not be able to undo or redo")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	story := storyOf("Start")
	story.Passages[0].Links = []string{"Cave"}
	story.Passages[0].Tags = []string{"intro"}
	snap := MakeSnapshot(story, "test")

	story.Passages[0].Left = 999
	story.Passages[0].Links[0] = "Modified"
	story.Passages[0].Tags[0] = "Modified"

	p := snap.Story.Passages[0]
	if p.Left != 0 {
		t.Error("snapshot rect should be independent of original")
	}
	if p.Links[0] != "Cave" || p.Tags[0] != "intro" {
		t.Error("snapshot links and tags should be independent of original")
	}
}

func TestSnapshotNilPassages(t *testing.T) {
	var story model.Story
	snap := MakeSnapshot(story, "nil test")
	if snap.Story.Passages != nil {
		t.Error("nil passages should stay nil")
	}
}
