package ui

import "github.com/piwi3910/StoryMap/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the story state at a point in time.
type Snapshot struct {
	Story model.Story
	Label string // Human-readable description (e.g. "Move Passages")
}

// History manages undo/redo stacks of story snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// The snapshot is the state before the modification.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot from the undo stack and pushes
// the current state onto the redo stack. Returns the snapshot to restore
// and true, or an empty snapshot and false if nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recent snapshot from the redo stack and pushes
// the current state onto the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// copyPassages returns a deep copy of a passages slice.
func copyPassages(passages []model.Passage) []model.Passage {
	if passages == nil {
		return nil
	}
	cp := make([]model.Passage, len(passages))
	for i, p := range passages {
		cp[i] = p
		cp[i].Tags = append([]string(nil), p.Tags...)
		cp[i].Links = append([]string(nil), p.Links...)
	}
	return cp
}

// MakeSnapshot creates a snapshot of the story with a label.
func MakeSnapshot(story model.Story, label string) Snapshot {
	story.Passages = copyPassages(story.Passages)
	return Snapshot{
		Story: story,
		Label: label,
	}
}
