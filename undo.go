package main

import "image"

// History keeps full raster snapshots for undo and redo. Undo depth is
// bounded; the redo stack is bounded only through undo pushes clearing it.
type History struct {
	undoStack []*image.NRGBA
	redoStack []*image.NRGBA
	maxUndo   int
}

func NewHistory(maxUndo int) *History {
	if maxUndo <= 0 {
		maxUndo = defaultMaxUndo
	}
	return &History{maxUndo: maxUndo}
}

// Push records a deep copy of r and drops the redo stack. Past maxUndo the
// oldest snapshot is evicted.
func (h *History) Push(r *image.NRGBA) {
	if r == nil {
		return
	}
	h.undoStack = append(h.undoStack, cloneNRGBA(r))
	if len(h.undoStack) > h.maxUndo {
		drop := len(h.undoStack) - h.maxUndo
		for i := 0; i < drop; i++ {
			h.undoStack[i] = nil
		}
		h.undoStack = h.undoStack[drop:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo pops the most recent snapshot and stores current for redo. current
// must not be mutated by the caller afterwards.
func (h *History) Undo(current *image.NRGBA) (*image.NRGBA, bool) {
	if len(h.undoStack) == 0 {
		return nil, false
	}
	lastIndex := len(h.undoStack) - 1
	snapshot := h.undoStack[lastIndex]
	h.undoStack[lastIndex] = nil
	h.undoStack = h.undoStack[:lastIndex]

	h.redoStack = append(h.redoStack, current)
	return snapshot, true
}

// Redo mirrors Undo.
func (h *History) Redo(current *image.NRGBA) (*image.NRGBA, bool) {
	if len(h.redoStack) == 0 {
		return nil, false
	}
	lastIndex := len(h.redoStack) - 1
	snapshot := h.redoStack[lastIndex]
	h.redoStack[lastIndex] = nil
	h.redoStack = h.redoStack[:lastIndex]

	h.undoStack = append(h.undoStack, current)
	return snapshot, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) UndoDepth() int { return len(h.undoStack) }
func (h *History) RedoDepth() int { return len(h.redoStack) }

func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
