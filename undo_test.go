package main

import (
	"image"
	"testing"
)

// editStep erases a distinct disc so every step leaves a different raster.
func editStep(b *BufferPair, h *History, i int) {
	h.Push(b.Working())
	StampCircle(b, Point{X: float64(5 + i*7), Y: 20}, 3, EditErase)
}

func undoOnce(b *BufferPair, h *History) bool {
	prev, ok := h.Undo(b.Working())
	if ok {
		b.replaceWorking(prev)
	}
	return ok
}

func redoOnce(b *BufferPair, h *History) bool {
	next, ok := h.Redo(b.Working())
	if ok {
		b.replaceWorking(next)
	}
	return ok
}

func TestHistoryRoundTrip(t *testing.T) {
	b := loadedPair(t, solidNRGBA(80, 40, opaqueRed))
	h := NewHistory(25)
	initial := snapshotOf(b)

	const n = 8
	for i := 0; i < n; i++ {
		editStep(b, h, i)
	}
	for i := 0; i < n; i++ {
		if !undoOnce(b, h) {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !sameRaster(initial, b.Working()) {
		t.Fatal("raster differs from the state before the first edit")
	}
	if h.CanUndo() {
		t.Fatal("undo stack not empty")
	}
}

func TestHistoryBoundedByMaxUndo(t *testing.T) {
	b := loadedPair(t, solidNRGBA(80, 40, opaqueRed))
	h := NewHistory(3)

	var states []*image.NRGBA
	for i := 0; i < 5; i++ {
		states = append(states, snapshotOf(b))
		editStep(b, h, i)
	}
	if h.UndoDepth() != 3 {
		t.Fatalf("UndoDepth = %d, want 3", h.UndoDepth())
	}

	undone := 0
	for undoOnce(b, h) {
		undone++
	}
	if undone != 3 {
		t.Fatalf("undid %d steps, want 3", undone)
	}
	if !sameRaster(states[2], b.Working()) {
		t.Fatal("oldest reachable state is not the one before the third edit")
	}
}

func TestHistoryRedoInverse(t *testing.T) {
	b := loadedPair(t, solidNRGBA(80, 40, opaqueRed))
	h := NewHistory(10)
	for i := 0; i < 3; i++ {
		editStep(b, h, i)
	}
	beforeUndo := snapshotOf(b)

	undoOnce(b, h)
	if sameRaster(beforeUndo, b.Working()) {
		t.Fatal("undo changed nothing")
	}
	if !redoOnce(b, h) {
		t.Fatal("redo failed")
	}
	if !sameRaster(beforeUndo, b.Working()) {
		t.Fatal("redo did not restore the pre-undo raster")
	}
}

func TestHistoryNewEditClearsRedo(t *testing.T) {
	b := loadedPair(t, solidNRGBA(80, 40, opaqueRed))
	h := NewHistory(10)
	editStep(b, h, 0)
	editStep(b, h, 1)
	undoOnce(b, h)
	if !h.CanRedo() {
		t.Fatal("nothing to redo after undo")
	}

	editStep(b, h, 5)
	if h.CanRedo() {
		t.Fatal("redo stack survived a new edit")
	}
	if redoOnce(b, h) {
		t.Fatal("redo succeeded after a new edit")
	}
}

func TestHistoryPushCopies(t *testing.T) {
	b := loadedPair(t, solidNRGBA(10, 10, opaqueRed))
	h := NewHistory(5)
	before := snapshotOf(b)

	h.Push(b.Working())
	StampCircle(b, Point{X: 5, Y: 5}, 2, EditErase)

	prev, ok := h.Undo(b.Working())
	if !ok {
		t.Fatal("undo failed")
	}
	if !sameRaster(before, prev) {
		t.Fatal("snapshot followed later mutation")
	}
}

func TestNewHistoryDefaultDepth(t *testing.T) {
	h := NewHistory(0)
	r := solidNRGBA(2, 2, opaqueRed)
	for i := 0; i < defaultMaxUndo+5; i++ {
		h.Push(r)
	}
	if h.UndoDepth() != defaultMaxUndo {
		t.Fatalf("UndoDepth = %d, want %d", h.UndoDepth(), defaultMaxUndo)
	}
	h.Push(nil)
	if h.UndoDepth() != defaultMaxUndo {
		t.Fatal("nil push recorded")
	}
	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("Clear left snapshots")
	}
}
