package scene

import (
	"fmt"
	"testing"

	"slate/board"
)

func boardWithNodes(n int) *board.Board {
	b := &board.Board{Viewport: board.DefaultViewport()}
	for i := 0; i < n; i++ {
		b.Nodes = append(b.Nodes, board.Node{
			ID:   fmt.Sprintf("n%d", i),
			Kind: board.KindRectangle,
			Size: board.Size{Width: 120, Height: 80},
		})
	}
	return b
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(50)
	h.Save(boardWithNodes(0))
	h.Save(boardWithNodes(1))
	h.Save(boardWithNodes(2))

	if !h.CanUndo() {
		t.Fatal("expected CanUndo after saves")
	}
	b := h.Undo()
	if b == nil || len(b.Nodes) != 1 {
		t.Fatalf("undo: got %v nodes, want 1", len(b.Nodes))
	}
	b = h.Undo()
	if b == nil || len(b.Nodes) != 0 {
		t.Fatalf("second undo: got %v nodes, want 0", len(b.Nodes))
	}
	if h.CanUndo() {
		t.Error("expected CanUndo false at oldest snapshot")
	}
	if h.Undo() != nil {
		t.Error("undo at oldest snapshot should return nil")
	}

	b = h.Redo()
	if b == nil || len(b.Nodes) != 1 {
		t.Fatalf("redo: got %v nodes, want 1", len(b.Nodes))
	}
	b = h.Redo()
	if b == nil || len(b.Nodes) != 2 {
		t.Fatalf("second redo: got %v nodes, want 2", len(b.Nodes))
	}
	if h.Redo() != nil {
		t.Error("redo at newest snapshot should return nil")
	}
}

func TestHistoryTruncatesRedoBranch(t *testing.T) {
	h := NewHistory(50)
	h.Save(boardWithNodes(0))
	h.Save(boardWithNodes(1))
	h.Save(boardWithNodes(2))

	h.Undo()
	h.Save(boardWithNodes(5))

	if h.CanRedo() {
		t.Error("saving after undo should discard the redo branch")
	}
	b := h.Undo()
	if len(b.Nodes) != 1 {
		t.Errorf("undo after branch: got %d nodes, want 1", len(b.Nodes))
	}
}

func TestHistoryCapacityEvictsOldest(t *testing.T) {
	h := NewHistory(50)
	for i := 0; i <= 60; i++ {
		h.Save(boardWithNodes(i))
	}
	if _, total := h.Stats(); total != 50 {
		t.Fatalf("got %d states, want 50", total)
	}

	// Walk all the way back; the oldest surviving snapshot is the
	// 50th-from-last save.
	var last *board.Board
	for {
		b := h.Undo()
		if b == nil {
			break
		}
		last = b
	}
	if last == nil || len(last.Nodes) != 11 {
		t.Errorf("oldest snapshot has %d nodes, want 11", len(last.Nodes))
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(10)
	b := boardWithNodes(1)
	h.Save(b)
	b.Nodes[0].Position.X = 999

	h.Save(boardWithNodes(2))
	got := h.Undo()
	if got.Nodes[0].Position.X != 0 {
		t.Error("mutating the source board after Save leaked into history")
	}
}

func TestHistoryRestoreTrimsToCapacity(t *testing.T) {
	h := NewHistory(10)
	snaps := make([]board.Board, 15)
	for i := range snaps {
		snaps[i] = *boardWithNodes(i)
	}
	h.Restore(snaps, 14)
	if _, total := h.Stats(); total != 10 {
		t.Fatalf("got %d states, want 10", total)
	}
	if h.Index() != 9 {
		t.Errorf("index = %d, want 9", h.Index())
	}
}
