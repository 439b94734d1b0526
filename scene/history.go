package scene

import "slate/board"

// DefaultHistoryCapacity bounds the undo stack; the oldest snapshot is
// evicted when a new commit would exceed it.
const DefaultHistoryCapacity = 50

// History manages linear undo/redo using deep-copied board snapshots.
type History struct {
	states  []*board.Board
	current int // Current position in history
	max     int // Maximum number of states to keep
}

// NewHistory creates a new history manager.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryCapacity
	}
	return &History{
		states:  make([]*board.Board, 0, max),
		current: -1,
		max:     max,
	}
}

// Save records a new snapshot (a deep copy of b). Any redo branch past the
// current position is discarded, and the oldest snapshot is evicted once
// the capacity is reached.
func (h *History) Save(b *board.Board) {
	clone := b.Clone()

	// If we're not at the end, truncate everything after current
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, clone)

	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}
}

// CanUndo returns true if we can undo.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if we can redo.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo goes back one state. Returns nil if already at the oldest snapshot.
func (h *History) Undo() *board.Board {
	if !h.CanUndo() {
		return nil
	}
	h.current--
	// Return a clone to prevent accidental modification of history
	return h.states[h.current].Clone()
}

// Redo goes forward one state. Returns nil if already at the newest one.
func (h *History) Redo() *board.Board {
	if !h.CanRedo() {
		return nil
	}
	h.current++
	return h.states[h.current].Clone()
}

// Clear drops all history.
func (h *History) Clear() {
	h.states = h.states[:0]
	h.current = -1
}

// Stats returns current position (1-based) and total states.
func (h *History) Stats() (current, total int) {
	return h.current + 1, len(h.states)
}

// Snapshots returns copies of all stored snapshots in order, oldest first.
func (h *History) Snapshots() []board.Board {
	out := make([]board.Board, len(h.states))
	for i, s := range h.states {
		out[i] = *s.Clone()
	}
	return out
}

// Index returns the zero-based position of the current snapshot.
func (h *History) Index() int {
	return h.current
}

// Restore replaces the stored snapshots wholesale, trimming to capacity
// from the front and clamping the index. Used when a persisted document
// brings its own history along.
func (h *History) Restore(snapshots []board.Board, index int) {
	if len(snapshots) > h.max {
		drop := len(snapshots) - h.max
		snapshots = snapshots[drop:]
		index -= drop
	}
	h.states = make([]*board.Board, len(snapshots))
	for i := range snapshots {
		h.states[i] = snapshots[i].Clone()
	}
	if index < 0 || index >= len(h.states) {
		index = len(h.states) - 1
	}
	h.current = index
}
