// Package persist moves scene state to and from document stores. The
// Bridge observes scene snapshots and propagates them downstream behind
// two independent debounce policies: a short one mirroring state to the
// document store and a longer one driving autosave. The scene never talks
// to a store directly, which keeps continuous drags from turning into
// save storms.
package persist

import (
	"context"
	"errors"

	"slate/board"
)

// ErrNotFound is returned when no document exists under the given id.
var ErrNotFound = errors.New("document not found")

// Store is the persistence collaborator: a keyed document store. The
// in-memory scene remains the source of truth while a document is open;
// stores are downstream mirrors except at load time.
type Store interface {
	Load(ctx context.Context, id string) (*board.FullState, error)
	Save(ctx context.Context, id string, st *board.FullState) error
}
