package persist

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"slate/board"
)

// Debounce defaults. Mirroring to the document store is quick so the open
// document tracks edits closely; autosave is deliberately lazy.
const (
	DefaultSyncDelay     = 300 * time.Millisecond
	DefaultAutosaveDelay = 2 * time.Second
)

// Bridge debounces scene snapshots into two stores: a mirror (the active
// document store) and an autosave target. The two debounce policies are
// independent on purpose; their timings and failure semantics differ.
type Bridge struct {
	mu     sync.Mutex
	mirror Store
	saver  Store
	logger *zap.Logger

	docID     string
	syncDelay time.Duration
	saveDelay time.Duration

	syncTimer *time.Timer
	saveTimer *time.Timer

	last        *board.FullState // last snapshot accepted for propagation
	pendingSync *board.FullState
	pendingSave *board.FullState

	saving   bool
	onNotify func(msg string)
	onSynced func()
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithSyncDelay overrides the document-mirror debounce window.
func WithSyncDelay(d time.Duration) BridgeOption {
	return func(b *Bridge) { b.syncDelay = d }
}

// WithAutosaveDelay overrides the autosave debounce window.
func WithAutosaveDelay(d time.Duration) BridgeOption {
	return func(b *Bridge) { b.saveDelay = d }
}

// WithNotify installs a callback for user-visible notifications (failed
// saves and the like).
func WithNotify(fn func(msg string)) BridgeOption {
	return func(b *Bridge) { b.onNotify = fn }
}

// WithOnSynced installs a callback invoked after each successful mirror
// push, typically to clear the scene's dirty flag.
func WithOnSynced(fn func()) BridgeOption {
	return func(b *Bridge) { b.onSynced = fn }
}

// NewBridge creates a bridge for the given document id. mirror receives
// the short-debounce document sync; saver receives the long-debounce
// autosave (a backend store for authenticated sessions, an ephemeral one
// otherwise).
func NewBridge(docID string, mirror, saver Store, logger *zap.Logger, opts ...BridgeOption) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{
		mirror:    mirror,
		saver:     saver,
		logger:    logger,
		docID:     docID,
		syncDelay: DefaultSyncDelay,
		saveDelay: DefaultAutosaveDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DocumentID returns the active document id.
func (b *Bridge) DocumentID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.docID
}

// SetDocumentID switches the active document, dropping pending work for
// the previous one.
func (b *Bridge) SetDocumentID(id string) {
	b.mu.Lock()
	b.stopTimersLocked()
	b.docID = id
	b.last = nil
	b.pendingSync = nil
	b.pendingSave = nil
	b.mu.Unlock()
}

// Saving reports whether an autosave is currently in flight.
func (b *Bridge) Saving() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saving
}

// Observe takes a scene snapshot and, if it differs from the last
// propagated one, schedules both debounced pushes. Identical snapshots
// are dropped so render-only notifications cause no writes.
func (b *Bridge) Observe(st *board.FullState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if stateEqual(b.last, st) {
		return
	}
	snapshot := st.Clone()
	b.last = snapshot
	b.pendingSync = snapshot
	b.pendingSave = snapshot

	if b.syncTimer == nil {
		b.syncTimer = time.AfterFunc(b.syncDelay, b.fireSync)
	} else {
		b.syncTimer.Reset(b.syncDelay)
	}
	if b.saveTimer == nil {
		b.saveTimer = time.AfterFunc(b.saveDelay, b.fireSave)
	} else {
		b.saveTimer.Reset(b.saveDelay)
	}
}

func (b *Bridge) fireSync() {
	b.mu.Lock()
	st := b.pendingSync
	b.pendingSync = nil
	id := b.docID
	b.mu.Unlock()
	if st == nil {
		return
	}
	b.pushMirror(context.Background(), id, st)
}

func (b *Bridge) pushMirror(ctx context.Context, id string, st *board.FullState) {
	if err := b.mirror.Save(ctx, id, st); err != nil {
		// The in-memory state stays authoritative; the document simply
		// remains unsaved and the next edit re-arms the debounce.
		b.logger.Warn("document sync failed",
			zap.String("documentID", id),
			zap.Error(err))
		b.notifyUser("sync failed: " + err.Error())
		return
	}
	if b.onSynced != nil {
		b.onSynced()
	}
}

func (b *Bridge) fireSave() {
	b.mu.Lock()
	st := b.pendingSave
	b.pendingSave = nil
	id := b.docID
	if st == nil {
		b.mu.Unlock()
		return
	}
	b.saving = true
	b.mu.Unlock()

	err := b.saver.Save(context.Background(), id, st)

	b.mu.Lock()
	b.saving = false
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("autosave failed",
			zap.String("documentID", id),
			zap.Error(err))
		b.notifyUser("autosave failed: " + err.Error())
	}
}

// Flush pushes any pending snapshots immediately, bypassing the debounce
// windows. Used on shutdown and for explicit manual saves.
func (b *Bridge) Flush(ctx context.Context) {
	b.mu.Lock()
	b.stopTimersLocked()
	sync := b.pendingSync
	save := b.pendingSave
	b.pendingSync = nil
	b.pendingSave = nil
	id := b.docID
	if save != nil {
		b.saving = true
	}
	b.mu.Unlock()

	if sync != nil {
		b.pushMirror(ctx, id, sync)
	}
	if save != nil {
		err := b.saver.Save(ctx, id, save)
		b.mu.Lock()
		b.saving = false
		b.mu.Unlock()
		if err != nil {
			b.logger.Warn("autosave failed",
				zap.String("documentID", id),
				zap.Error(err))
			b.notifyUser("autosave failed: " + err.Error())
		}
	}
}

// Close stops the timers without flushing.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.stopTimersLocked()
	b.mu.Unlock()
}

func (b *Bridge) stopTimersLocked() {
	if b.syncTimer != nil {
		b.syncTimer.Stop()
	}
	if b.saveTimer != nil {
		b.saveTimer.Stop()
	}
}

func (b *Bridge) notifyUser(msg string) {
	if b.onNotify != nil {
		b.onNotify(msg)
	}
}

// stateEqual compares the parts of the state a renderer or mirror cares
// about: nodes, edges, selection and viewport. History growth alone does
// not count as a change.
func stateEqual(a, b *board.FullState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a.Nodes, b.Nodes) &&
		reflect.DeepEqual(a.Edges, b.Edges) &&
		reflect.DeepEqual(a.SelectedNodes, b.SelectedNodes) &&
		reflect.DeepEqual(a.SelectedEdges, b.SelectedEdges) &&
		a.Viewport == b.Viewport
}
