// Package scene holds the authoritative in-memory model of a diagram
// document: the ordered node and edge collections, the selection sets, the
// viewport transform and the bounded undo/redo history. All mutation goes
// through the operations here; edge anchors are recomputed on every
// geometry change so no stale anchor survives a commit.
package scene

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slate/board"
	"slate/geometry"
)

// FlushPolicy selects how UpdateNode applies a patch.
type FlushPolicy int

const (
	// FlushImmediate applies the patch synchronously, for callers that
	// need same-tick visibility of the result.
	FlushImmediate FlushPolicy = iota
	// FlushDebounced coalesces rapid successive patches for the same node
	// into one mutation. Anchors still track the tentative geometry on
	// every call so edges follow a drag in real time.
	FlushDebounced
)

// Scene is the single mutable model of an open document.
type Scene struct {
	mu        sync.Mutex
	name      string
	nodes     []board.Node
	edges     []board.Edge
	viewport  board.Viewport
	selNodes  map[string]struct{}
	selEdges  map[string]struct{}
	tool      board.Tool
	history   *History
	debounce  *nodeDebouncer
	dirty     bool
	logger    *zap.Logger
	listeners []func()
}

// Option configures a Scene.
type Option func(*Scene)

// WithDebounceWindow overrides the node update debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(s *Scene) { s.debounce = newNodeDebouncer(d) }
}

// WithHistoryCapacity overrides the undo stack capacity.
func WithHistoryCapacity(n int) Option {
	return func(s *Scene) { s.history = NewHistory(n) }
}

// New creates an empty scene. The initial empty board is recorded as the
// first history snapshot so the first edit can be undone.
func New(logger *zap.Logger, opts ...Option) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scene{
		nodes:    []board.Node{},
		edges:    []board.Edge{},
		viewport: board.DefaultViewport(),
		selNodes: make(map[string]struct{}),
		selEdges: make(map[string]struct{}),
		tool:     board.ToolSelect,
		history:  NewHistory(DefaultHistoryCapacity),
		debounce: newNodeDebouncer(DefaultDebounceWindow),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history.Save(s.boardLocked())
	return s
}

// OnChange registers a listener invoked after every mutation. Listeners
// run synchronously on the mutating call, outside the scene lock.
func (s *Scene) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Scene) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func defaultSize(kind board.NodeKind) board.Size {
	if kind == board.KindText {
		return board.Size{Width: 140, Height: 40}
	}
	return board.Size{Width: 120, Height: 80}
}

func defaultStyle(kind board.NodeKind) (fill, stroke string, strokeWidth float64) {
	switch kind {
	case board.KindEllipse:
		return "#eef2ff", "#312e81", 2
	case board.KindDiamond:
		return "#fef3c7", "#92400e", 2
	case board.KindText:
		return "", "#111827", 0
	default:
		return "#ffffff", "#1f2937", 2
	}
}

// NextPlacement computes the staggered default position for the next added
// node: a diagonal cascade that wraps every eight placements.
func (s *Scene) NextPlacement() board.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.nodes)
	step := float64(i % 8)
	wrap := float64(i / 8)
	return board.Point{
		X: 100 + 40*step + 24*wrap,
		Y: 100 + 40*step,
	}
}

// AddNode creates a node of the given kind at the given world position
// with default size, text and style, makes it the sole selection and
// records a history snapshot.
func (s *Scene) AddNode(kind board.NodeKind, pos board.Point) board.Node {
	s.mu.Lock()
	if !kind.Valid() {
		kind = board.KindRectangle
	}
	fill, stroke, sw := defaultStyle(kind)
	n := board.Node{
		ID:          uuid.NewString(),
		Kind:        kind,
		Position:    pos,
		Size:        defaultSize(kind),
		Fill:        fill,
		Stroke:      stroke,
		StrokeWidth: sw,
	}
	s.nodes = append(s.nodes, n)
	s.selNodes = map[string]struct{}{n.ID: {}}
	s.selEdges = make(map[string]struct{})
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
	return n
}

// UpdateNode applies a partial update to a node. With FlushImmediate the
// patch lands synchronously; with FlushDebounced it is coalesced with other
// patches for the same node inside the debounce window, while incident edge
// anchors already track the tentative geometry. Neither path records a
// history snapshot; commits happen at gesture boundaries.
func (s *Scene) UpdateNode(id string, patch NodePatch, policy FlushPolicy) {
	s.mu.Lock()
	if s.nodeIndexLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	if policy == FlushImmediate {
		s.applyPatchLocked(id, &patch)
	} else {
		s.debounce.queue(id, patch, s.flushNode)
		s.recomputeAnchorsLocked(id)
		s.dirty = true
	}
	s.mu.Unlock()
	s.notify()
}

// flushNode is the debounce timer callback for one node.
func (s *Scene) flushNode(id string) {
	s.mu.Lock()
	patch, ok := s.debounce.take(id)
	if ok {
		s.applyPatchLocked(id, patch)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// Flush forces all pending debounced updates to apply immediately. Gesture
// handlers call this before taking a history snapshot so the snapshot sees
// final state.
func (s *Scene) Flush() {
	s.mu.Lock()
	applied := false
	for _, id := range s.debounce.ids() {
		if patch, ok := s.debounce.take(id); ok {
			s.applyPatchLocked(id, patch)
			applied = true
		}
	}
	s.mu.Unlock()
	if applied {
		s.notify()
	}
}

func (s *Scene) applyPatchLocked(id string, patch *NodePatch) {
	i := s.nodeIndexLocked(id)
	if i < 0 {
		return
	}
	patch.apply(&s.nodes[i])
	s.dirty = true
	s.recomputeAnchorsLocked(id)
}

// recomputeAnchorsLocked refreshes the anchors that lie on the given
// node's boundary, using its tentative (pending-patch) geometry and the
// other endpoint's center. The far endpoint's anchor is owned by that node
// and refreshed when it mutates.
func (s *Scene) recomputeAnchorsLocked(id string) {
	node, ok := s.effectiveNodeLocked(id)
	if !ok {
		return
	}
	for i := range s.edges {
		e := &s.edges[i]
		switch id {
		case e.Source:
			if other, ok := s.effectiveNodeLocked(e.Target); ok {
				e.SourceAnchor = geometry.AnchorPoint(node, other.Center())
			}
		case e.Target:
			if other, ok := s.effectiveNodeLocked(e.Source); ok {
				e.TargetAnchor = geometry.AnchorPoint(node, other.Center())
			}
		}
	}
}

// effectiveNodeLocked returns the node with any pending debounced patch
// overlaid, i.e. the geometry the user currently sees mid-gesture.
func (s *Scene) effectiveNodeLocked(id string) (board.Node, bool) {
	i := s.nodeIndexLocked(id)
	if i < 0 {
		return board.Node{}, false
	}
	n := s.nodes[i]
	if patch, ok := s.debounce.peek(id); ok {
		patch.apply(&n)
	}
	return n, true
}

// EffectiveNode returns a node with pending debounced updates applied,
// for renderers that must show the live mid-gesture geometry.
func (s *Scene) EffectiveNode(id string) (board.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveNodeLocked(id)
}

// DeleteNode removes a node and all edges referencing it atomically, and
// clears it from the selection. Unknown ids are a no-op.
func (s *Scene) DeleteNode(id string) {
	s.mu.Lock()
	i := s.nodeIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.debounce.take(id)
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		} else {
			delete(s.selEdges, e.ID)
		}
	}
	s.edges = kept
	delete(s.selNodes, id)
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
}

// AddEdge connects two existing, distinct nodes. Self-loops, unknown
// endpoints and duplicate edges between the same unordered pair are
// silently rejected. On success both anchors are computed and a history
// snapshot is recorded.
func (s *Scene) AddEdge(sourceID, targetID string) (board.Edge, bool) {
	s.mu.Lock()
	if sourceID == targetID {
		s.mu.Unlock()
		return board.Edge{}, false
	}
	si := s.nodeIndexLocked(sourceID)
	ti := s.nodeIndexLocked(targetID)
	if si < 0 || ti < 0 {
		s.mu.Unlock()
		return board.Edge{}, false
	}
	for _, e := range s.edges {
		if (e.Source == sourceID && e.Target == targetID) ||
			(e.Source == targetID && e.Target == sourceID) {
			s.logger.Debug("duplicate edge rejected",
				zap.String("source", sourceID),
				zap.String("target", targetID))
			s.mu.Unlock()
			return board.Edge{}, false
		}
	}
	src := s.nodes[si]
	dst := s.nodes[ti]
	e := board.Edge{
		ID:           uuid.NewString(),
		Source:       sourceID,
		Target:       targetID,
		SourceAnchor: geometry.AnchorPoint(src, dst.Center()),
		TargetAnchor: geometry.AnchorPoint(dst, src.Center()),
	}
	s.edges = append(s.edges, e)
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
	return e, true
}

// DeleteEdge removes an edge by id. Unknown ids are a no-op.
func (s *Scene) DeleteEdge(id string) {
	s.mu.Lock()
	found := false
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		s.edges = kept
		s.mu.Unlock()
		return
	}
	s.edges = kept
	delete(s.selEdges, id)
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
}

// SelectNode makes the node the selection. With multi set, membership in
// the node selection is toggled instead. Either way the edge selection is
// cleared.
func (s *Scene) SelectNode(id string, multi bool) {
	s.mu.Lock()
	if s.nodeIndexLocked(id) < 0 {
		s.mu.Unlock()
		return
	}
	if multi {
		if _, ok := s.selNodes[id]; ok {
			delete(s.selNodes, id)
		} else {
			s.selNodes[id] = struct{}{}
		}
	} else {
		s.selNodes = map[string]struct{}{id: {}}
	}
	s.selEdges = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

// SelectEdge makes the edge the sole selection, clearing any node
// selection. Multi-select applies to nodes only.
func (s *Scene) SelectEdge(id string) {
	s.mu.Lock()
	found := false
	for _, e := range s.edges {
		if e.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.selEdges = map[string]struct{}{id: {}}
	s.selNodes = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

// SelectNodes replaces the node selection wholesale (marquee result) and
// clears the edge selection.
func (s *Scene) SelectNodes(ids []string) {
	s.mu.Lock()
	s.selNodes = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.nodeIndexLocked(id) >= 0 {
			s.selNodes[id] = struct{}{}
		}
	}
	s.selEdges = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

// ClearSelection empties both selection sets.
func (s *Scene) ClearSelection() {
	s.mu.Lock()
	changed := len(s.selNodes) > 0 || len(s.selEdges) > 0
	s.selNodes = make(map[string]struct{})
	s.selEdges = make(map[string]struct{})
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// DeleteSelected removes every selected node and edge, plus all edges
// touching a selected node, as one commit.
func (s *Scene) DeleteSelected() {
	s.mu.Lock()
	if len(s.selNodes) == 0 && len(s.selEdges) == 0 {
		s.mu.Unlock()
		return
	}
	keptNodes := s.nodes[:0]
	for _, n := range s.nodes {
		if _, sel := s.selNodes[n.ID]; !sel {
			keptNodes = append(keptNodes, n)
		} else {
			s.debounce.take(n.ID)
		}
	}
	s.nodes = keptNodes
	keptEdges := s.edges[:0]
	for _, e := range s.edges {
		_, selEdge := s.selEdges[e.ID]
		_, srcGone := s.selNodes[e.Source]
		_, dstGone := s.selNodes[e.Target]
		if selEdge || srcGone || dstGone {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.edges = keptEdges
	s.selNodes = make(map[string]struct{})
	s.selEdges = make(map[string]struct{})
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
}

// SetViewport replaces the viewport, clamping the scale.
func (s *Scene) SetViewport(v board.Viewport) {
	s.mu.Lock()
	if v.Scale == 0 {
		v.Scale = s.viewport.Scale
	}
	v.Scale = board.ClampScale(v.Scale)
	s.viewport = v
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// Pan translates the viewport by a screen-space delta. Panning is
// scale-invariant in screen pixels.
func (s *Scene) Pan(dx, dy float64) {
	s.mu.Lock()
	s.viewport.X += dx
	s.viewport.Y += dy
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// Zoom multiplies the scale by (1+delta), clamped to the scale range,
// keeping the world point under the given screen point fixed on screen.
func (s *Scene) Zoom(delta float64, screen board.Point) {
	s.mu.Lock()
	s.viewport = s.viewport.ZoomedAt(delta, screen)
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SaveHistory records a snapshot of the current board. Gesture handlers
// call this at commit boundaries (drag end, resize end), after Flush.
func (s *Scene) SaveHistory() {
	s.mu.Lock()
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
}

// Undo restores the previous history snapshot and clears the selection
// (selection is ephemeral UI state, not document content). No-op at the
// oldest snapshot.
func (s *Scene) Undo() {
	s.mu.Lock()
	s.debounce.cancel()
	b := s.history.Undo()
	if b == nil {
		s.mu.Unlock()
		return
	}
	s.adoptBoardLocked(b)
	s.mu.Unlock()
	s.notify()
}

// Redo restores the next history snapshot and clears the selection. No-op
// at the newest snapshot.
func (s *Scene) Redo() {
	s.mu.Lock()
	s.debounce.cancel()
	b := s.history.Redo()
	if b == nil {
		s.mu.Unlock()
		return
	}
	s.adoptBoardLocked(b)
	s.mu.Unlock()
	s.notify()
}

func (s *Scene) adoptBoardLocked(b *board.Board) {
	s.nodes = b.Nodes
	s.edges = b.Edges
	s.viewport = b.Viewport
	s.selNodes = make(map[string]struct{})
	s.selEdges = make(map[string]struct{})
	s.dirty = true
}

// LoadState replaces the document wholesale from a persisted state. If the
// incoming nodes and edges are deep-equal to the current ones the load is
// skipped entirely, so redundant loads never pollute history. Returns
// whether the state was adopted.
func (s *Scene) LoadState(st *board.FullState) bool {
	if st == nil {
		return false
	}
	st = st.Clone()
	st.Normalize()
	s.mu.Lock()
	if reflect.DeepEqual(s.nodes, st.Nodes) && reflect.DeepEqual(s.edges, st.Edges) {
		s.mu.Unlock()
		return false
	}
	s.debounce.cancel()
	s.name = st.Name
	s.nodes = st.Nodes
	s.edges = st.Edges
	s.viewport = st.Viewport
	s.tool = st.Tool
	s.selNodes = make(map[string]struct{}, len(st.SelectedNodes))
	for _, id := range st.SelectedNodes {
		s.selNodes[id] = struct{}{}
	}
	s.selEdges = make(map[string]struct{}, len(st.SelectedEdges))
	for _, id := range st.SelectedEdges {
		s.selEdges[id] = struct{}{}
	}
	if len(st.History) > 0 {
		s.history.Restore(st.History, st.HistoryIndex)
	} else {
		s.history.Clear()
		s.history.Save(s.boardLocked())
	}
	s.dirty = false
	s.mu.Unlock()
	s.notify()
	return true
}

// Clear empties the document, resets the viewport to the origin at scale 1
// and records a history snapshot.
func (s *Scene) Clear() {
	s.mu.Lock()
	s.debounce.cancel()
	s.nodes = []board.Node{}
	s.edges = []board.Edge{}
	s.viewport = board.DefaultViewport()
	s.selNodes = make(map[string]struct{})
	s.selEdges = make(map[string]struct{})
	s.dirty = true
	s.history.Save(s.boardLocked())
	s.mu.Unlock()
	s.notify()
}

func (s *Scene) nodeIndexLocked(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) boardLocked() *board.Board {
	return &board.Board{Nodes: s.nodes, Edges: s.edges, Viewport: s.viewport}
}

// Nodes returns a copy of the committed node list in order.
func (s *Scene) Nodes() []board.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the edge list in order.
func (s *Scene) Edges() []board.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NodeByID returns the committed node with the given id.
func (s *Scene) NodeByID(id string) (board.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.nodeIndexLocked(id)
	if i < 0 {
		return board.Node{}, false
	}
	return s.nodes[i], true
}

// EdgeByID returns the edge with the given id.
func (s *Scene) EdgeByID(id string) (board.Edge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ID == id {
			return e, true
		}
	}
	return board.Edge{}, false
}

// NodeAt returns the topmost node containing the given world point.
func (s *Scene) NodeAt(p board.Point) (board.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n, _ := s.effectiveNodeLocked(s.nodes[i].ID)
		if n.Contains(p) {
			return n, true
		}
	}
	return board.Node{}, false
}

// NodesIntersecting returns the ids of nodes whose bounding box overlaps
// the given world rectangle at all (any overlap, not containment).
func (s *Scene) NodesIntersecting(r board.Bounds) []string {
	r = r.Normalized()
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, n := range s.nodes {
		if n.Bounds().Intersects(r) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Viewport returns the current viewport transform.
func (s *Scene) Viewport() board.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SelectedNodes returns the selected node ids, sorted for stable output.
func (s *Scene) SelectedNodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.selNodes)
}

// SelectedEdges returns the selected edge ids, sorted for stable output.
func (s *Scene) SelectedEdges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.selEdges)
}

// IsNodeSelected reports whether the node is in the selection.
func (s *Scene) IsNodeSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selNodes[id]
	return ok
}

// IsEdgeSelected reports whether the edge is in the selection.
func (s *Scene) IsEdgeSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selEdges[id]
	return ok
}

// Dirty reports whether the document has unsynced changes.
func (s *Scene) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkClean clears the dirty flag; the sync bridge calls this after a
// successful push.
func (s *Scene) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Name returns the document name.
func (s *Scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName sets the document name.
func (s *Scene) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// Tool returns the active tool.
func (s *Scene) Tool() board.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetTool records the active tool so it round-trips through persistence.
func (s *Scene) SetTool(t board.Tool) {
	s.mu.Lock()
	s.tool = t
	s.mu.Unlock()
	s.notify()
}

// CanUndo reports whether an undo step exists.
func (s *Scene) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step exists.
func (s *Scene) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryStats returns current position and total snapshot count.
func (s *Scene) HistoryStats() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Stats()
}

// FullState captures the complete serializable document state, history
// included, for the persistence collaborator.
func (s *Scene) FullState() *board.FullState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &board.FullState{
		Name:          s.name,
		Nodes:         make([]board.Node, len(s.nodes)),
		Edges:         make([]board.Edge, len(s.edges)),
		Viewport:      s.viewport,
		SelectedNodes: sortedKeys(s.selNodes),
		SelectedEdges: sortedKeys(s.selEdges),
		Tool:          s.tool,
		History:       s.history.Snapshots(),
		HistoryIndex:  s.history.Index(),
		Dirty:         s.dirty,
	}
	copy(st.Nodes, s.nodes)
	copy(st.Edges, s.edges)
	return st
}

// Board returns a deep copy of the current board content.
func (s *Scene) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardLocked().Clone()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
