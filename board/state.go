package board

// Board is the document content: nodes, edges and the viewport transform.
// It is the unit stored in history snapshots and the unit exported to
// interchange files.
type Board struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// Clone creates a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	clone := &Board{
		Nodes:    make([]Node, len(b.Nodes)),
		Edges:    make([]Edge, len(b.Edges)),
		Viewport: b.Viewport,
	}
	copy(clone.Nodes, b.Nodes)
	copy(clone.Edges, b.Edges)
	return clone
}

// Sanitize enforces model invariants on adopted content: known node
// kinds, the minimum node size, non-negative stroke widths, and edge
// endpoint validity. Edges with dangling endpoints, self-loops and
// duplicate unordered pairs are dropped.
func (b *Board) Sanitize() {
	byID := make(map[string]struct{}, len(b.Nodes))
	for i := range b.Nodes {
		n := &b.Nodes[i]
		if !n.Kind.Valid() {
			n.Kind = KindRectangle
		}
		if n.Size.Width < MinNodeSize {
			n.Size.Width = MinNodeSize
		}
		if n.Size.Height < MinNodeSize {
			n.Size.Height = MinNodeSize
		}
		if n.StrokeWidth < 0 {
			n.StrokeWidth = 0
		}
		byID[n.ID] = struct{}{}
	}

	type pair struct{ a, b string }
	seen := make(map[pair]struct{}, len(b.Edges))
	kept := b.Edges[:0]
	for _, e := range b.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		key := pair{e.Source, e.Target}
		if e.Target < e.Source {
			key = pair{e.Target, e.Source}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, e)
	}
	b.Edges = kept
}

// FullState is the complete serializable document state: the board content
// plus ephemeral editor state that round-trips through persistence.
type FullState struct {
	Name          string   `json:"name,omitempty"`
	Nodes         []Node   `json:"nodes"`
	Edges         []Edge   `json:"edges"`
	Viewport      Viewport `json:"viewport"`
	SelectedNodes []string `json:"selectedNodes"`
	SelectedEdges []string `json:"selectedEdges"`
	Tool          Tool     `json:"tool"`
	History       []Board  `json:"history"`
	HistoryIndex  int      `json:"historyIndex"`
	Dirty         bool     `json:"dirty"`
}

// Clone creates a deep copy of the full state.
func (s *FullState) Clone() *FullState {
	if s == nil {
		return nil
	}
	clone := &FullState{
		Name:          s.Name,
		Nodes:         make([]Node, len(s.Nodes)),
		Edges:         make([]Edge, len(s.Edges)),
		Viewport:      s.Viewport,
		SelectedNodes: make([]string, len(s.SelectedNodes)),
		SelectedEdges: make([]string, len(s.SelectedEdges)),
		Tool:          s.Tool,
		History:       make([]Board, len(s.History)),
		HistoryIndex:  s.HistoryIndex,
		Dirty:         s.Dirty,
	}
	copy(clone.Nodes, s.Nodes)
	copy(clone.Edges, s.Edges)
	copy(clone.SelectedNodes, s.SelectedNodes)
	copy(clone.SelectedEdges, s.SelectedEdges)
	for i := range s.History {
		clone.History[i] = *s.History[i].Clone()
	}
	return clone
}

// Normalize fills in defaults for absent or malformed fields so that a
// partially populated state loaded from storage never errors: empty slices
// for nil collections, the origin viewport for a zero scale, and the
// select tool when none is recorded.
func (s *FullState) Normalize() {
	if s.Nodes == nil {
		s.Nodes = []Node{}
	}
	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	if s.SelectedNodes == nil {
		s.SelectedNodes = []string{}
	}
	if s.SelectedEdges == nil {
		s.SelectedEdges = []string{}
	}
	if s.Viewport.Scale == 0 {
		s.Viewport = DefaultViewport()
	} else {
		s.Viewport.Scale = ClampScale(s.Viewport.Scale)
	}
	switch s.Tool {
	case ToolSelect, ToolConnect, ToolPan:
	default:
		s.Tool = ToolSelect
	}
	if s.HistoryIndex < -1 || s.HistoryIndex >= len(s.History) {
		s.HistoryIndex = len(s.History) - 1
	}

	// A hand-edited or corrupted store file must not smuggle invariant
	// violations into the live model, including via undo.
	content := Board{Nodes: s.Nodes, Edges: s.Edges}
	content.Sanitize()
	s.Nodes, s.Edges = content.Nodes, content.Edges
	for i := range s.History {
		s.History[i].Sanitize()
	}
}

// BoardState returns the board content portion of the state.
func (s *FullState) BoardState() *Board {
	return &Board{Nodes: s.Nodes, Edges: s.Edges, Viewport: s.Viewport}
}
