// Package view presents a document without a mutation path: a shared or
// read-only rendition of a state snapshot. Pan and zoom operate on a
// local viewport copy and never write back to the canonical scene.
package view

import "slate/board"

// View is a non-mutating presentation of a full state.
type View struct {
	state    *board.FullState
	viewport board.Viewport
}

// New clones the given state and seeds the local viewport from it.
func New(st *board.FullState) *View {
	clone := st.Clone()
	clone.Normalize()
	return &View{
		state:    clone,
		viewport: clone.Viewport,
	}
}

// Nodes returns a copy of the nodes.
func (v *View) Nodes() []board.Node {
	out := make([]board.Node, len(v.state.Nodes))
	copy(out, v.state.Nodes)
	return out
}

// Edges returns a copy of the edges.
func (v *View) Edges() []board.Edge {
	out := make([]board.Edge, len(v.state.Edges))
	copy(out, v.state.Edges)
	return out
}

// Name returns the document name.
func (v *View) Name() string {
	return v.state.Name
}

// Viewport returns the local viewport.
func (v *View) Viewport() board.Viewport {
	return v.viewport
}

// Pan translates the local viewport by a screen-space delta.
func (v *View) Pan(dx, dy float64) {
	v.viewport.X += dx
	v.viewport.Y += dy
}

// Zoom scales the local viewport about a screen point, clamped like the
// editable viewport.
func (v *View) Zoom(delta float64, screen board.Point) {
	v.viewport = v.viewport.ZoomedAt(delta, screen)
}
