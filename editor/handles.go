package editor

import (
	"slate/board"
	"slate/geometry"
)

// Handle identifies one of the eight resize handles around a selected
// node: four corners resize both dimensions, four side midpoints resize
// one.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleNW
)

// movesLeft reports whether the handle drags the left node edge.
func (h Handle) movesLeft() bool {
	return h == HandleW || h == HandleNW || h == HandleSW
}

// movesRight reports whether the handle drags the right node edge.
func (h Handle) movesRight() bool {
	return h == HandleE || h == HandleNE || h == HandleSE
}

// movesTop reports whether the handle drags the top node edge.
func (h Handle) movesTop() bool {
	return h == HandleN || h == HandleNW || h == HandleNE
}

// movesBottom reports whether the handle drags the bottom node edge.
func (h Handle) movesBottom() bool {
	return h == HandleS || h == HandleSW || h == HandleSE
}

// handlePositions returns the world position of each resize handle for a
// node's bounds.
func handlePositions(b board.Bounds) map[Handle]board.Point {
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2
	return map[Handle]board.Point{
		HandleNW: {X: b.Min.X, Y: b.Min.Y},
		HandleN:  {X: midX, Y: b.Min.Y},
		HandleNE: {X: b.Max.X, Y: b.Min.Y},
		HandleE:  {X: b.Max.X, Y: midY},
		HandleSE: {X: b.Max.X, Y: b.Max.Y},
		HandleS:  {X: midX, Y: b.Max.Y},
		HandleSW: {X: b.Min.X, Y: b.Max.Y},
		HandleW:  {X: b.Min.X, Y: midY},
	}
}

// resizeHandleAt returns the resize handle under the world point for the
// single selected node. Handles exist only when exactly one node is
// selected.
func (e *Editor) resizeHandleAt(world board.Point) (string, Handle) {
	sel := e.scene.SelectedNodes()
	if len(sel) != 1 {
		return "", HandleNone
	}
	n, ok := e.scene.NodeByID(sel[0])
	if !ok {
		return "", HandleNone
	}
	tol := handleHitPx / e.scene.Viewport().Scale
	for h, p := range handlePositions(n.Bounds()) {
		if geometry.Distance(world.X, world.Y, p.X, p.Y) <= tol {
			return n.ID, h
		}
	}
	return "", HandleNone
}

// connectorHandlePositions returns the four connector handles of a node:
// points offset outward from each side midpoint.
func connectorHandlePositions(n board.Node) []board.Point {
	b := n.Bounds()
	midX := (b.Min.X + b.Max.X) / 2
	midY := (b.Min.Y + b.Max.Y) / 2
	return []board.Point{
		{X: midX, Y: b.Min.Y - connectorOffset},
		{X: b.Max.X + connectorOffset, Y: midY},
		{X: midX, Y: b.Max.Y + connectorOffset},
		{X: b.Min.X - connectorOffset, Y: midY},
	}
}

// connectorHandleAt returns the topmost node whose connector handle is
// under the world point.
func (e *Editor) connectorHandleAt(world board.Point) (string, bool) {
	tol := handleHitPx / e.scene.Viewport().Scale
	nodes := e.scene.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, p := range connectorHandlePositions(nodes[i]) {
			if geometry.Distance(world.X, world.Y, p.X, p.Y) <= tol {
				return nodes[i].ID, true
			}
		}
	}
	return "", false
}

// resizedRect computes the new position and size for a resize gesture:
// the dragged edges follow the pointer, opposite edges stay anchored, and
// both dimensions floor at the minimum node size.
func resizedRect(start board.Node, h Handle, world board.Point) (board.Point, board.Size) {
	left := start.Position.X
	top := start.Position.Y
	right := left + start.Size.Width
	bottom := top + start.Size.Height

	if h.movesLeft() {
		left = geometry.Min(world.X, right-board.MinNodeSize)
	}
	if h.movesRight() {
		right = geometry.Max(world.X, left+board.MinNodeSize)
	}
	if h.movesTop() {
		top = geometry.Min(world.Y, bottom-board.MinNodeSize)
	}
	if h.movesBottom() {
		bottom = geometry.Max(world.Y, top+board.MinNodeSize)
	}

	return board.Point{X: left, Y: top},
		board.Size{Width: right - left, Height: bottom - top}
}
