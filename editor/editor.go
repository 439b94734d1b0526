// Package editor translates raw pointer and keyboard events into scene
// mutations: tool modes, marquee selection, node dragging, handle-based
// resizing, drag-to-connect and pan/zoom gestures. It holds only transient
// gesture state and owns no document data, so it is testable without any
// rendering surface.
package editor

import (
	"slate/board"
	"slate/geometry"
	"slate/scene"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Modifiers carries the modifier-key state of a pointer event.
type Modifiers struct {
	Multi bool // Ctrl/Cmd/Shift: toggle membership in the node selection
}

// gesture is the active pointer gesture, if any.
type gesture int

const (
	gestureNone gesture = iota
	gestureDrag
	gestureResize
	gestureMarquee
	gestureConnectDrag
	gesturePan
)

const (
	// handleHitPx is the hit tolerance around resize handles, in screen
	// pixels, so handles stay grabbable at any zoom level.
	handleHitPx = 8.0
	// connectorOffset is how far outward from a side midpoint the
	// connector handle sits, in world units.
	connectorOffset = 14.0
	// wheelThreshold filters out sub-threshold wheel deltas (trackpad
	// noise).
	wheelThreshold = 0.01
)

// Editor is the interaction state machine for one scene.
type Editor struct {
	scene *scene.Scene
	tool  board.Tool

	// Click-click connect state.
	connectSource string

	gesture gesture

	// Node drag state.
	dragNode     string
	dragOffset   board.Point // pointer minus node origin, in world units
	dragMoved    bool
	dragCollapse bool // plain click on a selected node: collapse on release

	// Resize state.
	resizeNode    string
	resizeHandle  Handle
	resizeStart   board.Node // geometry at gesture start
	resizeChanged bool

	// Marquee state, world coordinates.
	marqueeStart board.Point
	marqueeEnd   board.Point

	// Drag-to-connect state.
	dragConnectSource string
	tempTarget        *board.Point // live pointer position, world

	// Pan state.
	lastScreen board.Point

	// Pinch state.
	pinchDist float64

	// While true, Delete/Backspace belongs to a focused text input.
	textEditing bool
}

// New creates an editor driving the given scene.
func New(s *scene.Scene) *Editor {
	return &Editor{
		scene: s,
		tool:  s.Tool(),
	}
}

// Tool returns the active tool.
func (e *Editor) Tool() board.Tool {
	return e.tool
}

// SetTool switches the active tool, discarding any transient connect or
// gesture state.
func (e *Editor) SetTool(t board.Tool) {
	switch t {
	case board.ToolSelect, board.ToolConnect, board.ToolPan:
	default:
		return
	}
	e.tool = t
	e.connectSource = ""
	e.tempTarget = nil
	e.gesture = gestureNone
	e.scene.SetTool(t)
}

// SetTextEditing tells the editor whether keyboard focus is inside a text
// input, which claims Delete/Backspace.
func (e *Editor) SetTextEditing(editing bool) {
	e.textEditing = editing
}

// IsConnecting reports whether a click-click connection is in progress.
func (e *Editor) IsConnecting() bool {
	return e.connectSource != ""
}

// ConnectSource returns the node a pending connection starts from, or "".
func (e *Editor) ConnectSource() string {
	return e.connectSource
}

// IsDragConnecting reports whether a drag-to-connect gesture is active.
func (e *Editor) IsDragConnecting() bool {
	return e.gesture == gestureConnectDrag
}

// Marquee returns the current marquee rectangle in world coordinates.
func (e *Editor) Marquee() (board.Bounds, bool) {
	if e.gesture != gestureMarquee {
		return board.Bounds{}, false
	}
	return board.Bounds{Min: e.marqueeStart, Max: e.marqueeEnd}.Normalized(), true
}

// ConnectionPreview returns the rubber-band edge for an active
// drag-to-connect gesture: the live anchor on the source node toward the
// pointer, and the pointer itself. Recomputed from current geometry on
// every call, never cached.
func (e *Editor) ConnectionPreview() (from, to board.Point, ok bool) {
	if e.gesture != gestureConnectDrag || e.tempTarget == nil {
		return board.Point{}, board.Point{}, false
	}
	n, found := e.scene.EffectiveNode(e.dragConnectSource)
	if !found {
		return board.Point{}, board.Point{}, false
	}
	return geometry.AnchorPoint(n, *e.tempTarget), *e.tempTarget, true
}

// DraggedNode returns the id of the node currently being dragged or
// resized, or "".
func (e *Editor) DraggedNode() string {
	switch e.gesture {
	case gestureDrag:
		return e.dragNode
	case gestureResize:
		return e.resizeNode
	}
	return ""
}

// DeleteSelected removes the current selection unless a text input has
// focus.
func (e *Editor) DeleteSelected() {
	if e.textEditing {
		return
	}
	e.scene.DeleteSelected()
}

// Undo aborts any gesture and steps the scene history back.
func (e *Editor) Undo() {
	e.gesture = gestureNone
	e.tempTarget = nil
	e.scene.Undo()
}

// Redo aborts any gesture and steps the scene history forward.
func (e *Editor) Redo() {
	e.gesture = gestureNone
	e.tempTarget = nil
	e.scene.Redo()
}
