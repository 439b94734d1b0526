package editor

import (
	"slate/board"
	"slate/scene"
)

// PointerDown begins a gesture from a press at the given screen point.
func (e *Editor) PointerDown(screen board.Point, btn Button, mods Modifiers) {
	if e.gesture != gestureNone {
		return
	}
	world := e.scene.Viewport().ToWorld(screen)

	// Right-drag pans in select mode; the pan tool pans on any button.
	if e.tool == board.ToolPan || (btn == ButtonRight && e.tool == board.ToolSelect) {
		e.gesture = gesturePan
		e.lastScreen = screen
		return
	}
	if btn != ButtonLeft {
		return
	}

	switch e.tool {
	case board.ToolConnect:
		e.connectDown(world)
	case board.ToolSelect:
		e.selectDown(world, mods)
	}
}

// connectDown advances the click-click connection state machine: first
// click picks the source, a click on a different node commits the edge,
// clicking the source again or empty canvas cancels.
func (e *Editor) connectDown(world board.Point) {
	n, ok := e.scene.NodeAt(world)
	if !ok {
		e.connectSource = ""
		return
	}
	switch e.connectSource {
	case "":
		e.connectSource = n.ID
	case n.ID:
		e.connectSource = ""
	default:
		e.scene.AddEdge(e.connectSource, n.ID)
		e.connectSource = ""
	}
}

func (e *Editor) selectDown(world board.Point, mods Modifiers) {
	if id, h := e.resizeHandleAt(world); h != HandleNone {
		n, _ := e.scene.NodeByID(id)
		e.gesture = gestureResize
		e.resizeNode = id
		e.resizeHandle = h
		e.resizeStart = n
		e.resizeChanged = false
		return
	}

	if id, ok := e.connectorHandleAt(world); ok {
		e.gesture = gestureConnectDrag
		e.dragConnectSource = id
		t := world
		e.tempTarget = &t
		return
	}

	if n, ok := e.scene.NodeAt(world); ok {
		if mods.Multi {
			e.scene.SelectNode(n.ID, true)
			return
		}
		// A press on an already-selected node keeps the group selected so
		// it can be dragged; if no drag follows, the release collapses the
		// selection to just this node.
		e.dragCollapse = e.scene.IsNodeSelected(n.ID)
		if !e.dragCollapse {
			e.scene.SelectNode(n.ID, false)
		}
		e.gesture = gestureDrag
		e.dragNode = n.ID
		e.dragOffset = board.Point{X: world.X - n.Position.X, Y: world.Y - n.Position.Y}
		e.dragMoved = false
		return
	}

	// Empty canvas: drop selection and start a marquee.
	e.scene.ClearSelection()
	e.gesture = gestureMarquee
	e.marqueeStart = world
	e.marqueeEnd = world
}

// PointerMove advances the active gesture with a new pointer position.
func (e *Editor) PointerMove(screen board.Point) {
	world := e.scene.Viewport().ToWorld(screen)

	switch e.gesture {
	case gesturePan:
		// Screen-space delta: panning is scale-invariant in pixels.
		e.scene.Pan(screen.X-e.lastScreen.X, screen.Y-e.lastScreen.Y)
		e.lastScreen = screen

	case gestureMarquee:
		e.marqueeEnd = world

	case gestureDrag:
		pos := board.Point{X: world.X - e.dragOffset.X, Y: world.Y - e.dragOffset.Y}
		e.scene.UpdateNode(e.dragNode, scene.NodePatch{Position: &pos}, scene.FlushDebounced)
		e.dragMoved = true

	case gestureResize:
		pos, size := resizedRect(e.resizeStart, e.resizeHandle, world)
		e.scene.UpdateNode(e.resizeNode,
			scene.NodePatch{Position: &pos, Size: &size}, scene.FlushDebounced)
		e.resizeChanged = true

	case gestureConnectDrag:
		t := world
		e.tempTarget = &t
	}
}

// PointerUp completes or cancels the active gesture. Drag and resize flush
// pending debounced updates before committing a single history snapshot;
// releasing a connect drag over empty space or the source node simply
// discards the transient state.
func (e *Editor) PointerUp(screen board.Point) {
	world := e.scene.Viewport().ToWorld(screen)

	switch e.gesture {
	case gestureMarquee:
		r := board.Bounds{Min: e.marqueeStart, Max: e.marqueeEnd}.Normalized()
		e.scene.SelectNodes(e.scene.NodesIntersecting(r))

	case gestureDrag:
		e.scene.Flush()
		if e.dragMoved {
			e.scene.SaveHistory()
		} else if e.dragCollapse {
			e.scene.SelectNode(e.dragNode, false)
		}
		e.dragNode = ""
		e.dragCollapse = false

	case gestureResize:
		e.scene.Flush()
		if e.resizeChanged {
			e.scene.SaveHistory()
		}
		e.resizeNode = ""
		e.resizeHandle = HandleNone

	case gestureConnectDrag:
		if n, ok := e.scene.NodeAt(world); ok && n.ID != e.dragConnectSource {
			e.scene.AddEdge(e.dragConnectSource, n.ID)
		}
		e.dragConnectSource = ""
		e.tempTarget = nil
	}

	e.gesture = gestureNone
}

// Wheel applies a zoom step centered on the given screen point. Deltas
// below the noise threshold are ignored, as is all wheel input while a
// gesture is in progress.
func (e *Editor) Wheel(delta float64, screen board.Point) {
	if e.gesture != gestureNone {
		return
	}
	if delta < wheelThreshold && delta > -wheelThreshold {
		return
	}
	e.scene.Zoom(delta, screen)
}

// PinchStart records the initial inter-finger distance of a pinch.
func (e *Editor) PinchStart(dist float64) {
	if e.gesture != gestureNone {
		return
	}
	e.pinchDist = dist
}

// Pinch zooms by the ratio of the current inter-finger distance to the
// previous one, centered on the finger midpoint.
func (e *Editor) Pinch(dist float64, midScreen board.Point) {
	if e.pinchDist <= 0 || dist <= 0 {
		return
	}
	e.scene.Zoom(dist/e.pinchDist-1, midScreen)
	e.pinchDist = dist
}

// PinchEnd finishes a pinch gesture.
func (e *Editor) PinchEnd() {
	e.pinchDist = 0
}
