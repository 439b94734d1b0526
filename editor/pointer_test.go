package editor

import (
	"testing"
	"time"

	"slate/board"
	"slate/scene"
)

// newFixture returns an editor over a scene whose debounce window never
// fires on its own, so tests control flushing explicitly. The viewport is
// the identity transform, so screen and world coordinates coincide.
func newFixture(t *testing.T) (*Editor, *scene.Scene) {
	t.Helper()
	s := scene.New(nil, scene.WithDebounceWindow(time.Hour))
	return New(s), s
}

func pt(x, y float64) board.Point { return board.Point{X: x, Y: y} }

func TestClickSelectsAndModifierToggles(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	b := s.AddNode(board.KindRectangle, pt(400, 100))

	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	e.PointerUp(pt(110, 110))
	if got := s.SelectedNodes(); len(got) != 1 || got[0] != a.ID {
		t.Fatalf("click selection = %v, want [%s]", got, a.ID)
	}

	e.PointerDown(pt(410, 110), ButtonLeft, Modifiers{Multi: true})
	e.PointerUp(pt(410, 110))
	if got := s.SelectedNodes(); len(got) != 2 {
		t.Fatalf("modifier click should union, got %v", got)
	}

	e.PointerDown(pt(410, 110), ButtonLeft, Modifiers{Multi: true})
	e.PointerUp(pt(410, 110))
	got := s.SelectedNodes()
	if len(got) != 1 || got[0] != a.ID {
		t.Fatalf("modifier click should toggle off, got %v", got)
	}
	_ = b
}

func TestMarqueeSelectsByOverlap(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100)) // 120x80
	s.AddNode(board.KindRectangle, pt(1000, 1000))

	// Start on empty canvas, sweep across a corner of node a.
	e.PointerDown(pt(40, 40), ButtonLeft, Modifiers{})
	e.PointerMove(pt(130, 130))
	if _, ok := e.Marquee(); !ok {
		t.Fatal("expected an active marquee")
	}
	e.PointerUp(pt(130, 130))

	got := s.SelectedNodes()
	if len(got) != 1 || got[0] != a.ID {
		t.Fatalf("marquee selection = %v, want [%s]", got, a.ID)
	}
	if _, ok := e.Marquee(); ok {
		t.Error("marquee should be gone after release")
	}
}

func TestEmptyClickClearsSelection(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	s.SelectNode(a.ID, false)

	e.PointerDown(pt(800, 800), ButtonLeft, Modifiers{})
	e.PointerUp(pt(800, 800))
	if got := s.SelectedNodes(); len(got) != 0 {
		t.Fatalf("selection after empty click = %v, want empty", got)
	}
}

func TestConnectClickClick(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	b := s.AddNode(board.KindRectangle, pt(400, 100))
	e.SetTool(board.ToolConnect)

	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	if !e.IsConnecting() || e.ConnectSource() != a.ID {
		t.Fatal("first click should arm the connection source")
	}
	e.PointerDown(pt(410, 110), ButtonLeft, Modifiers{})
	if e.IsConnecting() {
		t.Error("second click should commit and disarm")
	}
	if len(s.Edges()) != 1 {
		t.Fatalf("got %d edges, want 1", len(s.Edges()))
	}
	_ = b
}

func TestConnectCancelPaths(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	e.SetTool(board.ToolConnect)

	// Clicking the armed node again cancels.
	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	if e.IsConnecting() {
		t.Error("re-clicking the source should cancel")
	}

	// Clicking empty canvas cancels.
	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	e.PointerDown(pt(900, 900), ButtonLeft, Modifiers{})
	if e.IsConnecting() {
		t.Error("empty canvas click should cancel")
	}
	if len(s.Edges()) != 0 {
		t.Errorf("cancelled gestures created %d edges", len(s.Edges()))
	}
	_ = a
}

func TestDragConnectCommitAndCancel(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100)) // bounds 100..220 x 100..180
	b := s.AddNode(board.KindRectangle, pt(400, 100))

	// Press on a's east connector handle (midpoint + offset outward).
	handle := pt(220+connectorOffset, 140)
	e.PointerDown(handle, ButtonLeft, Modifiers{})
	if !e.IsDragConnecting() {
		t.Fatal("expected drag-connect gesture")
	}
	e.PointerMove(pt(300, 140))
	from, to, ok := e.ConnectionPreview()
	if !ok {
		t.Fatal("expected a rubber-band preview")
	}
	if to != pt(300, 140) {
		t.Errorf("preview target = %v, want pointer position", to)
	}
	if from.X != 220 || from.Y != 140 {
		t.Errorf("preview anchor = %v, want boundary point (220,140)", from)
	}

	// Release over node b commits the edge.
	e.PointerUp(pt(410, 140))
	if len(s.Edges()) != 1 {
		t.Fatalf("got %d edges, want 1", len(s.Edges()))
	}
	if e.IsDragConnecting() {
		t.Error("gesture state should be discarded after release")
	}

	// A second drag released over empty space cancels.
	e.PointerDown(handle, ButtonLeft, Modifiers{})
	e.PointerMove(pt(800, 800))
	e.PointerUp(pt(800, 800))
	if len(s.Edges()) != 1 {
		t.Error("release over empty space must not create an edge")
	}
	_, _ = a, b
}

func TestNodeDragFlushesAndCommitsOnce(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	_, before := s.HistoryStats()

	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	for x := 120.0; x <= 200; x += 10 {
		e.PointerMove(pt(x, 110))
	}
	// Mid-gesture, the committed position has not moved yet.
	n, _ := s.NodeByID(a.ID)
	if n.Position.X != 100 {
		t.Fatalf("committed position moved mid-drag: %v", n.Position.X)
	}
	e.PointerUp(pt(200, 110))

	n, _ = s.NodeByID(a.ID)
	if n.Position.X != 190 { // 200 - grab offset of 10
		t.Errorf("position after drag = %v, want 190", n.Position.X)
	}
	if _, after := s.HistoryStats(); after != before+1 {
		t.Errorf("drag must commit exactly one snapshot, got %d new", after-before)
	}
}

func TestResizeFloorsAtMinSize(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100)) // selected by AddNode

	// Grab the south-east corner and push it past the opposite corner.
	e.PointerDown(pt(220, 180), ButtonLeft, Modifiers{})
	e.PointerMove(pt(90, 90))
	e.PointerUp(pt(90, 90))

	n, _ := s.NodeByID(a.ID)
	if n.Size.Width != board.MinNodeSize || n.Size.Height != board.MinNodeSize {
		t.Errorf("size = %+v, want %vx%v", n.Size, board.MinNodeSize, board.MinNodeSize)
	}
	if n.Position != pt(100, 100) {
		t.Errorf("corner-anchored resize moved the anchored corner: %+v", n.Position)
	}
}

func TestSideHandleResizesOneDimension(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))

	// East midpoint handle: only the width changes.
	e.PointerDown(pt(220, 140), ButtonLeft, Modifiers{})
	e.PointerMove(pt(300, 250))
	e.PointerUp(pt(300, 250))

	n, _ := s.NodeByID(a.ID)
	if n.Size.Width != 200 {
		t.Errorf("width = %v, want 200", n.Size.Width)
	}
	if n.Size.Height != 80 {
		t.Errorf("height = %v, want 80 (side handle frees one dimension)", n.Size.Height)
	}
}

func TestRightDragPansInScreenSpace(t *testing.T) {
	e, s := newFixture(t)
	s.SetViewport(board.Viewport{X: 0, Y: 0, Scale: 0.5})

	e.PointerDown(pt(100, 100), ButtonRight, Modifiers{})
	e.PointerMove(pt(130, 160))
	e.PointerUp(pt(130, 160))

	v := s.Viewport()
	if v.X != 30 || v.Y != 60 {
		t.Errorf("viewport offset = (%v,%v), want screen delta (30,60)", v.X, v.Y)
	}
}

func TestWheelThresholdAndGestureSuppression(t *testing.T) {
	e, s := newFixture(t)
	s.AddNode(board.KindRectangle, pt(100, 100))

	e.Wheel(0.001, pt(0, 0))
	if s.Viewport().Scale != 1 {
		t.Error("sub-threshold wheel delta must be ignored")
	}

	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	e.Wheel(0.5, pt(0, 0))
	if s.Viewport().Scale != 1 {
		t.Error("wheel input during a drag must be ignored")
	}
	e.PointerUp(pt(110, 110))

	e.Wheel(0.5, pt(0, 0))
	if s.Viewport().Scale != 1.5 {
		t.Errorf("scale = %v, want 1.5", s.Viewport().Scale)
	}
}

func TestPinchZoomsByDistanceRatio(t *testing.T) {
	e, s := newFixture(t)

	e.PinchStart(100)
	e.Pinch(150, pt(200, 200))
	if s.Viewport().Scale != 1.5 {
		t.Errorf("scale = %v, want 1.5", s.Viewport().Scale)
	}
	e.PinchEnd()
	e.Pinch(300, pt(200, 200))
	if s.Viewport().Scale != 1.5 {
		t.Error("pinch after end must be ignored")
	}
}

func TestDeleteRespectsTextFocus(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	s.SelectNode(a.ID, false)

	e.SetTextEditing(true)
	e.DeleteSelected()
	if len(s.Nodes()) != 1 {
		t.Fatal("delete while editing text must be a no-op")
	}

	e.SetTextEditing(false)
	e.DeleteSelected()
	if len(s.Nodes()) != 0 {
		t.Fatal("delete should remove the selection")
	}
}

func TestPlainClickOnSelectedNodeCollapsesSelection(t *testing.T) {
	e, s := newFixture(t)
	a := s.AddNode(board.KindRectangle, pt(100, 100))
	b := s.AddNode(board.KindRectangle, pt(400, 100))
	s.SelectNodes([]string{a.ID, b.ID})

	// A press alone keeps the group so it can still be dragged.
	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	if got := s.SelectedNodes(); len(got) != 2 {
		t.Fatalf("press should keep the group selected, got %v", got)
	}

	// Releasing without movement collapses to the clicked node.
	e.PointerUp(pt(110, 110))
	if got := s.SelectedNodes(); len(got) != 1 || got[0] != a.ID {
		t.Fatalf("plain click should collapse selection to [%s], got %v", a.ID, got)
	}

	// A drag from a selected node must not collapse on release.
	s.SelectNodes([]string{a.ID, b.ID})
	e.PointerDown(pt(110, 110), ButtonLeft, Modifiers{})
	e.PointerMove(pt(150, 150))
	e.PointerUp(pt(150, 150))
	if got := s.SelectedNodes(); len(got) != 2 {
		t.Fatalf("drag release should keep the group selected, got %v", got)
	}
}
