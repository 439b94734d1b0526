package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/gdamore/tcell/v2"

	"slate/board"
	"slate/editor"
	"slate/export"
	"slate/persist"
	"slate/scene"
	"slate/view"
)

// Terminal cells are not square; these factors translate between cell
// coordinates and the pointer-space pixels the editor works in.
const (
	cellW = 4.0
	cellH = 8.0
)

const wheelStep = 0.1

func cellToScreen(x, y int) board.Point {
	return board.Point{X: float64(x) * cellW, Y: float64(y) * cellH}
}

func screenToCell(p board.Point) (int, int) {
	return int(math.Round(p.X / cellW)), int(math.Round(p.Y / cellH))
}

// tui is the interactive editor shell.
type tui struct {
	screen   tcell.Screen
	scene    *scene.Scene
	ed       *editor.Editor
	bridge   *persist.Bridge
	registry *export.Registry

	notice      string
	prevButtons tcell.ButtonMask
	quit        bool

	// Label editing state: non-empty editNode routes keys to the editor.
	editNode     string
	editOriginal string
	editBuf      []rune
}

func runEditor(sc *scene.Scene, ed *editor.Editor, bridge *persist.Bridge, notices <-chan string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	t := &tui{
		screen:   screen,
		scene:    sc,
		ed:       ed,
		bridge:   bridge,
		registry: export.NewRegistry(),
	}

	// Every scene change feeds the sync bridge and wakes the event loop
	// for a redraw.
	sc.OnChange(func() {
		bridge.Observe(sc.FullState())
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	go func() {
		for msg := range notices {
			_ = screen.PostEvent(tcell.NewEventInterrupt(msg))
		}
	}()

	t.draw()
	for !t.quit {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if msg, ok := ev.Data().(string); ok {
				t.notice = msg
			}
		case *tcell.EventMouse:
			t.handleMouse(ev)
		case *tcell.EventKey:
			t.handleKey(ev)
		case nil:
			return nil
		}
		t.draw()
	}
	return nil
}

func (t *tui) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pt := cellToScreen(x, y)
	buttons := ev.Buttons()
	mods := editor.Modifiers{
		Multi: ev.Modifiers()&(tcell.ModCtrl|tcell.ModShift) != 0,
	}

	if buttons&tcell.WheelUp != 0 {
		t.ed.Wheel(wheelStep, pt)
	}
	if buttons&tcell.WheelDown != 0 {
		t.ed.Wheel(-wheelStep, pt)
	}

	pressed := buttons &^ t.prevButtons
	released := t.prevButtons &^ buttons

	switch {
	case pressed&tcell.Button1 != 0:
		t.ed.PointerDown(pt, editor.ButtonLeft, mods)
	case pressed&tcell.Button2 != 0:
		t.ed.PointerDown(pt, editor.ButtonRight, mods)
	case released&(tcell.Button1|tcell.Button2) != 0:
		t.ed.PointerUp(pt)
	default:
		if buttons&(tcell.Button1|tcell.Button2) != 0 {
			t.ed.PointerMove(pt)
		}
	}
	t.prevButtons = buttons &^ (tcell.WheelUp | tcell.WheelDown)
}

func (t *tui) handleKey(ev *tcell.EventKey) {
	if t.editNode != "" {
		t.handleEditKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		t.startLabelEdit()
		return
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit = true
		return
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		t.ed.DeleteSelected()
		return
	case tcell.KeyCtrlZ:
		t.ed.Undo()
		return
	case tcell.KeyCtrlY:
		t.ed.Redo()
		return
	}

	switch ev.Rune() {
	case 'q':
		t.quit = true
	case 'r':
		t.scene.AddNode(board.KindRectangle, t.scene.NextPlacement())
	case 'o':
		t.scene.AddNode(board.KindEllipse, t.scene.NextPlacement())
	case 'd':
		t.scene.AddNode(board.KindDiamond, t.scene.NextPlacement())
	case 't':
		t.scene.AddNode(board.KindText, t.scene.NextPlacement())
	case 's':
		t.ed.SetTool(board.ToolSelect)
	case 'c':
		t.ed.SetTool(board.ToolConnect)
	case 'h':
		t.ed.SetTool(board.ToolPan)
	case 'u':
		t.ed.Undo()
	case 'U':
		t.ed.Redo()
	case 'C':
		t.scene.Clear()
	case 'x':
		t.exportPNG()
	case 'y':
		if err := export.CopyJSON(t.scene.Board()); err != nil {
			t.notice = "clipboard: " + err.Error()
		} else {
			t.notice = "board copied to clipboard"
		}
	case 'w':
		t.bridge.Flush(context.Background())
		t.notice = "saved"
	}
}

// startLabelEdit begins editing the label of the sole selected node.
// Keystrokes land in the model synchronously so incident edges and the
// canvas track the text as it is typed; the history commit waits for
// Enter.
func (t *tui) startLabelEdit() {
	sel := t.scene.SelectedNodes()
	if len(sel) != 1 {
		t.notice = "select one node to edit its label"
		return
	}
	n, ok := t.scene.NodeByID(sel[0])
	if !ok {
		return
	}
	t.editNode = n.ID
	t.editOriginal = n.Text
	t.editBuf = []rune(n.Text)
	t.ed.SetTextEditing(true)
}

func (t *tui) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		if string(t.editBuf) != t.editOriginal {
			t.scene.SaveHistory()
		}
		t.stopLabelEdit()
	case tcell.KeyEscape:
		t.setEditText(t.editOriginal)
		t.stopLabelEdit()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.editBuf) > 0 {
			t.editBuf = t.editBuf[:len(t.editBuf)-1]
			t.setEditText(string(t.editBuf))
		}
	case tcell.KeyRune:
		t.editBuf = append(t.editBuf, ev.Rune())
		t.setEditText(string(t.editBuf))
	}
}

func (t *tui) setEditText(text string) {
	t.scene.UpdateNode(t.editNode, scene.NodePatch{Text: &text}, scene.FlushImmediate)
}

func (t *tui) stopLabelEdit() {
	t.editNode = ""
	t.editOriginal = ""
	t.editBuf = nil
	t.ed.SetTextEditing(false)
}

func (t *tui) exportPNG() {
	exp, err := t.registry.Get("png")
	if err != nil {
		t.notice = err.Error()
		return
	}
	data, err := exp.Export(t.scene.Board())
	if err != nil {
		t.notice = "export: " + err.Error()
		return
	}
	name := t.scene.Name()
	if name == "" {
		name = "board"
	}
	path := name + exp.GetFileExtension()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.notice = "export: " + err.Error()
		return
	}
	t.notice = "exported " + path
}

func (t *tui) draw() {
	t.screen.Clear()
	vp := t.scene.Viewport()

	for _, e := range t.scene.Edges() {
		t.drawLine(vp, e.SourceAnchor, e.TargetAnchor, '·', tcell.StyleDefault.Foreground(tcell.ColorGray))
		tx, ty := screenToCell(vp.ToScreen(e.TargetAnchor))
		style := tcell.StyleDefault.Foreground(tcell.ColorGray)
		if t.scene.IsEdgeSelected(e.ID) {
			style = style.Bold(true).Foreground(tcell.ColorYellow)
		}
		t.screen.SetContent(tx, ty, '◆', nil, style)
	}

	if from, to, ok := t.ed.ConnectionPreview(); ok {
		t.drawLine(vp, from, to, '+', tcell.StyleDefault.Foreground(tcell.ColorTeal))
	}

	for _, n := range t.scene.Nodes() {
		// A node mid-drag renders at its tentative geometry.
		if eff, ok := t.scene.EffectiveNode(n.ID); ok {
			n = eff
		}
		t.drawNode(vp, n, t.scene.IsNodeSelected(n.ID))
	}

	if r, ok := t.ed.Marquee(); ok {
		t.drawRect(vp, r, '░', tcell.StyleDefault.Foreground(tcell.ColorBlue))
	}

	t.drawStatus()
	t.screen.Show()
}

func (t *tui) drawNode(vp board.Viewport, n board.Node, selected bool) {
	b := n.Bounds()
	x1, y1 := screenToCell(vp.ToScreen(b.Min))
	x2, y2 := screenToCell(vp.ToScreen(b.Max))
	if x2 <= x1 {
		x2 = x1 + 1
	}
	if y2 <= y1 {
		y2 = y1 + 1
	}

	style := tcell.StyleDefault
	if selected {
		style = style.Bold(true).Foreground(tcell.ColorYellow)
	}

	tl, tr, bl, br := '┌', '┐', '└', '┘'
	switch n.Kind {
	case board.KindEllipse:
		tl, tr, bl, br = '╭', '╮', '╰', '╯'
	case board.KindDiamond:
		tl, tr, bl, br = '◤', '◥', '◣', '◢'
	case board.KindText:
		tl, tr, bl, br = ' ', ' ', ' ', ' '
	}

	if n.Kind != board.KindText {
		for x := x1 + 1; x < x2; x++ {
			t.screen.SetContent(x, y1, '─', nil, style)
			t.screen.SetContent(x, y2, '─', nil, style)
		}
		for y := y1 + 1; y < y2; y++ {
			t.screen.SetContent(x1, y, '│', nil, style)
			t.screen.SetContent(x2, y, '│', nil, style)
		}
		t.screen.SetContent(x1, y1, tl, nil, style)
		t.screen.SetContent(x2, y1, tr, nil, style)
		t.screen.SetContent(x1, y2, bl, nil, style)
		t.screen.SetContent(x2, y2, br, nil, style)
	}

	label := n.Text
	if label == "" && n.Kind == board.KindText {
		label = "text"
	}
	if label != "" {
		runes := []rune(label)
		maxLen := x2 - x1 - 1
		if maxLen > 0 && len(runes) > maxLen {
			runes = runes[:maxLen]
		}
		cy := (y1 + y2) / 2
		cx := (x1+x2)/2 - len(runes)/2
		for i, r := range runes {
			t.screen.SetContent(cx+i, cy, r, nil, style)
		}
	}
}

func (t *tui) drawRect(vp board.Viewport, r board.Bounds, ch rune, style tcell.Style) {
	x1, y1 := screenToCell(vp.ToScreen(r.Min))
	x2, y2 := screenToCell(vp.ToScreen(r.Max))
	for x := x1; x <= x2; x++ {
		t.screen.SetContent(x, y1, ch, nil, style)
		t.screen.SetContent(x, y2, ch, nil, style)
	}
	for y := y1; y <= y2; y++ {
		t.screen.SetContent(x1, y, ch, nil, style)
		t.screen.SetContent(x2, y, ch, nil, style)
	}
}

// drawLine steps through the segment between two world points and plots a
// rune per crossed cell.
func (t *tui) drawLine(vp board.Viewport, from, to board.Point, ch rune, style tcell.Style) {
	x1, y1 := screenToCell(vp.ToScreen(from))
	x2, y2 := screenToCell(vp.ToScreen(to))
	steps := int(math.Max(math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))))
	if steps == 0 {
		t.screen.SetContent(x1, y1, ch, nil, style)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		x := x1 + int(math.Round(f*float64(x2-x1)))
		y := y1 + int(math.Round(f*float64(y2-y1)))
		t.screen.SetContent(x, y, ch, nil, style)
	}
}

func (t *tui) drawStatus() {
	w, h := t.screen.Size()
	cur, total := t.scene.HistoryStats()
	status := fmt.Sprintf(" %s | %s | nodes:%d edges:%d | history %d/%d | zoom %.2fx",
		t.scene.Name(), t.ed.Tool(), len(t.scene.Nodes()), len(t.scene.Edges()),
		cur, total, t.scene.Viewport().Scale)
	if t.scene.Dirty() {
		status += " | unsaved"
	}
	if t.bridge.Saving() {
		status += " | saving…"
	}
	if t.editNode != "" {
		status += " | editing: " + string(t.editBuf) + "▌"
	}
	if t.notice != "" {
		status += " | " + t.notice
	}
	drawStatusLine(t.screen, status, w, h)
}

func drawStatusLine(screen tcell.Screen, status string, w, h int) {
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range status {
		if x >= w {
			break
		}
		screen.SetContent(x, h-1, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		screen.SetContent(x, h-1, ' ', nil, style)
	}
}

// runViewer is the read-only shared view: pan and zoom on a local
// viewport, no mutations.
func runViewer(v *view.View) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	var dragging bool
	var last board.Point

	draw := func() {
		screen.Clear()
		vp := v.Viewport()
		rt := &tui{screen: screen}
		for _, e := range v.Edges() {
			rt.drawLine(vp, e.SourceAnchor, e.TargetAnchor, '·', tcell.StyleDefault.Foreground(tcell.ColorGray))
		}
		for _, n := range v.Nodes() {
			rt.drawNode(vp, n, false)
		}
		w, h := screen.Size()
		status := fmt.Sprintf(" %s (read-only) | zoom %.2fx | drag to pan, wheel to zoom, q to quit",
			v.Name(), vp.Scale)
		drawStatusLine(screen, status, w, h)
		screen.Show()
	}

	draw()
	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}
		case *tcell.EventMouse:
			x, y := ev.Position()
			pt := cellToScreen(x, y)
			buttons := ev.Buttons()
			if buttons&tcell.WheelUp != 0 {
				v.Zoom(wheelStep, pt)
			}
			if buttons&tcell.WheelDown != 0 {
				v.Zoom(-wheelStep, pt)
			}
			if buttons&tcell.Button1 != 0 {
				if dragging {
					v.Pan(pt.X-last.X, pt.Y-last.Y)
				}
				dragging = true
				last = pt
			} else {
				dragging = false
			}
		}
		draw()
	}
}
