package scene

import (
	"time"

	"slate/board"
)

// DefaultDebounceWindow is how long rapid successive updates to the same
// node are coalesced before the pending patch is applied.
const DefaultDebounceWindow = 100 * time.Millisecond

// NodePatch is a partial update to a node. Nil fields are left untouched.
type NodePatch struct {
	Position    *board.Point
	Size        *board.Size
	Text        *string
	Fill        *string
	Stroke      *string
	StrokeWidth *float64
}

func (p *NodePatch) merge(src NodePatch) {
	if src.Position != nil {
		p.Position = src.Position
	}
	if src.Size != nil {
		p.Size = src.Size
	}
	if src.Text != nil {
		p.Text = src.Text
	}
	if src.Fill != nil {
		p.Fill = src.Fill
	}
	if src.Stroke != nil {
		p.Stroke = src.Stroke
	}
	if src.StrokeWidth != nil {
		p.StrokeWidth = src.StrokeWidth
	}
}

// apply writes the patch onto a node, flooring the size at MinNodeSize.
func (p *NodePatch) apply(n *board.Node) {
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Size != nil {
		n.Size = *p.Size
	}
	if n.Size.Width < board.MinNodeSize {
		n.Size.Width = board.MinNodeSize
	}
	if n.Size.Height < board.MinNodeSize {
		n.Size.Height = board.MinNodeSize
	}
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.Fill != nil {
		n.Fill = *p.Fill
	}
	if p.Stroke != nil {
		n.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		n.StrokeWidth = *p.StrokeWidth
		if n.StrokeWidth < 0 {
			n.StrokeWidth = 0
		}
	}
}

// nodeDebouncer coalesces per-node patches within a short window. All
// methods must be called with the owning scene's lock held; the timer
// callback re-enters through Scene.flushNode which takes the lock itself.
type nodeDebouncer struct {
	window  time.Duration
	pending map[string]*NodePatch
	timers  map[string]*time.Timer
}

func newNodeDebouncer(window time.Duration) *nodeDebouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &nodeDebouncer{
		window:  window,
		pending: make(map[string]*NodePatch),
		timers:  make(map[string]*time.Timer),
	}
}

// queue merges a patch into the pending set for id and (re)arms its timer.
func (d *nodeDebouncer) queue(id string, patch NodePatch, fire func(id string)) {
	if existing, ok := d.pending[id]; ok {
		existing.merge(patch)
		if t, ok := d.timers[id]; ok {
			t.Reset(d.window)
		}
		return
	}
	p := patch
	d.pending[id] = &p
	d.timers[id] = time.AfterFunc(d.window, func() { fire(id) })
}

// take removes and returns the pending patch for id, stopping its timer.
func (d *nodeDebouncer) take(id string) (*NodePatch, bool) {
	patch, ok := d.pending[id]
	if !ok {
		return nil, false
	}
	delete(d.pending, id)
	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
	return patch, true
}

// ids returns the node ids with pending patches.
func (d *nodeDebouncer) ids() []string {
	out := make([]string, 0, len(d.pending))
	for id := range d.pending {
		out = append(out, id)
	}
	return out
}

// peek returns the pending patch for id without removing it.
func (d *nodeDebouncer) peek(id string) (*NodePatch, bool) {
	p, ok := d.pending[id]
	return p, ok
}

// cancel drops all pending patches without applying them.
func (d *nodeDebouncer) cancel() {
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
	for id := range d.pending {
		delete(d.pending, id)
	}
}
