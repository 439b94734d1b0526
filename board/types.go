// Package board contains the fundamental types used throughout the slate diagram editor.
package board

import "math"

// Point represents a 2D coordinate in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size represents the dimensions of a node.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MinNodeSize is the smallest width or height a node may have, in world units.
const MinNodeSize = 20.0

// MaxStrokeWidth caps the stroke width used by renderers regardless of the
// stored value.
const MaxStrokeWidth = 10.0

// NodeKind identifies the shape of a node.
type NodeKind string

const (
	KindRectangle NodeKind = "rectangle"
	KindEllipse   NodeKind = "ellipse"
	KindDiamond   NodeKind = "diamond"
	KindText      NodeKind = "text"
)

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindRectangle, KindEllipse, KindDiamond, KindText:
		return true
	}
	return false
}

// Tool identifies the active interaction tool.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolConnect Tool = "connect"
	ToolPan     Tool = "pan"
)

// Node represents a placed shape or text label.
type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	Position    Point    `json:"position"` // Top-left corner in world coordinates
	Size        Size     `json:"size"`
	Text        string   `json:"text"`
	Fill        string   `json:"fill"`
	Stroke      string   `json:"stroke"`
	StrokeWidth float64  `json:"strokeWidth"`
}

// Center returns the center point of the node.
func (n Node) Center() Point {
	return Point{
		X: n.Position.X + n.Size.Width/2,
		Y: n.Position.Y + n.Size.Height/2,
	}
}

// Contains checks if a world point is inside the node's bounding box.
func (n Node) Contains(p Point) bool {
	return p.X >= n.Position.X && p.X <= n.Position.X+n.Size.Width &&
		p.Y >= n.Position.Y && p.Y <= n.Position.Y+n.Size.Height
}

// Bounds returns the node's bounding box.
func (n Node) Bounds() Bounds {
	return Bounds{
		Min: n.Position,
		Max: Point{X: n.Position.X + n.Size.Width, Y: n.Position.Y + n.Size.Height},
	}
}

// Edge represents a directed connector between two distinct nodes. The
// anchor points are derived from the endpoint geometry and cached here;
// they are recomputed whenever an endpoint moves or resizes, never edited
// by hand.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"sourceNodeId"`
	Target       string `json:"targetNodeId"`
	SourceAnchor Point  `json:"sourceAnchor"`
	TargetAnchor Point  `json:"targetAnchor"`
}

// Viewport is the affine map from world to screen coordinates:
// screen = world*Scale + (X, Y).
type Viewport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Viewport scale limits.
const (
	MinScale = 0.25
	MaxScale = 2.0
)

// DefaultViewport returns the origin viewport at scale 1.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Scale: 1}
}

// ToScreen maps a world point to screen coordinates.
func (v Viewport) ToScreen(p Point) Point {
	return Point{X: p.X*v.Scale + v.X, Y: p.Y*v.Scale + v.Y}
}

// ToWorld maps a screen point back to world coordinates.
func (v Viewport) ToWorld(p Point) Point {
	return Point{X: (p.X - v.X) / v.Scale, Y: (p.Y - v.Y) / v.Scale}
}

// ClampScale returns s forced into the [MinScale, MaxScale] range.
func ClampScale(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// ZoomedAt returns the viewport after multiplying the scale by (1+delta),
// clamped, while keeping the world point currently under the given screen
// point fixed on screen.
func (v Viewport) ZoomedAt(delta float64, screen Point) Viewport {
	world := v.ToWorld(screen)
	scale := ClampScale(v.Scale * (1 + delta))
	return Viewport{
		X:     screen.X - world.X*scale,
		Y:     screen.Y - world.Y*scale,
		Scale: scale,
	}
}

// Bounds represents a rectangular area in world space.
type Bounds struct {
	Min, Max Point
}

// Normalized returns the bounds with Min/Max swapped where needed so that
// Min.X <= Max.X and Min.Y <= Max.Y.
func (b Bounds) Normalized() Bounds {
	if b.Min.X > b.Max.X {
		b.Min.X, b.Max.X = b.Max.X, b.Min.X
	}
	if b.Min.Y > b.Max.Y {
		b.Min.Y, b.Max.Y = b.Max.Y, b.Min.Y
	}
	return b
}

// Width returns the width of the bounds.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the height of the bounds.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects reports whether two bounds overlap at all. Touching edges
// count as overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}
