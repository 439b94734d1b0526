package export

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"slate/board"
)

// PNGExporter rasterizes a board to a PNG image. The world origin is
// translated so all content fits with a margin; the viewport transform is
// not applied since exports show the whole board.
type PNGExporter struct {
	Margin float64
}

// NewPNGExporter creates a PNG exporter with a default margin.
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{Margin: 40}
}

// Export renders the board.
func (e *PNGExporter) Export(b *board.Board) ([]byte, error) {
	min, max := contentBounds(b)
	width := int(math.Ceil(max.X-min.X)) + int(2*e.Margin)
	height := int(math.Ceil(max.Y-min.Y)) + int(2*e.Margin)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	offX := -min.X + e.Margin
	offY := -min.Y + e.Margin

	for _, edge := range b.Edges {
		e.drawEdge(dc, edge, offX, offY)
	}
	for _, n := range b.Nodes {
		e.drawNode(dc, n, offX, offY)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetFileExtension returns the file extension for PNG.
func (e *PNGExporter) GetFileExtension() string {
	return ".png"
}

// GetFormatName returns the format name.
func (e *PNGExporter) GetFormatName() string {
	return "PNG"
}

func contentBounds(b *board.Board) (board.Point, board.Point) {
	if len(b.Nodes) == 0 {
		return board.Point{}, board.Point{X: 200, Y: 100}
	}
	min := board.Point{X: math.Inf(1), Y: math.Inf(1)}
	max := board.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, n := range b.Nodes {
		nb := n.Bounds()
		min.X = math.Min(min.X, nb.Min.X)
		min.Y = math.Min(min.Y, nb.Min.Y)
		max.X = math.Max(max.X, nb.Max.X)
		max.Y = math.Max(max.Y, nb.Max.Y)
	}
	return min, max
}

func (e *PNGExporter) drawNode(dc *gg.Context, n board.Node, offX, offY float64) {
	x := n.Position.X + offX
	y := n.Position.Y + offY
	w := n.Size.Width
	h := n.Size.Height
	cx := x + w/2
	cy := y + h/2

	switch n.Kind {
	case board.KindRectangle:
		dc.DrawRectangle(x, y, w, h)
	case board.KindEllipse:
		dc.DrawEllipse(cx, cy, w/2, h/2)
	case board.KindDiamond:
		dc.MoveTo(cx, y)
		dc.LineTo(x+w, cy)
		dc.LineTo(cx, y+h)
		dc.LineTo(x, cy)
		dc.ClosePath()
	case board.KindText:
		// No outline, label only.
	}

	if n.Kind != board.KindText {
		if n.Fill != "" {
			dc.SetHexColor(n.Fill)
			dc.FillPreserve()
		}
		stroke := n.Stroke
		if stroke == "" {
			stroke = "#000000"
		}
		dc.SetHexColor(stroke)
		dc.SetLineWidth(math.Min(math.Max(n.StrokeWidth, 1), board.MaxStrokeWidth))
		dc.Stroke()
	}

	if n.Text != "" {
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(n.Text, cx, cy, 0.5, 0.5)
	}
}

func (e *PNGExporter) drawEdge(dc *gg.Context, edge board.Edge, offX, offY float64) {
	x1 := edge.SourceAnchor.X + offX
	y1 := edge.SourceAnchor.Y + offY
	x2 := edge.TargetAnchor.X + offX
	y2 := edge.TargetAnchor.Y + offY

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1.5)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	// Arrowhead at the target anchor.
	angle := math.Atan2(y2-y1, x2-x1)
	const headLen = 10.0
	const headAngle = 0.45
	dc.DrawLine(x2, y2,
		x2-headLen*math.Cos(angle-headAngle),
		y2-headLen*math.Sin(angle-headAngle))
	dc.DrawLine(x2, y2,
		x2-headLen*math.Cos(angle+headAngle),
		y2-headLen*math.Sin(angle+headAngle))
	dc.Stroke()
}
