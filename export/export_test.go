package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"slate/board"
)

func sampleBoard() *board.Board {
	return &board.Board{
		Nodes: []board.Node{
			{
				ID:       "a",
				Kind:     board.KindRectangle,
				Position: board.Point{X: 100, Y: 100},
				Size:     board.Size{Width: 120, Height: 80},
				Text:     "start",
				Fill:     "#ffffff",
				Stroke:   "#1f2937",
			},
			{
				ID:       "b",
				Kind:     board.KindEllipse,
				Position: board.Point{X: 300, Y: 100},
				Size:     board.Size{Width: 120, Height: 80},
			},
		},
		Edges: []board.Edge{{
			ID:           "e1",
			Source:       "a",
			Target:       "b",
			SourceAnchor: board.Point{X: 220, Y: 140},
			TargetAnchor: board.Point{X: 300, Y: 140},
		}},
		Viewport: board.Viewport{X: 10, Y: 20, Scale: 1.5},
	}
}

func TestJSONExportContainsOnlyBoardContent(t *testing.T) {
	data, err := NewJSONExporter().Export(sampleBoard())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"nodes", "edges", "viewport"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}
	for _, key := range []string{"history", "selectedNodes", "tool"} {
		if _, ok := raw[key]; ok {
			t.Errorf("export must not contain editor state %q", key)
		}
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	b := sampleBoard()
	data, err := NewJSONExporter().Export(b)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var got board.Board
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("round trip lost content: %d nodes, %d edges", len(got.Nodes), len(got.Edges))
	}
	if got.Viewport != b.Viewport {
		t.Errorf("viewport = %+v, want %+v", got.Viewport, b.Viewport)
	}
	if got.Edges[0].SourceAnchor != b.Edges[0].SourceAnchor {
		t.Error("cached anchors must survive the round trip")
	}
}

func TestPNGExportProducesImage(t *testing.T) {
	data, err := NewPNGExporter().Export(sampleBoard())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestPNGExportEmptyBoard(t *testing.T) {
	if _, err := NewPNGExporter().Export(&board.Board{}); err != nil {
		t.Fatalf("empty board export should not fail: %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"json", "png"} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("missing built-in exporter %q", name)
		}
	}
	if _, err := r.Get("svg"); err == nil {
		t.Error("unknown format must error")
	}
}
