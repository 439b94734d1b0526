// Package importer validates and adopts externally produced board files.
// A file is accepted only as a whole: if validation fails nothing is
// applied and the caller's current state stays untouched.
package importer

import (
	"encoding/json"
	"fmt"

	"slate/board"
)

// Import parses a JSON board export. The nodes, edges and viewport keys
// must all be present or the whole import is rejected; keys that are
// present but not array-typed are coerced to empty collections, and a
// malformed viewport falls back to the default. Edges that would violate
// model invariants (dangling endpoints, self-loops, duplicates) are
// dropped rather than adopted.
func Import(data []byte) (*board.Board, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing import: %w", err)
	}
	for _, key := range []string{"nodes", "edges", "viewport"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("import missing required key %q", key)
		}
	}

	b := &board.Board{Nodes: []board.Node{}, Edges: []board.Edge{}}

	var nodes []board.Node
	if err := json.Unmarshal(raw["nodes"], &nodes); err == nil && nodes != nil {
		b.Nodes = nodes
	}
	var edges []board.Edge
	if err := json.Unmarshal(raw["edges"], &edges); err == nil && edges != nil {
		b.Edges = edges
	}

	var vp board.Viewport
	if err := json.Unmarshal(raw["viewport"], &vp); err != nil || vp.Scale == 0 {
		vp = board.DefaultViewport()
	}
	vp.Scale = board.ClampScale(vp.Scale)
	b.Viewport = vp

	b.Sanitize()
	return b, nil
}
