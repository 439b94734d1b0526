// Package export renders a board to interchange formats. Only board
// content goes out: nodes, edges and the viewport. History and selection
// are editor state and never leave the process this way.
package export

import (
	"fmt"

	"slate/board"
)

// Exporter converts a board to one output format.
type Exporter interface {
	// Export converts a board to the target format.
	Export(b *board.Board) ([]byte, error)

	// GetFileExtension returns the file extension for the format.
	GetFileExtension() string

	// GetFormatName returns the human-readable format name.
	GetFormatName() string
}

// Registry manages available exporters by format name.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry creates a registry with the built-in exporters.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]Exporter)}
	r.Register("json", NewJSONExporter())
	r.Register("png", NewPNGExporter())
	return r
}

// Register adds an exporter under a format name.
func (r *Registry) Register(name string, e Exporter) {
	r.exporters[name] = e
}

// Get returns the exporter for a format name.
func (r *Registry) Get(name string) (Exporter, error) {
	e, ok := r.exporters[name]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q", name)
	}
	return e, nil
}

// Formats returns the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.exporters))
	for name := range r.exporters {
		names = append(names, name)
	}
	return names
}
