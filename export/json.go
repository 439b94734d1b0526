package export

import (
	"encoding/json"

	"slate/board"
)

// JSONExporter exports boards to indented JSON.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a board to JSON.
func (e *JSONExporter) Export(b *board.Board) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// GetFileExtension returns the file extension for JSON.
func (e *JSONExporter) GetFileExtension() string {
	return ".json"
}

// GetFormatName returns the format name.
func (e *JSONExporter) GetFormatName() string {
	return "JSON"
}
