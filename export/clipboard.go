package export

import (
	"github.com/atotto/clipboard"

	"slate/board"
)

// CopyJSON places the board's JSON export on the system clipboard.
func CopyJSON(b *board.Board) error {
	data, err := NewJSONExporter().Export(b)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}
