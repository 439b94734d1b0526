package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slate/board"
)

// FileStore persists documents as JSON files in a directory, one file per
// document id.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}

// Load reads and normalizes a document. Absent or malformed optional
// fields default rather than error; a missing file is ErrNotFound.
func (fs *FileStore) Load(_ context.Context, id string) (*board.FullState, error) {
	data, err := os.ReadFile(fs.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", id, err)
	}
	var st board.FullState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", id, err)
	}
	st.Normalize()
	return &st, nil
}

// Save writes the document atomically via a temp file rename.
func (fs *FileStore) Save(_ context.Context, id string, st *board.FullState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", id, err)
	}
	tmp := fs.path(id) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", id, err)
	}
	if err := os.Rename(tmp, fs.path(id)); err != nil {
		return fmt.Errorf("writing document %s: %w", id, err)
	}
	return nil
}

// List returns the ids of all stored documents.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".json" {
			ids = append(ids, name[:len(name)-len(".json")])
		}
	}
	return ids, nil
}
