package gueststore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"cartsync/internal/domain"
)

// FileStore keeps one JSON file per guest id under a base directory.
type FileStore struct {
	dir string
}

func NewFile(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Read(_ context.Context, guestID string) []domain.CartLine {
	raw, err := os.ReadFile(s.path(guestID))
	if err != nil {
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil
	}
	return lines
}

func (s *FileStore) Write(_ context.Context, guestID string, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(guestID), raw, 0o600)
}

// path flattens the guest id so it cannot escape the base directory.
func (s *FileStore) path(guestID string) string {
	return filepath.Join(s.dir, filepath.Base(guestID)+".json")
}
