package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore keeps one JSON file per slot under a data directory.
type FileStore struct {
	dir string
	log zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created on first save, not here, so a read-only startup never fails.
func NewFileStore(dir string, log zerolog.Logger) *FileStore {
	return &FileStore{dir: dir, log: log}
}

func (s *FileStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

// Load implements Store.
func (s *FileStore) Load(slot string, v interface{}) error {
	raw, err := os.ReadFile(s.path(slot))
	if err != nil {
		return fmt.Errorf("load slot %q: %w", slot, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("load slot %q: decode: %w", slot, err)
	}
	return nil
}

// Save implements Store. The slot file is replaced atomically (write to a
// temp file, then rename) so a crash mid-write never leaves a truncated
// slot on disk.
func (s *FileStore) Save(slot string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("save slot %q: encode: %w", slot, err)
	}

	tmp, err := os.CreateTemp(s.dir, slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save slot %q: %w", slot, err)
	}

	s.log.Debug().Str("slot", slot).Int("bytes", len(raw)).Msg("Slot saved")
	return nil
}

var _ Store = (*FileStore)(nil)
