package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemStore implements Store as one JSON array file per artifact name
// inside a flat directory. Writes go through a temp file + rename so readers
// never observe a half-written artifact.
type FileSystemStore struct {
	dir string
}

// NewFileSystemStore creates a store rooted at dir, creating it if needed.
func NewFileSystemStore(dir string) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileSystemStore{dir: dir}, nil
}

func (s *FileSystemStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save overwrites the named artifact atomically.
func (s *FileSystemStore) Save(_ context.Context, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact %s: %w", name, err)
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact %s: %w", name, err)
	}
	return nil
}

// Load decodes the named artifact into v. An absent file is ErrMissing; an
// empty or undecodable file is ErrCorrupt.
func (s *FileSystemStore) Load(_ context.Context, name string, v interface{}) error {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("artifact %s: %w", name, ErrMissing)
	}
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", name, err)
	}

	if len(data) == 0 {
		return fmt.Errorf("artifact %s is empty: %w", name, ErrCorrupt)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", name, ErrCorrupt, err)
	}
	return nil
}

// Clear removes every artifact file in the directory. Temp files from
// interrupted writes are swept too.
func (s *FileSystemStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read artifact dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || (!strings.HasSuffix(entry.Name(), ".json") && !strings.Contains(entry.Name(), ".tmp-")) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove artifact %s: %w", entry.Name(), err)
		}
	}
	return nil
}
