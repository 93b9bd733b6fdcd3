package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV keeps one file per key under a directory. Writes go through a temp
// file, fsync and rename so a crash never leaves a partially written value.
type FileKV struct {
	dir string
}

var _ KV = (*FileKV)(nil)

func NewFile(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) Read(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}

func (s *FileKV) Write(key string, data []byte) error {
	dst := s.path(key)
	tmp := dst + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp for %s: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp for %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", key, err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Keys may contain slashes as logical separators; they map onto flat file
// names.
func (s *FileKV) path(key string) string {
	name := strings.ReplaceAll(key, "/", "__")
	return filepath.Join(s.dir, name+".json")
}
