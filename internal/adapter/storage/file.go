package storage

import (
	"encoding/base32"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.KeyValue = (*File)(nil)

// File persists each key as one file under dir. Saves go through a temp
// file and rename, last writer wins.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	const op = "storage.NewFile"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slog.Debug("file storage ready", "op", op, "dir", dir)
	return &File{dir}, nil
}

func (s *File) Load(key string) ([]byte, error) {
	const op = "File.Load"

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, port.ErrNoValue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *File) Save(key string, value []byte) error {
	const op = "File.Save"

	tmp, err := os.CreateTemp(s.dir, ".kv-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *File) Remove(key string) error {
	const op = "File.Remove"

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// path encodes the key so separators and colons in namespace-scoped keys
// stay filesystem-safe.
func (s *File) path(key string) string {
	name := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(key))
	return filepath.Join(s.dir, name+".json")
}
