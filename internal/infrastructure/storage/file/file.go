package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/exp/slog"

	"assistant/internal/infrastructure/storage"
)

// Storage keeps every collection in its own file under dir:
//
//	<dir>/<name><ext>
//
// Saves are atomic: the payload goes to a temp file in the same directory,
// which is synced and renamed over the target.
type Storage struct {
	dir    string
	format storage.Format
	log    *slog.Logger
}

// New creates dir if needed and returns a file storage using format.
func New(dir string, format storage.Format, log *slog.Logger) (*Storage, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории данных: %w", err)
	}
	return &Storage{
		dir:    dir,
		format: format,
		log:    log.With("component", "file_storage"),
	}, nil
}

// Path returns the file that holds the collection name.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, name+s.format.Ext())
}

func (s *Storage) Load(_ context.Context, name string, out any) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	path := s.Path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("collection file not found, using empty collection", "path", path)
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	return storage.Decode(s.format, name, data, out)
}

func (s *Storage) Save(_ context.Context, name string, v any) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	data, err := storage.Encode(s.format, name, v)
	if err != nil {
		return err
	}

	path := s.Path(name)
	if err := writeFileAtomic(path, data, 0o600); err != nil {
		return &storage.WriteError{Collection: name, Err: err}
	}

	s.log.Debug("collection saved", "path", path, "bytes", len(data))
	return nil
}

func (s *Storage) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
