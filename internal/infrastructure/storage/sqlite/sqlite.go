package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"assistant/internal/infrastructure/migration"
	"assistant/internal/infrastructure/storage"
)

// Storage keeps each collection as one encoded payload row. A save is a
// single upsert, so a collection is always replaced as a whole.
type Storage struct {
	db     *sql.DB
	format storage.Format
	log    *slog.Logger
}

// ErrUnsupportedPath is returned for database paths that cannot be passed
// through the sqlite3:// migration URL and the driver DSN unchanged.
var ErrUnsupportedPath = errors.New("путь к базе данных не должен содержать символы ?, # и %")

// New opens (and migrates) the SQLite database at path.
func New(path string, format storage.Format, log *slog.Logger) (*Storage, error) {
	if strings.ContainsAny(path, "?#%") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPath, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории базы данных: %w", err)
	}

	if err := migration.NewMigration(path, migration.DefaultEngine).Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции базы данных: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return &Storage{
		db:     db,
		format: format,
		log:    log.With("component", "sqlite_storage"),
	}, nil
}

func (s *Storage) Load(ctx context.Context, name string, out any) error {
	var payload []byte
	var format string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, format FROM collections WHERE name = ?`, name).
		Scan(&payload, &format)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", name, err)
	}

	f := s.format
	if format != f.Name() {
		// rows written under another format stay readable
		if f, err = storage.ParseFormat(format); err != nil {
			return &storage.DecodeError{Collection: name, Format: format, Err: err}
		}
	}
	return storage.Decode(f, name, payload, out)
}

func (s *Storage) Save(ctx context.Context, name string, v any) error {
	payload, err := storage.Encode(s.format, name, v)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (name, payload, format, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			format = excluded.format,
			updated_at = excluded.updated_at
	`, name, payload, s.format.Name(), time.Now().UTC())
	if err != nil {
		return &storage.WriteError{Collection: name, Err: err}
	}

	s.log.Debug("collection saved", "name", name, "bytes", len(payload))
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
