package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"assistant/internal/infrastructure/storage"
)

type contact struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
}

func newStorage(t *testing.T, path string, format storage.Format) *Storage {
	t.Helper()
	s, err := New(path, format, slog.New(slog.NewTextHandler(nopWriter{}, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestStorage_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, filepath.Join(t.TempDir(), "data", "assistant.db"), storage.JSON{})

	var out []contact
	require.NoError(t, s.Load(ctx, "contacts", &out))
	assert.Nil(t, out)

	first := []contact{{ID: 1, Name: "Анна", Phone: "123"}}
	require.NoError(t, s.Save(ctx, "contacts", first))

	second := append(first, contact{ID: 2, Name: "Борис"})
	require.NoError(t, s.Save(ctx, "contacts", second))

	require.NoError(t, s.Load(ctx, "contacts", &out))
	assert.Equal(t, second, out)
}

func TestStorage_ReopenWithOtherFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "assistant.db")

	s := newStorage(t, path, storage.YAML{})
	require.NoError(t, s.Save(ctx, "contacts", []contact{{ID: 1, Name: "Анна"}}))
	require.NoError(t, s.Close())

	reopened := newStorage(t, path, storage.JSON{})
	var out []contact
	require.NoError(t, reopened.Load(ctx, "contacts", &out))
	assert.Equal(t, []contact{{ID: 1, Name: "Анна"}}, out)
}

func TestStorage_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, filepath.Join(t.TempDir(), "assistant.db"), storage.JSON{})

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, payload, format, updated_at) VALUES ('tasks', '[{', 'json', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var out []contact
	err = s.Load(ctx, "tasks", &out)
	var decodeErr *storage.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestNew_RejectsURIReservedPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a?mode=ro.db", "a#1.db", "100%.db"} {
		path := filepath.Join(dir, name)
		_, err := New(path, storage.JSON{}, slog.New(slog.NewTextHandler(nopWriter{}, nil)))
		assert.ErrorIs(t, err, ErrUnsupportedPath, name)
		assert.NoFileExists(t, path)
	}
}
