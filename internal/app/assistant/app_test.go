package assistant

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/app/config"
	"assistant/internal/domain/record"
	"assistant/internal/infrastructure/csvio"
	"assistant/internal/infrastructure/storage"
	"assistant/internal/infrastructure/storage/memory"
	"assistant/internal/utils/logger"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:        config.EnvProd,
		LogLevel:   "error",
		ConfigDir:  dir,
		DataDir:    dir,
		Backend:    backend,
		Format:     "json",
		SQLitePath: filepath.Join(dir, "assistant.db"),
		IDPolicy:   record.IDPolicyCount,
	}
}

func TestApp_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			app, err := New(testConfig(t, backend), logger.Discard())
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Close() })

			_, err = app.Notes.Create(ctx, record.NewNote("Заголовок", "Текст", time.Now()))
			require.NoError(t, err)
			_, err = app.Tasks.Create(ctx, record.NewTask("Задача", "", record.PriorityMedium, ""))
			require.NoError(t, err)
			_, err = app.Contacts.Create(ctx, record.NewContact("Анна", "123", ""))
			require.NoError(t, err)

			counts, err := app.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[record.Kind]int{
				record.KindNote:    1,
				record.KindTask:    1,
				record.KindContact: 1,
				record.KindFinance: 0,
			}, counts)
		})
	}
}

func TestApp_FileBackendPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendFile)

	app, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	_, err = app.Contacts.Create(ctx, record.NewContact("Анна", "+7 900", "anna@example.com"))
	require.NoError(t, err)
	require.NoError(t, app.Close())
	assert.FileExists(t, filepath.Join(cfg.DataDir, "contacts.json"))

	reopened, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Contacts.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Анна", got.Name)
}

func TestApp_Helpers(t *testing.T) {
	ctx := context.Background()
	app, err := New(testConfig(t, config.BackendMemory), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Tasks.Create(ctx, record.NewTask("Отчет", "", record.PriorityHigh, ""))
	require.NoError(t, err)

	done, err := app.MarkTaskDone(ctx, 1)
	require.NoError(t, err)
	assert.True(t, done.Done)

	_, err = app.MarkTaskDone(ctx, 2)
	assert.ErrorIs(t, err, record.ErrNotFound)

	for _, r := range []record.FinanceRecord{
		record.NewFinanceRecord(100, "подарок", "", ""),
		record.NewFinanceRecord(-30, "еда", "", ""),
		record.NewFinanceRecord(-20, "еда", "", ""),
	} {
		_, err := app.Finance.Create(ctx, r)
		require.NoError(t, err)
	}

	balance, err := app.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, balance, 1e-9)

	food, err := app.FinanceByCategory(ctx, "еда")
	require.NoError(t, err)
	assert.Len(t, food, 2)

	_, err = app.Contacts.Create(ctx, record.NewContact("Борис", "555-01", ""))
	require.NoError(t, err)
	found, err := app.SearchContacts(ctx, "555")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Борис", found[0].Name)

	assert.Equal(t, "память процесса", app.Location())
}

func TestApp_CSVImportMerge(t *testing.T) {
	ctx := context.Background()
	app, err := New(testConfig(t, config.BackendMemory), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Notes.Create(ctx, record.NewNote("Старая", "", time.Now()))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,title,content,timestamp\n1,Новая,текст,01-01-2024 00:00:00\n"), 0o600))

	imported, err := csvio.Import[record.Note](app.CSV(), path, []string{"id", "title", "content", "timestamp"}, func() record.Note {
		return record.Note{}
	})
	require.NoError(t, err)

	added, err := app.Notes.Append(ctx, imported)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, 2, added[0].ID)
}

func TestApp_CloseWritesMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendMemory)
	cfg.MetricsFile = filepath.Join(cfg.DataDir, "assistant.prom")

	app, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	_, err = app.Notes.List(ctx)
	require.NoError(t, err)
	_, err = app.Notes.Get(ctx, 1)
	require.ErrorIs(t, err, record.ErrNotFound)

	require.NoError(t, app.Close())

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `assistant_store_operations_total{collection="notes",op="list",result="ok"} 1`)
	assert.Contains(t, string(data), `assistant_store_operations_total{collection="notes",op="get",result="not_found"} 1`)
}

func TestApp_InvalidFormat(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.Format = "xml"

	_, err := New(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestApp_CorruptCollection(t *testing.T) {
	ctx := context.Background()
	st := memory.New(storage.JSON{})
	st.Put("tasks", []byte("[{\"id\": 1,"))

	app := NewWithStorage(testConfig(t, config.BackendMemory), logger.Discard(), st)
	defer app.Close()

	_, err := app.Counts(ctx)
	var decodeErr *storage.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	_, err = app.Tasks.Create(ctx, record.NewTask("Новая", "", record.PriorityLow, ""))
	require.ErrorAs(t, err, &decodeErr)

	raw, ok := st.Raw("tasks")
	require.True(t, ok)
	assert.Equal(t, "[{\"id\": 1,", string(raw))
}
