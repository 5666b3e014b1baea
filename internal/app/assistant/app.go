package assistant

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"assistant/internal/app/config"
	"assistant/internal/domain/record"
	"assistant/internal/infrastructure/csvio"
	"assistant/internal/infrastructure/metrics"
	"assistant/internal/infrastructure/storage"
	"assistant/internal/infrastructure/storage/file"
	"assistant/internal/infrastructure/storage/memory"
	"assistant/internal/infrastructure/storage/sqlite"
)

type (
	NoteStore    = record.Store[record.Note, *record.Note]
	TaskStore    = record.Store[record.Task, *record.Task]
	ContactStore = record.Store[record.Contact, *record.Contact]
	FinanceStore = record.Store[record.FinanceRecord, *record.FinanceRecord]
)

type App struct {
	config  *config.Config
	log     *slog.Logger
	storage storage.Storage
	metrics *metrics.Metrics
	csv     *csvio.Bridge

	Notes    *NoteStore
	Tasks    *TaskStore
	Contacts *ContactStore
	Finance  *FinanceStore
}

// New открывает настроенное хранилище и собирает хранилища коллекций.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	format, err := storage.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	st, err := openStorage(cfg, format, log)
	if err != nil {
		return nil, err
	}

	return newApp(cfg, log, st), nil
}

// NewWithStorage собирает приложение поверх уже открытого хранилища.
func NewWithStorage(cfg *config.Config, log *slog.Logger, st storage.Storage) *App {
	return newApp(cfg, log, st)
}

func newApp(cfg *config.Config, log *slog.Logger, st storage.Storage) *App {
	m := metrics.New()
	opts := []record.Option{
		record.WithIDPolicy(cfg.IDPolicy),
		record.WithObserver(m),
	}

	log.Debug("приложение инициализировано",
		"backend", cfg.Backend,
		"format", cfg.Format,
		"id_policy", cfg.IDPolicy,
	)

	return &App{
		config:   cfg,
		log:      log,
		storage:  st,
		metrics:  m,
		csv:      csvio.New(log),
		Notes:    record.NewStore[record.Note](record.KindNote.String(), st, log, opts...),
		Tasks:    record.NewStore[record.Task](record.KindTask.String(), st, log, opts...),
		Contacts: record.NewStore[record.Contact](record.KindContact.String(), st, log, opts...),
		Finance:  record.NewStore[record.FinanceRecord](record.KindFinance.String(), st, log, opts...),
	}
}

func openStorage(cfg *config.Config, format storage.Format, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendFile:
		st, err := file.New(cfg.DataDir, format, log)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации файлового хранилища: %w", err)
		}
		return st, nil
	case config.BackendSQLite:
		st, err := sqlite.New(cfg.SQLitePath, format, log)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации SQLite: %w", err)
		}
		return st, nil
	case config.BackendMemory:
		log.Warn("используется хранилище в памяти, данные не сохранятся после выхода")
		return memory.New(format), nil
	}
	return nil, fmt.Errorf("неизвестное хранилище: %s", cfg.Backend)
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) CSV() *csvio.Bridge {
	return a.csv
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Location описывает, где лежат данные выбранного хранилища.
func (a *App) Location() string {
	switch a.config.Backend {
	case config.BackendSQLite:
		return a.config.SQLitePath
	case config.BackendMemory:
		return "память процесса"
	default:
		return a.config.DataDir
	}
}

// Counts возвращает количество записей в каждой коллекции.
func (a *App) Counts(ctx context.Context) (map[record.Kind]int, error) {
	counts := make(map[record.Kind]int, len(record.Kinds()))

	notes, err := a.Notes.List(ctx)
	if err != nil {
		return nil, err
	}
	counts[record.KindNote] = len(notes)

	tasks, err := a.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	counts[record.KindTask] = len(tasks)

	contacts, err := a.Contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	counts[record.KindContact] = len(contacts)

	finance, err := a.Finance.List(ctx)
	if err != nil {
		return nil, err
	}
	counts[record.KindFinance] = len(finance)

	return counts, nil
}

// MarkTaskDone отмечает задачу выполненной.
func (a *App) MarkTaskDone(ctx context.Context, id int) (record.Task, error) {
	return a.Tasks.Update(ctx, id, func(t *record.Task) error {
		t.Done = true
		return nil
	})
}

func (a *App) SearchContacts(ctx context.Context, term string) ([]record.Contact, error) {
	return a.Contacts.Search(ctx, term, record.ContactSearchFields...)
}

func (a *App) FinanceByCategory(ctx context.Context, category string) ([]record.FinanceRecord, error) {
	return a.Finance.FilterBy(ctx, "category", category)
}

// Balance возвращает сумму всех финансовых записей.
func (a *App) Balance(ctx context.Context) (float64, error) {
	items, err := a.Finance.List(ctx)
	if err != nil {
		return 0, err
	}
	return record.Balance(items), nil
}

// Close записывает метрики (если задан файл) и закрывает хранилище.
func (a *App) Close() error {
	var errs []error
	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("ошибка записи метрик: %w", err))
		}
	}
	if err := a.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("ошибка закрытия хранилища: %w", err))
	}
	return errors.Join(errs...)
}
