package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/app/assistant"
	"assistant/internal/app/config"
	"assistant/internal/domain/record"
	"assistant/internal/utils/logger"
)

const (
	exitFailure  = 1
	exitNotFound = 2
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *assistant.App
	debug      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Персональный помощник: заметки, задачи, контакты, финансы",
	Long: `Персональный помощник хранит заметки, задачи, контакты и финансовые
записи в локальном каталоге (JSON или YAML) или в базе SQLite.

Каждая коллекция поддерживает создание, просмотр, редактирование, удаление,
а также экспорт и импорт CSV. Дополнительно доступен калькулятор.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			console.Warn(os.Stderr, "%v", cerr)
		}
	}
	if err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// reportError печатает ошибку и возвращает код выхода.
func reportError(w io.Writer, err error) int {
	if errors.Is(err, record.ErrNotFound) {
		console.Failure(w, "Не найдено: %v", err)
		return exitNotFound
	}
	console.Failure(w, "Не удалось выполнить операцию: %v", err)
	return exitFailure
}

func setupApp(_ *cobra.Command, _ []string) error {
	// Загружаем конфигурацию
	var err error
	cfg, err = loadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if debug {
		cfg.Env = config.EnvLocal
		cfg.LogLevel = "debug"
	}

	// Настраиваем логгер
	log = logger.NewWithLevel(cfg.Env, cfg.LogLevel)

	// Создаем приложение
	app, err = assistant.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	return nil
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Ищем конфиг в стандартных местах
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".assistant"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return config.Load(v)
}

func init() {
	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "конфигурационный файл (YAML)")
	flags.BoolVar(&debug, "debug", false, "включить отладочный режим")
	flags.BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	flags.String("data-dir", "", "каталог с данными (по умолчанию ~/.assistant)")
	flags.String("backend", "", "хранилище: file, sqlite, memory")
	flags.String("format", "", "формат файлов хранилища: json, yaml")
	flags.String("id-policy", "", "выдача ID: count, monotonic")
	flags.String("metrics-file", "", "файл для метрик Prometheus")

	// Флаги перекрывают переменные окружения и конфиг-файл
	for key, name := range map[string]string{
		"DATA_DIR":        "data-dir",
		"STORAGE_BACKEND": "backend",
		"STORAGE_FORMAT":  "format",
		"ID_POLICY":       "id-policy",
		"METRICS_FILE":    "metrics-file",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
