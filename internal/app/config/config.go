package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"assistant/internal/domain/record"
	"assistant/internal/infrastructure/storage"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	defaultEnv        = EnvProd
	defaultLogLevel   = "info"
	defaultConfigDir  = ".assistant"
	defaultBackend    = BackendFile
	defaultFormat     = storage.FormatJSON
	defaultIDPolicy   = string(record.IDPolicyCount)
	defaultSQLiteFile = "assistant.db"
)

type Config struct {
	Env         string          `mapstructure:"app_env"`
	LogLevel    string          `mapstructure:"log_level"`
	ConfigDir   string          `mapstructure:"config_dir"`
	DataDir     string          `mapstructure:"data_dir"`
	Backend     string          `mapstructure:"storage_backend"`
	Format      string          `mapstructure:"storage_format"`
	SQLitePath  string          `mapstructure:"sqlite_path"`
	IDPolicy    record.IDPolicy `mapstructure:"id_policy"`
	MetricsFile string          `mapstructure:"metrics_file"`
}

// Load загружает конфигурацию: .env (если есть), переменные окружения и
// уже прочитанный viper конфиг-файл. Флаги командной строки привязываются к
// тем же ключам через viper.BindPFlag.
func Load(v *viper.Viper) (*Config, error) {
	loadDotEnv()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Устанавливаем значения по умолчанию
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("STORAGE_BACKEND", defaultBackend)
	v.SetDefault("STORAGE_FORMAT", defaultFormat)
	v.SetDefault("ID_POLICY", defaultIDPolicy)

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	dataDir := v.GetString("DATA_DIR")
	if dataDir == "" {
		dataDir = configDir
	}

	sqlitePath := v.GetString("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dataDir, defaultSQLiteFile)
	}

	cfg := &Config{
		Env:         strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		ConfigDir:   configDir,
		DataDir:     dataDir,
		Backend:     strings.ToLower(v.GetString("STORAGE_BACKEND")),
		Format:      strings.ToLower(v.GetString("STORAGE_FORMAT")),
		SQLitePath:  sqlitePath,
		IDPolicy:    record.IDPolicy(strings.ToLower(v.GetString("ID_POLICY"))),
		MetricsFile: v.GetString("METRICS_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	return cfg, nil
}

// MustLoad загружает конфигурацию из глобального viper и паникует при ошибке.
func MustLoad() *Config {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func loadDotEnv() {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Ошибка загрузки .env файла: %v\n", err)
		}
	}
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("app_env должен быть одним из local, dev, prod: %q", c.Env)
	}

	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("storage_backend должен быть одним из file, sqlite, memory: %q", c.Backend)
	}

	if _, err := storage.ParseFormat(c.Format); err != nil {
		return err
	}

	if err := c.IDPolicy.Validate(); err != nil {
		return err
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir не может быть пустым")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}
