package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHost             = "localhost"
	DefaultPort             = "8080"
	DefaultMigrationSource  = "file://internal/database/migrations"
	DefaultConfigPath       = "config.yaml"
	DefaultPatternCacheSize = 256
	DefaultExportSheetName  = "Respostas"
)

var (
	ErrDatabaseURLRequired     = errors.New("database URL is required")
	ErrInvalidPatternCacheSize = errors.New("pattern cache size must be positive")
	ErrExportSheetNameRequired = errors.New("export sheet name is required")
)

type Config struct {
	Debug            bool   `yaml:"debug"`
	Dev              bool   `yaml:"dev"`
	Host             string `yaml:"host"`
	Port             string `yaml:"port"`
	DatabaseURL      string `yaml:"database_url"`
	MigrationSource  string `yaml:"migration_source"`
	OtelCollectorUrl string `yaml:"otel_collector_url"`
	PatternCacheSize int    `yaml:"pattern_cache_size"`
	ExportSheetName  string `yaml:"export_sheet_name"`
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	if c.PatternCacheSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPatternCacheSize, c.PatternCacheSize)
	}
	if c.ExportSheetName == "" {
		return ErrExportSheetNameRequired
	}
	return nil
}

func defaults() Config {
	return Config{
		Host:             DefaultHost,
		Port:             DefaultPort,
		MigrationSource:  DefaultMigrationSource,
		PatternCacheSize: DefaultPatternCacheSize,
		ExportSheetName:  DefaultExportSheetName,
	}
}

// LogBuffer holds the messages produced while loading the config, before a logger exists.
type LogBuffer struct {
	entries []logEntry
}

type logEntry struct {
	level   zapcore.Level
	message string
	fields  []zap.Field
}

func (b *LogBuffer) Info(message string, fields ...zap.Field) {
	b.entries = append(b.entries, logEntry{level: zapcore.InfoLevel, message: message, fields: fields})
}

func (b *LogBuffer) Warn(message string, fields ...zap.Field) {
	b.entries = append(b.entries, logEntry{level: zapcore.WarnLevel, message: message, fields: fields})
}

func (b *LogBuffer) Len() int {
	return len(b.entries)
}

// FlushToZap writes the buffered messages to logger and empties the buffer.
func (b *LogBuffer) FlushToZap(logger *zap.Logger) {
	for _, e := range b.entries {
		if ce := logger.Check(e.level, e.message); ce != nil {
			ce.Write(e.fields...)
		}
	}
	b.entries = nil
}

// Load builds the config from, in increasing priority: defaults, the YAML file, a .env file,
// environment variables and command line flags.
func Load() (Config, *LogBuffer) {
	return load(os.Args[1:], os.LookupEnv)
}

func load(args []string, lookupEnv func(string) (string, bool)) (Config, *LogBuffer) {
	logs := &LogBuffer{}
	cfg := defaults()

	configPath := DefaultConfigPath
	if path, ok := lookupEnv("CONFIG_PATH"); ok && path != "" {
		configPath = path
	}
	if path := configFlag(args); path != "" {
		configPath = path
	}

	err := FromFile(configPath, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logs.Info("Config file not found, skipping", zap.String("path", configPath))
	case err != nil:
		logs.Warn("Failed to load config file, skipping", zap.String("path", configPath), zap.Error(err))
	default:
		logs.Info("Loaded config file", zap.String("path", configPath))
	}

	err = godotenv.Load()
	if err != nil {
		logs.Info("No .env file loaded", zap.Error(err))
	}

	FromEnv(&cfg, lookupEnv, logs)

	err = FromFlags(&cfg, args)
	if err != nil {
		logs.Warn("Failed to parse command line flags", zap.Error(err))
	}

	return cfg, logs
}

// FromFile overlays the keys present in the YAML file at path onto cfg.
func FromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// FromEnv overlays the set environment variables onto cfg. Values that cannot be parsed are
// reported to logs and ignored.
func FromEnv(cfg *Config, lookupEnv func(string) (string, bool), logs *LogBuffer) {
	setString := func(key string, target *string) {
		if v, ok := lookupEnv(key); ok && v != "" {
			*target = v
		}
	}
	setBool := func(key string, target *bool) {
		v, ok := lookupEnv(key)
		if !ok || v == "" {
			return
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			logs.Warn("Ignoring invalid boolean environment variable", zap.String("key", key), zap.String("value", v))
			return
		}
		*target = parsed
	}
	setInt := func(key string, target *int) {
		v, ok := lookupEnv(key)
		if !ok || v == "" {
			return
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logs.Warn("Ignoring invalid integer environment variable", zap.String("key", key), zap.String("value", v))
			return
		}
		*target = parsed
	}

	setBool("DEBUG", &cfg.Debug)
	setBool("DEV", &cfg.Dev)
	setString("HOST", &cfg.Host)
	setString("PORT", &cfg.Port)
	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("MIGRATION_SOURCE", &cfg.MigrationSource)
	setString("OTEL_COLLECTOR_URL", &cfg.OtelCollectorUrl)
	setInt("PATTERN_CACHE_SIZE", &cfg.PatternCacheSize)
	setString("EXPORT_SHEET_NAME", &cfg.ExportSheetName)
}

// FromFlags overlays the flags given in args onto cfg. Flags that are not given keep the
// current value.
func FromFlags(cfg *Config, args []string) error {
	fs := newFlagSet(cfg)
	return fs.Parse(args)
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("backend", flag.ContinueOnError)
	fs.String("config", "", "path to YAML config file")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log at DEBUG level")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "development mode")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "listen host name")
	fs.StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection URL")
	fs.StringVar(&cfg.MigrationSource, "migration-source", cfg.MigrationSource, "migration files source URL")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", cfg.OtelCollectorUrl, "OTLP gRPC collector address")
	fs.IntVar(&cfg.PatternCacheSize, "pattern-cache-size", cfg.PatternCacheSize, "number of compiled validation patterns kept")
	fs.StringVar(&cfg.ExportSheetName, "export-sheet-name", cfg.ExportSheetName, "sheet name of exported workbooks")
	return fs
}

func configFlag(args []string) string {
	var scratch Config
	fs := newFlagSet(&scratch)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return ""
	}
	return fs.Lookup("config").Value.String()
}
