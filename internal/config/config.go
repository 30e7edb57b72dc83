package config

import "time"

// Config is the root configuration for the settle command.
type Config struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Input       InputConfig       `yaml:"input"`
	Conventions ConventionsConfig `yaml:"conventions"`
	Database    DatabaseConfig    `yaml:"database"`
	Writer      WriterConfig      `yaml:"writer"`
	Export      ExportConfig      `yaml:"export"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// InstanceConfig identifies this loader.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// InputConfig describes where settlement files come from.
type InputConfig struct {
	Dir         string   `yaml:"dir"`
	Patterns    []string `yaml:"patterns"` // Glob patterns matched against file base names
	Products    []string `yaml:"products"` // Product codes to keep; empty keeps all
	Concurrency int      `yaml:"concurrency"`
}

// ConventionsConfig points at an optional quote convention override table.
type ConventionsConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig holds the settlement store connection.
type DatabaseConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// ExportConfig holds file export settings.
type ExportConfig struct {
	Dir     string        `yaml:"dir"` // Local export directory; empty disables the directory store
	Formats []string      `yaml:"formats"`
	Parquet ParquetConfig `yaml:"parquet"`
	S3      S3Config      `yaml:"s3"`
}

// ParquetConfig holds parquet writer settings.
type ParquetConfig struct {
	Compression string `yaml:"compression"`
}

// S3Config holds the object store destination.
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint"`   // Custom endpoint (MinIO, LocalStack)
	PathStyle       bool   `yaml:"path_style"` // Required by most S3-compatible servers
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// WatchConfig holds directory watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig enables a rotated log file next to stdout.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
