package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID         = "settle"
	DefaultConcurrency        = 4
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultBatchSize          = 1000
	DefaultParquetCompression = "snappy"
	DefaultDebounce           = 2 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultLogMaxSizeMB       = 100
	DefaultLogMaxAgeDays      = 30
	DefaultLogMaxBackups      = 5
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

// DefaultPatterns match CME settlement file names such as stlcomex or
// stlint.txt.
var DefaultPatterns = []string{"stl*"}

// DefaultFormats are the export formats written when none are configured.
var DefaultFormats = []string{"csv"}

// Default returns a config with every default applied and no input
// directory, suitable for one-off commands run without a config file.
func Default() *Config {
	cfg := &Config{Instance: InstanceConfig{ID: DefaultInstanceID}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	// Input defaults
	if len(c.Input.Patterns) == 0 {
		c.Input.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if c.Input.Concurrency == 0 {
		c.Input.Concurrency = DefaultConcurrency
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}

	// Export defaults
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = append([]string(nil), DefaultFormats...)
	}
	if c.Export.Parquet.Compression == "" {
		c.Export.Parquet.Compression = DefaultParquetCompression
	}

	// Watch defaults
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = DefaultDebounce
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.File.MaxSizeMB == 0 {
		c.Logging.File.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.File.MaxAgeDays == 0 {
		c.Logging.File.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if c.Logging.File.MaxBackups == 0 {
		c.Logging.File.MaxBackups = DefaultLogMaxBackups
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
