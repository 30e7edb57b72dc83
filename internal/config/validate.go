package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

var (
	validFormats      = []string{"csv", "parquet"}
	validCompressions = []string{"uncompressed", "snappy", "gzip"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"json", "text"}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Input.Dir == "" {
		return errors.New("input.dir is required")
	}
	for _, p := range c.Input.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("input.patterns: invalid pattern %q", p)
		}
	}
	if c.Input.Concurrency < 1 {
		return errors.New("input.concurrency must be >= 1")
	}

	if c.Database.Enabled {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	}

	if c.Writer.BatchSize < 1 {
		return errors.New("writer.batch_size must be >= 1")
	}

	if err := c.Export.validate(); err != nil {
		return err
	}

	if c.Watch.Debounce < 0 {
		return errors.New("watch.debounce must be >= 0")
	}

	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (e *ExportConfig) validate() error {
	for _, f := range e.Formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
	}
	if !slices.Contains(validCompressions, e.Parquet.Compression) {
		return fmt.Errorf("export.parquet.compression must be one of %v, got %q", validCompressions, e.Parquet.Compression)
	}
	if e.S3.Enabled {
		if e.S3.Bucket == "" {
			return errors.New("export.s3.bucket is required")
		}
		if e.S3.Region == "" {
			return errors.New("export.s3.region is required")
		}
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
