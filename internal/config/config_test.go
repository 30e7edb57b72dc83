package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: settle-test
input:
  dir: /data/settlements
  patterns: ["stl*", "*.txt"]
  products: [ED, TY]
  concurrency: 8
database:
  enabled: true
  postgres:
    host: localhost
    port: 5432
    name: settlements
    user: loader
    password: pass
export:
  dir: /data/exports
  formats: [csv, parquet]
  s3:
    enabled: true
    bucket: settle-archive
    region: us-east-1
    endpoint: http://localhost:9000
    path_style: true
watch:
  debounce: 500ms
logging:
  level: debug
  format: text
  file:
    path: /var/log/settle.log
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "settle-test" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "settle-test")
	}
	if cfg.Input.Dir != "/data/settlements" {
		t.Errorf("Input.Dir = %q, want %q", cfg.Input.Dir, "/data/settlements")
	}
	if len(cfg.Input.Patterns) != 2 || cfg.Input.Patterns[1] != "*.txt" {
		t.Errorf("Input.Patterns = %v", cfg.Input.Patterns)
	}
	if len(cfg.Input.Products) != 2 {
		t.Errorf("Input.Products = %v", cfg.Input.Products)
	}
	if !cfg.Database.Enabled || cfg.Database.Postgres.User != "loader" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if !cfg.Export.S3.PathStyle || cfg.Export.S3.Endpoint != "http://localhost:9000" {
		t.Errorf("Export.S3 = %+v", cfg.Export.S3)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
	if cfg.Logging.File.Path != "/var/log/settle.log" {
		t.Errorf("Logging.File.Path = %q", cfg.Logging.File.Path)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: settle-test
database:
  postgres:
    host: localhost
    name: settlements
    user: loader
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Database.Postgres.Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SETTLE_TEST_BUCKET=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SETTLE_TEST_BUCKET", "")
	os.Unsetenv("SETTLE_TEST_BUCKET")

	if err := LoadEnv(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("SETTLE_TEST_BUCKET"); got != "from-dotenv" {
		t.Errorf("SETTLE_TEST_BUCKET = %q, want %q", got, "from-dotenv")
	}

	cfg, err := Parse([]byte("export:\n  s3:\n    bucket: ${SETTLE_TEST_BUCKET}\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Export.S3.Bucket != "from-dotenv" {
		t.Errorf("Export.S3.Bucket = %q, want %q", cfg.Export.S3.Bucket, "from-dotenv")
	}
}

func TestLoadEnv_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SETTLE_TEST_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SETTLE_TEST_LEVEL", "warn")

	if err := LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("SETTLE_TEST_LEVEL"); got != "warn" {
		t.Errorf("SETTLE_TEST_LEVEL = %q, want %q", got, "warn")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: settle-test
input:
  dir: /data
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Input.Concurrency != DefaultConcurrency {
		t.Errorf("Input.Concurrency = %d, want default %d", cfg.Input.Concurrency, DefaultConcurrency)
	}
	if len(cfg.Input.Patterns) != 1 || cfg.Input.Patterns[0] != "stl*" {
		t.Errorf("Input.Patterns = %v, want default %v", cfg.Input.Patterns, DefaultPatterns)
	}
	if cfg.Database.Postgres.Port != DefaultDBPort {
		t.Errorf("Database.Postgres.Port = %d, want default %d", cfg.Database.Postgres.Port, DefaultDBPort)
	}
	if cfg.Writer.BatchSize != DefaultBatchSize {
		t.Errorf("Writer.BatchSize = %d, want default %d", cfg.Writer.BatchSize, DefaultBatchSize)
	}
	if cfg.Export.Parquet.Compression != DefaultParquetCompression {
		t.Errorf("Export.Parquet.Compression = %q, want default %q", cfg.Export.Parquet.Compression, DefaultParquetCompression)
	}
	if cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("Watch.Debounce = %v, want default %v", cfg.Watch.Debounce, DefaultDebounce)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: settle-test\n")
	_, err := LoadAndValidate(path)
	if err == nil || err.Error() != "validate config: input.dir is required" {
		t.Errorf("LoadAndValidate() error = %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load(missing) expected error")
	}
	if _, err := Parse([]byte("input: [unclosed")); err == nil {
		t.Error("Parse(bad yaml) expected error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{
			Instance: InstanceConfig{ID: "test"},
			Input:    InputConfig{Dir: "/data"},
			Database: DatabaseConfig{
				Postgres: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass"},
			},
		}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "missing input dir",
			mutate:  func(c *Config) { c.Input.Dir = "" },
			wantErr: "input.dir is required",
		},
		{
			name:    "bad pattern",
			mutate:  func(c *Config) { c.Input.Patterns = []string{"stl["} },
			wantErr: `input.patterns: invalid pattern "stl["`,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Input.Concurrency = -1 },
			wantErr: "input.concurrency must be >= 1",
		},
		{
			name: "database disabled skips postgres checks",
			mutate: func(c *Config) {
				c.Database.Postgres.Host = ""
			},
		},
		{
			name: "missing postgres host",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Postgres.Host = ""
			},
			wantErr: "database.postgres.host is required",
		},
		{
			name: "missing postgres password",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Postgres.Password = ""
			},
			wantErr: "database.postgres.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Postgres.MaxConns = 5
				c.Database.Postgres.MinConns = 10
			},
			wantErr: "database.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Writer.BatchSize = -5 },
			wantErr: "writer.batch_size must be >= 1",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Export.Formats = []string{"csv", "xlsx"} },
			wantErr: `export.formats: unknown format "xlsx"`,
		},
		{
			name:    "unknown compression",
			mutate:  func(c *Config) { c.Export.Parquet.Compression = "lz4" },
			wantErr: `export.parquet.compression must be one of [uncompressed snappy gzip], got "lz4"`,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Export.S3 = S3Config{Enabled: true, Region: "us-east-1"} },
			wantErr: "export.s3.bucket is required",
		},
		{
			name:    "s3 without region",
			mutate:  func(c *Config) { c.Export.S3 = S3Config{Enabled: true, Bucket: "b"} },
			wantErr: "export.s3.region is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: `logging.level must be one of [debug info warn error], got "trace"`,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: `logging.format must be one of [json text], got "xml"`,
		},
		{
			name: "metrics port out of range",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = 70000
			},
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
		{
			name: "valid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Instance.ID != DefaultInstanceID {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, DefaultInstanceID)
	}
	if cfg.Input.Concurrency != DefaultConcurrency {
		t.Errorf("Input.Concurrency = %d, want %d", cfg.Input.Concurrency, DefaultConcurrency)
	}
	// Defaults must not alias the package-level slices.
	cfg.Input.Patterns[0] = "changed"
	if DefaultPatterns[0] != "stl*" {
		t.Error("ApplyDefaults aliased DefaultPatterns")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadAndValidate_ExampleConfig(t *testing.T) {
	t.Setenv("SETTLE_DB_PASSWORD", "secret")
	cfg, err := LoadAndValidate(filepath.Join("..", "..", "configs", "settle.example.yaml"))
	if err != nil {
		t.Fatalf("LoadAndValidate(example) error = %v", err)
	}
	if cfg.Database.Postgres.Password != "secret" {
		t.Errorf("Password = %q, want expanded env value", cfg.Database.Postgres.Password)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %v, want 2s", cfg.Watch.Debounce)
	}
}
