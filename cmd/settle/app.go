package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rickgao/settlement-data/internal/config"
	"github.com/rickgao/settlement-data/internal/convention"
	"github.com/rickgao/settlement-data/internal/database"
	"github.com/rickgao/settlement-data/internal/export"
	"github.com/rickgao/settlement-data/internal/ingest"
	"github.com/rickgao/settlement-data/internal/logging"
	"github.com/rickgao/settlement-data/internal/metrics"
	"github.com/rickgao/settlement-data/internal/report"
	"github.com/rickgao/settlement-data/internal/version"
	"github.com/rickgao/settlement-data/internal/writer"
)

// app holds the wired components shared by ingest and watch.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	pool     *pgxpool.Pool
	runner   *ingest.Runner
	health   *http.Server

	closers []io.Closer
}

// loadConfig loads dotenv files and the validated config.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, err
	}
	return config.LoadAndValidate(configPath)
}

// loadTable returns the embedded convention table merged with the
// override file, if any.
func loadTable(path string) (*convention.Table, error) {
	table := convention.Default()
	if path == "" {
		return table, nil
	}
	override, err := convention.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load conventions: %w", err)
	}
	return table.Merge(override), nil
}

// newApp builds the logger, sinks and runner from cfg. Call close when done.
func newApp(ctx context.Context, cfg *config.Config, failFast bool) (*app, error) {
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		closers:  []io.Closer{logCloser},
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	logger.Info("starting settle",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", configPath,
	)

	if err := a.wire(ctx, failFast); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, failFast bool) error {
	cfg := a.cfg
	table, err := loadTable(cfg.Conventions.Path)
	if err != nil {
		return err
	}
	a.logger.Info("convention table loaded",
		"codes", table.Len(),
		"override", cfg.Conventions.Path,
	)

	var sinks []ingest.Sink
	if cfg.Database.Enabled {
		a.logger.Info("connecting to database",
			"host", cfg.Database.Postgres.Host,
			"port", cfg.Database.Postgres.Port,
			"database", cfg.Database.Postgres.Name,
		)
		a.pool, err = database.Connect(ctx, cfg.Database.Postgres)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := database.EnsureSchema(ctx, a.pool); err != nil {
			return err
		}
		a.logger.Info("database connected")

		w := writer.NewSettlementWriter(writer.Config{BatchSize: cfg.Writer.BatchSize}, a.pool, a.metrics, a.logger)
		sinks = append(sinks, w)
	}

	var stores []export.Store
	if cfg.Export.Dir != "" {
		stores = append(stores, export.NewDirStore(cfg.Export.Dir))
	}
	if cfg.Export.S3.Enabled {
		s3Store, err := export.NewS3Store(ctx, cfg.Export.S3)
		if err != nil {
			return err
		}
		stores = append(stores, s3Store)
	}
	if len(stores) > 0 {
		exp, err := export.NewExporter(export.Config{
			Formats:     cfg.Export.Formats,
			Compression: cfg.Export.Parquet.Compression,
		}, stores, a.metrics, a.logger)
		if err != nil {
			return err
		}
		sinks = append(sinks, exp)
	}

	if len(sinks) == 0 {
		a.logger.Warn("no database or export destination configured; files are decoded only")
	}

	a.runner = ingest.New(ingest.Config{
		Concurrency: cfg.Input.Concurrency,
		FailFast:    failFast,
		Options: report.Options{
			Products: report.ProductFilter(cfg.Input.Products),
			Table:    table,
			Logger:   a.logger,
		},
	}, sinks, a.metrics, a.logger)
	return nil
}

// startHealth serves /health and metrics when metrics are enabled.
func (a *app) startHealth() {
	if !a.cfg.Metrics.Enabled {
		return
	}
	a.health = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Metrics.Port),
		Handler:           a.healthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("starting health server", "port", a.cfg.Metrics.Port)
		if err := a.health.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("health server error", "error", err)
		}
	}()
}

func (a *app) healthHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, metrics.Handler(a.registry))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    version.Info   `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]any),
		}

		if a.pool != nil {
			if err := a.pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["postgres"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["postgres"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})
	return mux
}

func (a *app) close() {
	if a.health != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a.health.Shutdown(shutdownCtx)
		cancel()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	for _, c := range a.closers {
		c.Close()
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
