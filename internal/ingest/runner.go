package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/settlement-data/internal/files"
	"github.com/rickgao/settlement-data/internal/metrics"
	"github.com/rickgao/settlement-data/internal/model"
	"github.com/rickgao/settlement-data/internal/report"
)

// Sink receives decoded loads.
//
// A sink returns an error wrapping model.ErrDuplicateLoad when the load's
// checksum is already stored; later sinks are then not called.
type Sink interface {
	Name() string
	Accept(ctx context.Context, load model.Load) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(context.Context, model.Load) error

// Name returns "func".
func (f SinkFunc) Name() string { return "func" }

// Accept calls f.
func (f SinkFunc) Accept(ctx context.Context, load model.Load) error {
	return f(ctx, load)
}

// Config holds runner configuration.
type Config struct {
	Concurrency int            // Max files processed at once (default: 4)
	FailFast    bool           // Abort the batch on the first failed file
	Options     report.Options // Decoder options
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path     string
	LoadID   uuid.UUID
	Checksum string
	Date     time.Time
	Sections int
	Rows     int
	Status   string // metrics.StatusLoaded, StatusSkipped or StatusFailed
	Err      error
	Duration time.Duration
}

// Summary aggregates a batch.
type Summary struct {
	Files    int
	Loaded   int
	Skipped  int
	Failed   int
	Rows     int
	Duration time.Duration
	Results  []FileResult // In input order
}

// Runner processes settlement files.
type Runner struct {
	cfg     Config
	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]uuid.UUID
}

// New creates a new Runner. m may be nil.
func New(cfg Config, sinks []Sink, m *metrics.Metrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = logger
	}
	return &Runner{
		cfg:     cfg,
		sinks:   sinks,
		metrics: m,
		logger:  logger,
		seen:    make(map[string]uuid.UUID),
	}
}

// ProcessFile decodes one file and hands it to every sink. The returned
// error is also recorded in the result.
func (r *Runner) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	start := time.Now()
	res := FileResult{Path: path, Status: metrics.StatusFailed}

	err := r.process(ctx, path, &res)
	if err != nil {
		res.Status = metrics.StatusFailed
		res.Err = err
	}
	res.Duration = time.Since(start)
	r.metrics.FileProcessed(res.Status)
	return res, err
}

func (r *Runner) process(ctx context.Context, path string, res *FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res.Checksum = files.ChecksumBytes(data)

	id, reserved := r.reserve(res.Checksum)
	if !reserved {
		res.LoadID = id
		res.Status = metrics.StatusSkipped
		r.logger.Debug("file already processed", "path", path, "load_id", id)
		return nil
	}
	done := false
	defer func() {
		if !done {
			r.release(res.Checksum)
		}
	}()

	parseStart := time.Now()
	rep, err := report.Parse(string(data), r.cfg.Options)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	r.metrics.ParseDuration(time.Since(parseStart))
	for _, s := range rep.Sections {
		r.metrics.Section(s.Kind.String(), len(s.Rows))
	}

	load := model.NewLoad(filepath.Base(path), res.Checksum, rep)
	res.LoadID = load.ID
	res.Date = rep.Date
	res.Sections = len(rep.Sections)
	res.Rows = rep.RowCount()

	res.Status = metrics.StatusLoaded
	for _, sink := range r.sinks {
		if err := sink.Accept(ctx, load); err != nil {
			if errors.Is(err, model.ErrDuplicateLoad) {
				res.Status = metrics.StatusSkipped
				r.logger.Info("file already loaded",
					"path", path,
					"sink", sink.Name(),
					"checksum", res.Checksum,
				)
				break
			}
			return fmt.Errorf("%s sink: %w", sink.Name(), err)
		}
	}
	r.markSeen(res.Checksum, load.ID)
	done = true

	r.logger.Info("file processed",
		"path", path,
		"status", res.Status,
		"date", rep.Date.Format(time.DateOnly),
		"sections", res.Sections,
		"rows", res.Rows,
	)
	return nil
}

// reserve claims a checksum for this call. It returns false and the known
// load ID (uuid.Nil while the first file is still in flight) if the
// checksum is already claimed.
func (r *Runner) reserve(sum string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.seen[sum]; ok {
		return id, false
	}
	r.seen[sum] = uuid.Nil
	return uuid.Nil, true
}

// release drops a claim after a failure so the file can be retried.
func (r *Runner) release(sum string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, sum)
}

func (r *Runner) markSeen(sum string, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[sum] = id
}

// Run processes paths concurrently. Failed files are logged and counted;
// with FailFast the first failure cancels the batch and is returned.
// Cancelling ctx stops scheduling new files.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	start := time.Now()
	sum := Summary{Files: len(paths), Results: make([]FileResult, len(paths))}
	if len(paths) == 0 {
		r.logger.Debug("no files to ingest")
		return sum, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			sum.Results[i] = FileResult{Path: path, Status: metrics.StatusFailed, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			res, err := r.ProcessFile(gctx, path)
			sum.Results[i] = res
			if err != nil {
				r.logger.Warn("failed to ingest file",
					"path", path,
					"error", err,
				)
				if r.cfg.FailFast {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for _, res := range sum.Results {
		switch res.Status {
		case metrics.StatusLoaded:
			sum.Loaded++
			sum.Rows += res.Rows
		case metrics.StatusSkipped:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}
	sum.Duration = time.Since(start)

	r.logger.Info("ingest cycle complete",
		"files", sum.Files,
		"loaded", sum.Loaded,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"rows", sum.Rows,
		"duration", sum.Duration,
	)
	return sum, err
}
