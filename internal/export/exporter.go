package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/rickgao/settlement-data/internal/metrics"
	"github.com/rickgao/settlement-data/internal/model"
)

// Config holds Exporter settings.
type Config struct {
	Formats     []string
	Compression string // Parquet compression codec
}

// Exporter writes every configured format to every store.
type Exporter struct {
	cfg     Config
	stores  []Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewExporter creates an Exporter. m may be nil.
func NewExporter(cfg Config, stores []Store, m *metrics.Metrics, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, f := range cfg.Formats {
		if f != FormatCSV && f != FormatParquet {
			return nil, fmt.Errorf("unknown export format %q", f)
		}
	}
	return &Exporter{
		cfg:     cfg,
		stores:  stores,
		metrics: m,
		logger:  logger,
	}, nil
}

// Name identifies the exporter in ingest logs.
func (e *Exporter) Name() string {
	return "export"
}

// Accept exports the load, discarding the written keys.
func (e *Exporter) Accept(ctx context.Context, load model.Load) error {
	_, err := e.Export(ctx, load)
	return err
}

// ObjectKey returns the partitioned key for a load in the given format.
func ObjectKey(load model.Load, format string) string {
	date := "unknown"
	if load.Report != nil {
		date = load.Report.Date.Format(time.DateOnly)
	}
	base := path.Base(strings.ReplaceAll(load.File, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "report"
	}
	return fmt.Sprintf("date=%s/%s_%s.%s", date, base, load.ID, format)
}

// Export encodes the load once per format and puts it in every store. It
// returns the keys written. Store failures are joined; other stores are
// still attempted.
func (e *Exporter) Export(ctx context.Context, load model.Load) ([]string, error) {
	if len(e.stores) == 0 || len(e.cfg.Formats) == 0 {
		return nil, nil
	}
	records := Flatten(load.Report)

	var keys []string
	var errs []error
	for _, format := range e.cfg.Formats {
		data, err := Encode(format, records, e.cfg.Compression)
		if err != nil {
			return keys, fmt.Errorf("encode %s: %w", format, err)
		}
		key := ObjectKey(load, format)
		for _, st := range e.stores {
			if err := st.Put(ctx, key, data); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
				continue
			}
			keys = append(keys, key)
			e.metrics.Export(format)
			e.logger.Debug("export written",
				"store", st.Name(),
				"key", key,
				"records", len(records),
				"bytes", len(data),
			)
		}
	}
	if len(errs) > 0 {
		return keys, fmt.Errorf("export %s: %w", load.File, errors.Join(errs...))
	}
	return keys, nil
}
