package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/settlement-data/internal/metrics"
	"github.com/rickgao/settlement-data/internal/model"
)

// ErrNoDatabase is returned by Write when the writer has no pool.
var ErrNoDatabase = errors.New("settlement writer: no database pool")

const insertFileSQL = `
	INSERT INTO settlement_files (load_id, file_name, checksum, report_date, row_count, loaded_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (checksum) DO NOTHING
`

const insertSettlementSQL = `
	INSERT INTO settlements (report_date, product, kind, option_type, contract_month, strike,
		open, high, low, last, settle, change, prev_settle, volume, prev_volume, open_interest, load_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (report_date, product, kind, option_type, contract_month, strike) DO NOTHING
`

// SettlementWriter writes loads to the settlements table.
type SettlementWriter struct {
	cfg    Config
	db     *pgxpool.Pool
	obs    *metrics.Metrics
	logger *slog.Logger

	mu    sync.Mutex
	stats Metrics
}

// NewSettlementWriter creates a new SettlementWriter. m may be nil.
func NewSettlementWriter(cfg Config, db *pgxpool.Pool, m *metrics.Metrics, logger *slog.Logger) *SettlementWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &SettlementWriter{
		cfg:    cfg,
		db:     db,
		obs:    m,
		logger: logger,
	}
}

// Name identifies the writer in ingest logs.
func (w *SettlementWriter) Name() string {
	return "postgres"
}

// Accept writes the load. A file already in the ledger is reported as
// model.ErrDuplicateLoad.
func (w *SettlementWriter) Accept(ctx context.Context, load model.Load) error {
	res, err := w.Write(ctx, load)
	if err != nil {
		return err
	}
	if res.Skipped {
		return fmt.Errorf("%w: checksum %s", model.ErrDuplicateLoad, load.Checksum)
	}
	return nil
}

// Write stores a load in one transaction.
func (w *SettlementWriter) Write(ctx context.Context, load model.Load) (Result, error) {
	if w.db == nil {
		return Result{}, ErrNoDatabase
	}
	if load.Report == nil {
		return Result{}, errors.New("settlement writer: load has no report")
	}

	start := time.Now()
	rows := transform(load.Report)

	res, err := w.write(ctx, load, rows)
	res.Duration = time.Since(start)

	w.mu.Lock()
	if err != nil {
		w.stats.Errors++
	} else if res.Skipped {
		w.stats.Skipped++
	} else {
		w.stats.Loads++
		w.stats.Inserts += res.Inserted
		w.stats.Conflicts += res.Conflicts
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("settlement write failed", "file", load.File, "load_id", load.ID, "error", err)
		return res, err
	}
	if res.Skipped {
		w.logger.Info("file already loaded", "file", load.File, "checksum", load.Checksum)
		return res, nil
	}
	w.obs.RowsWritten(res.Inserted)
	w.logger.Info("settlements written",
		"file", load.File,
		"load_id", load.ID,
		"inserted", res.Inserted,
		"conflicts", res.Conflicts,
		"duration", res.Duration,
	)
	return res, nil
}

func (w *SettlementWriter) write(ctx context.Context, load model.Load, rows []settlementRow) (Result, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertFileSQL,
		load.ID, load.File, load.Checksum, load.Report.Date, len(rows), load.ReadAt)
	if err != nil {
		return Result{}, fmt.Errorf("insert file ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, chunk := range chunks(len(rows), w.cfg.BatchSize) {
		part := rows[chunk[0]:chunk[1]]
		conflicts, err := w.batchInsert(ctx, tx, load, part)
		if err != nil {
			return Result{}, fmt.Errorf("insert settlements: %w", err)
		}
		res.Inserted += int64(len(part) - conflicts)
		res.Conflicts += int64(conflicts)

		w.mu.Lock()
		w.stats.Batches++
		w.mu.Unlock()
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *SettlementWriter) batchInsert(ctx context.Context, tx pgx.Tx, load model.Load, rows []settlementRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertSettlementSQL,
			r.ReportDate, r.Product, r.Kind, r.OptionType, r.ContractMonth, r.Strike,
			r.Open, r.High, r.Low, r.Last, r.Settle, r.Change, r.PrevSettle,
			r.Volume, r.PrevVolume, r.OpenInterest, load.ID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// Stats returns current metrics.
func (w *SettlementWriter) Stats() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// transform flattens a report into table rows.
func transform(rep *model.SettlementReport) []settlementRow {
	rows := make([]settlementRow, 0, rep.RowCount())
	for _, sec := range rep.Sections {
		kind := "futures"
		optType := ""
		if sec.Kind.IsOption() {
			kind = "option"
			optType = sec.Kind.OptionType.String()
		}
		for _, r := range sec.Rows {
			month := r.Month
			if sec.Kind.IsOption() {
				month = sec.Kind.Month
			}
			rows = append(rows, settlementRow{
				ReportDate:    rep.Date,
				Product:       sec.ProductCode,
				Kind:          kind,
				OptionType:    optType,
				ContractMonth: string(month),
				Strike:        r.Strike,
				Open:          r.Open,
				High:          r.High,
				Low:           r.Low,
				Last:          r.Last,
				Settle:        r.Settle,
				Change:        r.Change,
				PrevSettle:    r.PrevSettle,
				Volume:        r.Volume,
				PrevVolume:    r.PrevVolume,
				OpenInterest:  r.OpenInterest,
			})
		}
	}
	return rows
}

// chunks splits [0,n) into half-open ranges of at most size.
func chunks(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}
