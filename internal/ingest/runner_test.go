package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/rickgao/settlement-data/internal/metrics"
	"github.com/rickgao/settlement-data/internal/model"
	"github.com/rickgao/settlement-data/internal/report"
	"github.com/rickgao/settlement-data/internal/reporttest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingSink collects accepted loads.
type recordingSink struct {
	name string
	err  error

	mu    sync.Mutex
	loads []model.Load
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Accept(_ context.Context, load model.Load) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, load)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

func goldReport(mmddyy string) string {
	return reporttest.Report(mmddyy,
		"GC  GOLD FUTURES",
		reporttest.Settle("DEC13", "1314.1", "250000"),
		reporttest.Settle("FEB14", "1314.8", "90000"),
		"OG DEC13 CALL",
		reporttest.Settle("1300", "24.5", "900"),
	)
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func filesTotal(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "settle_files_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunner_ProcessFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stlcomex.20131105", goldReport("11/05/13"))
	sink := &recordingSink{name: "rec"}
	reg := prometheus.NewRegistry()
	r := New(DefaultConfig(), []Sink{sink}, metrics.New(reg), nil)

	res, err := r.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if res.Status != metrics.StatusLoaded {
		t.Errorf("Status = %q, want %q", res.Status, metrics.StatusLoaded)
	}
	if res.Sections != 2 || res.Rows != 3 {
		t.Errorf("Sections, Rows = %d, %d, want 2, 3", res.Sections, res.Rows)
	}
	if got := res.Date.Format("2006-01-02"); got != "2013-11-05" {
		t.Errorf("Date = %s, want 2013-11-05", got)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d loads, want 1", sink.count())
	}

	load := sink.loads[0]
	if load.ID != res.LoadID {
		t.Errorf("load ID = %s, want %s", load.ID, res.LoadID)
	}
	if load.File != "stlcomex.20131105" {
		t.Errorf("File = %q, want base name", load.File)
	}
	if load.Checksum != res.Checksum || len(load.Checksum) != 64 {
		t.Errorf("Checksum = %q, want 64 hex chars matching result", load.Checksum)
	}
	if got := filesTotal(t, reg, metrics.StatusLoaded); got != 1 {
		t.Errorf("files_total{loaded} = %v, want 1", got)
	}
}

func TestRunner_ProcessFile_SeenChecksum(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "stl.a", goldReport("11/05/13"))
	b := writeFile(t, dir, "stl.b", goldReport("11/05/13"))
	sink := &recordingSink{name: "rec"}
	r := New(DefaultConfig(), []Sink{sink}, nil, nil)

	first, err := r.ProcessFile(context.Background(), a)
	if err != nil {
		t.Fatalf("ProcessFile(a) error = %v", err)
	}
	second, err := r.ProcessFile(context.Background(), b)
	if err != nil {
		t.Fatalf("ProcessFile(b) error = %v", err)
	}

	if second.Status != metrics.StatusSkipped {
		t.Errorf("second Status = %q, want skipped", second.Status)
	}
	if second.LoadID != first.LoadID {
		t.Errorf("second LoadID = %s, want %s", second.LoadID, first.LoadID)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d loads, want 1", sink.count())
	}
}

func TestRunner_ProcessFile_DuplicateStopsSinks(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stl.dup", goldReport("11/05/13"))
	db := &recordingSink{name: "db", err: model.ErrDuplicateLoad}
	export := &recordingSink{name: "export"}
	r := New(DefaultConfig(), []Sink{db, export}, nil, nil)

	res, err := r.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if res.Status != metrics.StatusSkipped {
		t.Errorf("Status = %q, want skipped", res.Status)
	}
	if export.count() != 0 {
		t.Errorf("export sink called %d times after duplicate, want 0", export.count())
	}
}

func TestRunner_ProcessFile_SinkError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stl.err", goldReport("11/05/13"))
	boom := errors.New("boom")
	db := &recordingSink{name: "db", err: boom}
	export := &recordingSink{name: "export"}
	reg := prometheus.NewRegistry()
	r := New(DefaultConfig(), []Sink{db, export}, metrics.New(reg), nil)

	res, err := r.ProcessFile(context.Background(), path)
	if !errors.Is(err, boom) {
		t.Fatalf("ProcessFile() error = %v, want %v", err, boom)
	}
	if res.Status != metrics.StatusFailed || !errors.Is(res.Err, boom) {
		t.Errorf("result = %q / %v, want failed / boom", res.Status, res.Err)
	}
	if export.count() != 0 {
		t.Errorf("export sink called after failure")
	}
	if got := filesTotal(t, reg, metrics.StatusFailed); got != 1 {
		t.Errorf("files_total{failed} = %v, want 1", got)
	}

	// A failed file is retried on the next attempt.
	db.err = nil
	if _, err := r.ProcessFile(context.Background(), path); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if export.count() != 1 {
		t.Errorf("export sink called %d times on retry, want 1", export.count())
	}
}

func TestRunner_ProcessFile_Errors(t *testing.T) {
	dir := t.TempDir()
	noDate := writeFile(t, dir, "stl.nodate", "GC  GOLD FUTURES\n")
	r := New(DefaultConfig(), nil, nil, nil)

	if _, err := r.ProcessFile(context.Background(), noDate); !errors.Is(err, report.ErrMissingDate) {
		t.Errorf("missing date error = %v, want ErrMissingDate", err)
	}
	if _, err := r.ProcessFile(context.Background(), filepath.Join(dir, "absent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ProcessFile(ctx, noDate); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestRunner_ProductFilter(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stl.filter", goldReport("11/05/13"))
	sink := &recordingSink{name: "rec"}
	cfg := DefaultConfig()
	cfg.Options.Products = report.ProductFilter([]string{"OG"})
	r := New(cfg, []Sink{sink}, nil, nil)

	res, err := r.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if res.Sections != 1 || res.Rows != 1 {
		t.Errorf("Sections, Rows = %d, %d, want 1, 1", res.Sections, res.Rows)
	}
	if got := sink.loads[0].Report.Products(); len(got) != 1 || got[0] != "OG" {
		t.Errorf("Products() = %v, want [OG]", got)
	}
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "stl.1", goldReport("11/05/13")),
		writeFile(t, dir, "stl.2", "no date here\n"),
		writeFile(t, dir, "stl.3", goldReport("11/06/13")),
		writeFile(t, dir, "stl.4", goldReport("11/05/13")),
	}
	sink := &recordingSink{name: "rec"}
	cfg := DefaultConfig()
	cfg.Concurrency = 1
	r := New(cfg, []Sink{sink}, nil, nil)

	sum, err := r.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Files != 4 || sum.Loaded != 2 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v, want 4 files, 2 loaded, 1 skipped, 1 failed", sum)
	}
	if sum.Rows != 6 {
		t.Errorf("Rows = %d, want 6", sum.Rows)
	}
	for i, res := range sum.Results {
		if res.Path != paths[i] {
			t.Errorf("Results[%d].Path = %q, want %q", i, res.Path, paths[i])
		}
	}
	if sum.Results[1].Err == nil {
		t.Errorf("Results[1].Err = nil, want parse error")
	}
}

func TestRunner_Run_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, d := range []string{"11/01/13", "11/04/13", "11/05/13", "11/06/13", "11/07/13", "11/08/13"} {
		name := "stl." + d[0:2] + d[3:5]
		paths = append(paths, writeFile(t, dir, name, goldReport(d)))
	}
	sink := &recordingSink{name: "rec"}
	r := New(Config{Concurrency: 3}, []Sink{sink}, nil, nil)

	sum, err := r.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Loaded != len(paths) || sink.count() != len(paths) {
		t.Errorf("loaded %d, sink %d, want %d", sum.Loaded, sink.count(), len(paths))
	}
}

func TestRunner_Run_FailFast(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "stl.bad", "no date here\n"),
		writeFile(t, dir, "stl.good", goldReport("11/05/13")),
	}
	cfg := Config{Concurrency: 1, FailFast: true}
	r := New(cfg, nil, nil, nil)

	sum, err := r.Run(context.Background(), paths)
	if !errors.Is(err, report.ErrMissingDate) {
		t.Fatalf("Run() error = %v, want ErrMissingDate", err)
	}
	if sum.Loaded != 0 || sum.Failed != 2 {
		t.Errorf("summary = %+v, want 0 loaded, 2 failed", sum)
	}
}

func TestRunner_Run_Empty(t *testing.T) {
	r := New(DefaultConfig(), nil, nil, nil)
	sum, err := r.Run(context.Background(), nil)
	if err != nil || sum.Files != 0 {
		t.Errorf("Run(nil) = %+v, %v", sum, err)
	}
}

func TestSinkFunc(t *testing.T) {
	var got model.Load
	var s Sink = SinkFunc(func(_ context.Context, l model.Load) error {
		got = l
		return nil
	})
	load := model.NewLoad("f", "sum", &model.SettlementReport{})
	if err := s.Accept(context.Background(), load); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if got.ID != load.ID || s.Name() != "func" {
		t.Errorf("SinkFunc did not forward load")
	}
}

func TestRunner_Run_ConcurrentDuplicates(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 4; i++ {
		paths = append(paths, writeFile(t, dir, "stl.copy"+strconv.Itoa(i), goldReport("11/05/13")))
	}
	var calls atomic.Int64
	sink := SinkFunc(func(context.Context, model.Load) error {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	r := New(Config{Concurrency: 4}, []Sink{sink}, nil, nil)

	sum, err := r.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sum.Loaded != 1 || sum.Skipped != 3 {
		t.Errorf("loaded, skipped = %d, %d, want 1, 3", sum.Loaded, sum.Skipped)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("sink calls = %d, want 1", got)
	}
}
