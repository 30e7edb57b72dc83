package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/settlement-data/internal/convention"
	"github.com/rickgao/settlement-data/internal/cursor"
	"github.com/rickgao/settlement-data/internal/model"
	"github.com/rickgao/settlement-data/internal/scanner"
)

// ErrMissingDate reports that the first line has no valid MM/DD/YY date.
var ErrMissingDate = errors.New("missing settlement date")

var dateRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{2})`)

// Options controls report assembly.
type Options struct {
	Products  map[string]bool   // Product codes to keep; nil keeps all
	Table     *convention.Table // Quote conventions; nil uses convention.Default()
	KeepEmpty bool              // Keep sections without rows
	Logger    *slog.Logger
}

// ProductFilter builds an Options.Products set. No codes means no filter.
func ProductFilter(codes []string) map[string]bool {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = true
		}
	}
	return set
}

// Parse decodes report text.
func Parse(text string, opts Options) (*model.SettlementReport, error) {
	return parse(cursor.FromString(text), opts)
}

// ParseReader decodes a report read from r.
func ParseReader(r io.Reader, opts Options) (*model.SettlementReport, error) {
	c, err := cursor.FromReader(r)
	if err != nil {
		return nil, err
	}
	return parse(c, opts)
}

// ParseFile decodes the report at path.
func ParseFile(path string, opts Options) (*model.SettlementReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	rep, err := ParseReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rep, nil
}

func parse(c *cursor.Cursor, opts Options) (*model.SettlementReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	table := opts.Table
	if table == nil {
		table = convention.Default()
	}

	first, _ := c.Next()
	date, err := ParseDate(first)
	if err != nil {
		return nil, err
	}

	sc := scanner.New(c, table, scanner.WithLogger(logger))
	var sections []model.ProductSection
	dropped := 0
	for {
		sec, err := sc.Next()
		if err != nil {
			return nil, err
		}
		if sec == nil {
			break
		}
		if opts.Products != nil && !opts.Products[sec.ProductCode] {
			continue
		}
		if len(sec.Rows) == 0 && !opts.KeepEmpty {
			dropped++
			continue
		}
		sections = append(sections, *sec)
	}

	rep := &model.SettlementReport{
		Date:     date,
		Sections: groupByProduct(sections),
	}
	logger.Debug("report assembled",
		"date", date.Format(time.DateOnly),
		"lines", c.Len(),
		"sections", len(rep.Sections),
		"rows", rep.RowCount(),
		"empty_dropped", dropped,
	)
	return rep, nil
}

// ParseDate extracts the MM/DD/YY business date from a line.
func ParseDate(line string) (time.Time, error) {
	m := dateRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: no MM/DD/YY in %q", ErrMissingDate, line)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])

	date := time.Date(2000+yy, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid date %s", ErrMissingDate, m[0])
	}
	return date, nil
}

// groupByProduct orders sections so that each product's sections are
// adjacent, products by first appearance. Order within a product is kept.
func groupByProduct(sections []model.ProductSection) []model.ProductSection {
	if len(sections) == 0 {
		return nil
	}
	var order []string
	byCode := make(map[string][]model.ProductSection)
	for _, s := range sections {
		if _, ok := byCode[s.ProductCode]; !ok {
			order = append(order, s.ProductCode)
		}
		byCode[s.ProductCode] = append(byCode[s.ProductCode], s)
	}

	out := make([]model.ProductSection, 0, len(sections))
	for _, code := range order {
		out = append(out, byCode[code]...)
	}
	return out
}
