package scanner

import (
	"log/slog"
	"strings"

	"github.com/rickgao/settlement-data/internal/convention"
	"github.com/rickgao/settlement-data/internal/cursor"
	"github.com/rickgao/settlement-data/internal/decode"
	"github.com/rickgao/settlement-data/internal/model"
)

const footerPrefix = "TOTAL"

// idWidth is the width of the ID column checked during header search.
const idWidth = 5

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for header and section events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scanner reads product sections from a cursor.
type Scanner struct {
	cur    *cursor.Cursor
	table  *convention.Table
	logger *slog.Logger
}

// New creates a Scanner reading from c. A nil table resolves every product
// to the straight convention.
func New(c *cursor.Cursor, table *convention.Table, opts ...Option) *Scanner {
	s := &Scanner{
		cur:    c,
		table:  table,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next section, or nil at end of input. The only error is
// a *HeaderError.
func (s *Scanner) Next() (*model.ProductSection, error) {
	code, kind, err := s.nextHeader()
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, nil
	}

	sec := &model.ProductSection{
		ProductCode: code,
		Kind:        kind,
		Convention:  s.table.Resolve(code),
	}
	ctx := decode.Context{Kind: kind, Convention: sec.Convention}

	for {
		mark := s.cur.Mark()
		line, ok := s.cur.Next()
		if !ok {
			break
		}
		row, err := decode.Decode(line, ctx)
		if err != nil {
			if !decode.IsNotData(err) {
				s.logger.Warn("unexpected decode error", "line", s.cur.Line(), "error", err)
			}
			s.cur.Reset(mark)
			break
		}
		sec.Rows = append(sec.Rows, row)
	}

	stop, _ := s.cur.Peek()
	s.logger.Debug("section scanned",
		"product", sec.ProductCode,
		"kind", sec.Kind.String(),
		"convention", sec.Convention.String(),
		"rows", len(sec.Rows),
		"next_line", s.cur.Line()+1,
		"stopped_at", strings.TrimSpace(stop),
	)
	return sec, nil
}

// nextHeader advances to the next header line. An empty code means the
// input is exhausted.
func (s *Scanner) nextHeader() (string, model.SectionKind, error) {
	for {
		line, ok := s.cur.Next()
		if !ok {
			return "", model.SectionKind{}, nil
		}
		if skipLine(line) {
			continue
		}

		code := strings.Fields(line)[0]
		trimmed := strings.ToUpper(strings.TrimRight(line, " \t"))

		var optType model.OptionType
		switch {
		case strings.HasSuffix(trimmed, "PUT"):
			optType = model.Put
		case strings.HasSuffix(trimmed, "CALL"):
			optType = model.Call
		default:
			s.logger.Debug("header found", "product", code, "line", s.cur.Line())
			return code, model.FuturesKind(), nil
		}

		month, ok := decode.FindMonthToken(line)
		if !ok {
			return "", model.SectionKind{}, &HeaderError{Line: s.cur.Line(), Text: line}
		}
		kind := model.OptionKind(optType, month)
		s.logger.Debug("header found", "product", code, "kind", kind.String(), "line", s.cur.Line())
		return code, kind, nil
	}
}

// skipLine reports whether a line is noise during header search: blank,
// a footer, or a data row outside any section. The ID column is trimmed
// before matching, so right-aligned ids such as "  995" are skipped too.
func skipLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	if strings.HasPrefix(line, footerPrefix) {
		return true
	}
	id := line
	if len(id) > idWidth {
		id = id[:idWidth]
	}
	id = strings.TrimSpace(id)
	return decode.HasMonthPrefix(id) || decode.HasStrikePrefix(id)
}
