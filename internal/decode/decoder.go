package decode

import (
	"errors"
	"fmt"

	"github.com/rickgao/settlement-data/internal/model"
)

// ErrNotData reports that a line does not belong to the current data run:
// a header, a footer, or a stray total. Callers end the section on it.
var ErrNotData = errors.New("not settlement data")

// Context carries the section state a line is decoded against.
type Context struct {
	Kind       model.SectionKind
	Convention model.Convention
}

// Decode decodes one report line. The returned error wraps ErrNotData when
// the line is not a settlement row.
func Decode(line string, ctx Context) (model.SettlementRow, error) {
	f := sliceFields(line)

	id, ok := f.get(FieldID)
	if !ok || id == "" {
		return model.SettlementRow{}, fmt.Errorf("%w: no id", ErrNotData)
	}

	var row model.SettlementRow

	month, isMonth := ParseMonthToken(id)
	switch {
	case isMonth:
		if ctx.Kind.IsOption() {
			return model.SettlementRow{}, fmt.Errorf("%w: contract month %q in option chain", ErrNotData, id)
		}
		row.Month = month

	case HasStrikePrefix(id):
		if !ctx.Kind.IsOption() {
			return model.SettlementRow{}, fmt.Errorf("%w: strike %q in futures chain", ErrNotData, id)
		}
		strike, err := DecodeStrike(id, ctx.Convention)
		if err != nil {
			return model.SettlementRow{}, err
		}
		row.Strike = strike

	default:
		return model.SettlementRow{}, fmt.Errorf("%w: id %q", ErrNotData, id)
	}

	oiText, ok := f.get(FieldOpenInterest)
	if !ok {
		return model.SettlementRow{}, fmt.Errorf("%w: no open interest", ErrNotData)
	}
	oi, err := parseInt(oiText)
	if err != nil {
		return model.SettlementRow{}, fmt.Errorf("%w: open interest %q", ErrNotData, oiText)
	}
	row.OpenInterest = oi

	price := func(field Field) float64 {
		text, _ := f.get(field)
		return DecodePrice(text, ctx.Convention, ctx.Kind)
	}
	row.Open = price(FieldOpen)
	row.High = price(FieldHigh)
	row.Low = price(FieldLow)
	row.Last = price(FieldLast)
	row.Settle = price(FieldSettle)
	row.Change = price(FieldChange)
	row.PrevSettle = price(FieldPrevSettle)

	row.Volume = intOrZero(f.get(FieldVolume))
	row.PrevVolume = intOrZero(f.get(FieldPrevVolume))

	return row, nil
}

// IsNotData reports whether err marks a non-data line.
func IsNotData(err error) bool {
	return errors.Is(err, ErrNotData)
}

func intOrZero(text string, present bool) int64 {
	if !present {
		return 0
	}
	v, err := parseInt(text)
	if err != nil {
		return 0
	}
	return v
}
