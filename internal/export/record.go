package export

import (
	"strconv"
	"time"

	"github.com/rickgao/settlement-data/internal/model"
)

// Record is one flattened settlement row.
type Record struct {
	ReportDate    string  `parquet:"name=report_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Product       string  `parquet:"name=product, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind          string  `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	OptionType    string  `parquet:"name=option_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	ContractMonth string  `parquet:"name=contract_month, type=BYTE_ARRAY, convertedtype=UTF8"`
	Strike        float64 `parquet:"name=strike, type=DOUBLE"`
	Open          float64 `parquet:"name=open, type=DOUBLE"`
	High          float64 `parquet:"name=high, type=DOUBLE"`
	Low           float64 `parquet:"name=low, type=DOUBLE"`
	Last          float64 `parquet:"name=last, type=DOUBLE"`
	Settle        float64 `parquet:"name=settle, type=DOUBLE"`
	Change        float64 `parquet:"name=change, type=DOUBLE"`
	PrevSettle    float64 `parquet:"name=prev_settle, type=DOUBLE"`
	Volume        int64   `parquet:"name=volume, type=INT64"`
	PrevVolume    int64   `parquet:"name=prev_volume, type=INT64"`
	OpenInterest  int64   `parquet:"name=open_interest, type=INT64"`
	Convention    string  `parquet:"name=convention, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// csvHeader lists the CSV columns in Record field order.
var csvHeader = []string{
	"report_date", "product", "kind", "option_type", "contract_month", "strike",
	"open", "high", "low", "last", "settle", "change", "prev_settle",
	"volume", "prev_volume", "open_interest", "convention",
}

// Flatten returns one record per row, in report order.
func Flatten(rep *model.SettlementReport) []Record {
	if rep == nil {
		return nil
	}
	date := rep.Date.Format(time.DateOnly)
	out := make([]Record, 0, rep.RowCount())
	for _, sec := range rep.Sections {
		kind := "futures"
		if sec.Kind.IsOption() {
			kind = "option"
		}
		for _, r := range sec.Rows {
			month := r.Month
			if sec.Kind.IsOption() {
				month = sec.Kind.Month
			}
			out = append(out, Record{
				ReportDate:    date,
				Product:       sec.ProductCode,
				Kind:          kind,
				OptionType:    sec.Kind.OptionType.String(),
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
				Convention:    sec.Convention.String(),
			})
		}
	}
	return out
}

func (r Record) csvRow() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	i := func(v int64) string { return strconv.FormatInt(v, 10) }
	return []string{
		r.ReportDate, r.Product, r.Kind, r.OptionType, r.ContractMonth, f(r.Strike),
		f(r.Open), f(r.High), f(r.Low), f(r.Last), f(r.Settle), f(r.Change), f(r.PrevSettle),
		i(r.Volume), i(r.PrevVolume), i(r.OpenInterest), r.Convention,
	}
}
