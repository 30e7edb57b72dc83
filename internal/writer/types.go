package writer

import "time"

// Config holds SettlementWriter settings.
type Config struct {
	// BatchSize is the number of rows sent per pgx batch.
	BatchSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{BatchSize: 1000}
}

// Result describes one file write.
type Result struct {
	Skipped   bool // File checksum already loaded
	Inserted  int64
	Conflicts int64 // Rows already present for the same contract and date
	Duration  time.Duration
}

// Metrics tracks writer totals.
type Metrics struct {
	Loads     int64
	Skipped   int64
	Inserts   int64
	Conflicts int64
	Errors    int64
	Batches   int64
}

// settlementRow represents a row to be inserted into the settlements table.
type settlementRow struct {
	ReportDate    time.Time
	Product       string
	Kind          string // "futures" or "option"
	OptionType    string // "", "C" or "P"
	ContractMonth string
	Strike        float64
	Open          float64
	High          float64
	Low           float64
	Last          float64
	Settle        float64
	Change        float64
	PrevSettle    float64
	Volume        int64
	PrevVolume    int64
	OpenInterest  int64
}
