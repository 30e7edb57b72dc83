package model

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Contract Months
// -----------------------------------------------------------------------------

// MonthLetters is the canonical futures month alphabet, January first.
const MonthLetters = "FGHJKMNQUVXZ"

// MonthCode identifies a contract month within a decade: one digit
// (year mod 10) followed by one month letter, e.g. "4H" for March 2014.
type MonthCode string

// NewMonthCode builds a MonthCode from a calendar month (1-12) and a year.
// It returns false if month is out of range.
func NewMonthCode(month time.Month, year int) (MonthCode, bool) {
	if month < time.January || month > time.December {
		return "", false
	}
	digit := year % 10
	if digit < 0 {
		digit = -digit
	}
	return MonthCode(fmt.Sprintf("%d%c", digit, MonthLetters[month-1])), true
}

// Month returns the calendar month encoded by the code, or 0 if the code is malformed.
func (m MonthCode) Month() time.Month {
	if len(m) != 2 {
		return 0
	}
	for i := 0; i < len(MonthLetters); i++ {
		if MonthLetters[i] == m[1] {
			return time.Month(i + 1)
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// Quote Conventions
// -----------------------------------------------------------------------------

// Convention is the numeric encoding family that governs how a section's
// price and strike text is converted to points.
type Convention int

const (
	// Straight prices and strikes are plain decimals.
	Straight Convention = iota
	// Eighths prices are quoted as <points>'<eighths> (grains and softs).
	Eighths
	// ThirtySeconds prices are tick quotes; futures sections divide by 32.
	ThirtySeconds
	// SixtyFourths prices are tick quotes on treasury options.
	SixtyFourths
	// CentsScaledStrike strikes encode eighths in their hundredths digits (eurodollars).
	CentsScaledStrike
)

var conventionNames = map[Convention]string{
	Straight:          "straight",
	Eighths:           "eighths",
	ThirtySeconds:     "thirty_seconds",
	SixtyFourths:      "sixty_fourths",
	CentsScaledStrike: "cents_scaled_strike",
}

// String returns the snake_case name used in config files.
func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("convention(%d)", int(c))
}

// ParseConvention is the inverse of Convention.String.
func ParseConvention(name string) (Convention, bool) {
	for c, n := range conventionNames {
		if n == name {
			return c, true
		}
	}
	return Straight, false
}

// MarshalText encodes the convention by name.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsTick reports whether prices are <points>'<ticks> quotes.
func (c Convention) IsTick() bool {
	return c == ThirtySeconds || c == SixtyFourths
}

// -----------------------------------------------------------------------------
// Sections
// -----------------------------------------------------------------------------

// KindType distinguishes futures chains from option chains.
type KindType int

const (
	Futures KindType = iota
	OptionChain
)

// String returns "futures" or "option".
func (k KindType) String() string {
	if k == OptionChain {
		return "option"
	}
	return "futures"
}

// MarshalText encodes the kind by name.
func (k KindType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// OptionType is the right conveyed by an option chain.
type OptionType byte

const (
	NoOption OptionType = 0
	Call     OptionType = 'C'
	Put      OptionType = 'P'
)

// String returns "C", "P" or "".
func (o OptionType) String() string {
	if o == NoOption {
		return ""
	}
	return string(rune(o))
}

// MarshalText encodes the right as "C", "P" or "".
func (o OptionType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SectionKind is fixed when a section header is detected.
type SectionKind struct {
	Type       KindType   `json:"type"`
	OptionType OptionType `json:"option_type,omitempty"` // Call or Put for option chains
	Month      MonthCode  `json:"month,omitempty"`       // contract month for option chains
}

// FuturesKind returns the kind of a futures chain section.
func FuturesKind() SectionKind {
	return SectionKind{Type: Futures}
}

// OptionKind returns the kind of an option chain section.
func OptionKind(t OptionType, month MonthCode) SectionKind {
	return SectionKind{Type: OptionChain, OptionType: t, Month: month}
}

// IsOption reports whether the section is an option chain.
func (k SectionKind) IsOption() bool {
	return k.Type == OptionChain
}

// String returns "futures" or e.g. "option C 4H".
func (k SectionKind) String() string {
	if !k.IsOption() {
		return "futures"
	}
	return fmt.Sprintf("option %s %s", k.OptionType, k.Month)
}

// SettlementRow is one decoded line of a settlement report.
type SettlementRow struct {
	Month  MonthCode `json:"month,omitempty"`  // Contract month (futures rows)
	Strike float64   `json:"strike,omitempty"` // Strike in points (option rows)

	// Prices in points; 0 when the exchange printed no quote
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Last       float64 `json:"last"`
	Settle     float64 `json:"settle"`
	Change     float64 `json:"change"`
	PrevSettle float64 `json:"prev_settle"`

	Volume       int64 `json:"volume"`        // 0 when missing
	PrevVolume   int64 `json:"prev_volume"`   // 0 when missing
	OpenInterest int64 `json:"open_interest"` // Required; rows without it are not settlement data
}

// ProductSection is a contiguous run of rows under one product header.
type ProductSection struct {
	ProductCode string          `json:"product_code"`
	Kind        SectionKind     `json:"kind"`
	Convention  Convention      `json:"convention"`
	Rows        []SettlementRow `json:"rows"`
}

// SettlementReport is the decoded content of one settlement file.
type SettlementReport struct {
	Date     time.Time        `json:"date"`     // Settlement (as-of) date, midnight UTC
	Sections []ProductSection `json:"sections"` // Grouped by product, encounter order within a product
}

// Products returns the product codes in the order they were first encountered.
func (r *SettlementReport) Products() []string {
	var codes []string
	seen := make(map[string]bool)
	for _, s := range r.Sections {
		if !seen[s.ProductCode] {
			seen[s.ProductCode] = true
			codes = append(codes, s.ProductCode)
		}
	}
	return codes
}

// Product returns all sections for a product code, in encounter order.
func (r *SettlementReport) Product(code string) []ProductSection {
	var out []ProductSection
	for _, s := range r.Sections {
		if s.ProductCode == code {
			out = append(out, s)
		}
	}
	return out
}

// RowCount returns the total number of rows across all sections.
func (r *SettlementReport) RowCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Rows)
	}
	return n
}
