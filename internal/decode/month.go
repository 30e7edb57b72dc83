package decode

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rickgao/settlement-data/internal/model"
)

var (
	monthPrefixRe  = regexp.MustCompile(`^([A-Z]{3})\s?(\d{2})`)
	monthTokenRe   = regexp.MustCompile(`([A-Z]{3})\s?(\d{2})`)
	strikePrefixRe = regexp.MustCompile(`^-?\d+(\.\d+)?`)
)

// monthAbbrev maps the exchange's month abbreviations; July is printed as JLY.
var monthAbbrev = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"JLY": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

// MonthCodeFor converts a month abbreviation and year to a MonthCode.
func MonthCodeFor(abbrev string, year int) (model.MonthCode, bool) {
	m, ok := monthAbbrev[abbrev]
	if !ok {
		return "", false
	}
	return model.NewMonthCode(m, year)
}

// ParseMonthToken decodes a token such as "JUN13" or "JUN 13" at the start
// of s.
func ParseMonthToken(s string) (model.MonthCode, bool) {
	m := monthPrefixRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return monthFromMatch(m)
}

// FindMonthToken returns the first valid month token anywhere in s.
func FindMonthToken(s string) (model.MonthCode, bool) {
	for _, m := range monthTokenRe.FindAllStringSubmatch(s, -1) {
		if code, ok := monthFromMatch(m); ok {
			return code, true
		}
	}
	return "", false
}

// HasMonthPrefix reports whether s starts with a month token.
func HasMonthPrefix(s string) bool {
	_, ok := ParseMonthToken(s)
	return ok
}

// HasStrikePrefix reports whether s starts with a numeric strike.
func HasStrikePrefix(s string) bool {
	return strikePrefixRe.MatchString(s)
}

func monthFromMatch(m []string) (model.MonthCode, bool) {
	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return "", false
	}
	return MonthCodeFor(m[1], yy)
}
