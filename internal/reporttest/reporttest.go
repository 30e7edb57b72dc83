// Package reporttest builds fixed-width settlement report text for tests.
package reporttest

import "strings"

// ends holds the end offset of each column from ID through OPENINT.
var ends = [...]int{5, 15, 25, 35, 45, 55, 63, 75, 86, 98, 110}

// Row lays out values right-aligned in the ID, OPEN, HIGH, LOW, LAST, SETT,
// CHG, VOL, PSETT, PVOL and OPENINT columns. Fewer values give a shorter
// line.
func Row(values ...string) string {
	if len(values) > len(ends) {
		panic("reporttest: too many columns")
	}
	b := make([]byte, 0, ends[len(ends)-1])
	for i, v := range values {
		for len(b) < ends[i] {
			b = append(b, ' ')
		}
		copy(b[ends[i]-len(v):ends[i]], v)
	}
	return string(b)
}

// Settle is a row carrying only a settlement price and open interest.
func Settle(id, settle, openInterest string) string {
	return Row(id, "", "", "", "", settle, "", "", "", "", openInterest)
}

// Report joins a date line dated mmddyy ("03/14/14") with the given lines.
func Report(mmddyy string, lines ...string) string {
	all := append([]string{"BUSINESS DATE: " + mmddyy + "   FINAL SETTLEMENT PRICES"}, lines...)
	return strings.Join(all, "\n") + "\n"
}
