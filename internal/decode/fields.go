package decode

import "strings"

// Field identifies a fixed-width column.
type Field int

const (
	FieldID Field = iota
	FieldOpen
	FieldHigh
	FieldLow
	FieldLast
	FieldSettle
	FieldChange
	FieldVolume
	FieldPrevSettle
	FieldPrevVolume
	FieldOpenInterest
	numFields
)

type column struct {
	name       string
	start, end int
}

var columns = [numFields]column{
	FieldID:           {"ID", 0, 5},
	FieldOpen:         {"OPEN", 6, 15},
	FieldHigh:         {"HIGH", 16, 25},
	FieldLow:          {"LOW", 26, 35},
	FieldLast:         {"LAST", 36, 45},
	FieldSettle:       {"SETT", 46, 55},
	FieldChange:       {"CHG", 55, 63},
	FieldVolume:       {"VOL", 63, 75},
	FieldPrevSettle:   {"PSETT", 75, 86},
	FieldPrevVolume:   {"PVOL", 86, 98},
	FieldOpenInterest: {"OPENINT", 98, 110},
}

// String returns the column heading used by the exchange.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "UNKNOWN"
	}
	return columns[f].name
}

// Bounds returns the column's byte range.
func (f Field) Bounds() (start, end int) {
	c := columns[f]
	return c.start, c.end
}

// fields holds the trimmed text of each column and whether the line was
// long enough to contain it.
type fields struct {
	text    [numFields]string
	present [numFields]bool
}

// sliceFields cuts a line into its columns.
func sliceFields(line string) fields {
	var f fields
	for i, c := range columns {
		if len(line) < c.end {
			continue
		}
		f.text[i] = strings.TrimSpace(line[c.start:c.end])
		f.present[i] = true
	}
	return f
}

func (f *fields) get(field Field) (string, bool) {
	return f.text[field], f.present[field]
}
