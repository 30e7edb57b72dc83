package decode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rickgao/settlement-data/internal/model"
)

// DecodePrice converts price text to points. Malformed or empty text
// decodes to 0.
func DecodePrice(text string, conv model.Convention, kind model.SectionKind) float64 {
	switch conv {
	case model.ThirtySeconds, model.SixtyFourths:
		return decodeTicks(text, TickDenominator(kind))
	case model.Eighths:
		if strings.Contains(text, "'") {
			return decodeEighths(text)
		}
		return parseFloat(text)
	default:
		return parseFloat(text)
	}
}

// TickDenominator is 32 for futures sections and 64 for option sections.
func TickDenominator(kind model.SectionKind) int {
	if kind.IsOption() {
		return 64
	}
	return 32
}

// decodeTicks reads <points>'<ticks>. Ticks are rounded to the nearest
// quarter tick: q = floor(ticks*0.4 + 0.5), kept in integers. The "round"
// in that formula truncates x+0.5; it never rounds x+0.5 again, so "102'16"
// is 102 + 6/128 = 102.046875, not 102 + 7/128. The sign is carried by the
// points text only.
func decodeTicks(text string, denom int) float64 {
	pointsText, ticksText, ok := strings.Cut(text, "'")
	if !ok {
		return 0
	}
	negative, points := parsePoints(pointsText)

	ticks, err := strconv.ParseUint(ticksText, 10, 32)
	if err != nil {
		return 0
	}
	quarters := (4*ticks + 5) / 10

	v := float64(points) + float64(quarters)/float64(4*denom)
	if negative {
		v = -v
	}
	return v
}

// decodeEighths reads <points>'<eighths>: the first fraction digit is whole
// eighths, any further digits are decimal eighths ("450'62" = 450 + 6.2/8).
func decodeEighths(text string) float64 {
	pointsText, fracText, _ := strings.Cut(text, "'")
	negative, points := parsePoints(pointsText)

	if fracText == "" || !isDigits(fracText) {
		return 0
	}
	eighths := float64(fracText[0] - '0')
	if len(fracText) > 1 {
		rest, err := strconv.ParseFloat("0."+fracText[1:], 64)
		if err != nil {
			return 0
		}
		eighths += rest
	}

	v := float64(points) + eighths/8
	if negative {
		v = -v
	}
	return v
}

// parsePoints strips the sign from the integer part; unparseable text is 0.
func parsePoints(text string) (negative bool, points int64) {
	negative = strings.Contains(text, "-")
	unsigned := strings.TrimPrefix(strings.ReplaceAll(text, "-", ""), "+")
	points, err := strconv.ParseInt(unsigned, 10, 64)
	if err != nil {
		points = 0
	}
	return negative, points
}

// EncodeTicks renders points as <points>'<ticks> with three tick digits such
// that decoding with the same denominator yields the same value.
func EncodeTicks(value float64, denom int) string {
	negative := value < 0
	abs := math.Abs(value)

	points := math.Floor(abs)
	perPoint := int64(4 * denom)
	quarters := int64(math.Round((abs - points) * float64(perPoint)))
	if quarters >= perPoint {
		points++
		quarters -= perPoint
	}
	ticks := quarters * 5 / 2

	s := fmt.Sprintf("%d'%03d", int64(points), ticks)
	if negative {
		s = "-" + s
	}
	return s
}

func parseFloat(text string) float64 {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
