package decode

import (
	"fmt"
	"strconv"

	"github.com/rickgao/settlement-data/internal/model"
)

// DecodeStrike converts strike text to points.
//
// Eurodollar and treasury option strikes are integers whose hundredths
// digits stand for eighths of a point, rounded to the nearest eighth:
// "9912" is 99 + 1/8. Other conventions print plain decimals.
func DecodeStrike(text string, conv model.Convention) (float64, error) {
	switch conv {
	case model.CentsScaledStrike, model.ThirtySeconds, model.SixtyFourths:
		ik, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: strike %q", ErrNotData, text)
		}
		return centsScaledStrike(ik), nil
	default:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: strike %q", ErrNotData, text)
		}
		return v, nil
	}
}

// centsScaledStrike computes ik div 100 + floor(0.5 + (ik mod 100)*0.08)/8
// exactly.
func centsScaledStrike(ik int64) float64 {
	negative := ik < 0
	if negative {
		ik = -ik
	}
	whole := ik / 100
	eighths := (8*(ik%100) + 50) / 100

	v := float64(whole) + float64(eighths)/8
	if negative {
		v = -v
	}
	return v
}
