package decode

import (
	"math"
	"testing"

	"github.com/rickgao/settlement-data/internal/model"
)

var (
	futures = model.FuturesKind()
	option  = model.OptionKind(model.Call, "4H")
)

func TestDecodePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		conv model.Convention
		kind model.SectionKind
		want float64
	}{
		{"straight decimal", "1648.75", model.Straight, futures, 1648.75},
		{"straight signed", "-0.25", model.Straight, futures, -0.25},
		{"straight garbage", "UNCH", model.Straight, futures, 0},
		{"straight empty", "", model.Straight, futures, 0},
		{"straight nan rejected", "NaN", model.Straight, futures, 0},
		{"cents strike prices are decimals", ".655", model.CentsScaledStrike, option, 0.655},
		{"thirty seconds two digit ticks", "102'16", model.ThirtySeconds, futures, 102.046875},
		{"thirty seconds rounds up at the next tick", "102'17", model.ThirtySeconds, futures, 102.0546875},
		{"thirty seconds half tick", "124'165", model.ThirtySeconds, futures, 124.515625},
		{"thirty seconds quarter tick", "124'162", model.ThirtySeconds, futures, 124.5078125},
		{"option section uses sixty fourths", "1'320", model.ThirtySeconds, option, 1.5},
		{"sixty fourths in futures section", "1'320", model.SixtyFourths, futures, 2},
		{"negative ticks", "-3'080", model.ThirtySeconds, futures, -3.25},
		{"negative zero points", "-0'040", model.ThirtySeconds, futures, -0.125},
		{"missing ticks", "102", model.ThirtySeconds, futures, 0},
		{"unparseable ticks", "102'AB", model.ThirtySeconds, futures, 0},
		{"signed ticks rejected", "102'-16", model.ThirtySeconds, futures, 0},
		{"bad points only", "XX'160", model.ThirtySeconds, futures, 0.5},
		{"eighths whole digit", "450'6", model.Eighths, futures, 450.75},
		{"eighths decimal digits", "450'62", model.Eighths, futures, 450.775},
		{"eighths negative", "-1'4", model.Eighths, futures, -1.5},
		{"eighths without apostrophe", "450.75", model.Eighths, futures, 450.75},
		{"eighths garbage fraction", "450'x", model.Eighths, futures, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodePrice(tt.text, tt.conv, tt.kind)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DecodePrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDecodePrice_NegationSymmetry(t *testing.T) {
	for _, text := range []string{"3'08", "0'31", "124'165", "99'000"} {
		for _, kind := range []model.SectionKind{futures, option} {
			pos := DecodePrice(text, model.ThirtySeconds, kind)
			neg := DecodePrice("-"+text, model.ThirtySeconds, kind)
			if neg != -pos {
				t.Errorf("decode(-%s) = %v, want %v", text, neg, -pos)
			}
		}
	}
}

func TestTickDenominator(t *testing.T) {
	if got := TickDenominator(futures); got != 32 {
		t.Errorf("futures denominator = %d, want 32", got)
	}
	if got := TickDenominator(model.OptionKind(model.Put, "4H")); got != 64 {
		t.Errorf("option denominator = %d, want 64", got)
	}
}

func TestEncodeTicks(t *testing.T) {
	tests := []struct {
		value float64
		denom int
		want  string
	}{
		{124.5, 32, "124'160"},
		{124.515625, 32, "124'165"},
		{0.0078125, 32, "0'002"},
		{-3.25, 32, "-3'080"},
		{1.5, 64, "1'320"},
		{99, 64, "99'000"},
	}
	for _, tt := range tests {
		if got := EncodeTicks(tt.value, tt.denom); got != tt.want {
			t.Errorf("EncodeTicks(%v, %d) = %q, want %q", tt.value, tt.denom, got, tt.want)
		}
	}
}

// TestEncodeTicks_RoundTrip walks every quarter tick across a range of points.
func TestEncodeTicks_RoundTrip(t *testing.T) {
	for _, kind := range []model.SectionKind{futures, option} {
		denom := TickDenominator(kind)
		step := 1 / float64(4*denom)
		for points := -3; points <= 130; points += 7 {
			for q := 0; q < 4*denom; q++ {
				v := float64(points) + float64(q)*step
				if points < 0 {
					v = float64(points) - float64(q)*step
				}
				text := EncodeTicks(v, denom)
				got := DecodePrice(text, model.ThirtySeconds, kind)
				if math.Abs(got-v) > 1e-9 {
					t.Fatalf("decode(encode(%v)) = %v via %q", v, got, text)
				}
			}
		}
	}
}
