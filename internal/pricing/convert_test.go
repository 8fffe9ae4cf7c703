package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func present(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.NullDecimal
		rate   string
		want   string // "" means absent
	}{
		{"soja midday", present("440000"), "900", "488.89"},
		{"soja close", present("450000"), "905", "497.24"},
		{"exact division", present("900"), "900", "1"},
		{"zero amount", present("0"), "900", "0"},
		{"absent amount", decimal.NullDecimal{}, "900", ""},
		{"zero rate", present("440000"), "0", ""},
		{"negative rate", present("440000"), "-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.amount, decimal.RequireFromString(tt.rate))
			if tt.want == "" {
				if got.Valid {
					t.Fatalf("Convert() = %s, want absent", got.Decimal)
				}
				return
			}
			if !got.Valid {
				t.Fatalf("Convert() absent, want %s", tt.want)
			}
			if !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Convert() = %s, want %s", got.Decimal, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name  string
		num   decimal.NullDecimal
		denom string
		want  string
	}{
		{"soja vs urea", present("488.89"), "760", "0.64"},
		{"above parity", present("912"), "760", "1.2"},
		{"absent numerator", decimal.NullDecimal{}, "760", ""},
		{"zero denominator", present("488.89"), "0", ""},
		{"negative denominator", present("488.89"), "-760", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.num, decimal.RequireFromString(tt.denom))
			if tt.want == "" {
				if got.Valid {
					t.Fatalf("Ratio() = %s, want absent", got.Decimal)
				}
				return
			}
			if !got.Valid {
				t.Fatalf("Ratio() absent, want %s", tt.want)
			}
			if !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Ratio() = %s, want %s", got.Decimal, tt.want)
			}
		})
	}
}
