package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer", input: "7", want: 700},
		{name: "one decimal", input: "7.5", want: 750},
		{name: "rounds down on third decimal", input: "12.344", want: 1234},
		{name: "rounds up on third decimal", input: "12.346", want: 1235},
		{name: "leading whitespace", input: "  3.21", want: 321},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero decimal", input: "0.00", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "plus sign", input: "+5", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBudgetToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "zero budget allowed", input: "0", want: 0},
		{name: "regular", input: "100", want: 10000},
		{name: "decimal", input: "99.99", want: 9999},
		{name: "negative rejected", input: "-1", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "garbage rejected", input: "10x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBudgetToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBudgetToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBudgetToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBudgetToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1234, "12.34"},
		{110000, "1100.00"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Format(); got != tt.want {
			t.Errorf("Money{%d}.Format() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyFormatIn(t *testing.T) {
	eur := Currency{Code: "EUR", Symbol: "€", Name: "Euro"}
	if got := (Money{Cents: 1050}).FormatIn(eur); got != "€10.50 EUR" {
		t.Errorf("FormatIn = %q, want %q", got, "€10.50 EUR")
	}
}

func TestMoneyFloatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, 999999} {
		m := Money{Cents: cents}
		if got := MoneyFromFloat(m.Float()); got.Cents != cents {
			t.Errorf("round trip of %d cents gave %d", cents, got.Cents)
		}
	}
}
