package cli

import "testing"

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		1234567:   "1,234,567",
		-8500000:  "-8,500,000",
		100000000: "100,000,000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{50000, "USD", "$50,000.00"},
		{1234.5, "usd", "$1,234.50"},
		{12, "EUR", "€12.00"},
		{10, "CHF", "10.00 CHF"},
		{-0.5, "USD", "-$0.50"},
		{0.005, "USD", "$0.01"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatCompactCurrency(t *testing.T) {
	tests := map[float64]string{
		8_500_000: "$8.5M",
		5_000_000: "$5M",
		420_000:   "$420K",
		735_000:   "$735K",
		950:       "$950",
		-1_200:    "-$1.2K",
	}
	for in, want := range tests {
		if got := FormatCompactCurrency(in); got != want {
			t.Errorf("FormatCompactCurrency(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(8_500_000); got != "$8,500,000" {
		t.Errorf("FormatCurrency = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(84); got != "84.0%" {
		t.Errorf("FormatPercent(84) = %q", got)
	}
}
