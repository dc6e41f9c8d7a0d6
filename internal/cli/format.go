// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
}

// FormatMoney formats an amount with thousands separators in the given
// ISO 4217 currency. Unknown codes are suffixed instead of prefixed.
// e.g., (1234.5, "USD") -> "$1,234.50", (10, "CHF") -> "10.00 CHF"
func FormatMoney(amount float64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	s := FormatNumber(cents/100) + fmt.Sprintf(".%02d", cents%100)

	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		s = sym + s
	} else if currency != "" {
		s = s + " " + strings.ToUpper(currency)
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrency formats a whole-dollar USD amount.
// e.g., 8500000 -> "$8,500,000"
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-" + FormatCurrency(-amount)
	}
	return "$" + FormatNumber(int64(math.Round(amount)))
}

// FormatCompactCurrency formats a USD amount with a magnitude suffix.
// e.g., 8500000 -> "$8.5M", 420000 -> "$420K", 950 -> "$950"
func FormatCompactCurrency(amount float64) string {
	if amount < 0 {
		return "-" + FormatCompactCurrency(-amount)
	}
	switch {
	case amount >= 1_000_000_000:
		return "$" + trimZero(fmt.Sprintf("%.1f", amount/1_000_000_000)) + "B"
	case amount >= 1_000_000:
		return "$" + trimZero(fmt.Sprintf("%.1f", amount/1_000_000)) + "M"
	case amount >= 1_000:
		return "$" + trimZero(fmt.Sprintf("%.1f", amount/1_000)) + "K"
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent.
// e.g., 84 -> "84.0%"
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats a signed money delta.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCompactCurrency(delta)
	}
	return "-" + FormatCompactCurrency(-delta)
}
