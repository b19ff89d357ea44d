package services

import (
	"fmt"
	"strings"
)

// CurrencyCode prefixes every formatted amount.
const CurrencyCode = "AED"

// FormatCurrency renders an amount as "AED 1,234.50": two decimals with
// thousands grouped in threes. Rounding happens only here.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(raw, ".")

	result := CurrencyCode + " " + groupThousands(intPart) + "." + decPart
	if negative && strings.Trim(intPart+decPart, "0") != "" {
		result = "-" + result
	}
	return result
}

// FormatCBM renders a volume with three decimals.
func FormatCBM(cbm float64) string {
	return fmt.Sprintf("%.3f", cbm)
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
