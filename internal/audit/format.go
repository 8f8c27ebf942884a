package audit

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount renders d with two decimals and thousands separators.
// Negative amounts are shown in parentheses.
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "(" + FormatAmount(d.Neg()) + ")"
	}
	f, _ := d.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// ParseAmount parses a decimal amount, tolerating thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ',' && s[i] != ' ' {
			clean = append(clean, s[i])
		}
	}
	return decimal.NewFromString(string(clean))
}
