package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMoney renders an integer amount with thousand separators and the
// currency code, e.g. "SAR 1,250".
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = "SAR"
	}
	return fmt.Sprintf("%s%s %s", sign, currency, formatThousand(amount))
}

// ParseAmount parses "SAR 1,250" or "1250" into an integer amount.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "sar")
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
