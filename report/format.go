package report

import (
	"fmt"
	"strconv"
)

// FormatUSD formate un montant pour affichage ($2.85M, $60.2K...).
func FormatUSD(value float64) string {
	switch {
	case value >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", value/1_000_000_000)
	case value >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("$%.1fK", value/1_000)
	default:
		return "$" + strconv.FormatFloat(value, 'f', 2, 64)
	}
}

// FormatCount insère les séparateurs de milliers (1,247).
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
