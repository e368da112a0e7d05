package feed

import (
	"strconv"
	"strings"
)

// NormalizeQuantity maps a raw feed quantity token to a stock count.
// The vendor reports boundary quantities as sentinel strings: ">10" means a
// capped stock of 100, and an exact "1" is a reserved unit that must not be
// sold, so it counts as 0.
func NormalizeQuantity(token string) (int, error) {
	switch token {
	case ">10":
		return 100, nil
	case "1":
		return 0, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, &FormatError{Field: "quantity", Token: token}
	}
	return n, nil
}

// NormalizePrice reduces a raw price token like "5'990.00 руб." to its
// integer-rouble digits ("5990"). The fractional part and anything after it
// are truncated, not rounded, then every non-digit is stripped from the
// remaining prefix.
func NormalizePrice(token string) (string, error) {
	head, _, _ := strings.Cut(token, ".")
	var b strings.Builder
	for _, r := range head {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", &FormatError{Field: "price", Token: token}
	}
	return b.String(), nil
}
