package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid money amount")

// maxAmount guards against absurd user input before it reaches the wire.
var maxAmount = decimal.New(1, 15)

// ParseAmount parses a user-entered decimal amount string. The result is
// always a finite positive value with at most two fraction digits.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("%w: more than two decimal places", ErrInvalidAmount)
	}
	return d, nil
}

// Format renders an amount for user-facing messages, e.g. "USD 1,234.50".
func Format(d decimal.Decimal, currency string) string {
	s := withCommas(d.StringFixed(2))
	if currency == "" {
		return s
	}
	return currency + " " + s
}

// FormatSigned prefixes the amount with - for sent and + for received.
func FormatSigned(d decimal.Decimal, currency string, sent bool) string {
	sign := "+"
	if sent {
		sign = "-"
	}
	return sign + Format(d, currency)
}

func withCommas(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	l := len(intPart)
	for i := 0; i < l; i++ {
		b.WriteByte(intPart[i])
		rem := l - i - 1
		if rem > 0 && rem%3 == 0 {
			b.WriteByte(',')
		}
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
