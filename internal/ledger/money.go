package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a monetary value written the way bookkeepers type it:
// space as thousands separator, comma as decimal separator ("1 234,56").
// Plain dot-decimal input is accepted too. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	cleaned := strings.ReplaceAll(s, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d, nil
}

// FormatAmount renders a value back in the same locale form: two decimal
// places, space-grouped thousands, comma decimal.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(' ')
		b.WriteString(intPart[i : i+3])
	}

	out := b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

var flexibleDateLayouts = []string{"02/01/06", "02/01/2006", "02-01-06", "02-01-2006"}

// ParseFlexibleDate reads a date in any of the accepted day-first formats;
// the first matching layout wins. Empty input yields a nil date, not an
// error: whether a date is mandatory is the caller's rule.
func ParseFlexibleDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range flexibleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// ParseDay reads a day-of-month between 1 and 31. Empty input is zero.
func ParseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	day, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	if day < 1 || day > 31 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return day, nil
}
