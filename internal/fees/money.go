package fees

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in whole cents. Fee arithmetic never goes through
// floating point so tier boundaries and the cap compare exactly.
type Money int64

const (
	Cent   Money = 1
	Dollar Money = 100 * Cent
)

// maxWholeDollars keeps dollars*100 + 99 inside int64.
const maxWholeDollars = math.MaxInt64/int64(Dollar) - 1

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has more than two decimal places")
)

// String formats the amount with exactly two decimals, e.g. "4.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMoney parses a decimal string such as "7", "7.5" or "-0.50".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, ErrInvalidAmount
	}
	if len(frac) > 2 {
		return 0, ErrTooManyDecimals
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var dollars int64
	if whole != "" {
		var err error
		dollars, err = strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		if dollars > maxWholeDollars {
			return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
		}
	}

	for len(frac) < 2 {
		frac += "0"
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	total := Money(dollars)*Dollar + Money(cents)
	if negative {
		total = -total
	}
	return total, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
