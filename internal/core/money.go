// Package core provides money and quantity parsing.
//
// Numeric input comes straight from form fields, so it is first normalized
// according to a NumericPolicy and only then parsed.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// NumericPolicy decides what happens to characters that cannot belong to a
// number, such as a currency sign or a unit suffix.
type NumericPolicy string

const (
	// NumericStrip drops every character that is not a digit or a decimal separator.
	NumericStrip NumericPolicy = "strip"
	// NumericReject refuses the whole input when such a character is present.
	NumericReject NumericPolicy = "reject"
)

// ParseNumericPolicy maps a config value to a policy.
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch NumericPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case NumericStrip, "":
		return NumericStrip, nil
	case NumericReject:
		return NumericReject, nil
	}
	return "", fmt.Errorf("unknown numeric policy %q", s)
}

// Normalize applies the policy and returns a plain decimal string using a dot
// separator. When a '.' is present, commas are thousands separators. Without
// one, commas are thousands separators if every group after the first has
// exactly three digits ("1,500", "12,000,000"); a single other comma is a
// decimal separator ("12,5"). A '-' ahead of the first digit is a negative
// amount under either policy.
func (p NumericPolicy) Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrRequired
	}
	var b strings.Builder
	digits := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits = true
			b.WriteRune(r)
		case r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && (p == NumericReject || !digits):
			return "", ErrNegativeAmount
		case p == NumericReject:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidAmount, r)
		}
	}
	out := b.String()
	if out == "" {
		return "", ErrInvalidAmount
	}
	switch {
	case strings.Contains(out, "."):
		out = strings.ReplaceAll(out, ",", "")
	case thousandsGrouped(out):
		out = strings.ReplaceAll(out, ",", "")
	case strings.Count(out, ",") == 1:
		out = strings.Replace(out, ",", ".", 1)
	case strings.Contains(out, ","):
		return "", fmt.Errorf("%w: misplaced comma", ErrInvalidAmount)
	}
	if strings.Count(out, ".") > 1 || out == "." {
		return "", ErrInvalidAmount
	}
	return out, nil
}

// thousandsGrouped reports whether s reads as 1-3 leading digits, not starting
// with zero, followed by comma-separated groups of exactly three digits.
func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ",")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 || groups[0][0] == '0' {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// MaxCents is the largest amount accepted anywhere, $10,000,000,000.00. Sums
// over millions of jobs at this bound still fit in an int64.
const MaxCents int64 = 1_000_000_000_000

// ParseDecimalToCents converts a normalized decimal string to cents with
// half-up rounding on the third decimal place. Zero is a valid amount and
// anything above MaxCents is ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("0")      -> 0, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeAmount
	}
	if strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > MaxCents/100 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents > MaxCents {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney normalizes s under the policy and converts it to Money.
func ParseMoney(s string, p NumericPolicy) (Money, error) {
	norm, err := p.Normalize(s)
	if err != nil {
		return Money{}, err
	}
	cents, err := ParseDecimalToCents(norm)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// ParseYards normalizes s under the policy and returns a non-negative quantity.
func ParseYards(s string, p NumericPolicy) (decimal.Decimal, error) {
	norm, err := p.Normalize(s)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}
