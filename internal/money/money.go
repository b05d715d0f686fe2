// Package money provides the exact integer-cent amount type used throughout
// the ledger. No floating point is involved in any balance arithmetic.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidEuros marks a missing or non-numeric integer part.
	ErrInvalidEuros = errors.New("invalid euro part")
	// ErrInvalidCents marks a missing or non-numeric fractional part.
	ErrInvalidCents = errors.New("invalid cent part")
)

// ParseError reports why an amount string could not be parsed.
// It unwraps to either ErrInvalidEuros or ErrInvalidCents.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse amount %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Value is a signed amount in minor units (cents).
type Value int64

// Parse converts a human decimal string into a Value. Both '.' and ',' are
// accepted as the fractional separator; the split happens on the last
// occurrence. A fractional part longer than two digits is truncated, a
// single digit is padded with a trailing zero ("12,5" -> 1250). A string
// without any separator is taken as whole euros.
func Parse(text string) (Value, error) {
	euroStr := text
	centStr := ""
	hasCents := false

	if idx := strings.LastIndexAny(text, ".,"); idx >= 0 {
		euroStr = text[:idx]
		centStr = text[idx+1:]
		hasCents = true
	}

	if euroStr == "" {
		return 0, &ParseError{Input: text, Err: ErrInvalidEuros}
	}
	euros, err := strconv.ParseInt(euroStr, 10, 64)
	if err != nil {
		return 0, &ParseError{Input: text, Err: ErrInvalidEuros}
	}

	var cents int64
	if hasCents {
		if centStr == "" {
			return 0, &ParseError{Input: text, Err: ErrInvalidCents}
		}
		if len(centStr) == 1 {
			centStr += "0"
		} else if len(centStr) > 2 {
			centStr = centStr[:2]
		}
		cents, err = strconv.ParseInt(centStr, 10, 64)
		if err != nil {
			return 0, &ParseError{Input: text, Err: ErrInvalidCents}
		}
	}

	return Value(euros*100 + cents), nil
}

// Format renders the value with exactly two fractional digits, e.g. "-12.50".
func (v Value) Format() string {
	sign := ""
	a := v
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d", sign, a/100, a%100)
}

// FormatDiff renders the value like Format but prefixes positive values
// with '+', for displaying balance changes.
func (v Value) FormatDiff() string {
	if v > 0 {
		return "+" + v.Format()
	}
	return v.Format()
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Format() }

// Add returns v + o.
func (v Value) Add(o Value) Value { return v + o }

// Sub returns v - o.
func (v Value) Sub(o Value) Value { return v - o }

// Neg returns -v.
func (v Value) Neg() Value { return -v }
