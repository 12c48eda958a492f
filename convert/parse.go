// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package convert

import (
	"strconv"
	"strings"
)

// splitDecimal validates s against the amount grammar and returns its integer
// and fractional digits. Accepted forms, after trimming white space, are
// "12", "12.", ".5" and "12.5". Signs, exponents and any other rune reject
// the whole string.
func splitDecimal(s string) (whole, frac string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}

	whole, frac = s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		whole, frac = s[:dot], s[dot+1:]
	}
	if whole == "" && frac == "" {
		return "", "", false
	}
	if !allDigits(whole) || !allDigits(frac) {
		return "", "", false
	}
	return whole, frac, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAmount parses a decimal amount as typed in a text field. The result is
// not rounded. Malformed input yields the empty amount.
func ParseAmount(s string) Amount {
	whole, frac, ok := splitDecimal(s)
	if !ok {
		return Amount{}
	}
	if whole == "" {
		whole = "0"
	}
	v, err := strconv.ParseFloat(whole+"."+frac+"0", 64)
	if err != nil {
		return Amount{}
	}
	return AmountOf(v)
}

// ParseInteger parses a decimal amount and discards its fractional part, so
// "12.7" is 12. Malformed input, or a value that does not fit in an int64,
// yields the empty count.
func ParseInteger(s string) Count {
	whole, _, ok := splitDecimal(s)
	if !ok {
		return Empty
	}
	if whole == "" {
		return CountOf(0)
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Empty
	}
	return CountOf(n)
}
