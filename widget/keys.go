// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package widget

import "strings"

// Key codes admitted by the amount field, as reported by keydown events.
const (
	KeyBackspace = 8
	KeyTab       = 9
	KeyLeft      = 37
	KeyRight     = 39
	KeyDelete    = 46
	KeyDecimal   = 110
	KeyPeriod    = 190
	Key0         = 48
	Key9         = 57
	KeyPad0      = 96
	KeyPad9      = 105
)

// AllowKey reports whether a key may reach the amount field: digits (top row
// and keypad), a decimal separator, backspace, tab, delete and horizontal
// arrows.
func AllowKey(code int) bool {
	switch code {
	case KeyBackspace, KeyTab, KeyLeft, KeyRight, KeyDelete, KeyDecimal, KeyPeriod:
		return true
	}
	return (code >= Key0 && code <= Key9) || (code >= KeyPad0 && code <= KeyPad9)
}

// FilterText keeps the digits of s and its first '.', which is what the
// amount field would hold had s been typed key by key.
func FilterText(s string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
