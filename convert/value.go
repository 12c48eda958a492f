// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package convert

import (
	"strconv"
)

// Count is an optional, non-negative number of bytes. The zero value is the
// empty count, which is distinct from a count of zero bytes.
type Count struct {
	n     int64
	valid bool
}

// Empty is the count reported when no usable amount was entered.
var Empty = Count{}

// CountOf wraps n. Negative values are empty.
func CountOf(n int64) Count {
	if n < 0 {
		return Empty
	}
	return Count{n: n, valid: true}
}

func (c Count) Value() (int64, bool) {
	return c.n, c.valid
}

func (c Count) IsEmpty() bool {
	return !c.valid
}

func (c Count) String() string {
	if !c.valid {
		return ""
	}
	return strconv.FormatInt(c.n, 10)
}

// MarshalJSON encodes the empty count as "".
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte(`""`), nil
	}
	return []byte(c.String()), nil
}

// Amount is an optional decimal quantity expressed in some unit. The zero
// value is the empty amount.
type Amount struct {
	v     float64
	valid bool
}

// AmountOf wraps v. Negative and non-finite values are empty.
func AmountOf(v float64) Amount {
	if !isFinite(v) || v < 0 {
		return Amount{}
	}
	return Amount{v: v, valid: true}
}

func (a Amount) Value() (float64, bool) {
	return a.v, a.valid
}

func (a Amount) IsEmpty() bool {
	return !a.valid
}

// String formats the amount with the fewest digits that represent it, e.g.
// "3", "3.07". The empty amount formats as "".
func (a Amount) String() string {
	if !a.valid {
		return ""
	}
	return strconv.FormatFloat(a.v, 'f', -1, 64)
}

// MarshalJSON encodes the empty amount as "".
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte(`""`), nil
	}
	return []byte(a.String()), nil
}
