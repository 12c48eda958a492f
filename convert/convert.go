// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package convert converts between a raw byte count and an amount expressed
// in a unit of the unit package.
//
// None of the functions return errors. Input that cannot be converted yields
// an empty Count or Amount, which callers must tell apart from zero.
package convert

import (
	"math"

	"github.com/optable/easybytes/unit"
)

// MaxAutoUnit is the highest unit BytesToDisplay selects on its own. Petabytes
// can still be chosen explicitly.
const MaxAutoUnit = unit.Terabytes

// maxCandidate bounds the unit search regardless of the requested maximum.
const maxCandidate = unit.Index(10)

// Display is an amount paired with the unit it is expressed in.
type Display struct {
	Amount Amount     `json:"amount"`
	Unit   unit.Index `json:"unit"`
}

// Round2 rounds x to two decimals: the hundredths digit goes up when
// (x*1000) mod 10 is above 4, otherwise the value is truncated. The remainder
// keeps its fraction, so 1.234 rounds down while 1.2341 rounds up.
func Round2(x float64) float64 {
	milli := x * 1000
	rem := math.Mod(milli, 10)
	// milli-rem is a multiple of ten up to floating point noise.
	cents := math.Round((milli - rem) / 10)
	if rem > 4 {
		cents++
	}
	return cents / 100
}

// BytesToDisplay picks the largest unit, up to MaxAutoUnit, in which bytes is
// at least 1 and returns the rounded amount in that unit. Zero, negative and
// non-finite values return an empty amount in defaultUnit.
func BytesToDisplay(bytes float64, base unit.Base, defaultUnit unit.Index) Display {
	return BytesToDisplayMax(bytes, base, defaultUnit, MaxAutoUnit)
}

// BytesToDisplayMax behaves like BytesToDisplay with a configurable ceiling.
func BytesToDisplayMax(bytes float64, base unit.Base, defaultUnit, maxUnit unit.Index) Display {
	if !isFinite(bytes) || bytes <= 0 {
		return Display{Unit: defaultUnit}
	}

	i := candidateUnit(bytes, base)
	if i > maxUnit {
		i = maxUnit
	}
	if i > maxCandidate {
		i = maxCandidate
	}
	if i < unit.Bytes {
		i = unit.Bytes
	}

	amount := AmountOf(Round2(bytes / base.Pow(i)))
	if amount.IsEmpty() {
		return Display{Unit: defaultUnit}
	}
	return Display{Amount: amount, Unit: i}
}

// candidateUnit is floor(log(bytes) / log(base)), counted by whole powers so
// exact powers of the base are not lost to floating point error.
func candidateUnit(bytes float64, base unit.Base) unit.Index {
	if bytes < 1 {
		return unit.Bytes
	}
	b := float64(base)
	i := unit.Bytes
	for p := b; p <= bytes && i < maxCandidate; p *= b {
		i++
	}
	return i
}

// DisplayToBytes converts an amount typed in the given unit into bytes,
// truncated toward zero. With unit.Bytes the amount is read as an integer
// and no scaling is applied.
func DisplayToBytes(amount string, u unit.Index, base unit.Base) Count {
	if u == unit.Bytes {
		return ParseInteger(amount)
	}
	return DisplayToBytesAmount(ParseAmount(amount), u, base)
}

// DisplayToBytesAmount converts an already parsed amount.
func DisplayToBytesAmount(amount Amount, u unit.Index, base unit.Base) Count {
	v, ok := amount.Value()
	if !ok || !u.Valid() {
		return Empty
	}
	if u == unit.Bytes {
		return fromFloat(v)
	}
	return fromFloat(v * base.Pow(u))
}

// 2^63 is exactly representable; anything at or above it overflows int64.
const overflow = float64(1 << 63)

func fromFloat(v float64) Count {
	v = math.Trunc(v)
	if !isFinite(v) || v < 0 || v >= overflow {
		return Empty
	}
	return CountOf(int64(v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
