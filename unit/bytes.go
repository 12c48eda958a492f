// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package unit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Base is the multiplier between two adjacent units.
type Base int

const (
	// Decimal (SI) prefixes are powers of 1000.
	Decimal Base = 1000
	// Binary (IEC) prefixes are powers of 1024.
	Binary Base = 1024
)

var ErrInvalidBase = errors.New("base must be 1000 or 1024")

// ParseBase accepts "1000", "1024", "decimal" and "binary".
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1000", "decimal", "si":
		return Decimal, nil
	case "1024", "binary", "iec":
		return Binary, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidBase)
}

func (b Base) Valid() bool {
	return b == Decimal || b == Binary
}

// Pow returns base^i as a float.
func (b Base) Pow(i Index) float64 {
	return math.Pow(float64(b), float64(i))
}

func (b Base) String() string {
	return strconv.Itoa(int(b))
}

// UnmarshalText lets a Base be read from flags and YAML.
func (b *Base) UnmarshalText(text []byte) error {
	base, err := ParseBase(string(text))
	if err != nil {
		return err
	}
	*b = base
	return nil
}

// UnmarshalJSON accepts both 1024 and "1024".
func (b *Base) UnmarshalJSON(data []byte) error {
	text, ok := jsonScalar(data)
	if !ok {
		return nil
	}
	return b.UnmarshalText(text)
}

// Index is a position in the ordered unit list. Index 0 is raw bytes.
type Index int

const (
	Bytes Index = iota
	Kilobytes
	Megabytes
	Gigabytes
	Terabytes
	Petabytes
)

// Count is the number of units known to the list.
const Count = int(Petabytes) + 1

var (
	fullNames  = []string{"Bytes", "Kilobytes", "Megabytes", "Gigabytes", "Terabytes", "Petabytes"}
	abbrNames  = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}
	extraNames = map[string]Index{"b": Bytes, "byte": Bytes}
)

var ErrUnknownUnit = errors.New("unknown unit")

func (i Index) Valid() bool {
	return i >= Bytes && i <= Petabytes
}

// Name returns the display name of the unit, abbreviated if requested.
func (i Index) Name(abbreviate bool) string {
	if !i.Valid() {
		return "Index(" + strconv.Itoa(int(i)) + ")"
	}
	return Names(abbreviate)[i]
}

func (i Index) String() string {
	return i.Name(false)
}

// Names returns a copy of the ordered unit list.
func Names(abbreviate bool) []string {
	names := fullNames
	if abbreviate {
		names = abbrNames
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Lookup resolves a unit by index, full name, or abbreviation. Names are case
// insensitive and a trailing plural "s" is optional on full names.
func Lookup(s string) (Index, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(key); err == nil {
		if i := Index(n); i.Valid() {
			return i, nil
		}
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownUnit)
	}

	if i, ok := extraNames[key]; ok {
		return i, nil
	}

	match := func(names []string) (int, bool) {
		_, idx, ok := lo.FindIndexOf(names, func(name string) bool {
			name = strings.ToLower(name)
			return name == key || strings.TrimSuffix(name, "s") == key
		})
		return idx, ok
	}
	if idx, ok := match(fullNames); ok {
		return Index(idx), nil
	}
	if idx, ok := match(abbrNames); ok {
		return Index(idx), nil
	}

	return 0, fmt.Errorf("%q: %w", s, ErrUnknownUnit)
}

// UnmarshalText lets an Index be read by name or number.
func (i *Index) UnmarshalText(text []byte) error {
	idx, err := Lookup(string(text))
	if err != nil {
		return err
	}
	*i = idx
	return nil
}

// UnmarshalJSON accepts 3, "3" and "Gigabytes".
func (i *Index) UnmarshalJSON(data []byte) error {
	text, ok := jsonScalar(data)
	if !ok {
		return nil
	}
	return i.UnmarshalText(text)
}

// jsonScalar strips the quotes of a JSON string. It returns false for null.
func jsonScalar(data []byte) ([]byte, bool) {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil, false
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return []byte(s), true
}

const (
	Byte = 1

	Kilobyte = Byte * 1000
	Megabyte = Kilobyte * 1000
	Gigabyte = Megabyte * 1000
	Terabyte = Gigabyte * 1000
	Petabyte = Terabyte * 1000

	Kibibyte = Byte * 1024
	Mebibyte = Kibibyte * 1024
	Gibibyte = Mebibyte * 1024
	Tebibyte = Gibibyte * 1024
	Pebibyte = Tebibyte * 1024

	KB = Kilobyte
	MB = Megabyte
	GB = Gigabyte
	TB = Terabyte
	PB = Petabyte

	KiB = Kibibyte
	MiB = Mebibyte
	GiB = Gibibyte
	TiB = Tebibyte
	PiB = Pebibyte
)
