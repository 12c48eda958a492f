// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/unit"
)

var (
	ErrFieldCount  = errors.New("unexpected number of fields")
	ErrUnknownUnit = unit.ErrUnknownUnit
)

// lineResult is the converted form of one input line.
type lineResult struct {
	out   string
	empty bool
	err   error
}

// convertToDisplay reads a byte count and renders "AMOUNT\tUNIT". A value
// that is not a usable byte count renders an empty amount in the default
// unit, as BytesToDisplay does.
func convertToDisplay(conv *convert.Converter, abbreviate bool, line string) lineResult {
	fields := strings.Fields(line)
	if len(fields) != 1 {
		d := conv.CountToDisplay(convert.Empty)
		return lineResult{
			out:   "\t" + d.Unit.Name(abbreviate),
			empty: true,
			err:   fmt.Errorf("%w: expected a byte count, got %d fields", ErrFieldCount, len(fields)),
		}
	}

	d := conv.CountToDisplay(convert.Empty)
	if bytes, ok := convert.ParseAmount(fields[0]).Value(); ok {
		d = conv.ToDisplay(bytes)
	}
	return lineResult{
		out:   d.Amount.String() + "\t" + d.Unit.Name(abbreviate),
		empty: d.Amount.IsEmpty(),
	}
}

// splitAmountUnit accepts "1.5 MB", "1.5MB" and "1500"; the last form is
// read in bytes.
func splitAmountUnit(line string) (string, string, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 2:
		return fields[0], fields[1], nil
	case 1:
		s := fields[0]
		i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
		if i < 0 {
			return s, unit.Bytes.Name(false), nil
		}
		if i == 0 {
			// No amount at all; let the converter report it empty.
			return "", s, nil
		}
		return s[:i], s[i:], nil
	default:
		return "", "", fmt.Errorf("%w: expected AMOUNT UNIT, got %d fields", ErrFieldCount, len(fields))
	}
}

// convertToBytes reads "AMOUNT UNIT" and renders the byte count.
func convertToBytes(conv *convert.Converter, line string) lineResult {
	amount, name, err := splitAmountUnit(line)
	if err != nil {
		return lineResult{empty: true, err: err}
	}

	u, err := unit.Lookup(name)
	if err != nil {
		return lineResult{empty: true, err: err}
	}

	count := conv.ToBytes(amount, u)
	return lineResult{out: count.String(), empty: count.IsEmpty()}
}
