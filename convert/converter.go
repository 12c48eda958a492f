// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package convert

import (
	"errors"
	"fmt"

	"github.com/optable/easybytes/unit"
)

var ErrInvalidUnit = errors.New("unit index must be between 0 and 5")

type (
	// Converter binds a base and unit policy so that callers convert with
	// the same settings for the lifetime of an editing session.
	Converter struct {
		base        unit.Base
		defaultUnit unit.Index
		maxAutoUnit unit.Index
	}

	Option func(*Converter)
)

// WithDefaultUnit sets the unit shown when no byte value is present.
func WithDefaultUnit(u unit.Index) Option {
	return func(c *Converter) { c.defaultUnit = u }
}

// WithMaxAutoUnit overrides MaxAutoUnit.
func WithMaxAutoUnit(u unit.Index) Option {
	return func(c *Converter) { c.maxAutoUnit = u }
}

// NewConverter validates its settings once so that conversions do not have
// to.
func NewConverter(base unit.Base, opts ...Option) (*Converter, error) {
	c := &Converter{
		base:        base,
		defaultUnit: unit.Gigabytes,
		maxAutoUnit: MaxAutoUnit,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.base.Valid() {
		return nil, fmt.Errorf("invalid base %d: %w", c.base, unit.ErrInvalidBase)
	}
	if !c.defaultUnit.Valid() {
		return nil, fmt.Errorf("invalid default unit %d: %w", c.defaultUnit, ErrInvalidUnit)
	}
	if !c.maxAutoUnit.Valid() {
		return nil, fmt.Errorf("invalid max auto unit %d: %w", c.maxAutoUnit, ErrInvalidUnit)
	}

	return c, nil
}

func (c *Converter) Base() unit.Base {
	return c.base
}

func (c *Converter) DefaultUnit() unit.Index {
	return c.defaultUnit
}

func (c *Converter) ToDisplay(bytes float64) Display {
	return BytesToDisplayMax(bytes, c.base, c.defaultUnit, c.maxAutoUnit)
}

// CountToDisplay is ToDisplay for an optional count.
func (c *Converter) CountToDisplay(bytes Count) Display {
	n, ok := bytes.Value()
	if !ok {
		return Display{Unit: c.defaultUnit}
	}
	return c.ToDisplay(float64(n))
}

func (c *Converter) ToBytes(amount string, u unit.Index) Count {
	return DisplayToBytes(amount, u, c.base)
}
