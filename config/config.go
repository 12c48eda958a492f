// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optable/easybytes/convert"
	pkgerrors "github.com/optable/easybytes/errors"
	"github.com/optable/easybytes/unit"
)

// EmitMode selects when a widget reports its byte value.
type EmitMode string

const (
	// EmitKeystroke reports on every edit, from the edit itself.
	EmitKeystroke EmitMode = "keystroke"
	// EmitCommitted reports from the stored state once an edit is committed.
	EmitCommitted EmitMode = "committed"
)

func (m EmitMode) Valid() bool {
	return m == EmitKeystroke || m == EmitCommitted
}

const DefaultFieldName = "bytes"

var (
	ErrNegativeBytes   = errors.New("must be zero or more")
	ErrInvalidUnit     = convert.ErrInvalidUnit
	ErrInvalidEmitMode = errors.New(`must be "keystroke" or "committed"`)
	ErrEmptyFieldName  = errors.New("must not be empty when the hidden field is rendered")
)

// Config holds every option of a byte input widget.
type Config struct {
	AbbreviateUnits   bool        `json:"abbreviate_units" yaml:"abbreviate_units"`
	Base              unit.Base   `json:"base" yaml:"base"`
	DefaultUnit       unit.Index  `json:"default_unit" yaml:"default_unit"`
	DefaultBytes      int64       `json:"default_bytes" yaml:"default_bytes"`
	MaxAutoUnit       *unit.Index `json:"max_auto_unit,omitempty" yaml:"max_auto_unit,omitempty"`
	Emit              EmitMode    `json:"emit" yaml:"emit"`
	RenderHiddenField bool        `json:"render_hidden_field" yaml:"render_hidden_field"`
	FieldName         string      `json:"field_name,omitempty" yaml:"field_name,omitempty"`
}

// Default returns the configuration used when nothing is specified: decimal
// base, full unit names, Gigabytes shown for an empty value.
func Default() Config {
	return Config{
		Base:        unit.Decimal,
		DefaultUnit: unit.Gigabytes,
		Emit:        EmitKeystroke,
		FieldName:   DefaultFieldName,
	}
}

// SetDefaults fills the fields left to their zero value. DefaultUnit is left
// as is since 0 (Bytes) is a legitimate choice.
func (c *Config) SetDefaults() {
	if c.Base == 0 {
		c.Base = unit.Decimal
	}
	if c.Emit == "" {
		c.Emit = EmitKeystroke
	}
	if c.FieldName == "" {
		c.FieldName = DefaultFieldName
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !c.Base.Valid() {
		errs = append(errs, pkgerrors.NewFieldError("base", unit.ErrInvalidBase))
	}
	if !c.DefaultUnit.Valid() {
		errs = append(errs, pkgerrors.NewFieldError("default_unit", ErrInvalidUnit))
	}
	if c.DefaultBytes < 0 {
		errs = append(errs, pkgerrors.NewFieldError("default_bytes", ErrNegativeBytes))
	}
	if c.MaxAutoUnit != nil && !c.MaxAutoUnit.Valid() {
		errs = append(errs, pkgerrors.NewFieldError("max_auto_unit", ErrInvalidUnit))
	}
	if !c.Emit.Valid() {
		errs = append(errs, pkgerrors.NewFieldError("emit", ErrInvalidEmitMode))
	}
	if c.RenderHiddenField && c.FieldName == "" {
		errs = append(errs, pkgerrors.NewFieldError("field_name", ErrEmptyFieldName))
	}
	return pkgerrors.NewErrors(errs...)
}

// AutoUnit returns the highest unit selected automatically.
func (c *Config) AutoUnit() unit.Index {
	if c.MaxAutoUnit == nil {
		return convert.MaxAutoUnit
	}
	return *c.MaxAutoUnit
}

// Converter builds the converter matching this configuration.
func (c *Config) Converter() (*convert.Converter, error) {
	conv, err := convert.NewConverter(c.Base,
		convert.WithDefaultUnit(c.DefaultUnit),
		convert.WithMaxAutoUnit(c.AutoUnit()),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return conv, nil
}

// Units returns the unit names shown by the widget.
func (c *Config) Units() []string {
	return unit.Names(c.AbbreviateUnits)
}

// ToDict renders the configuration for structured logs.
func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Bool("abbreviate_units", c.AbbreviateUnits).
		Int("base", int(c.Base)).
		Int("default_unit", int(c.DefaultUnit)).
		Int64("default_bytes", c.DefaultBytes).
		Int("max_auto_unit", int(c.AutoUnit())).
		Str("emit", string(c.Emit)).
		Bool("render_hidden_field", c.RenderHiddenField).
		Str("field_name", c.FieldName)
}
