// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package errors

import (
	"bytes"
	"fmt"
)

// PositionalError is an error paired with a position. Batch conversions use it
// to point at the input line (1-based) that could not be read. Use the
// `Position` method to extract the position.
type PositionalError struct {
	pos int
	err error
}

// NewPositionalError creates an error paired with a position.
func NewPositionalError(pos int, err error) error {
	return &PositionalError{pos, err}
}

func (e *PositionalError) Error() string {
	return fmt.Sprintf("line %d: %s", e.pos, e.err.Error())
}

func (e *PositionalError) Position() int {
	return e.pos
}

func (e *PositionalError) Unwrap() error {
	return e.err
}

// FieldError names the configuration field an error is about.
type FieldError struct {
	Field string
	Err   error
}

// NewFieldError creates an error bound to a configuration field.
func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Errors is an error that wraps two or more errors, e.g. every malformed line
// of a batch or every invalid field of a configuration. errors.Is and
// errors.As look through all of them.
type Errors struct {
	errs []error
}

func (e *Errors) Error() string {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "%d errors:", len(e.errs))
	for _, err := range e.errs {
		fmt.Fprintf(buf, " [%s]", err.Error())
	}

	return buf.String()
}

func (e *Errors) Errors() []error {
	return e.errs
}

func (e *Errors) Unwrap() []error {
	return e.errs
}

// NewErrors drops nil errors and returns nil, the single remaining error, or
// an *Errors holding all of them.
func NewErrors(errs ...error) error {
	var errors []error
	for _, err := range errs {
		if err != nil {
			errors = append(errors, err)
		}
	}

	switch len(errors) {
	case 0:
		return nil
	case 1:
		return errors[0]
	default:
		return &Errors{errors}
	}
}

// All flattens err into the errors it aggregates. A nil error yields nil.
func All(err error) []error {
	if err == nil {
		return nil
	}
	if errs, ok := err.(*Errors); ok {
		return errs.Errors()
	}
	return []error{err}
}
