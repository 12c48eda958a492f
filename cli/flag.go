// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"
)

// OptionalBool is a boolean kong flag that remembers whether it was given, so
// that `--flag=false` can override a value loaded from a profile. A bare
// `--flag` means true.
type OptionalBool struct {
	set   bool
	value bool
}

func (b *OptionalBool) Decode(ctx *kong.DecodeContext) error {
	b.set, b.value = true, true
	if ctx.Scan.Peek().Type != kong.FlagValueToken {
		return nil
	}

	token := ctx.Scan.Pop()
	v, err := strconv.ParseBool(fmt.Sprint(token.Value))
	if err != nil {
		return fmt.Errorf("expected a boolean but got %q", token.Value)
	}
	b.value = v
	return nil
}

// IsBool lets the flag be given without a value.
func (b OptionalBool) IsBool() bool {
	return true
}

// Value returns the flag value and whether it was given.
func (b OptionalBool) Value() (value bool, ok bool) {
	return b.value, b.set
}
