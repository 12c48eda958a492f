// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/easybytes/config"
	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/unit"
)

func binaryConfig(mode config.EmitMode) *config.Config {
	conf := config.Default()
	conf.Base = unit.Binary
	conf.Emit = mode
	return &conf
}

func assertEmitted(t *testing.T, expected int64, effect Effect) {
	t.Helper()
	require.True(t, effect.Emit)
	n, ok := effect.Bytes.Value()
	require.True(t, ok)
	assert.Equal(t, expected, n)
}

func TestNewState(t *testing.T) {
	conf := config.Default()
	assert.Equal(t, State{Text: "", Unit: unit.Gigabytes}, NewState(&conf))

	conf.Base = unit.Binary
	conf.DefaultBytes = 3072
	assert.Equal(t, State{Text: "3", Unit: unit.Kilobytes}, NewState(&conf))

	conf.Base = unit.Decimal
	assert.Equal(t, State{Text: "3.07", Unit: unit.Kilobytes}, NewState(&conf))
}

func TestKeystrokeMode(t *testing.T) {
	conf := binaryConfig(config.EmitKeystroke)
	state := State{Unit: unit.Kilobytes}

	state, effect := Transition(conf, state, EditAmount{Text: "3"})
	assert.Equal(t, State{Text: "3", Unit: unit.Kilobytes}, state)
	assertEmitted(t, 3072, effect)

	state, effect = Transition(conf, state, SelectUnit{Unit: unit.Megabytes})
	assert.Equal(t, unit.Megabytes, state.Unit)
	assertEmitted(t, 3*unit.MiB, effect)

	state, effect = Transition(conf, state, EditAmount{Text: ""})
	assert.True(t, effect.Emit)
	assert.True(t, effect.Bytes.IsEmpty())

	_, effect = Transition(conf, state, Commit{})
	assert.False(t, effect.Emit)
}

func TestCommittedMode(t *testing.T) {
	conf := binaryConfig(config.EmitCommitted)
	state := State{Unit: unit.Kilobytes}

	state, effect := Transition(conf, state, EditAmount{Text: "1"})
	assert.False(t, effect.Emit)
	state, effect = Transition(conf, state, EditAmount{Text: "1.5"})
	assert.False(t, effect.Emit)

	state, effect = Transition(conf, state, Commit{})
	assert.Equal(t, State{Text: "1.5", Unit: unit.Kilobytes}, state)
	assertEmitted(t, 1536, effect)

	_, effect = Transition(conf, state, SelectUnit{Unit: unit.Bytes})
	// Raw bytes drop the fractional part.
	assertEmitted(t, 1, effect)
}

func TestSelectInvalidUnitIsIgnored(t *testing.T) {
	conf := binaryConfig(config.EmitKeystroke)
	state := State{Text: "2", Unit: unit.Gigabytes}

	next, effect := Transition(conf, state, SelectUnit{Unit: unit.Index(9)})
	assert.Equal(t, state, next)
	assert.False(t, effect.Emit)
}

func TestSetBytes(t *testing.T) {
	conf := binaryConfig(config.EmitKeystroke)

	state, effect := Transition(conf, State{}, SetBytes{Bytes: convert.CountOf(5 * unit.GiB)})
	assert.False(t, effect.Emit)
	assert.Equal(t, State{Text: "5", Unit: unit.Gigabytes}, state)

	state, _ = Transition(conf, state, SetBytes{Bytes: convert.Empty})
	assert.Equal(t, State{Text: "", Unit: conf.DefaultUnit}, state)

	// Large values stay in Terabytes.
	state, _ = Transition(conf, state, SetBytes{Bytes: convert.CountOf(2 * unit.PiB)})
	assert.Equal(t, State{Text: "2048", Unit: unit.Terabytes}, state)
}

func TestRender(t *testing.T) {
	conf := binaryConfig(config.EmitKeystroke)
	conf.AbbreviateUnits = true

	view := Render(conf, State{Text: "3", Unit: unit.Kilobytes})
	assert.Equal(t, "3", view.Amount)
	assert.Nil(t, view.Hidden)
	require.Len(t, view.Options, unit.Count)
	for i, opt := range view.Options {
		assert.Equal(t, unit.Index(i), opt.Unit)
		assert.Equal(t, unit.Names(true)[i], opt.Label)
		assert.Equal(t, i == int(unit.Kilobytes), opt.Selected)
	}

	conf.RenderHiddenField = true
	view = Render(conf, State{Text: "3", Unit: unit.Kilobytes})
	assert.Equal(t, &HiddenField{Name: config.DefaultFieldName, Value: "3072"}, view.Hidden)

	view = Render(conf, State{Text: "", Unit: unit.Kilobytes})
	assert.Equal(t, "", view.Hidden.Value)
}

func TestWidget(t *testing.T) {
	var emitted []convert.Count
	conf := config.Default()
	conf.DefaultBytes = 2 * unit.MB

	w, err := New(conf, func(c convert.Count) { emitted = append(emitted, c) })
	require.NoError(t, err)
	assert.Equal(t, State{Text: "2", Unit: unit.Megabytes}, w.State())
	assert.Equal(t, convert.CountOf(2*unit.MB), w.Bytes())

	w.Dispatch(EditAmount{Text: "2.5"})
	w.Dispatch(SelectUnit{Unit: unit.Kilobytes})
	w.Dispatch(SetBytes{Bytes: convert.CountOf(unit.GB)})
	w.Dispatch(Commit{})

	assert.Equal(t, []convert.Count{convert.CountOf(2500000), convert.CountOf(2500)}, emitted)
	assert.Equal(t, "1", w.View().Amount)

	conf.Base = 7
	_, err = New(conf, nil)
	assert.ErrorIs(t, err, unit.ErrInvalidBase)
}

func TestAllowKey(t *testing.T) {
	for _, code := range []int{8, 9, 37, 39, 46, 110, 190, 48, 53, 57, 96, 100, 105} {
		assert.True(t, AllowKey(code), code)
	}
	for _, code := range []int{0, 13, 32, 38, 40, 65, 106, 109, 189} {
		assert.False(t, AllowKey(code), code)
	}
}

func TestFilterText(t *testing.T) {
	assert.Equal(t, "1.5", FilterText("1.5"))
	assert.Equal(t, "12.34", FilterText("1a2.3.4"))
	assert.Equal(t, "10", FilterText("-1e0"))
	assert.Equal(t, "", FilterText("abc"))
}
