// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package widget is a headless byte input: a text amount next to a unit
// selector. UI bindings feed user events to Transition and render the
// resulting State with Render; the package holds no UI code.
package widget

import (
	"github.com/samber/lo"

	"github.com/optable/easybytes/config"
	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/unit"
)

type (
	// State is everything the widget remembers: the text of the amount field
	// and the selected unit.
	State struct {
		Text string
		Unit unit.Index
	}

	// Event is a user or host action. It is one of EditAmount, SelectUnit,
	// SetBytes or Commit.
	Event interface {
		isEvent()
	}

	// EditAmount is a change of the amount text field.
	EditAmount struct{ Text string }
	// SelectUnit is a choice in the unit selector.
	SelectUnit struct{ Unit unit.Index }
	// SetBytes replaces the value from outside, e.g. when a form is reset.
	SetBytes struct{ Bytes convert.Count }
	// Commit marks the end of an edit, e.g. blur or enter.
	Commit struct{}

	// Effect tells the binding whether to report Bytes to the consumer.
	Effect struct {
		Emit  bool
		Bytes convert.Count
	}
)

func (EditAmount) isEvent() {}
func (SelectUnit) isEvent() {}
func (SetBytes) isEvent()   {}
func (Commit) isEvent()     {}

// NewState seeds the widget with conf.DefaultBytes. A zero default shows an
// empty amount in conf.DefaultUnit.
func NewState(conf *config.Config) State {
	return fromBytes(conf, convert.CountOf(conf.DefaultBytes))
}

func fromBytes(conf *config.Config, bytes convert.Count) State {
	d := convert.Display{Unit: conf.DefaultUnit}
	if n, ok := bytes.Value(); ok {
		d = convert.BytesToDisplayMax(float64(n), conf.Base, conf.DefaultUnit, conf.AutoUnit())
	}
	return State{Text: d.Amount.String(), Unit: d.Unit}
}

// Bytes is the byte value currently represented by s.
func (s State) Bytes(conf *config.Config) convert.Count {
	return convert.DisplayToBytes(s.Text, s.Unit, conf.Base)
}

// Transition applies event to state. It never mutates its inputs.
//
// With config.EmitKeystroke every edit and unit change is reported, computed
// from the event merged over the previous state. With config.EmitCommitted
// text edits are only stored, and the stored state is reported on Commit and
// on unit changes. SetBytes is never reported back.
func Transition(conf *config.Config, state State, event Event) (State, Effect) {
	committed := conf.Emit == config.EmitCommitted

	switch e := event.(type) {
	case EditAmount:
		next := State{Text: e.Text, Unit: state.Unit}
		if committed {
			return next, Effect{}
		}
		return next, Effect{Emit: true, Bytes: convert.DisplayToBytes(e.Text, state.Unit, conf.Base)}

	case SelectUnit:
		if !e.Unit.Valid() {
			return state, Effect{}
		}
		next := State{Text: state.Text, Unit: e.Unit}
		if committed {
			return next, Effect{Emit: true, Bytes: next.Bytes(conf)}
		}
		return next, Effect{Emit: true, Bytes: convert.DisplayToBytes(state.Text, e.Unit, conf.Base)}

	case SetBytes:
		return fromBytes(conf, e.Bytes), Effect{}

	case Commit:
		if !committed {
			return state, Effect{}
		}
		return state, Effect{Emit: true, Bytes: state.Bytes(conf)}
	}

	return state, Effect{}
}

type (
	// Option is an entry of the unit selector.
	Option struct {
		Label    string
		Unit     unit.Index
		Selected bool
	}

	// HiddenField is the form field carrying the raw byte value.
	HiddenField struct {
		Name  string
		Value string
	}

	// View is what a binding draws.
	View struct {
		Amount  string
		Options []Option
		Hidden  *HiddenField
	}
)

// Render describes how state should be drawn under conf.
func Render(conf *config.Config, state State) View {
	view := View{
		Amount: state.Text,
		Options: lo.Map(conf.Units(), func(label string, i int) Option {
			return Option{Label: label, Unit: unit.Index(i), Selected: unit.Index(i) == state.Unit}
		}),
	}

	if conf.RenderHiddenField {
		view.Hidden = &HiddenField{Name: conf.FieldName, Value: state.Bytes(conf).String()}
	}

	return view
}

// Widget keeps a State and reports changes to OnChange. It is not safe for
// concurrent use; bindings call it from their event loop.
type Widget struct {
	conf     *config.Config
	state    State
	onChange func(convert.Count)
}

// New creates a Widget. The configuration is validated here so that events
// cannot fail later. onChange may be nil.
func New(conf config.Config, onChange func(convert.Count)) (*Widget, error) {
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Widget{conf: &conf, state: NewState(&conf), onChange: onChange}, nil
}

// Dispatch applies event and calls OnChange when the transition says so.
func (w *Widget) Dispatch(event Event) Effect {
	next, effect := Transition(w.conf, w.state, event)
	w.state = next
	if effect.Emit && w.onChange != nil {
		w.onChange(effect.Bytes)
	}
	return effect
}

func (w *Widget) State() State {
	return w.state
}

func (w *Widget) Bytes() convert.Count {
	return w.state.Bytes(w.conf)
}

func (w *Widget) View() View {
	return Render(w.conf, w.state)
}
