// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/unit"
	"github.com/optable/easybytes/widget"
)

var ErrUnknownEvent = errors.New("unknown event, expected edit:TEXT, unit:UNIT, bytes:N or commit")

type SimulateCmd struct {
	Events []string `arg:"" optional:"" help:"Events: edit:TEXT, unit:UNIT, bytes:N, commit."`
	Filter bool     `help:"Drop the characters the amount field would refuse from edit events."`
}

func parseEvent(s string, filter bool) (widget.Event, error) {
	kind, value := s, ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		kind, value = s[:i], s[i+1:]
	}

	switch kind {
	case "edit":
		if filter {
			value = widget.FilterText(value)
		}
		return widget.EditAmount{Text: value}, nil
	case "unit":
		u, err := unit.Lookup(value)
		if err != nil {
			return nil, err
		}
		return widget.SelectUnit{Unit: u}, nil
	case "bytes":
		return widget.SetBytes{Bytes: convert.ParseInteger(value)}, nil
	case "commit":
		return widget.Commit{}, nil
	}
	return nil, fmt.Errorf("%q: %w", s, ErrUnknownEvent)
}

type simulation struct {
	Emitted []convert.Count     `json:"emitted"`
	Amount  string              `json:"amount"`
	Unit    string              `json:"unit"`
	Bytes   convert.Count       `json:"bytes"`
	Hidden  *widget.HiddenField `json:"hidden,omitempty"`
}

func (c *SimulateCmd) Run(app *App) error {
	events := make([]widget.Event, 0, len(c.Events))
	for _, s := range c.Events {
		e, err := parseEvent(s, c.Filter)
		if err != nil {
			return err
		}
		events = append(events, e)
	}

	conf, _, err := app.Config()
	if err != nil {
		return err
	}

	var sim simulation
	w, err := widget.New(*conf, func(b convert.Count) {
		sim.Emitted = append(sim.Emitted, b)
	})
	if err != nil {
		return err
	}
	for _, e := range events {
		w.Dispatch(e)
	}

	view := w.View()
	sim.Amount = view.Amount
	for _, opt := range view.Options {
		if opt.Selected {
			sim.Unit = opt.Label
		}
	}
	sim.Bytes = w.Bytes()
	sim.Hidden = view.Hidden

	if app.JSON {
		return app.printJSON(sim)
	}

	for _, b := range sim.Emitted {
		fmt.Fprintf(app.Out, "emit %q\n", b.String())
	}
	fmt.Fprintf(app.Out, "view %q %s\n", sim.Amount, sim.Unit)
	if sim.Hidden != nil {
		fmt.Fprintf(app.Out, "hidden %s=%q\n", sim.Hidden.Name, sim.Hidden.Value)
	}
	return nil
}
