// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/optable/easybytes/batch"
	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/lifecycle"
	"github.com/optable/easybytes/metrics"
	"github.com/optable/easybytes/unit"
)

const shutdownTimeout = 5 * time.Second

func (a *App) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.Out)
	return enc.Encode(v)
}

func (a *App) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(a.Out)
	t.SetStyle(table.StyleLight)
	return t
}

type DisplayCmd struct {
	Bytes []string `arg:"" name:"bytes" help:"Byte counts to display."`
}

type displayRow struct {
	Input  string         `json:"input"`
	Amount convert.Amount `json:"amount"`
	Unit   unit.Index     `json:"unit"`
	Name   string         `json:"name"`
}

func (c *DisplayCmd) Run(app *App) error {
	conf, conv, err := app.Config()
	if err != nil {
		return err
	}

	rows := make([]displayRow, 0, len(c.Bytes))
	for _, s := range c.Bytes {
		d := conv.CountToDisplay(convert.Empty)
		if bytes, ok := convert.ParseAmount(s).Value(); ok {
			d = conv.ToDisplay(bytes)
		}
		rows = append(rows, displayRow{
			Input:  s,
			Amount: d.Amount,
			Unit:   d.Unit,
			Name:   d.Unit.Name(conf.AbbreviateUnits),
		})
	}

	if app.JSON {
		return app.printJSON(rows)
	}

	t := app.newTable()
	t.AppendHeader(table.Row{"Bytes", "Amount", "Unit"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Input, r.Amount.String(), r.Name})
	}
	t.Render()
	return nil
}

type BytesCmd struct {
	Amount string `arg:"" help:"Amount, e.g. 1.5."`
	Unit   string `arg:"" help:"Unit index or name, e.g. 2, MB or Megabytes."`
}

func (c *BytesCmd) Run(app *App) error {
	_, conv, err := app.Config()
	if err != nil {
		return err
	}
	u, err := unit.Lookup(c.Unit)
	if err != nil {
		return err
	}

	count := conv.ToBytes(c.Amount, u)
	if app.JSON {
		return app.printJSON(map[string]convert.Count{"bytes": count})
	}
	_, err = fmt.Fprintln(app.Out, count.String())
	return err
}

type BatchCmd struct {
	To          string `help:"Conversion direction." enum:"display,bytes" default:"display"`
	Input       string `help:"Read from this file instead of stdin." type:"existingfile"`
	Workers     int    `help:"Parallel workers, 0 for one per CPU." default:"0"`
	ChunkSize   int    `help:"Bytes read per chunk; must hold the longest line." default:"65536"`
	MetricsFile string `help:"Write prometheus counters to this file on exit." type:"path"`

	stdin io.Reader
}

func (c *BatchCmd) Run(app *App) error {
	logger := zerolog.Ctx(app.Ctx)
	conf, conv, err := app.Config()
	if err != nil {
		return err
	}

	in := c.stdin
	if in == nil {
		in = os.Stdin
	}
	if c.Input != "" {
		f, err := os.Open(c.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var recorder *metrics.Recorder
	var components []lifecycle.GracefulShutdown
	if c.MetricsFile != "" {
		recorder = metrics.NewTextfileRecorder(c.MetricsFile)
		components = append(components, recorder)
	}

	stats, err := batch.Run(app.Ctx, in, app.Out, batch.Options{
		Mode:       batch.Mode(c.To),
		Converter:  conv,
		Abbreviate: conf.AbbreviateUnits,
		Workers:    c.Workers,
		ChunkSize:  c.ChunkSize,
		Recorder:   recorder,
	})

	logger.Info().
		Int("lines", stats.Lines).
		Int("empty", stats.Empty).
		Int("malformed", stats.Malformed).
		Msg("Batch done")

	if shutdownErr := lifecycle.ShutdownAll(app.Ctx, shutdownTimeout, components...); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

type UnitsCmd struct{}

func (c *UnitsCmd) Run(app *App) error {
	conf, _, err := app.Config()
	if err != nil {
		return err
	}
	full, abbr := unit.Names(false), unit.Names(true)

	if app.JSON {
		type row struct {
			Index int     `json:"index"`
			Name  string  `json:"name"`
			Abbr  string  `json:"abbr"`
			Bytes float64 `json:"bytes"`
		}
		rows := make([]row, 0, unit.Count)
		for i := range full {
			rows = append(rows, row{i, full[i], abbr[i], conf.Base.Pow(unit.Index(i))})
		}
		return app.printJSON(rows)
	}

	t := app.newTable()
	t.AppendHeader(table.Row{"Index", "Name", "Abbr", fmt.Sprintf("Bytes (base %d)", conf.Base)})
	for i := range full {
		t.AppendRow(table.Row{i, full[i], abbr[i], fmt.Sprintf("%.0f", conf.Base.Pow(unit.Index(i)))})
	}
	t.Render()
	return nil
}
