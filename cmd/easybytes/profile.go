// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/optable/easybytes/cli"
	"github.com/optable/easybytes/config"
)

type ProfileCmd struct {
	List ProfileListCmd `cmd:"" help:"List profiles."`
	Show ProfileShowCmd `cmd:"" help:"Print a profile."`
	Set  ProfileSetCmd  `cmd:"" help:"Save the effective configuration (profile and flags) as a profile."`
	Use  ProfileUseCmd  `cmd:"" help:"Make a profile current."`
	Rm   ProfileRmCmd   `cmd:"" help:"Delete a profile."`
}

type ProfileListCmd struct{}

func (c *ProfileListCmd) Run(app *App) error {
	dir, err := app.globals.configDir()
	if err != nil {
		return err
	}

	names, err := dir.List()
	if err != nil {
		return err
	}
	current, _, err := dir.Current()
	if err != nil && !errors.Is(err, cli.ErrNoCurrent) {
		zerolog.Ctx(app.Ctx).Warn().Err(err).Msg("Current profile is unreadable")
	}

	if app.JSON {
		return app.printJSON(map[string]interface{}{"profiles": names, "current": current})
	}

	t := app.newTable()
	t.AppendHeader(table.Row{"", "Profile"})
	for _, name := range names {
		mark := ""
		if name == current {
			mark = "*"
		}
		t.AppendRow(table.Row{mark, name})
	}
	t.Render()
	return nil
}

type ProfileShowCmd struct {
	Name string `arg:"" optional:"" help:"Profile name, the current one if omitted."`
}

func (c *ProfileShowCmd) Run(app *App) error {
	dir, err := app.globals.configDir()
	if err != nil {
		return err
	}

	var v interface{}
	if c.Name == "" {
		_, v, err = dir.Current()
	} else {
		v, err = dir.Get(c.Name)
	}
	if err != nil {
		return err
	}

	conf, err := config.FromProfile(v)
	if err != nil {
		return err
	}
	b, err := app.globals.loader().Marshal(conf)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, string(b))
	return err
}

type ProfileSetCmd struct {
	Name string `arg:"" help:"Profile name."`
	Use  bool   `help:"Also make it current."`
}

func (c *ProfileSetCmd) Run(app *App) error {
	conf, _, err := app.Config()
	if err != nil {
		return err
	}
	dir, err := app.globals.configDir()
	if err != nil {
		return err
	}
	if err := dir.Set(c.Name, conf); err != nil {
		return err
	}
	zerolog.Ctx(app.Ctx).Info().Str("profile", c.Name).Str("dir", dir.Path()).Msg("Profile saved")

	if c.Use {
		return dir.Use(c.Name)
	}
	return nil
}

type ProfileUseCmd struct {
	Name string `arg:"" help:"Profile name."`
}

func (c *ProfileUseCmd) Run(app *App) error {
	dir, err := app.globals.configDir()
	if err != nil {
		return err
	}
	// Refuse to select a profile that would not load.
	if _, err := dir.Get(c.Name); err != nil {
		return err
	}
	return dir.Use(c.Name)
}

type ProfileRmCmd struct {
	Name string `arg:"" help:"Profile name."`
}

func (c *ProfileRmCmd) Run(app *App) error {
	dir, err := app.globals.configDir()
	if err != nil {
		return err
	}
	return dir.Remove(c.Name)
}
