// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/optable/easybytes/cli"
	"github.com/optable/easybytes/config"
	"github.com/optable/easybytes/convert"
	"github.com/optable/easybytes/lifecycle"
	"github.com/optable/easybytes/unit"
)

const appName = "easybytes"

type (
	// Globals are the flags shared by every command. Unit flags left empty
	// keep the value of the active profile.
	Globals struct {
		Base          string           `help:"Multiple between units: 1000 (decimal) or 1024 (binary)." env:"EASYBYTES_BASE"`
		Abbr          cli.OptionalBool `help:"Abbreviate unit names (KB, MB, ...); --abbr=false overrides a profile." env:"EASYBYTES_ABBR"`
		DefaultUnit   string           `help:"Unit shown when there is no value (index or name)." env:"EASYBYTES_DEFAULT_UNIT"`
		MaxUnit       string           `help:"Highest unit selected automatically (index or name)." env:"EASYBYTES_MAX_UNIT"`
		Emit          string           `help:"When the simulated widget reports: keystroke or committed." env:"EASYBYTES_EMIT"`
		Profile       string           `help:"Named profile to load instead of the current one." env:"EASYBYTES_PROFILE"`
		ProfileDir    string           `help:"Profile directory (defaults to $XDG_CONFIG_HOME/easybytes/profiles)." type:"path" env:"EASYBYTES_PROFILE_DIR"`
		ProfileFormat string           `help:"Profile encoding." enum:"json,yaml" default:"json"`
		JSON          bool             `help:"Print JSON instead of text."`
		LogLevel      string           `help:"Log level." default:"info" enum:"trace,debug,info,warn,error" env:"EASYBYTES_LOG_LEVEL"`
		LogFormat     string           `help:"Log format." default:"auto" enum:"auto,json,pretty"`

		cli.Profiling
	}

	CLI struct {
		Globals

		Display  DisplayCmd  `cmd:"" help:"Show byte counts in a human friendly unit."`
		Bytes    BytesCmd    `cmd:"" help:"Convert an amount in a unit to bytes."`
		Batch    BatchCmd    `cmd:"" help:"Convert newline-delimited values from stdin or a file."`
		Units    UnitsCmd    `cmd:"" help:"List the units."`
		Profile  ProfileCmd  `cmd:"" name:"profile" help:"Manage configuration profiles."`
		Simulate SimulateCmd `cmd:"" help:"Replay widget events and print what the widget reports."`
	}
)

// App is handed to every command.
type App struct {
	Ctx  context.Context
	Out  io.Writer
	JSON bool

	globals *Globals
	conf    *config.Config
	conv    *convert.Converter
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	pretty := format == "pretty"
	if format == "auto" {
		if f, ok := w.(*os.File); ok {
			pretty = isatty.IsTerminal(f.Fd())
		}
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}

func (g *Globals) loader() cli.ConfigLoader {
	if g.ProfileFormat == "yaml" {
		return &config.YAMLLoader{}
	}
	return &config.JSONLoader{}
}

// configDir opens the profile directory, creating the default one if needed.
func (g *Globals) configDir() (*cli.ConfigDir, error) {
	if g.ProfileDir != "" {
		return cli.NewConfigDir(g.ProfileDir, g.loader())
	}
	return cli.OpenDefaultConfigDir(appName, g.loader())
}

// baseConfig is the named profile, else the current one, else the defaults.
func (g *Globals) baseConfig(ctx context.Context) (*config.Config, error) {
	logger := zerolog.Ctx(ctx)
	conf := config.Default()

	dir, err := g.configDir()
	if err != nil {
		if g.Profile != "" {
			return nil, err
		}
		logger.Debug().Err(err).Msg("No profile directory, using defaults")
		return &conf, nil
	}

	var v interface{}
	if g.Profile != "" {
		if v, err = dir.Get(g.Profile); err != nil {
			return nil, fmt.Errorf("failed loading profile %q: %w", g.Profile, err)
		}
	} else {
		var name string
		name, v, err = dir.Current()
		if errors.Is(err, cli.ErrNoCurrent) {
			return &conf, nil
		} else if err != nil {
			return nil, err
		}
		logger.Debug().Str("profile", name).Msg("Using current profile")
	}

	return config.FromProfile(v)
}

// override applies the flags that were given.
func (g *Globals) override(conf *config.Config) error {
	if g.Base != "" {
		base, err := unit.ParseBase(g.Base)
		if err != nil {
			return err
		}
		conf.Base = base
	}
	if abbr, ok := g.Abbr.Value(); ok {
		conf.AbbreviateUnits = abbr
	}
	if g.DefaultUnit != "" {
		u, err := unit.Lookup(g.DefaultUnit)
		if err != nil {
			return fmt.Errorf("--default-unit: %w", err)
		}
		conf.DefaultUnit = u
	}
	if g.MaxUnit != "" {
		u, err := unit.Lookup(g.MaxUnit)
		if err != nil {
			return fmt.Errorf("--max-unit: %w", err)
		}
		conf.MaxAutoUnit = &u
	}
	if g.Emit != "" {
		conf.Emit = config.EmitMode(g.Emit)
	}
	return nil
}

// effectiveConfig merges the profile and the flags and validates the result.
func (g *Globals) effectiveConfig(ctx context.Context) (*config.Config, error) {
	conf, err := g.baseConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.override(conf); err != nil {
		return nil, err
	}
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func newApp(ctx context.Context, g *Globals, out io.Writer) *App {
	return &App{Ctx: ctx, Out: out, JSON: g.JSON, globals: g}
}

// Config loads the effective configuration on first use. The profile
// commands that repair a broken current profile never call it.
func (a *App) Config() (*config.Config, *convert.Converter, error) {
	if a.conf != nil {
		return a.conf, a.conv, nil
	}

	conf, err := a.globals.effectiveConfig(a.Ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	conv, err := conf.Converter()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	zerolog.Ctx(a.Ctx).Debug().Dict("config", conf.ToDict()).Msg("Configuration loaded")

	a.conf, a.conv = conf, conv
	return conf, conv, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed loading .env: %w", err)
	}
	return nil
}

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var c CLI
	kctx := kong.Parse(&c,
		kong.Name(appName),
		kong.Description("Convert between byte counts and human friendly amounts."),
		kong.UsageOnError(),
	)

	logger, err := newLogger(c.LogLevel, c.LogFormat, os.Stderr)
	kctx.FatalIfErrorf(err)

	stopProfiling := c.Profiling.Start()
	defer stopProfiling()

	ctx, cancel := lifecycle.WithSignals(logger.WithContext(context.Background()))
	defer cancel()

	app := newApp(ctx, &c.Globals, os.Stdout)
	if err := kctx.Run(app); err != nil {
		logger.Error().Err(err).Str("command", kctx.Command()).Msg("Command failed")
		fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		cancel()
		stopProfiling()
		os.Exit(1)
	}
}
