// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"errors"
	"fmt"

	"github.com/pkg/profile"
)

type (
	// Profiling can be embedded in a kong cli to enable profiling of a
	// command. The flag is hidden from the help message.
	//
	// The supported values are "cpu", "memory", "block", "mutex" and "trace".
	// The profile is written in ProfilingDir (the working directory by
	// default) and its path is printed to stderr. Open it with
	// `go tool pprof $file`.
	//
	//	stop := cli.Profiling.Start()
	//	defer stop()
	Profiling struct {
		Profiling    string `hidden:"" help:"Profile the command: cpu, memory, block, mutex or trace."`
		ProfilingDir string `hidden:"" default:"." type:"path" help:"Directory receiving the profile."`
	}
)

var profileModes = map[string]func(*profile.Profile){
	"cpu":    profile.CPUProfile,
	"memory": profile.MemProfile,
	"block":  profile.BlockProfile,
	"mutex":  profile.MutexProfile,
	"trace":  profile.TraceProfile,
}

var ErrUnknownProfilingMode = errors.New("unknown profiling mode, expected cpu, memory, block, mutex or trace")

// Validate rejects unknown modes. kong calls it after parsing.
func (p *Profiling) Validate() error {
	if p.Profiling == "" || p.Enabled() {
		return nil
	}
	return fmt.Errorf("%q: %w", p.Profiling, ErrUnknownProfilingMode)
}

// Enabled reports whether a profile was requested.
func (p *Profiling) Enabled() bool {
	_, ok := profileModes[p.Profiling]
	return ok
}

// Start starts the profiling operation. It returns a function that needs to be
// called when the profiling should stop.
func (p *Profiling) Start() func() {
	mode, ok := profileModes[p.Profiling]
	if !ok {
		return func() {}
	}
	dir := p.ProfilingDir
	if dir == "" {
		dir = "."
	}
	return profile.Start(profile.ProfilePath(dir), mode, profile.NoShutdownHook).Stop
}
