// Package console implements the step/spinner console surface: lines
// delimited by "===...( STEP_NAME )===...===" begin a new step (logged as
// "▶ STEP_NAME" when a TTY is attached, "step: STEP_NAME" otherwise);
// enabled/disabled echo markers toggle verbatim passthrough regardless of
// verbosity.
package console

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Progress prints step/log lines to stderr, unless quiet.
type Progress struct {
	quiet    bool
	logger   zerolog.Logger
	isTTY    bool
	curStep  string
}

// New creates a Progress bound to logger. quiet suppresses all step/log
// output.
func New(logger zerolog.Logger, quiet bool) *Progress {
	return &Progress{
		quiet:  quiet,
		logger: logger,
		isTTY:  isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Log prints a formatted progress line, unless quiet. It logs without a
// level, so the logger's verbosity level does not filter it.
func (p *Progress) Log(format string, args ...any) {
	if p.quiet {
		return
	}
	p.logger.Log().Msg(fmt.Sprintf(format, args...))
}

// BeginStep marks the start of a named step, parsed from a
// "===...( STEP_NAME )===..." tool-output marker.
func (p *Progress) BeginStep(name string) {
	p.curStep = name
	if p.quiet {
		return
	}
	if p.isTTY {
		p.logger.Info().Msg("▶ " + name)
	} else {
		p.logger.Info().Msg("step: " + name)
	}
}

// CurrentStep returns the name of the step in progress, or "" if none.
func (p *Progress) CurrentStep() string { return p.curStep }

// EndStep clears the in-progress step marker.
func (p *Progress) EndStep() { p.curStep = "" }
