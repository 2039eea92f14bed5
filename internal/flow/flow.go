// Package flow defines the Flow contract and the dependency-graph machinery
// the flow runner drives: a three-phase Init/Run/ParseReports lifecycle
// each flow class implements.
package flow

import (
	"context"

	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/process"
	"github.com/xedahq/xeda/internal/settings"
)

// Constructor builds a fresh, uninitialized Flow instance. The registry
// package stores these keyed by snake_case flow name; Runner is handed a
// Resolver closure rather than depending on the registry package directly,
// keeping this package free of a dependency on its own caller.
type Constructor func() Flow

// Dependency describes a flow this flow depends on: a flow name to resolve
// through the registry, the settings overrides to layer on top of that
// flow's defaults, and a list of parent-relative paths to copy into the
// dependency's run directory before it runs.
type Dependency struct {
	FlowName      string
	Overrides     map[string]any
	ResourcesCopy []string
}

// Context is the environment a Flow executes under: its design, effective
// settings, a process supervisor for invoking external tools, and the
// directory the runner has scoped to its run_path.
type Context struct {
	Design     *design.Design
	Settings   *settings.FlowSettings
	Supervisor *process.Supervisor
	RunPath    string

	// CompletedDependencies holds the results of dependencies the runner
	// already launched on this flow's behalf, keyed by flow name, so Run
	// can read e.g. a synthesis netlist path a place-and-route flow needs.
	CompletedDependencies map[string]map[string]any
}

// Flow is implemented by every flow class. A single instance is
// constructed, driven through Init → (dependencies) → Run → ParseReports,
// then discarded; flow.Flow values are never reused across invocations.
type Flow interface {
	// Init prepares the flow and may return additional dependency
	// descriptors discovered from settings (e.g. a chosen synthesis
	// sub-tool). Called once, before any dependency is launched.
	Init(ctx context.Context, fctx *Context) ([]Dependency, error)

	// Run invokes the flow's external tool(s) via fctx.Supervisor. Called
	// after all declared dependencies have completed successfully.
	Run(ctx context.Context, fctx *Context) error

	// ParseReports extracts structured results from the files Run
	// produced, merging them into the returned map. Not called if Run
	// returned an error.
	ParseReports(fctx *Context) (map[string]any, error)
}

// FPGATarget is implemented by synthesis flows that can target an FPGA
// part. A flow advertises FPGA support by implementing this interface
// rather than via a settings-only flag, so the registry/runner can
// validate target compatibility before launch.
type FPGATarget interface {
	SupportsFPGA() bool
}

// ASICTarget is the Platform/technology-kit analogue of FPGATarget.
type ASICTarget interface {
	SupportsASIC() bool
}
