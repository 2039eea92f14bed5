package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xedahq/xeda/internal/console"
	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/hash"
	"github.com/xedahq/xeda/internal/process"
	"github.com/xedahq/xeda/internal/rundir"
	"github.com/xedahq/xeda/internal/settings"
	"github.com/xedahq/xeda/internal/xerrors"
)

// Resolver looks up a flow's constructor by snake_case name, implemented by
// the registry package. Kept as a function type here (rather than an
// import of internal/registry) to avoid a dependency cycle: registry
// depends on flow, not the reverse.
type Resolver func(name string) (Constructor, error)

// Request is one Flow Runner invocation's inputs.
type Request struct {
	FlowName          string
	Design            *design.Design
	SettingsOverrides map[string]any
	LibraryDefaults   map[string]any // lowest-priority settings layer
	ProjectSettings   map[string]any // xedaproject-level flow settings
	DesignSettings    map[string]any // design-file flow settings

	// ParentDebug/ParentVerbose propagate from the depender: a dependency
	// inherits the parent's debug flag, and its verbose flag if higher.
	ParentDebug   bool
	ParentVerbose bool

	ResourcesToCopy  []string
	ParentRunPath    string
	CachedDependencies bool
}

// Outcome is what a completed (or failed) invocation produced.
type Outcome struct {
	Settings             settings.FlowSettings
	Results              map[string]any
	RunPath              string
	DesignHash            string
	FlowrunHash           string
	Timestamp             string
	CompletedDependencies []string
	FromCache             bool
}

// Runner drives the flow execution algorithm: resolve, build settings,
// hash, derive run_path, cache check, scope, init/dependencies/run/parse,
// persist. Each invocation runs as a single-threaded recursive descent
// rather than fanning dependencies out concurrently, since flows run
// subprocesses that are not safe to parallelize within one chain.
type Runner struct {
	Root       string
	Version    string
	Resolve    Resolver
	Supervisor *process.Supervisor
	Progress   *console.Progress
	Chain      *ChainGraph
}

// NewRunner constructs a Runner rooted at root (the parent directory every
// run_path is derived under).
func NewRunner(root, version string, resolve Resolver, supervisor *process.Supervisor, progress *console.Progress) *Runner {
	return &Runner{
		Root:       root,
		Version:    version,
		Resolve:    resolve,
		Supervisor: supervisor,
		Progress:   progress,
		Chain:      NewChainGraph(),
	}
}

// Run executes req end-to-end, returning the resulting Outcome or a typed
// error from internal/xerrors.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	// Step 1: resolve class via registry.
	ctor, err := r.Resolve(req.FlowName)
	if err != nil {
		return nil, err
	}

	if req.ParentRunPath != "" {
		if err := r.Chain.AddEdge(parentChainName(req), req.FlowName); err != nil {
			return nil, err
		}
	}

	// Step 2: build effective FlowSettings, collecting every error.
	libDefaults := req.LibraryDefaults
	if libDefaults == nil {
		libDefaults = settings.DefaultFlowSettings().ToMap()
	}
	merged := settings.MergeAll(libDefaults, req.ProjectSettings, req.DesignSettings, req.SettingsOverrides)
	effective, verr := settings.FromRaw(merged)
	if verr.HasErrors() {
		return nil, &xerrors.SettingsError{FlowName: req.FlowName, Errors: verr.Errors}
	}
	if req.ParentDebug {
		effective.Debug = true
	}
	if req.ParentVerbose && !effective.Verbose {
		effective.Verbose = true
	}

	// Step 3: content hashes.
	designHash := hash.SemanticHash(req.Design.HashInputs())
	flowrunHash := hash.SemanticHash(map[string]any{
		"flow_name":        req.FlowName,
		"flow_settings":    effective.ToMap(),
		"copied_resources": req.ResourcesToCopy,
		"platform_version": r.Version,
	})

	// Step 4: derive run_path.
	runPath := rundir.Derive(r.Root, req.Design.Name, req.FlowName, designHash, flowrunHash, false)

	// Step 5: cache check.
	if req.CachedDependencies {
		if hit, resultsRec, err := rundir.CacheHit(runPath, req.FlowName, designHash, flowrunHash); err != nil {
			return nil, fmt.Errorf("cache check %s: %w", runPath, err)
		} else if hit {
			results := map[string]any{}
			for k, v := range resultsRec.Extra {
				results[k] = v
			}
			results["success"] = resultsRec.Success
			results["runtime"] = resultsRec.Runtime
			results["_artifacts"] = resultsRec.Artifacts
			return &Outcome{
				Settings:    effective,
				Results:     results,
				RunPath:     runPath,
				DesignHash:  designHash,
				FlowrunHash: flowrunHash,
				Timestamp:   resultsRec.Timestamp,
				FromCache:   true,
			}, nil
		}
	}

	// Step 6: preexistence policy, create run_path.
	if err := rundir.Prepare(runPath, rundir.ModeDefault); err != nil {
		return nil, fmt.Errorf("prepare run dir %s: %w", runPath, err)
	}

	// Step 9 (resource copy) happens before dependency launch so
	// dependencies can see resources their parent already produced.
	if req.ParentRunPath != "" {
		if _, err := rundir.CopyResources(req.ParentRunPath, runPath, req.ResourcesToCopy); err != nil {
			return nil, fmt.Errorf("copy resources into %s: %w", runPath, err)
		}
	}

	initTime := time.Now()

	// Step 7: instantiate the flow and call Init, which may append
	// dependencies. The process working directory is not changed; flows
	// receive run_path as fctx.RunPath (and pass it as subprocess WorkDir).
	f := ctor()
	fctx := &Context{
		Design:                req.Design,
		Settings:              &effective,
		Supervisor:            r.Supervisor,
		RunPath:               runPath,
		CompletedDependencies: map[string]map[string]any{},
	}
	extraDeps, err := f.Init(ctx, fctx)
	if err != nil {
		return nil, fmt.Errorf("flow %q init: %w", req.FlowName, err)
	}

	// Step 8: write settings.json.
	if err := rundir.WriteSettings(runPath, rundir.SettingsRecord{
		FlowName:    req.FlowName,
		DesignHash:  designHash,
		FlowrunHash: flowrunHash,
		Version:     r.Version,
		Settings:    effective.ToMap(),
	}); err != nil {
		return nil, fmt.Errorf("write settings.json: %w", err)
	}

	// Step 10: launch dependencies, in declaration order.
	var completedDeps []string
	for _, dep := range extraDeps {
		depOutcome, err := r.Run(ctx, Request{
			FlowName:           dep.FlowName,
			Design:             req.Design,
			SettingsOverrides:  dep.Overrides,
			LibraryDefaults:    libDefaults,
			ParentDebug:        effective.Debug,
			ParentVerbose:      effective.Verbose,
			ResourcesToCopy:    dep.ResourcesCopy,
			ParentRunPath:      runPath,
			CachedDependencies: req.CachedDependencies,
		})
		if err != nil {
			return nil, &xerrors.DependencyFailureError{ParentFlow: req.FlowName, DepFlow: dep.FlowName, Cause: err}
		}
		fctx.CompletedDependencies[dep.FlowName] = depOutcome.Results
		completedDeps = append(completedDeps, dep.FlowName)
	}

	// Step 11: run (again without changing the process working
	// directory). Only ToolNonZeroExit is
	// caught here and converted to results.success=false; everything else
	// bubbles unchanged to the caller.
	runErr := f.Run(ctx, fctx)
	runtime := time.Since(initTime).Seconds()

	results := map[string]any{}
	success := runErr == nil
	var nonZero *xerrors.NonZeroExitError
	if runErr != nil {
		if !errors.As(runErr, &nonZero) {
			return nil, runErr
		}
		success = false
		results["error"] = runErr.Error()
	}

	// Step 12: parse_reports, combined with run success.
	if success {
		parsed, perr := f.ParseReports(fctx)
		if perr != nil {
			var reportErr *xerrors.ReportParseError
			if errors.As(perr, &reportErr) && !reportErr.Required {
				results["_report_warning"] = perr.Error()
			} else {
				return nil, perr
			}
		}
		for k, v := range parsed {
			results[k] = v
		}
	}
	results["success"] = success
	results["runtime"] = runtime
	if usage, ok := r.Supervisor.ResourceUsage(runPath); ok {
		results["_resource_usage"] = usage
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)

	// Step 13: persist artifacts reference, write results.json.
	artifacts, _ := results["_artifacts"].(map[string]any)
	if err := rundir.WriteResults(runPath, rundir.ResultsRecord{
		Success:   success,
		Runtime:   runtime,
		Timestamp: timestamp,
		Design:    req.Design.Name,
		Flow:      req.FlowName,
		Artifacts: artifacts,
		Extra:     withoutReserved(results),
	}); err != nil {
		return nil, fmt.Errorf("write results.json: %w", err)
	}

	// Step 14: post-cleanup policy is deliberately a no-op even when
	// effective.PostCleanupPurge is set on a successful run: purging the
	// run directory here would delete results.json itself.

	return &Outcome{
		Settings:              effective,
		Results:                results,
		RunPath:                runPath,
		DesignHash:             designHash,
		FlowrunHash:            flowrunHash,
		Timestamp:              timestamp,
		CompletedDependencies:  completedDeps,
	}, nil
}

func parentChainName(req Request) string {
	// The parent's own flow name isn't threaded through Request; the
	// run_path is a stable-enough proxy for "which invocation is this" in
	// the cycle graph, since distinct invocations never share a run_path.
	return req.ParentRunPath
}

func withoutReserved(results map[string]any) map[string]any {
	out := make(map[string]any, len(results))
	for k, v := range results {
		switch k {
		case "success", "runtime", "timestamp", "design", "flow", "_artifacts":
			continue
		default:
			out[k] = v
		}
	}
	return out
}
