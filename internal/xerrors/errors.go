// Package xerrors defines the error taxonomy: small, wrapped sentinel-like
// types compared with errors.As, not a custom base error framework, in
// keeping with plain fmt.Errorf("...: %w") wrapping throughout.
package xerrors

import (
	"fmt"

	"github.com/xedahq/xeda/internal/settings"
)

// SettingsError wraps every FieldError collected while building a flow's
// effective settings.
type SettingsError struct {
	FlowName string
	Errors   []settings.FieldError
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("flow %q: %d settings error(s)", e.FlowName, len(e.Errors))
}

// ExecutableMissingError.
type ExecutableMissingError struct {
	Exec     string
	ToolName string
	Searched []string
}

func (e *ExecutableMissingError) Error() string {
	return fmt.Sprintf("executable %q (tool %q) not found, searched: %v", e.Exec, e.ToolName, e.Searched)
}

// NonZeroExitError.
type NonZeroExitError struct {
	Command   string
	Code      int
	StderrTail string
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("command %q exited %d: %s", e.Command, e.Code, e.StderrTail)
}

// TimeoutError.
type TimeoutError struct {
	Command        string
	TimeoutSeconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q exceeded timeout of %ds", e.Command, e.TimeoutSeconds)
}

// DependencyFailureError.
type DependencyFailureError struct {
	ParentFlow string
	DepFlow    string
	Cause      error
}

func (e *DependencyFailureError) Error() string {
	return fmt.Sprintf("flow %q: dependency %q failed: %v", e.ParentFlow, e.DepFlow, e.Cause)
}

func (e *DependencyFailureError) Unwrap() error { return e.Cause }

// ReportParseError.
type ReportParseError struct {
	Flow     string
	Pattern  string
	Required bool
}

func (e *ReportParseError) Error() string {
	return fmt.Sprintf("flow %q: report pattern %q did not match", e.Flow, e.Pattern)
}

// FatalError — a programmer-declared unrecoverable
// condition, propagated without retry.
type FatalError struct {
	Flow    string
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("flow %q: fatal: %s", e.Flow, e.Message)
}

// CancelledError.
type CancelledError struct {
	Flow string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("flow %q: cancelled", e.Flow)
}

// FlowNotFoundError is raised by the registry when a flow name has no
// registered class.
type FlowNotFoundError struct {
	Name string
}

func (e *FlowNotFoundError) Error() string {
	return fmt.Sprintf("flow %q not found in registry", e.Name)
}
