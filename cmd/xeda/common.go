package main

import (
	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/flow"
)

// flowRequest builds a top-level flow.Request (no parent chain, since CLI
// invocations are always the root of their dependency chain).
func flowRequest(flowName string, dsn *design.Design, projectSettings map[string]any, overrides map[string]any) flow.Request {
	return flow.Request{
		FlowName:          flowName,
		Design:            dsn,
		SettingsOverrides: overrides,
		ProjectSettings:   projectSettings,
	}
}
