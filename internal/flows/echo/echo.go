// Package echo implements a trivial flow that always succeeds without
// invoking any external tool: useful for exercising the flow runner's
// caching, dependency, and settings-merge machinery in tests without a
// real EDA toolchain installed.
package echo

import (
	"context"
	"time"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/registry"
)

func init() {
	registry.Register("echo", New, "always-succeeding no-op flow, for cache and dependency tests")
}

// Flow is the echo flow instance.
type Flow struct {
	ranAt time.Time
}

// New constructs an echo flow.
func New() flow.Flow { return &Flow{} }

// Init declares no dependencies.
func (f *Flow) Init(_ context.Context, _ *flow.Context) ([]flow.Dependency, error) {
	return nil, nil
}

// Run records the time it ran and otherwise does nothing.
func (f *Flow) Run(_ context.Context, _ *flow.Context) error {
	f.ranAt = time.Now()
	return nil
}

// ParseReports reports the timestamp it ran at.
func (f *Flow) ParseReports(_ *flow.Context) (map[string]any, error) {
	return map[string]any{"ran_at": f.ranAt.UTC().Format(time.RFC3339)}, nil
}
