// Package process implements the Process Supervisor: launching external tools, streaming/classifying stdout,
// enforcing timeouts, and handling cancellation.
package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Resolver finds an executable: it searches PATH, and fails with
// ExecutableMissingError(exec, tool_name, searched) when absent.
type Resolver struct {
	// ExtraPaths are searched before PATH, for well-known tool directories.
	ExtraPaths []string
}

// NewResolver creates a Resolver with no extra search paths beyond PATH.
func NewResolver(extraPaths ...string) *Resolver {
	return &Resolver{ExtraPaths: extraPaths}
}

// Resolve finds the executable for toolName, searching ExtraPaths then
// PATH. Returns the resolved absolute path, or an error listing the
// searched locations.
func (r *Resolver) Resolve(toolName string) (string, error) {
	for _, dir := range r.ExtraPaths {
		p := filepath.Join(dir, toolName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	if p, err := exec.LookPath(toolName); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("tool %q not found: searched %v + PATH", toolName, r.ExtraPaths)
}

// SearchedPaths returns the full list of directories Resolve would have
// searched, for use in ExecutableMissingError messages.
func (r *Resolver) SearchedPaths() []string {
	out := append([]string{}, r.ExtraPaths...)
	out = append(out, strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))...)
	return out
}
