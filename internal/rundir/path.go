// Package rundir derives and manages run directories: path derivation from content hashes, preexistence policy
// (cache/incremental/backup), resource copying, and scrubbing of stale
// sibling runs.
package rundir

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var sanitizeRE = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// Sanitize replaces runs of characters unsafe for a directory component
// with "_".
func Sanitize(name string) string {
	return sanitizeRE.ReplaceAllString(name, "_")
}

// Derive computes the run_path for (designName, flowName, designHash,
// flowrunHash) under root, following the
// "<root>/<sanitized_design_name>[_<design_hash16>]/<flow_name>[_<flowrun_hash16>]"
// scheme. incremental omits the design_hash16 suffix so a design iterates
// in place.
func Derive(root, designName, flowName, designHash, flowrunHash string, incremental bool) string {
	designComponent := Sanitize(designName)
	if !incremental {
		designComponent = fmt.Sprintf("%s_%s", designComponent, hash16(designHash))
	}
	flowComponent := fmt.Sprintf("%s_%s", flowName, hash16(flowrunHash))
	return filepath.Join(root, designComponent, flowComponent)
}

func hash16(h string) string {
	h = strings.ToLower(h)
	if len(h) < 16 {
		return h
	}
	return h[:16]
}
