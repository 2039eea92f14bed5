package rundir

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Confirm is asked once per directory scrub_runs intends to delete; it
// should prompt the console and return true to proceed. Passing a function
// that always returns true runs non-interactively (e.g. under --quiet).
type Confirm func(path string) bool

// ScrubRuns deletes sibling directories of parent whose name matches
// "^<flowName>_[a-z0-9]{16}$" and is not in exclude, confirming each via
// confirm.
func ScrubRuns(parent, flowName string, exclude []string, confirm Confirm) ([]string, error) {
	pattern, err := regexp.Compile(fmt.Sprintf(`^%s_[a-z0-9]{16}$`, regexp.QuoteMeta(flowName)))
	if err != nil {
		return nil, err
	}
	excluded := map[string]bool{}
	for _, e := range exclude {
		excluded[e] = true
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var scrubbed []string
	for _, entry := range entries {
		if !entry.IsDir() || !pattern.MatchString(entry.Name()) || excluded[entry.Name()] {
			continue
		}
		path := filepath.Join(parent, entry.Name())
		if confirm != nil && !confirm(path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return scrubbed, fmt.Errorf("scrub %q: %w", path, err)
		}
		scrubbed = append(scrubbed, path)
	}
	return scrubbed, nil
}
