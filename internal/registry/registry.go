// Package registry implements the Flow Registry: a process-wide, read-after-init map from snake_case flow name to a
// constructor, populated by flow packages calling Register from their own
// init().
package registry

import (
	"sort"
	"sync"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/xerrors"
)

var (
	mu    sync.RWMutex
	flows = map[string]Constructor{}
	docs  = map[string]string{}
)

// Constructor builds a fresh, uninitialized flow.Flow instance.
type Constructor = flow.Constructor

// Register adds name → ctor to the registry. doc is the flow's one-line
// docstring, shown by "list-flows". Intended to be called from a flow
// package's init().
func Register(name string, ctor Constructor, doc string) {
	mu.Lock()
	defer mu.Unlock()
	flows[name] = ctor
	docs[name] = doc
}

// GetFlowClass returns the constructor registered under name, or
// *xerrors.FlowNotFoundError if none was registered.
func GetFlowClass(name string) (Constructor, error) {
	mu.RLock()
	defer mu.RUnlock()
	ctor, ok := flows[name]
	if !ok {
		return nil, &xerrors.FlowNotFoundError{Name: name}
	}
	return ctor, nil
}

// Entry is one registered flow's name and docstring, for "list-flows".
type Entry struct {
	Name string
	Doc  string
}

// List returns every registered flow, sorted by name.
func List() []Entry {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Entry, 0, len(flows))
	for name, doc := range docs {
		out = append(out, Entry{Name: name, Doc: doc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
