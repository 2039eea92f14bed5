package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Loader reads xedaproject and design files, detecting format by file
// extension: .toml via BurntSushi/toml, .yaml/.yml via gopkg.in/yaml.v3,
// .json via encoding/json.
type Loader struct{}

// NewLoader returns a Loader. It holds no state; every method is a pure
// function of its path argument.
func NewLoader() *Loader {
	return &Loader{}
}

// decodeFile reads path and decodes it into a generic map[string]any tree
// using the format implied by its extension.
func (l *Loader) decodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %q as toml: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %q as yaml: %w", path, err)
		}
		raw = stringifyYAMLKeys(raw).(map[string]any)
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %q as json: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%q: unrecognized config format %q (want .toml, .yaml, .yml, or .json)", path, ext)
	}
	return raw, nil
}

// stringifyYAMLKeys recursively converts map[string]interface{} nodes that
// yaml.v3 may decode with non-string dynamic types back into plain
// map[string]any, so downstream code can use one shape regardless of the
// source format.
func stringifyYAMLKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringifyYAMLKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringifyYAMLKeys(val)
		}
		return out
	default:
		return v
	}
}

// LoadProject reads an xedaproject file at path and returns its decoded
// Project.
func (l *Loader) LoadProject(path string) (*Project, error) {
	raw, err := l.decodeFile(path)
	if err != nil {
		return nil, err
	}
	p, err := normalizeProject(raw)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return p, nil
}

// LoadDesignFile reads a single design file at path (not an xedaproject
// file) and returns its DesignFileResult.
func (l *Loader) LoadDesignFile(path string) (*DesignFileResult, error) {
	raw, err := l.decodeFile(path)
	if err != nil {
		return nil, err
	}
	res, err := normalizeDesignFile(raw)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return res, nil
}

// FindProjectFile looks for xedaproject.toml, xedaproject.yaml,
// xedaproject.yml, or xedaproject.json in dir, in that preference order,
// and returns the first that exists. Returns "" if none do.
func FindProjectFile(dir string) string {
	for _, ext := range []string{"toml", "yaml", "yml", "json"} {
		p := filepath.Join(dir, "xedaproject."+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
