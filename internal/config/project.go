// Package config loads project and design files into the raw map shapes
// the settings merger and design builder consume. A Loader detects format
// by extension and decodes into generic map[string]any trees so merge
// precedence logic downstream stays format-agnostic.
package config

import (
	"fmt"
)

// DesignRecord is one raw design entry read from a project or design file,
// before construction into a *design.Design (which requires resolving and
// hashing each source path on disk).
type DesignRecord struct {
	Name string         `json:"name" toml:"name" yaml:"name"`
	RTL  map[string]any `json:"rtl" toml:"rtl" yaml:"rtl"`
	TB   map[string]any `json:"tb" toml:"tb" yaml:"tb"`

	// Language carries the vhdl/verilog sub-sections verbatim.
	Language map[string]any `json:"language,omitempty" toml:"language,omitempty" yaml:"language,omitempty"`

	// Parameters is the raw design-parameter map, later converted to
	// design.ParamValue entries.
	Parameters map[string]any `json:"parameters,omitempty" toml:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Project is the decoded shape of an xedaproject.{toml|json|yaml} file: one
// or more Designs, plus per-flow default settings shared by every design in
// the file.
type Project struct {
	Designs []DesignRecord
	// Flows maps flow name -> raw settings map (the "xedaproject flow
	// settings" merge layer).
	Flows map[string]map[string]any
}

// designFile is the decoded shape of a single <name>.{toml|json|yaml} design
// file: one Design record at the root plus an optional flow/flows sibling
// section supplying design-level flow-setting defaults.
type designFile struct {
	DesignRecord `json:",inline" toml:",inline" yaml:",inline"`
	Flow         map[string]any            `json:"flow,omitempty" toml:"flow,omitempty" yaml:"flow,omitempty"`
	Flows        map[string]map[string]any `json:"flows,omitempty" toml:"flows,omitempty" yaml:"flows,omitempty"`
}

// normalizeProject reshapes a raw decoded map into a Project, accepting
// either the singular ("design", "flow") or plural ("designs", "flows")
// top-level key per design file, exactly as described for project files.
func normalizeProject(raw map[string]any) (*Project, error) {
	p := &Project{Flows: map[string]map[string]any{}}

	if one, ok := raw["design"]; ok {
		rec, err := decodeDesignRecord(one)
		if err != nil {
			return nil, fmt.Errorf("design: %w", err)
		}
		p.Designs = append(p.Designs, rec)
	}
	if many, ok := raw["designs"]; ok {
		list, ok := many.([]any)
		if !ok {
			return nil, fmt.Errorf("designs: must be a list")
		}
		for i, item := range list {
			rec, err := decodeDesignRecord(item)
			if err != nil {
				return nil, fmt.Errorf("designs[%d]: %w", i, err)
			}
			p.Designs = append(p.Designs, rec)
		}
	}

	if one, ok := raw["flow"]; ok {
		m, ok := one.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("flow: must be a map")
		}
		mergeFlowSettings(p.Flows, m)
	}
	if many, ok := raw["flows"]; ok {
		m, ok := many.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("flows: must be a map")
		}
		mergeFlowSettings(p.Flows, m)
	}

	return p, nil
}

func mergeFlowSettings(dst map[string]map[string]any, raw map[string]any) {
	for name, v := range raw {
		if m, ok := v.(map[string]any); ok {
			dst[name] = m
		}
	}
}

func decodeDesignRecord(raw any) (DesignRecord, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return DesignRecord{}, fmt.Errorf("must be a map")
	}
	rec := DesignRecord{}
	if name, ok := m["name"].(string); ok {
		rec.Name = name
	} else {
		return rec, fmt.Errorf(`"name" is required and must be a string`)
	}
	if rtl, ok := m["rtl"].(map[string]any); ok {
		rec.RTL = rtl
	}
	if tb, ok := m["tb"].(map[string]any); ok {
		rec.TB = tb
	}
	if lang, ok := m["language"].(map[string]any); ok {
		rec.Language = lang
	}
	if params, ok := m["parameters"].(map[string]any); ok {
		rec.Parameters = params
	}
	return rec, nil
}

// DesignFileResult is what Loader.LoadDesignFile returns: the design record
// at the file root plus its design-level flow-setting defaults, keyed the
// same way Project.Flows is.
type DesignFileResult struct {
	Design DesignRecord
	Flows  map[string]map[string]any
}

func normalizeDesignFile(raw map[string]any) (*DesignFileResult, error) {
	rec, err := decodeDesignRecord(raw)
	if err != nil {
		return nil, err
	}
	res := &DesignFileResult{Design: rec, Flows: map[string]map[string]any{}}
	if one, ok := raw["flow"].(map[string]any); ok {
		mergeFlowSettings(res.Flows, one)
	}
	if many, ok := raw["flows"].(map[string]any); ok {
		mergeFlowSettings(res.Flows, many)
	}
	return res, nil
}
