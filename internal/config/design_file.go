package config

import (
	"fmt"
	"path/filepath"

	"github.com/xedahq/xeda/internal/design"
)

// BuildDesign resolves and hashes every source path in rec (relative paths
// are joined against baseDir, typically the directory containing the
// project/design file) and constructs a *design.Design.
func BuildDesign(rec DesignRecord, baseDir string) (*design.Design, error) {
	rtl, err := buildRTL(rec.RTL, baseDir)
	if err != nil {
		return nil, fmt.Errorf("design %q: rtl: %w", rec.Name, err)
	}
	tb, err := buildTestbench(rec.TB, baseDir)
	if err != nil {
		return nil, fmt.Errorf("design %q: tb: %w", rec.Name, err)
	}
	params, err := buildParameters(rec.Parameters)
	if err != nil {
		return nil, fmt.Errorf("design %q: parameters: %w", rec.Name, err)
	}
	lang := buildLanguageOptions(rec.Language)

	return design.New(rec.Name, rtl, tb, params, lang)
}

func buildRTL(raw map[string]any, baseDir string) (design.RTL, error) {
	rtl := design.RTL{ClockPorts: map[string]string{}}
	if raw == nil {
		return rtl, nil
	}
	if top, ok := raw["top"].(string); ok {
		rtl.Top = top
	}
	sources, err := buildSources(raw["sources"], baseDir)
	if err != nil {
		return rtl, err
	}
	rtl.Sources = sources

	if ports, ok := raw["clock_ports"].(map[string]any); ok {
		for k, v := range ports {
			if s, ok := v.(string); ok {
				rtl.ClockPorts[k] = s
			}
		}
	}
	rtl.Clocks = map[string]*design.PhysicalClock{}
	if clocks, ok := raw["clocks"].(map[string]any); ok {
		for name, v := range clocks {
			c, err := buildClock(name, v)
			if err != nil {
				return rtl, err
			}
			rtl.Clocks[name] = c
		}
	}
	return rtl, nil
}

func buildClock(name string, raw any) (*design.PhysicalClock, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("clock %q: must be a map", name)
	}
	var c *design.PhysicalClock
	switch {
	case m["period_ns"] != nil:
		period, err := asFloat64(m["period_ns"])
		if err != nil {
			return nil, fmt.Errorf("clock %q: period_ns: %w", name, err)
		}
		c = design.NewClockFromPeriod(name, period)
	case m["freq_mhz"] != nil:
		freq, err := asFloat64(m["freq_mhz"])
		if err != nil {
			return nil, fmt.Errorf("clock %q: freq_mhz: %w", name, err)
		}
		c = design.NewClockFromFreq(name, freq)
	default:
		return nil, fmt.Errorf("clock %q: must set exactly one of period_ns/freq_mhz", name)
	}
	if v, ok := m["rise"]; ok {
		c.Rise, _ = asFloat64(v)
	}
	if v, ok := m["fall"]; ok {
		c.Fall, _ = asFloat64(v)
	}
	if v, ok := m["uncertainty"]; ok {
		c.Uncertainty, _ = asFloat64(v)
	}
	if v, ok := m["skew"]; ok {
		c.Skew, _ = asFloat64(v)
	}
	if v, ok := m["port"].(string); ok {
		c.Port = v
	}
	return c, nil
}

func buildTestbench(raw map[string]any, baseDir string) (design.Testbench, error) {
	tb := design.Testbench{}
	if raw == nil {
		return tb, nil
	}
	if top, ok := raw["top"].(string); ok {
		tb.Top = top
	}
	if cfg, ok := raw["configuration_specification"].(string); ok {
		tb.ConfigurationSpecification = cfg
	}
	sources, err := buildSources(raw["sources"], baseDir)
	if err != nil {
		return tb, err
	}
	tb.Sources = sources
	return tb, nil
}

func buildSources(raw any, baseDir string) ([]*design.Source, error) {
	list, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("sources: must be a list")
	}
	out := make([]*design.Source, 0, len(list))
	for i, item := range list {
		var path, dialect string
		switch v := item.(type) {
		case string:
			path = v
		case map[string]any:
			p, _ := v["file"].(string)
			path = p
			dialect, _ = v["dialect"].(string)
		default:
			return nil, fmt.Errorf("sources[%d]: must be a string or {file, dialect} map", i)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		src, err := design.NewSource(path, design.UnknownSource, dialect)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		out = append(out, src)
	}
	return out, nil
}

func buildParameters(raw map[string]any) (map[string]design.ParamValue, error) {
	out := map[string]design.ParamValue{}
	for name, v := range raw {
		switch t := v.(type) {
		case int64:
			out[name] = design.IntParam(t)
		case float64:
			out[name] = design.IntParam(int64(t))
		case bool:
			out[name] = design.BoolParam(t)
		case string:
			out[name] = design.StringParam(t)
		default:
			return nil, fmt.Errorf("parameter %q: unsupported value type %T", name, v)
		}
	}
	return out, nil
}

func buildLanguageOptions(raw map[string]any) design.LanguageOptions {
	var lang design.LanguageOptions
	if raw == nil {
		return lang
	}
	if vhdl, ok := raw["vhdl"].(map[string]any); ok {
		if s, ok := vhdl["standard"].(string); ok {
			lang.VHDLStandard = s
		}
		if b, ok := vhdl["synopsys"].(bool); ok {
			lang.VHDLSynopsys = b
		}
	}
	if verilog, ok := raw["verilog"].(map[string]any); ok {
		if s, ok := verilog["standard"].(string); ok {
			lang.VerilogStandard = s
		}
	}
	return lang
}

func asFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("want a number, got %T", v)
	}
}
