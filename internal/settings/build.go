package settings

import "fmt"

// FromRaw normalizes and decodes a raw merged settings map into a
// FlowSettings, collecting every structural/relational error instead of
// stopping at the first one. Returns the partially
// built settings together with a non-nil *ValidationError when any errors
// were found — callers must check HasErrors, not just the error return,
// since a nil *ValidationError typed into an error interface is non-nil.
func FromRaw(raw map[string]any) (FlowSettings, *ValidationError) {
	norm := Normalize(raw)
	s := DefaultFlowSettings()
	verr := &ValidationError{}

	if v, ok := norm["verbose"]; ok {
		if b, ok := v.(bool); ok {
			s.Verbose = b
		} else {
			verr.Add("verbose", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["debug"]; ok {
		if b, ok := v.(bool); ok {
			s.Debug = b
		} else {
			verr.Add("debug", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["quiet"]; ok {
		if b, ok := v.(bool); ok {
			s.Quiet = b
		} else {
			verr.Add("quiet", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["timeout_seconds"]; ok {
		if n, ok := asInt(v); ok {
			s.TimeoutSeconds = n
		} else {
			verr.Add("timeout_seconds", "must be an integer", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["nthreads"]; ok {
		if n, ok := asInt(v); ok {
			s.NThreads = n
		} else {
			verr.Add("nthreads", "must be an integer", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["ncpus"]; ok {
		if n, ok := asInt(v); ok {
			s.NCPUs = n
		} else {
			verr.Add("ncpus", "must be an integer", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["reports_dir"]; ok {
		if str, ok := v.(string); ok {
			s.ReportsDir = str
		} else {
			verr.Add("reports_dir", "must be a string", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["checkpoints_dir"]; ok {
		if str, ok := v.(string); ok {
			s.CheckpointsDir = str
		} else {
			verr.Add("checkpoints_dir", "must be a string", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["outputs_dir"]; ok {
		if str, ok := v.(string); ok {
			s.OutputsDir = str
		} else {
			verr.Add("outputs_dir", "must be a string", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["dockerized"]; ok {
		if b, ok := v.(bool); ok {
			s.Dockerized = b
		} else {
			verr.Add("dockerized", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["print_commands"]; ok {
		if b, ok := v.(bool); ok {
			s.PrintCommands = b
		} else {
			verr.Add("print_commands", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["post_cleanup_purge"]; ok {
		if b, ok := v.(bool); ok {
			s.PostCleanupPurge = b
		} else {
			verr.Add("post_cleanup_purge", "must be a bool", fmt.Sprintf("%v", v), "type")
		}
	}

	decodeLibPaths(norm, &s, verr)
	decodeClockPeriod(norm, &s, verr)
	decodeClocks(norm, &s, verr)
	decodeBlacklist(norm, &s, verr)

	if v, ok := norm["fpga"]; ok {
		if str, ok := v.(string); ok {
			s.FPGAPart = str
		} else {
			verr.Add("fpga", "must be a string part number", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["tech"]; ok {
		if str, ok := v.(string); ok {
			s.Tech = str
		} else {
			verr.Add("tech", "must be a string", fmt.Sprintf("%v", v), "type")
		}
	}
	if v, ok := norm["platform"]; ok {
		if str, ok := v.(string); ok {
			s.Platform = str
		} else {
			verr.Add("platform", "must be a string", fmt.Sprintf("%v", v), "type")
		}
	}

	consumed := map[string]bool{
		"verbose": true, "debug": true, "quiet": true, "timeout_seconds": true,
		"nthreads": true, "ncpus": true, "reports_dir": true, "checkpoints_dir": true,
		"outputs_dir": true, "lib_paths": true, "dockerized": true, "print_commands": true,
		"post_cleanup_purge": true, "clock_period": true, "clocks": true,
		"blacklisted_resources": true, "fpga": true, "tech": true, "platform": true,
	}
	s.Extra = map[string]any{}
	for k, v := range norm {
		if !consumed[k] {
			s.Extra[k] = v
		}
	}

	// Relational invariant: if both clock_period and a single-entry clocks
	// map are present, clock_period wins — already enforced by Normalize,
	// this is a belt-and-suspenders re-check surfaced as a validation note
	// rather than silently trusting normalization ran.
	if s.ClockPeriod != nil && len(s.Clocks) == 1 {
		for name, c := range s.Clocks {
			if c.Period != nil && *c.Period != *s.ClockPeriod {
				verr.Add(fmt.Sprintf("clocks.%s.period", name),
					"overridden by top-level clock_period", fmt.Sprintf("%v != %v", *c.Period, *s.ClockPeriod), "relational")
			}
		}
	}

	if verr.HasErrors() {
		return s, verr
	}
	return s, nil
}

func decodeLibPaths(norm map[string]any, s *FlowSettings, verr *ValidationError) {
	v, ok := norm["lib_paths"]
	if !ok {
		return
	}
	list, ok := v.([]any)
	if !ok {
		verr.Add("lib_paths", "must be a string or list", fmt.Sprintf("%v", v), "type")
		return
	}
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			verr.Add(fmt.Sprintf("lib_paths[%d]", i), "must be a (path, library) pair", fmt.Sprintf("%v", item), "type")
			continue
		}
		path, ok := pair[0].(string)
		if !ok {
			verr.Add(fmt.Sprintf("lib_paths[%d]", i), "path must be a string", fmt.Sprintf("%v", pair[0]), "type")
			continue
		}
		lp := LibPath{Path: path}
		if lib, ok := pair[1].(string); ok {
			lp.Library = &lib
		}
		s.LibPaths = append(s.LibPaths, lp)
	}
}

func decodeClockPeriod(norm map[string]any, s *FlowSettings, verr *ValidationError) {
	v, ok := norm["clock_period"]
	if !ok {
		return
	}
	f, ok := asFloat(v)
	if !ok {
		verr.Add("clock_period", "must be a number", fmt.Sprintf("%v", v), "type")
		return
	}
	s.ClockPeriod = &f
}

func decodeClocks(norm map[string]any, s *FlowSettings, verr *ValidationError) {
	v, ok := norm["clocks"]
	if !ok {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		verr.Add("clocks", "must be a map", fmt.Sprintf("%v", v), "type")
		return
	}
	s.Clocks = make(map[string]ClockSetting, len(m))
	for name, raw := range m {
		entry, ok := raw.(map[string]any)
		if !ok {
			verr.Add("clocks."+name, "must be a map", fmt.Sprintf("%v", raw), "type")
			continue
		}
		var cs ClockSetting
		if p, ok := entry["period"]; ok {
			if f, ok := asFloat(p); ok {
				cs.Period = &f
			} else {
				verr.Add("clocks."+name+".period", "must be a number", fmt.Sprintf("%v", p), "type")
			}
		}
		if f, ok := entry["freq"]; ok {
			if fv, ok := asFloat(f); ok {
				cs.Freq = &fv
			} else {
				verr.Add("clocks."+name+".freq", "must be a number", fmt.Sprintf("%v", f), "type")
			}
		}
		if cs.Period != nil && cs.Freq != nil {
			verr.Add("clocks."+name, "exactly one of period or freq may be set", "both set", "relational")
		}
		s.Clocks[name] = cs
	}
}

func decodeBlacklist(norm map[string]any, s *FlowSettings, verr *ValidationError) {
	v, ok := norm["blacklisted_resources"]
	if !ok {
		return
	}
	list, ok := v.([]any)
	if !ok {
		verr.Add("blacklisted_resources", "must be a list", fmt.Sprintf("%v", v), "type")
		return
	}
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			verr.Add(fmt.Sprintf("blacklisted_resources[%d]", i), "must be a string", fmt.Sprintf("%v", item), "type")
			continue
		}
		s.BlacklistedResources = append(s.BlacklistedResources, str)
	}
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}
