package settings

import "sort"

// Normalize applies the recognized normalizations to a raw merged settings
// map. It returns a new top-level map; a clock entry rewritten by
// single-clock coherence is updated in place in raw's clocks map.
//
//   - lib_paths: scalar string -> [(string, null)]; list of strings -> list
//     of (string, null) pairs; mixed list of pairs/strings accepted.
//   - clocks: if empty and clock_period set, synthesize
//     {"main_clock": {period: clock_period}}.
//   - clock_period: if unset and clocks non-empty, taken from main_clock or
//     the lexicographically first entry (Go maps keep no insertion order).
//   - single-clock coherence: a top-level clock_period overrides the sole
//     clocks entry (or the one named main_clock); an entry whose period
//     (or 1000/freq) already equals it is left unchanged, otherwise its
//     period is set and its freq removed.
//   - quiet coerced to false when verbose or debug is true.
func Normalize(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	normalizeLibPaths(out)
	normalizeClocks(out)
	normalizeQuiet(out)

	return out
}

func normalizeLibPaths(out map[string]any) {
	v, ok := out["lib_paths"]
	if !ok {
		return
	}
	switch x := v.(type) {
	case string:
		out["lib_paths"] = []any{[]any{x, nil}}
	case []any:
		pairs := make([]any, 0, len(x))
		for _, item := range x {
			switch e := item.(type) {
			case string:
				pairs = append(pairs, []any{e, nil})
			default:
				pairs = append(pairs, e)
			}
		}
		out["lib_paths"] = pairs
	}
}

func normalizeClocks(out map[string]any) {
	clocksRaw, hasClocks := out["clocks"].(map[string]any)
	periodRaw, hasPeriod := out["clock_period"]

	if (!hasClocks || len(clocksRaw) == 0) && hasPeriod {
		out["clocks"] = map[string]any{
			"main_clock": map[string]any{"period": periodRaw},
		}
		return
	}

	if !hasPeriod && hasClocks && len(clocksRaw) > 0 {
		if mc, ok := clocksRaw["main_clock"].(map[string]any); ok {
			if p, ok := clockEntryPeriod(mc); ok {
				out["clock_period"] = p
				return
			}
		}
		// First entry by insertion order isn't observable from a Go map;
		// fall back to deterministic lexicographic first, documented as a
		// divergence from "insertion order" when no main_clock is present.
		keys := make([]string, 0, len(clocksRaw))
		for k := range clocksRaw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			if mc, ok := clocksRaw[keys[0]].(map[string]any); ok {
				if p, ok := clockEntryPeriod(mc); ok {
					out["clock_period"] = p
				}
			}
		}
		return
	}

	if hasPeriod && hasClocks {
		var target string
		if len(clocksRaw) == 1 {
			for k := range clocksRaw {
				target = k
			}
		} else if _, ok := clocksRaw["main_clock"]; ok {
			target = "main_clock"
		}
		if target != "" {
			if mc, ok := clocksRaw[target].(map[string]any); ok {
				p, _ := toFloat(periodRaw)
				if cur, ok := clockEntryPeriod(mc); !ok || cur != p {
					mc["period"] = periodRaw
					delete(mc, "freq")
					clocksRaw[target] = mc
				}
			}
		}
	}
}

// clockEntryPeriod returns a clock entry's period, deriving it from freq
// (period = 1000/freq) when only freq was supplied.
func clockEntryPeriod(entry map[string]any) (float64, bool) {
	if p, ok := entry["period"]; ok {
		if f, ok := toFloat(p); ok {
			return f, true
		}
	}
	if f, ok := entry["freq"]; ok {
		if fv, ok := toFloat(f); ok && fv != 0 {
			return 1000.0 / fv, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
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

func normalizeQuiet(out map[string]any) {
	verbose, _ := out["verbose"].(bool)
	debug, _ := out["debug"].(bool)
	if verbose || debug {
		out["quiet"] = false
	}
}
