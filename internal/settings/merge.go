package settings

// Merge deep-merges overlay onto base: overlay wins on every leaf key;
// where both base[k] and overlay[k] are map[string]any, they recurse
// instead of overlay replacing the whole subtree. Neither input is
// mutated; a new map is returned.
//
// merge(merge(base, a), b) == merge(base, merge(a, b)) holds whenever a and
// b touch disjoint key-paths because
// recursive merge only ever combines maps at identical paths — disjoint
// paths never interact regardless of grouping.
func Merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if bv, ok := out[k]; ok {
			bm, bIsMap := bv.(map[string]any)
			ov, oIsMap := v.(map[string]any)
			if bIsMap && oIsMap {
				out[k] = Merge(bm, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// MergeAll merges layers lowest-to-highest priority: library defaults ->
// xedaproject flow settings -> design-file flow settings -> CLI overrides.
func MergeAll(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, l := range layers {
		out = Merge(out, l)
	}
	return out
}
