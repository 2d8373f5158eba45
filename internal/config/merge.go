package config

// Merge layers override on top of base and returns a new tree. When both
// sides hold a map under the same key the maps are merged recursively; in
// every other case the override value replaces the base value wholesale, so
// lists are replaced, never concatenated. Neither input is modified.
func Merge(base, override map[string]any) map[string]any {
	out := cloneMap(base)
	for key, ov := range override {
		bm, baseIsMap := asMap(out[key])
		om, overIsMap := asMap(ov)
		if baseIsMap && overIsMap {
			out[key] = Merge(bm, om)
			continue
		}
		out[key] = cloneValue(ov)
	}
	return out
}

// asMap accepts both map flavours a YAML decoder may produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		return cloneMap(m)
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
