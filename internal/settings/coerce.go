package settings

import (
	"strconv"
	"strings"
)

// CoerceString applies the CLI value-coercion order:
// strict int -> strict float -> true/false|yes/no (case-insensitive) ->
// comma-list -> string.
func CoerceString(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = CoerceString(strings.TrimSpace(p))
		}
		return out
	}
	return raw
}

// ParseDotKV parses one or more comma-separated "key=value" pairs (the
// value of the CLI's --settings flag) into a nested map[string]any tree,
// splitting each key on '.' to build hierarchy. --settings is a single
// string flag; given more than once, only its last value is used.
//
// ParseDotKV("k.a=1,k.b=2") == {"k": {"a": 1, "b": 2}}.
func ParseDotKV(pairs string) (map[string]any, error) {
	out := map[string]any{}
	for _, pair := range splitTopLevel(pairs) {
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, &FieldError{Location: pair, Message: "expected key=value", Type: "parse"}
		}
		key := strings.TrimSpace(pair[:eq])
		val := strings.TrimSpace(pair[eq+1:])
		setDotPath(out, strings.Split(key, "."), CoerceString(val))
	}
	return out, nil
}

// splitTopLevel splits repeated "key=value" pairs on commas. A list-valued
// single pair (e.g. "k=a,b,c") isn't representable this way.
func splitTopLevel(s string) []string {
	return strings.Split(s, ",")
}

func setDotPath(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value
		return
	}
	next, ok := m[path[0]].(map[string]any)
	if !ok {
		next = map[string]any{}
		m[path[0]] = next
	}
	setDotPath(next, path[1:], value)
}
