// Package hash implements the Content Hasher:
// a deterministic content hash over arbitrary nested structures, with a
// canonicalization rule that is order-independent over map keys and
// order-dependent over list positions.
package hash

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// SemanticHash canonicalizes v per the rules below and returns a 32-hex-char
// SHA3-256 digest (truncated):
//
//   - maps: recurse into values sorted by key
//   - slices/arrays: recurse positionally
//   - structs implementing the Fielder interface below: hashed as the map
//     their Fields method returns (so callers control which fields count)
//   - bool, string, integer and float leaves: written with a type tag
//     (strings quoted, integers with %d, floats with %g)
//   - any other value, including structs without Fields: stringified with
//     fmt.Sprintf("%v")
//
// Same input canonicalizes to the same bytes regardless of process, map
// iteration order, or Go version.
func SemanticHash(v any) string {
	var buf []byte
	buf = appendCanonical(buf, v)
	sum := sha3.Sum256(buf)
	return hex.EncodeToString(sum[:])[:32]
}

// Fielder lets a struct participate in canonicalization as an ordered field
// map, instead of relying on reflection over unexported layout.
type Fielder interface {
	// Fields returns the field map to hash. Implementations should return a
	// fresh map each call.
	Fields() map[string]any
}

func appendCanonical(buf []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(buf, "null;"...)
	case Fielder:
		return appendCanonical(buf, x.Fields())
	case map[string]any:
		return appendMap(buf, x)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[k] = vv
		}
		return appendMap(buf, m)
	case []any:
		return appendSlice(buf, x)
	case []string:
		s := make([]any, len(x))
		for i, vv := range x {
			s[i] = vv
		}
		return appendSlice(buf, s)
	case bool:
		if x {
			return append(buf, "true;"...)
		}
		return append(buf, "false;"...)
	case string:
		buf = append(buf, 's')
		buf = strconv.AppendQuote(buf, x)
		return append(buf, ';')
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		buf = append(buf, 'i')
		buf = append(buf, fmt.Sprintf("%d", x)...)
		return append(buf, ';')
	case float32, float64:
		buf = append(buf, 'f')
		buf = append(buf, fmt.Sprintf("%g", x)...)
		return append(buf, ';')
	default:
		// Fall back to reflection-free stringification for leaf-like types
		// not covered above (e.g. custom scalar types).
		buf = append(buf, 'l')
		buf = append(buf, fmt.Sprintf("%v", x)...)
		return append(buf, ';')
	}
}

func appendMap(buf []byte, m map[string]any) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf = append(buf, '{')
	for _, k := range keys {
		buf = strconv.AppendQuote(buf, k)
		buf = append(buf, ':')
		buf = appendCanonical(buf, m[k])
	}
	return append(buf, '}')
}

func appendSlice(buf []byte, s []any) []byte {
	buf = append(buf, '[')
	for _, item := range s {
		buf = appendCanonical(buf, item)
	}
	return append(buf, ']')
}
