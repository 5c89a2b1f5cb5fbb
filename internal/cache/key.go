package cache

import (
	"fmt"
	"sort"
	"strings"
)

const (
	keyOpSeparator    = ":"
	keyParamSeparator = "|"
)

// Key builds a deterministic cache key from an operation and its parameters.
// Case and parameter order do not matter.
func Key(operation string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, strings.ToLower(strings.TrimSpace(k)))
	}
	sort.Strings(names)

	lowered := make(map[string]any, len(params))
	for k, v := range params {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+formatParam(lowered[k]))
	}

	return strings.ToLower(strings.TrimSpace(operation)) + keyOpSeparator + strings.Join(parts, keyParamSeparator)
}

// Prefix is the key prefix shared by every entry of operation.
func Prefix(operation string) string {
	return strings.ToLower(strings.TrimSpace(operation)) + keyOpSeparator
}

func formatParam(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(x))
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = strings.ToLower(strings.TrimSpace(s))
		}
		return "[" + strings.Join(out, ",") + "]"
	default:
		return strings.ToLower(fmt.Sprint(x))
	}
}
