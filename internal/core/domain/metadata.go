package domain

import (
	"fmt"
	"strconv"
)

// MergeAPIData shallow-merges apiData over defaults. Caller-supplied keys win.
// Neither input is modified.
func MergeAPIData(apiData, defaults map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(apiData))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range apiData {
		merged[k] = v
	}
	return merged
}

// TakeString removes key from meta and returns its string form
func TakeString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok {
		return ""
	}
	delete(meta, key)
	return stringify(v)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return ""
	}
}
