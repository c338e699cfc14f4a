package kompose

// DefaultStripKeys are the compose keys Kubernetes conversion cannot represent
var DefaultStripKeys = []string{"env_file", "build", "secrets", "profiles"}

// StripKeys returns a copy of v without any mapping entry named in keys, at any depth.
// Values other than maps and slices are returned as is.
func StripKeys(v any, keys ...string) any {
	if len(keys) == 0 {
		return v
	}
	omit := make(map[string]bool, len(keys))
	for _, k := range keys {
		omit[k] = true
	}
	return strip(v, omit)
}

func strip(v any, omit map[string]bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if omit[k] {
				continue
			}
			out[k] = strip(item, omit)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = strip(item, omit)
		}
		return out
	default:
		return v
	}
}
