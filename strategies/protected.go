package strategies

import "path/filepath"

// isProtectedFile reports whether path matches any of the configured
// protected-file glob patterns (invariant 6), exempting it from
// deduplication and error-purge.
func isProtectedFile(path string, patterns []string) bool {
	if path == "" {
		return false
	}
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, path); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

func toolInput(input any, key string) (string, bool) {
	switch m := input.(type) {
	case map[string]any:
		v, ok := m[key]
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	default:
		return "", false
	}
}

func toolPath(input any) (string, bool) {
	for _, key := range []string{"filePath", "path"} {
		if v, ok := toolInput(input, key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// toolNumber extracts a numeric field, tolerating both float64 (the shape
// encoding/json produces) and int (the shape hand-built test fixtures use).
func toolNumber(input any, key string) (int, bool) {
	m, ok := input.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
