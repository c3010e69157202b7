package sync

import (
	"path/filepath"
	"regexp"
)

// isProtectedFile reports whether path matches any of the configured
// protected-file glob patterns (invariant 6). Patterns use
// path/filepath.Match syntax, the same single-level glob semantics the
// engine's other path matching relies on; "**" does not cross path
// separators.
func isProtectedFile(path string, patterns []string) bool {
	if path == "" {
		return false
	}
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, path); err == nil && ok {
			return true
		}
		// Also try matching the base name, so a pattern like "*.env" matches
		// "config/.env" without requiring a directory-aware glob.
		if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

// stateQueryPatterns recognizes bash commands that merely inspect state
// (directory listings, repo status, environment) rather than mutate or
// read file content, per §4.D's StateQuery rule.
var stateQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*ls\b`),
	regexp.MustCompile(`^\s*pwd\s*$`),
	regexp.MustCompile(`^\s*git\s+status\b`),
	regexp.MustCompile(`^\s*git\s+branch\b`),
	regexp.MustCompile(`^\s*git\s+log\b`),
	regexp.MustCompile(`^\s*git\s+diff\b`),
	regexp.MustCompile(`^\s*env\s*$`),
	regexp.MustCompile(`^\s*whoami\s*$`),
	regexp.MustCompile(`^\s*ps\b`),
	regexp.MustCompile(`^\s*du\s+-s`),
	regexp.MustCompile(`^\s*df\b`),
}

// isStateQueryCommand reports whether cmd matches a recognized
// state-inspection pattern.
func isStateQueryCommand(cmd string) bool {
	for _, re := range stateQueryPatterns {
		if re.MatchString(cmd) {
			return true
		}
	}
	return false
}

// toolInput extracts a string field from a tool's input, tolerating the
// two shapes synchronization sees in practice: a map[string]any decoded
// from JSON, or a map[string]string built directly by tests.
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

// toolPath returns the file-path parameter of a read/grep/glob/write/edit
// tool call, trying the parameter names the engine's target tools use.
func toolPath(input any) (string, bool) {
	for _, key := range []string{"filePath", "path"} {
		if v, ok := toolInput(input, key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func toolURL(input any) (string, bool) {
	return toolInput(input, "url")
}

func toolCommand(input any) (string, bool) {
	return toolInput(input, "command")
}
