package treegen

import "strings"

const wildcardSuffix = "*"

// ShouldExclude reports whether name matches one of the exclusion patterns.
// A pattern matches on exact equality, or, when it ends with a single "*",
// on the name starting with the part before the "*".
func ShouldExclude(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if strings.HasSuffix(pattern, wildcardSuffix) && strings.HasPrefix(name, strings.TrimSuffix(pattern, wildcardSuffix)) {
			return true
		}
	}
	return false
}
