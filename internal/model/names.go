package model

import "fmt"

// DefaultPassageName is the base name given to manually created passages.
const DefaultPassageName = "Untitled Passage"

// UniqueName returns base if no existing name uses it, otherwise the first
// "base N" (N = 1, 2, 3, ...) that is free.
func UniqueName(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}
	if !taken[base] {
		return base
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s %d", base, suffix)
		if !taken[candidate] {
			return candidate
		}
	}
}
