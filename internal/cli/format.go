package cli

import (
	"sort"
	"strings"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// oneLine flattens a multi-line caption for single-line output
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " / ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
