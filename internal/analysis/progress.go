package analysis

import (
	"slices"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

// ProviderProgress scores how many tracked provider slots are filled.
// Each provider contributes an equal share of 100, and within that share
// the fraction of entries holding a non-empty candidate from it. With two
// providers that is (a/n)*50 + (b/n)*50.
func ProviderProgress(entries []subtitle.Entry, providers []string) float64 {
	providers = dedupe(providers)
	if len(entries) == 0 || len(providers) == 0 {
		return 0
	}

	filled := 0
	for _, entry := range entries {
		for _, p := range providers {
			if entry.HasCandidate(p) {
				filled++
			}
		}
	}

	// single division keeps a complete file at exactly 100
	return float64(filled) * 100 / float64(len(entries)*len(providers))
}

// StatusFor maps a progress score to a file or project status
func StatusFor(progress float64) subtitle.Status {
	switch {
	case progress >= 100:
		return subtitle.StatusDone
	case progress > 0:
		return subtitle.StatusInProgress
	default:
		return subtitle.StatusNotStarted
	}
}

// ProjectProgress is the mean progress of the project's files
func ProjectProgress(files []subtitle.File) float64 {
	if len(files) == 0 {
		return 0
	}
	var sum float64
	for _, f := range files {
		sum += f.Progress
	}
	return sum / float64(len(files))
}

func dedupe(providers []string) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
