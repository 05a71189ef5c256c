// Package analysis derives timing, reading-speed and progress metrics
// from subtitle entries. Everything here is a pure function of its input.
package analysis

import (
	"unicode/utf8"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

const (
	// reading speed above this is too fast to follow
	MaxCharsPerSecond = 20.0
	// reading speed below this leaves a caption on screen too long
	MinCharsPerSecond = 10.0
	// silence between captions longer than this is a large gap
	LargeGapSeconds = 2.0
)

// reading speed classification of one entry
type Speed string

const (
	SpeedNormal  Speed = "normal"
	SpeedTooFast Speed = "too-fast"
	SpeedTooSlow Speed = "too-slow"
	// timing could not be parsed or duration is not positive
	SpeedUnknown Speed = "unknown"
)

// derived values for a single entry
type EntryMetrics struct {
	Position       int // 1-based position in the file
	ID             int
	Start          float64
	End            float64
	ValidTiming    bool
	Duration       float64
	Chars          int
	CharsPerSecond float64
	Speed          Speed

	// gap to the next entry; HasGap is false for the last entry and
	// whenever either timestamp is unparseable
	Gap      float64
	HasGap   bool
	LargeGap bool
	Overlap  bool
}

// file-level aggregates
type FileStats struct {
	TotalEntries          int
	TotalChars            int
	TotalTranslationChars int
	TotalDuration         float64
	AvgDuration           float64
	AvgCharsPerEntry      float64
	AvgCharsPerSecond     float64
	TooFast               int
	TooSlow               int
	LargeGaps             int
	Overlaps              int
	InvalidTimings        int
	// percentage of entries with a non-blank selected translation
	TranslationProgress float64
	Entries             []EntryMetrics
}

// Analyze computes FileStats for entries in file order.
//
// Entries whose timing does not parse, or whose duration is zero or
// negative, are classified SpeedUnknown and left out of the duration and
// reading-speed aggregates so they cannot poison them with Inf or NaN.
func Analyze(entries []subtitle.Entry) FileStats {
	stats := FileStats{
		TotalEntries: len(entries),
		Entries:      make([]EntryMetrics, len(entries)),
	}
	if len(entries) == 0 {
		return stats
	}

	starts := make([]float64, len(entries))
	startOK := make([]bool, len(entries))
	for i, entry := range entries {
		starts[i], startOK[i] = parse(entry.StartTime)
	}

	var timedChars, timedEntries, translated int
	for i, entry := range entries {
		m := EntryMetrics{
			Position: i + 1,
			ID:       entry.ID,
			Start:    starts[i],
			Chars:    utf8.RuneCountInString(entry.Text),
			Speed:    SpeedUnknown,
		}

		end, endOK := parse(entry.EndTime)
		m.End = end
		if startOK[i] && endOK {
			m.Duration = end - m.Start
			m.ValidTiming = m.Duration > 0
		}

		if m.ValidTiming {
			m.CharsPerSecond = float64(m.Chars) / m.Duration
			m.Speed = classify(m.CharsPerSecond)
			timedChars += m.Chars
			timedEntries++
			stats.TotalDuration += m.Duration
		} else {
			stats.InvalidTimings++
		}

		switch m.Speed {
		case SpeedTooFast:
			stats.TooFast++
		case SpeedTooSlow:
			stats.TooSlow++
		}

		if i < len(entries)-1 && endOK && startOK[i+1] {
			m.Gap = starts[i+1] - end
			m.HasGap = true
			m.LargeGap = m.Gap > LargeGapSeconds
			m.Overlap = m.Gap < 0
			if m.LargeGap {
				stats.LargeGaps++
			}
			if m.Overlap {
				stats.Overlaps++
			}
		}

		stats.TotalChars += m.Chars
		if entry.Translation != "" {
			stats.TotalTranslationChars += utf8.RuneCountInString(entry.Translation)
		}
		if entry.IsTranslated() {
			translated++
		}
		stats.Entries[i] = m
	}

	stats.AvgCharsPerEntry = float64(stats.TotalChars) / float64(len(entries))
	stats.TranslationProgress = float64(translated) * 100 / float64(len(entries))
	if timedEntries > 0 {
		stats.AvgDuration = stats.TotalDuration / float64(timedEntries)
		stats.AvgCharsPerSecond = float64(timedChars) / stats.TotalDuration
	}

	return stats
}

func parse(ts string) (float64, bool) {
	seconds, err := subtitle.ParseTimestamp(ts)
	return seconds, err == nil
}

func classify(charsPerSecond float64) Speed {
	switch {
	case charsPerSecond > MaxCharsPerSecond:
		return SpeedTooFast
	case charsPerSecond < MinCharsPerSecond:
		return SpeedTooSlow
	default:
		return SpeedNormal
	}
}
