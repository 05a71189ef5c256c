package analysis

import "math"

// one bar of the per-entry duration / reading speed series
type ChartPoint struct {
	Index        int     `json:"index"`
	Duration     float64 `json:"duration"`
	Chars        int     `json:"chars"`
	ReadingSpeed float64 `json:"readingSpeed"`
}

// ChartPoints flattens entry metrics into a plottable series, values
// rounded to two decimals. Entries with unusable timing plot as zero.
func (s FileStats) ChartPoints() []ChartPoint {
	points := make([]ChartPoint, len(s.Entries))
	for i, m := range s.Entries {
		points[i] = ChartPoint{
			Index:        m.Position,
			Duration:     round2(m.Duration),
			Chars:        m.Chars,
			ReadingSpeed: round2(m.CharsPerSecond),
		}
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
