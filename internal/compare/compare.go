// Package compare lines up the entries of two subtitle files, by sequence
// id or by start time, and flags pairs whose timing or length drifted.
package compare

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

const (
	// time mode matches starts closer than this (strict)
	MatchToleranceSeconds = 1.0
	// matched pairs further apart than this are a timing mismatch
	TimingMismatchSeconds = 0.5
	// matched pairs whose text lengths differ by more than this are flagged
	LengthDiffThreshold = 20
)

// how entries of the second file are paired with the first
type Mode string

const (
	ModeIndex Mode = "index"
	ModeTime  Mode = "time"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeIndex, "":
		return ModeIndex, nil
	case ModeTime:
		return ModeTime, nil
	default:
		return "", fmt.Errorf("unsupported sync mode %q: use index or time", s)
	}
}

// FindMatch returns the position in target of the first entry paired with
// entry, or -1. Index mode matches on id; time mode on a start time within
// MatchToleranceSeconds. Unparseable start times never match.
func FindMatch(entry subtitle.Entry, target []subtitle.Entry, mode Mode) int {
	if mode == ModeTime {
		start, err := subtitle.ParseTimestamp(entry.StartTime)
		if err != nil {
			return -1
		}
		for i, candidate := range target {
			other, err := subtitle.ParseTimestamp(candidate.StartTime)
			if err != nil {
				continue
			}
			if math.Abs(other-start) < MatchToleranceSeconds {
				return i
			}
		}
		return -1
	}

	for i, candidate := range target {
		if candidate.ID == entry.ID {
			return i
		}
	}
	return -1
}

// one line of a side-by-side comparison
type Row struct {
	Left  *subtitle.Entry
	Right *subtitle.Entry
	// Right came from FindMatch rather than positional fill
	Matched bool

	StartDiff      float64
	HasStartDiff   bool
	TimingMismatch bool
	LengthDiff     int
	LengthMismatch bool
}

type Report struct {
	Mode             Mode
	LeftEntries      int
	RightEntries     int
	Rows             []Row
	Matched          int
	TimingMismatches int
	LengthMismatches int
}

// Compare builds one row per position up to the longer file. Rows with a
// left entry show its match in right; rows past the end of left show
// right's entry at the same position unpaired.
func Compare(left, right []subtitle.Entry, mode Mode) Report {
	report := Report{
		Mode:         mode,
		LeftEntries:  len(left),
		RightEntries: len(right),
		Rows:         make([]Row, max(len(left), len(right))),
	}

	for i := range report.Rows {
		row := &report.Rows[i]
		if i >= len(left) {
			row.Right = &right[i]
			continue
		}

		row.Left = &left[i]
		j := FindMatch(left[i], right, mode)
		if j < 0 {
			continue
		}
		row.Right = &right[j]
		row.Matched = true
		report.Matched++

		measure(row)
		if row.TimingMismatch {
			report.TimingMismatches++
		}
		if row.LengthMismatch {
			report.LengthMismatches++
		}
	}

	return report
}

func measure(row *Row) {
	a, errA := subtitle.ParseTimestamp(row.Left.StartTime)
	b, errB := subtitle.ParseTimestamp(row.Right.StartTime)
	if errA == nil && errB == nil {
		row.StartDiff = math.Abs(a - b)
		row.HasStartDiff = true
		row.TimingMismatch = row.StartDiff > TimingMismatchSeconds
	}

	diff := utf8.RuneCountInString(row.Left.Text) - utf8.RuneCountInString(row.Right.Text)
	if diff < 0 {
		diff = -diff
	}
	row.LengthDiff = diff
	row.LengthMismatch = diff > LengthDiffThreshold
}
