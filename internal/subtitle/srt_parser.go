package subtitle

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	blockSeparatorRegex = regexp.MustCompile(`\n\s*\n`)
	timingRegex         = regexp.MustCompile(
		`(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})`,
	)
	leadingIntRegex = regexp.MustCompile(`^[+-]?\d+`)
)

// why a block was left out of the parse result
type SkipReason string

const (
	SkipTooFewLines  SkipReason = "block has fewer than 3 lines"
	SkipNoTimingLine SkipReason = "no line contains -->"
	SkipBadTiming    SkipReason = "timing line does not match HH:MM:SS,mmm --> HH:MM:SS,mmm"
)

// a block dropped by the lenient parser
type SkippedBlock struct {
	Block   int // 1-based position among blank-line separated blocks
	Reason  SkipReason
	Content string
}

// ParseOutcome carries the parsed entries plus diagnostics for every
// block that was dropped
type ParseOutcome struct {
	Entries []Entry
	Skipped []SkippedBlock
}

// ParseSRT never fails: malformed blocks are skipped and reported in
// Skipped, the rest of the document is still returned.
func ParseSRT(content string) ParseOutcome {
	out := ParseOutcome{Entries: []Entry{}}

	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return out
	}

	for i, block := range blockSeparatorRegex.Split(content, -1) {
		entry, reason, ok := parseBlock(block, len(out.Entries))
		if !ok {
			out.Skipped = append(out.Skipped, SkippedBlock{
				Block:   i + 1,
				Reason:  reason,
				Content: block,
			})
			continue
		}
		out.Entries = append(out.Entries, entry)
	}

	return out
}

func parseBlock(block string, parsed int) (Entry, SkipReason, bool) {
	lines := strings.Split(block, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	if len(lines) < 3 {
		return Entry{}, SkipTooFewLines, false
	}

	timingLine := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timingLine = i
			break
		}
	}
	if timingLine == -1 {
		return Entry{}, SkipNoTimingLine, false
	}

	matches := timingRegex.FindStringSubmatch(lines[timingLine])
	if matches == nil {
		return Entry{}, SkipBadTiming, false
	}

	id, ok := parseLeadingInt(lines[0])
	if !ok {
		// position-based fallback, 1-based
		id = parsed + 1
	}

	return Entry{
		ID:        id,
		StartTime: matches[1],
		EndTime:   matches[2],
		Text:      strings.Join(lines[timingLine+1:], "\n"),
	}, "", true
}

// accepts a leading run of digits ("12", "3 extra"), like the sequence
// numbers found in hand-edited files
func parseLeadingInt(s string) (int, bool) {
	digits := leadingIntRegex.FindString(s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
