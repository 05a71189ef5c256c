package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// selects which text goes into an exported SRT body
type ExportMode string

const (
	// source text only
	ExportSource ExportMode = "source"
	// selected translation, falling back to source when untranslated
	ExportTranslation ExportMode = "translation"
	// translation followed by the original on the next line
	ExportOverlay ExportMode = "overlay"
)

func ParseExportMode(s string) (ExportMode, error) {
	switch ExportMode(strings.ToLower(strings.TrimSpace(s))) {
	case ExportSource:
		return ExportSource, nil
	case ExportTranslation, "":
		return ExportTranslation, nil
	case ExportOverlay:
		return ExportOverlay, nil
	default:
		return "", fmt.Errorf(
			"unsupported export mode %q: use source, translation, or overlay",
			s,
		)
	}
}

// SubRip format
type SRTWriter struct {
	Mode ExportMode
}

func NewSRTWriter(mode ExportMode) *SRTWriter {
	return &SRTWriter{Mode: mode}
}

// renders entries as SRT text; ids are written as stored
func (w *SRTWriter) Encode(entries []Entry) string {
	var sb strings.Builder
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("%d\n", entry.ID))

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n", entry.StartTime, entry.EndTime))

		sb.WriteString(w.body(entry))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// writes the entries to an SRT file
func (w *SRTWriter) Write(entries []Entry, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(w.Encode(entries)), 0644)
}

func (w *SRTWriter) body(entry Entry) string {
	switch w.Mode {
	case ExportSource:
		return entry.Text
	case ExportOverlay:
		if !entry.IsTranslated() {
			return entry.Text
		}
		// translated + newline + original
		return entry.Translation + "\n" + entry.Text
	default:
		if !entry.IsTranslated() {
			return entry.Text
		}
		return entry.Translation
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
