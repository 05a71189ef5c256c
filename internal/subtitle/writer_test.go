package subtitle

import (
	"os"
	"path/filepath"
	"testing"
)

func writerFixture() []Entry {
	return []Entry{
		{ID: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,500", Text: "Hello", Translation: "Bonjour"},
		{ID: 2, StartTime: "00:00:03,000", EndTime: "00:00:04,000", Text: "World", Translation: "  "},
	}
}

func TestSRTWriterEncode(t *testing.T) {
	tests := []struct {
		mode ExportMode
		want string
	}{
		{
			ExportSource,
			"1\n00:00:01,000 --> 00:00:02,500\nHello\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nWorld\n\n",
		},
		{
			ExportTranslation,
			"1\n00:00:01,000 --> 00:00:02,500\nBonjour\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nWorld\n\n",
		},
		{
			ExportOverlay,
			"1\n00:00:01,000 --> 00:00:02,500\nBonjour\nHello\n\n" +
				"2\n00:00:03,000 --> 00:00:04,000\nWorld\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := NewSRTWriter(tt.mode).Encode(writerFixture())
			if got != tt.want {
				t.Errorf("Encode() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestSRTWriterOutputParsesBack(t *testing.T) {
	encoded := NewSRTWriter(ExportSource).Encode(writerFixture())
	outcome := ParseSRT(encoded)

	if len(outcome.Skipped) != 0 {
		t.Fatalf("unexpected skipped blocks: %+v", outcome.Skipped)
	}
	if len(outcome.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(outcome.Entries))
	}
	for i, entry := range outcome.Entries {
		src := writerFixture()[i]
		if entry.ID != src.ID || entry.StartTime != src.StartTime ||
			entry.EndTime != src.EndTime || entry.Text != src.Text {
			t.Errorf("entry %d = %+v, want %+v", i, entry, src)
		}
	}
}

func TestSRTWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.srt")

	if err := NewSRTWriter(ExportTranslation).Write(writerFixture(), path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := NewSRTWriter(ExportTranslation).Encode(writerFixture())
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}
}

func TestParseExportMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportMode
		wantErr bool
	}{
		{"source", ExportSource, false},
		{"Translation", ExportTranslation, false},
		{"", ExportTranslation, false},
		{" overlay ", ExportOverlay, false},
		{"bilingual", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExportMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseExportMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseExportMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
