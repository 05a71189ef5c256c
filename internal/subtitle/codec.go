package subtitle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrInvalidContent  = errors.New("invalid subtitle content")
	ErrInvalidEncoding = errors.New("entry text is not valid UTF-8")
)

// legacy single-byte encoding assumed for uploads that are not UTF-8
const FallbackEncoding = "windows-1252"

// DecodeError reports a JSON array element that does not have entry shape
type DecodeError struct {
	Element int // 0-based index in the stored array
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: element %d: %v", ErrInvalidContent, e.Element, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrInvalidContent, e.Err}
}

// decoded stored content
type Content struct {
	Entries []Entry
	Format  Format
	Skipped []SkippedBlock // only populated for SRT input
	// set when the input was not UTF-8 and was decoded from this encoding
	Transcoded string
}

// ParseContent decodes stored content. A JSON array is decoded as entries
// and must match the entry schema; anything that is not valid JSON, or is
// valid JSON but not an array, is parsed as SRT.
//
// Input that is not valid UTF-8 is decoded as Windows-1252 first, so
// Latin-1 era SRT files keep their accented characters.
func ParseContent(raw string) (*Content, error) {
	var transcoded string
	if !utf8.ValidString(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().String(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		raw, transcoded = decoded, FallbackEncoding
	}

	content, err := parseUTF8(raw)
	if err != nil {
		return nil, err
	}
	content.Transcoded = transcoded
	return content, nil
}

func parseUTF8(raw string) (*Content, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &Content{Entries: []Entry{}, Format: FormatSRT}, nil
	}

	if !json.Valid([]byte(trimmed)) || trimmed[0] != '[' {
		outcome := ParseSRT(raw)
		return &Content{
			Entries: outcome.Entries,
			Format:  FormatSRT,
			Skipped: outcome.Skipped,
		}, nil
	}

	entries, err := decodeEntries([]byte(trimmed))
	if err != nil {
		return nil, err
	}
	return &Content{Entries: entries, Format: FormatJSON}, nil
}

func decodeEntries(data []byte) ([]Entry, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	entries := make([]Entry, 0, len(elements))
	for i, element := range elements {
		var entry Entry
		if err := json.Unmarshal(element, &entry); err != nil {
			return nil, &DecodeError{Element: i, Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SerializeEntries is the inverse of ParseContent for JSON content.
// Entries holding invalid UTF-8 are rejected instead of being stored with
// replacement characters.
func SerializeEntries(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	for i := range entries {
		if err := entries[i].checkUTF8(); err != nil {
			return "", fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("failed to encode entries: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MarshalJSON writes an empty, non-nil candidate map as {} so it decodes
// back to an empty map rather than nil
func (e Entry) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          int                   `json:"id"`
		StartTime   string                `json:"startTime"`
		EndTime     string                `json:"endTime"`
		Text        string                `json:"text"`
		Translation string                `json:"translation,omitempty"`
		Candidates  *map[string]Candidate `json:"candidates,omitempty"`
	}{
		ID:          e.ID,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Text:        e.Text,
		Translation: e.Translation,
	}
	if e.Candidates != nil {
		out.Candidates = &e.Candidates
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (e *Entry) checkUTF8() error {
	fields := []string{e.StartTime, e.EndTime, e.Text, e.Translation}
	for provider, c := range e.Candidates {
		fields = append(fields, provider, c.Text, c.Error)
	}
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return fmt.Errorf("%w: %q", ErrInvalidEncoding, f)
		}
	}
	return nil
}

// legacy provider slots written by earlier versions as flat fields
var legacyCandidateFields = map[string]string{
	"google": "googleTranslation",
	"nlp":    "nlpTranslation",
}

type wireEntry struct {
	ID          *int                 `json:"id"`
	StartTime   *string              `json:"startTime"`
	EndTime     *string              `json:"endTime"`
	Text        *string              `json:"text"`
	Translation string               `json:"translation"`
	Candidates  map[string]Candidate `json:"candidates"`
}

// UnmarshalJSON validates required fields and folds legacy flat
// per-provider fields into Candidates
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var missing []string
	if w.ID == nil {
		missing = append(missing, "id")
	}
	if w.StartTime == nil {
		missing = append(missing, "startTime")
	}
	if w.EndTime == nil {
		missing = append(missing, "endTime")
	}
	if w.Text == nil {
		missing = append(missing, "text")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	*e = Entry{
		ID:          *w.ID,
		StartTime:   *w.StartTime,
		EndTime:     *w.EndTime,
		Text:        *w.Text,
		Translation: w.Translation,
		Candidates:  w.Candidates,
	}

	return e.foldLegacyFields(data)
}

func (e *Entry) foldLegacyFields(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	for provider, field := range legacyCandidateFields {
		var text, errMsg string
		if raw, ok := flat[field]; ok {
			if err := json.Unmarshal(raw, &text); err != nil {
				return fmt.Errorf("field %s: %w", field, err)
			}
		}
		if raw, ok := flat[provider+"Error"]; ok {
			if err := json.Unmarshal(raw, &errMsg); err != nil {
				return fmt.Errorf("field %sError: %w", provider, err)
			}
		}
		if text == "" && errMsg == "" {
			continue
		}
		if _, exists := e.Candidates[provider]; exists {
			continue
		}
		if e.Candidates == nil {
			e.Candidates = make(map[string]Candidate)
		}
		e.Candidates[provider] = Candidate{Text: text, Error: errMsg}
	}
	return nil
}
