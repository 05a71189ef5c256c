package subtitle

import (
	"strings"
	"time"
)

// represents single subtitle entry
//
// ID is the sequence number declared in the source and is not unique;
// position in the slice is the authoritative order.
type Entry struct {
	ID          int                  `json:"id"`
	StartTime   string               `json:"startTime"`
	EndTime     string               `json:"endTime"`
	Text        string               `json:"text"`
	Translation string               `json:"translation,omitempty"`
	Candidates  map[string]Candidate `json:"candidates,omitempty"`
}

// translation attributed to a single provider
type Candidate struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Candidate returns the candidate stored for provider, if any
func (e *Entry) Candidate(provider string) (Candidate, bool) {
	c, ok := e.Candidates[provider]
	return c, ok
}

// HasCandidate reports whether provider produced any translation text
func (e *Entry) HasCandidate(provider string) bool {
	c, ok := e.Candidates[provider]
	return ok && c.Text != ""
}

// SetCandidate stores a successful translation and clears any prior error
func (e *Entry) SetCandidate(provider, text string) {
	if e.Candidates == nil {
		e.Candidates = make(map[string]Candidate)
	}
	e.Candidates[provider] = Candidate{Text: text}
}

// SetCandidateError records a provider failure, keeping previously
// translated text for that provider
func (e *Entry) SetCandidateError(provider, msg string) {
	if e.Candidates == nil {
		e.Candidates = make(map[string]Candidate)
	}
	c := e.Candidates[provider]
	c.Error = msg
	e.Candidates[provider] = c
}

// SelectCandidate makes provider's candidate the canonical translation.
// It reports false, leaving the entry unchanged, when there is no
// non-blank candidate to select.
func (e *Entry) SelectCandidate(provider string) bool {
	c, ok := e.Candidates[provider]
	if !ok || strings.TrimSpace(c.Text) == "" {
		return false
	}
	e.Translation = c.Text
	return true
}

// IsTranslated reports whether a non-blank translation is selected
func (e *Entry) IsTranslated() bool {
	return strings.TrimSpace(e.Translation) != ""
}

// Clone returns a deep copy so candidate maps are never shared
func (e Entry) Clone() Entry {
	if e.Candidates != nil {
		m := make(map[string]Candidate, len(e.Candidates))
		for k, v := range e.Candidates {
			m[k] = v
		}
		e.Candidates = m
	}
	return e
}

// translation state of a file
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// represents one uploaded subtitle document
type File struct {
	ID         string
	ProjectID  string // empty when unassigned
	Name       string
	Language   string
	Entries    []Entry
	Status     Status
	Progress   float64
	UploadedAt time.Time
}

// named group of files; files reference it by ID only
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// represents persisted content formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatJSON Format = "json"
)
