package analysis

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"

	"github.com/mgpai22/subdesk/internal/subtitle"
)

// DetectLanguage guesses the source language of entries by majority vote
// over reliable per-entry detections, falling back to the whole text when
// no single caption is long enough to decide. Returns language.Und when
// nothing can be detected.
func DetectLanguage(entries []subtitle.Entry) language.Tag {
	votes := make(map[string]int)
	var all strings.Builder
	for _, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		all.WriteString(text)
		all.WriteString("\n")

		info := whatlanggo.Detect(text)
		if !info.IsReliable() {
			continue
		}
		if code := info.Lang.Iso6391(); code != "" {
			votes[code]++
		}
	}

	var top string
	var topCount int
	for code, count := range votes {
		if count > topCount || (count == topCount && code < top) {
			top, topCount = code, count
		}
	}

	if top == "" {
		if all.Len() == 0 {
			return language.Und
		}
		top = whatlanggo.DetectLang(all.String()).Iso6391()
	}
	if top == "" {
		return language.Und
	}

	tag, err := language.Parse(top)
	if err != nil {
		return language.Und
	}
	return tag
}
