package translate

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExtractTranslationResults(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []TranslationResult
		wantErr bool
	}{
		{
			name: "two-line caption with markup",
			input: `[
				{"index": 0, "text": "<i>Où est-il ?</i>\nIl est parti."},
				{"index": 1, "text": "Attends-moi !"}
			]`,
			want: []TranslationResult{
				{Index: 0, Text: "<i>Où est-il ?</i>\nIl est parti."},
				{Index: 1, Text: "Attends-moi !"},
			},
		},
		{
			name: "preamble before the array",
			input: `Here are the translated subtitles:
			[{"index": 3, "text": "Bonjour."}]`,
			want: []TranslationResult{{Index: 3, Text: "Bonjour."}},
		},
		{
			name: "commentary after the array",
			input: `[{"index": 7, "text": "- Qui ?\n- Moi."}]
			Note: I kept the dialogue dashes.`,
			want: []TranslationResult{{Index: 7, Text: "- Qui ?\n- Moi."}},
		},
		{
			name:  "results wrapper",
			input: `{"results": [{"index": 0, "text": "♪ La la la ♪"}]}`,
			want:  []TranslationResult{{Index: 0, Text: "♪ La la la ♪"}},
		},
		{
			name:  "unknown wrapper key",
			input: `{"captions": [{"index": 2, "text": "Chào."}]}`,
			want:  []TranslationResult{{Index: 2, Text: "Chào."}},
		},
		{
			name:  "markup escaped by the model",
			input: `[{"index": 0, "text": "\u003ci\u003eHmm.\u003c/i\u003e"}]`,
			want:  []TranslationResult{{Index: 0, Text: "<i>Hmm.</i>"}},
		},
		{
			name:  "ASS line break copied from the source",
			input: `[{"index": 0, "text": "Voilà pourquoi...\Nces deux-là."}]`,
			want:  []TranslationResult{{Index: 0, Text: "Voilà pourquoi...\\Nces deux-là."}},
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "refusal without JSON",
			input:   `I cannot translate these subtitles.`,
			wantErr: true,
		},
		{
			name:    "truncated response",
			input:   `[{"index": 0, "text": "<i>Bonjour`,
			wantErr: true,
		},
		{
			name:    "every caption empty",
			input:   `[{"index": 0, "text": ""}, {"index": 1, "text": ""}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractTranslationResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", results)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(results, tt.want) {
				t.Errorf("got %+v, want %+v", results, tt.want)
			}
		})
	}
}

func TestParseResponseTextRequiresEachCaption(t *testing.T) {
	items := []TranslationItem{
		{Index: 4, Text: "<i>Hello?</i>"},
		{Index: 5, Text: "Anyone there?\nHello!"},
	}

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "answered out of order",
			input: `[{"index": 5, "text": "Quelqu'un ?\nBonjour !"}, {"index": 4, "text": "<i>Allô ?</i>"}]`,
		},
		{
			name:    "caption missing",
			input:   `[{"index": 4, "text": "<i>Allô ?</i>"}]`,
			wantErr: "expected 2 results, got 1",
		},
		{
			name:    "caption answered twice",
			input:   `[{"index": 4, "text": "<i>Allô ?</i>"}, {"index": 4, "text": "Allô ?"}]`,
			wantErr: "duplicate result for caption index 4",
		},
		{
			name:    "index that was not requested",
			input:   `[{"index": 4, "text": "<i>Allô ?</i>"}, {"index": 6, "text": "Bonjour !"}]`,
			wantErr: "unknown caption index 6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseResponseText("```json\n"+tt.input+"\n```", items)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(results) != 2 {
					t.Errorf("got %d results, want 2", len(results))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	const caption = `[{"index": 0, "text": "<i>Salut.</i>\nÇa va ?"}]`

	tests := []struct {
		name  string
		input string
	}{
		{"bare", caption},
		{"json code fence", "```json\n" + caption + "\n```"},
		{"plain code fence", "```\n" + caption + "\n```"},
		{"surrounding whitespace", "  \n\n```json\n" + caption + "\n```\n\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != caption {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, caption)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []TranslationResult
		want    bool
	}{
		{"empty slice", []TranslationResult{}, false},
		{"nil slice", nil, false},
		{"one caption", []TranslationResult{{Index: 12, Text: "Xin chào."}}, true},
		{"blank caption", []TranslationResult{{Index: 12, Text: ""}}, false},
		{
			"one of two captions filled",
			[]TranslationResult{
				{Index: 12, Text: ""},
				{Index: 13, Text: "<i>Tạm biệt.</i>"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

// scripted completion: echoes each item's text upper-cased
func echoCompletion(calls *[]string) completion {
	return func(_ context.Context, prompt string) (string, error) {
		*calls = append(*calls, prompt)
		start := strings.Index(prompt, "Input JSON:\n") + len("Input JSON:\n")
		end := strings.LastIndex(prompt, "\n\nOutput")

		var items []TranslationItem
		if err := json.Unmarshal([]byte(prompt[start:end]), &items); err != nil {
			return "", err
		}
		results := make([]TranslationResult, len(items))
		for i, item := range items {
			results[i] = TranslationResult{Index: item.Index, Text: strings.ToUpper(item.Text)}
		}
		out, err := json.Marshal(results)
		if err != nil {
			return "", err
		}
		return "```json\n" + string(out) + "\n```", nil
	}
}

func TestLLMTranslatorSplitsBatches(t *testing.T) {
	var calls []string
	tr := &llmTranslator{
		name:     "test",
		options:  Options{TargetLanguage: "en", BatchSize: 2},
		complete: echoCompletion(&calls),
	}

	items := []TranslationItem{
		{Index: 0, Text: "a"},
		{Index: 1, Text: "b"},
		{Index: 2, Text: "c"},
	}
	results, err := tr.Translate(context.Background(), items)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("expected 2 requests, got %d", len(calls))
	}
	want := []string{"A", "B", "C"}
	for i, r := range results {
		if r.Index != i || r.Text != want[i] {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestLLMTranslatorCountMismatch(t *testing.T) {
	tr := &llmTranslator{
		name:    "test",
		options: Options{TargetLanguage: "en"},
		complete: func(context.Context, string) (string, error) {
			return `[{"index":0,"text":"only one"}]`, nil
		},
	}

	_, err := tr.Translate(context.Background(), []TranslationItem{
		{Index: 0, Text: "a"},
		{Index: 1, Text: "b"},
	})
	if err == nil || !strings.Contains(err.Error(), "expected 2 results, got 1") {
		t.Errorf("expected count mismatch error, got %v", err)
	}
}

func TestLLMTranslatorWrapsCompletionError(t *testing.T) {
	boom := errors.New("quota exceeded")
	tr := &llmTranslator{
		name:    "test",
		options: Options{TargetLanguage: "en"},
		complete: func(context.Context, string) (string, error) {
			return "", boom
		},
	}

	_, err := tr.Translate(context.Background(), []TranslationItem{{Index: 0, Text: "a"}})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped completion error, got %v", err)
	}
}

func TestLLMTranslatorEmptyResponse(t *testing.T) {
	tr := &llmTranslator{
		name:    "Gemini",
		options: Options{TargetLanguage: "en"},
		complete: func(context.Context, string) (string, error) {
			return "", nil
		},
	}

	_, err := tr.Translate(context.Background(), []TranslationItem{{Index: 0, Text: "a"}})
	if err == nil || !strings.Contains(err.Error(), "no text in Gemini response") {
		t.Errorf("expected empty response error, got %v", err)
	}
}
