package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultLibreTranslateURL = "http://localhost:5000"
	DefaultNLPURL            = "http://localhost:8000"
	defaultHTTPTimeout       = 20 * time.Second
)

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
}

// translateEach runs one request per item; these services take a single
// text per call
func translateEach(
	ctx context.Context,
	items []TranslationItem,
	one func(ctx context.Context, text string) (string, error),
) ([]TranslationResult, error) {
	results := make([]TranslationResult, 0, len(items))
	for _, item := range items {
		text, err := one(ctx, item.Text)
		if err != nil {
			return nil, err
		}
		results = append(results, TranslationResult{Index: item.Index, Text: text})
	}
	return results, nil
}

// implements Translator against a LibreTranslate server
type LibreTranslator struct {
	http    *resty.Client
	apiKey  string
	options Options
}

func NewLibreTranslator(apiKey string, opts Options) (*LibreTranslator, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	return &LibreTranslator{
		http:    newRestyClient(baseURL, opts.Timeout),
		apiKey:  apiKey,
		options: opts,
	}, nil
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

func (t *LibreTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return translateEach(ctx, items, t.translateText)
}

func (t *LibreTranslator) translateText(ctx context.Context, text string) (string, error) {
	var resp, errResp libreResponse
	r, err := t.http.R().
		SetContext(ctx).
		SetBody(libreRequest{
			Q:      text,
			Source: languageCode(t.options.InputLanguage),
			Target: languageCode(t.options.TargetLanguage),
			Format: "text",
			APIKey: t.apiKey,
		}).
		SetResult(&resp).
		SetError(&errResp).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("libretranslate request failed: %w", err)
	}
	if r.IsError() {
		if errResp.Error != "" {
			return "", fmt.Errorf("libretranslate: %s", errResp.Error)
		}
		return "", fmt.Errorf("HTTP error! status: %d", r.StatusCode())
	}
	return resp.TranslatedText, nil
}

// implements Translator against the self-hosted NLP model service.
// The service is trained for one language pair, so languages are ignored.
type NLPTranslator struct {
	http *resty.Client
}

func NewNLPTranslator(opts Options) (*NLPTranslator, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultNLPURL
	}
	return &NLPTranslator{http: newRestyClient(baseURL, opts.Timeout)}, nil
}

type nlpResponse struct {
	TranslatedText string `json:"translated_text"`
}

type nlpError struct {
	Detail string `json:"detail"`
}

// model service health report
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Device      string `json:"device,omitempty"`
}

func (t *NLPTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return translateEach(ctx, items, t.translateText)
}

func (t *NLPTranslator) translateText(ctx context.Context, text string) (string, error) {
	var resp nlpResponse
	var errResp nlpError
	r, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&resp).
		SetError(&errResp).
		Post("/translate")
	if err != nil {
		return "", fmt.Errorf("nlp request failed: %w", err)
	}
	if r.IsError() {
		if errResp.Detail != "" {
			return "", fmt.Errorf("nlp: %s", errResp.Detail)
		}
		return "", fmt.Errorf("HTTP error! status: %d", r.StatusCode())
	}
	return resp.TranslatedText, nil
}

// Health never fails; an unreachable service reports status "down"
func (t *NLPTranslator) Health(ctx context.Context) Health {
	var h Health
	r, err := t.http.R().SetContext(ctx).SetResult(&h).Get("/health")
	if err != nil {
		return Health{Status: "down"}
	}
	if r.IsError() {
		return Health{Status: "error"}
	}
	return h
}
