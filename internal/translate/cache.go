package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// identifies one cached translation
type CacheKey struct {
	Provider Provider
	Source   string
	Target   string
	// LLM model and extra prompt; both change the output for the same text
	Model  string
	Prompt string
	Text   string
}

// Hash is a stable digest of the key, usable as a storage key
func (k CacheKey) Hash() string {
	h := sha256.New()
	for _, part := range []string{string(k.Provider), k.Source, k.Target, k.Model, k.Prompt, k.Text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// stores translations across runs
type Cache interface {
	Get(ctx context.Context, key CacheKey) (string, bool, error)
	Put(ctx context.Context, key CacheKey, text string) error
}

// cachedTranslator answers items from the cache and forwards only misses
type cachedTranslator struct {
	next     Translator
	cache    Cache
	provider Provider
	source   string
	target   string
	model    string
	prompt   string
}

// WithCache wraps next so repeated texts are not sent to the provider again.
// Cache failures are treated as misses.
func WithCache(next Translator, cache Cache, provider Provider, opts Options) Translator {
	if cache == nil {
		return next
	}
	return &cachedTranslator{
		next:     next,
		cache:    cache,
		provider: provider,
		source:   languageCode(opts.InputLanguage),
		target:   languageCode(opts.TargetLanguage),
		model:    opts.Model,
		prompt:   strings.TrimSpace(opts.Prompt),
	}
}

func (c *cachedTranslator) key(text string) CacheKey {
	return CacheKey{
		Provider: c.provider,
		Source:   c.source,
		Target:   c.target,
		Model:    c.model,
		Prompt:   c.prompt,
		Text:     text,
	}
}

func (c *cachedTranslator) BatchSize() int {
	if b, ok := c.next.(Batcher); ok {
		return b.BatchSize()
	}
	return 1
}

func (c *cachedTranslator) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	results := make([]TranslationResult, 0, len(items))
	var misses []TranslationItem
	for _, item := range items {
		if text, ok, err := c.cache.Get(ctx, c.key(item.Text)); err == nil && ok {
			results = append(results, TranslationResult{Index: item.Index, Text: text})
			continue
		}
		misses = append(misses, item)
	}
	if len(misses) == 0 {
		return results, nil
	}

	fresh, err := c.next.Translate(ctx, misses)
	if err != nil {
		return nil, err
	}

	texts := make(map[int]string, len(misses))
	for _, item := range misses {
		texts[item.Index] = item.Text
	}
	for _, r := range fresh {
		if src, ok := texts[r.Index]; ok && r.Text != "" {
			_ = c.cache.Put(ctx, c.key(src), r.Text)
		}
	}

	return append(results, fresh...), nil
}
