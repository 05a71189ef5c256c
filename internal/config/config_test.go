package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/subdesk/internal/translate"
)

var envKeys = []string{
	"SUBDESK_DB",
	"SUBDESK_SOURCE_LANG",
	"SUBDESK_TARGET_LANG",
	"SUBDESK_CONCURRENCY",
	"SUBDESK_REDIS_ADDR",
	"GEMINI_API_KEY",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"LIBRETRANSLATE_URL",
	"LIBRETRANSLATE_API_KEY",
	"NLP_URL",
}

// isolates a test from the caller's environment and home directory
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.SourceLanguage)
	assert.Empty(t, cfg.TargetLanguage)
	assert.Equal(t, translate.DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, []string{"libretranslate", "nlp"}, cfg.TrackedProviders)
	assert.Equal(t, translate.DefaultLibreTranslateURL, cfg.Providers.LibreTranslate.URL)
	assert.Equal(t, translate.DefaultNLPURL, cfg.Providers.NLP.URL)
	assert.Equal(t, CacheSQLite, cfg.Cache.Backend)
	assert.Equal(t, defaultCacheTTL, cfg.Cache.TTL)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Empty(t, cfg.Path())
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	cleanEnv(t)
	path := writeConfig(t, `
db_path: /tmp/subdesk-test.db
target_language: ja
concurrency: 5
tracked_providers: [gemini, NLP]
providers:
  gemini:
    api_key: from-file
    model: gemini-2.5-pro
  nlp:
    url: http://nlp.internal:9000
cache:
  backend: none
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "/tmp/subdesk-test.db", cfg.DBPath)
	assert.Equal(t, "ja", cfg.TargetLanguage)
	assert.Equal(t, "auto", cfg.SourceLanguage)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, []string{"gemini", "nlp"}, cfg.TrackedProviders)
	assert.Equal(t, "from-file", cfg.APIKey(translate.ProviderGemini))
	assert.Equal(t, "http://nlp.internal:9000", cfg.Providers.NLP.URL)
	assert.Equal(t, translate.DefaultLibreTranslateURL, cfg.Providers.LibreTranslate.URL)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	require.NoError(t, cfg.Validate())
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	cleanEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	cleanEnv(t)
	path := writeConfig(t, "concurrency: [not a number\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	cleanEnv(t)
	path := writeConfig(t, `
target_language: ja
providers:
  openai:
    api_key: from-file
`)
	t.Setenv("SUBDESK_TARGET_LANG", "vi")
	t.Setenv("SUBDESK_CONCURRENCY", "7")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("LIBRETRANSLATE_URL", "http://libre:5000")
	t.Setenv("SUBDESK_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vi", cfg.TargetLanguage)
	assert.Equal(t, 7, cfg.Concurrency)
	assert.Equal(t, "from-env", cfg.APIKey(translate.ProviderOpenAI))
	assert.Equal(t, "http://libre:5000", cfg.Providers.LibreTranslate.URL)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
}

func TestInvalidIntEnvKeepsValue(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SUBDESK_CONCURRENCY", "many")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, translate.DefaultConcurrency, cfg.Concurrency)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"source tag", func(c *Config) { c.SourceLanguage = "pt-BR" }, false},
		{"bad source", func(c *Config) { c.SourceLanguage = "not a language" }, true},
		{"bad target", func(c *Config) { c.TargetLanguage = "???" }, true},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"unknown provider", func(c *Config) { c.TrackedProviders = []string{"google"} }, true},
		{"no providers", func(c *Config) { c.TrackedProviders = nil }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTranslateOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.SourceLanguage = "en"
	cfg.TargetLanguage = "ko"
	cfg.Providers.Anthropic.Model = "claude-sonnet-4-5"

	opts := cfg.TranslateOptions(translate.ProviderAnthropic)
	assert.Equal(t, "en", opts.InputLanguage)
	assert.Equal(t, "ko", opts.TargetLanguage)
	assert.Equal(t, "claude-sonnet-4-5", opts.Model)
	assert.Empty(t, opts.BaseURL)

	opts = cfg.TranslateOptions(translate.ProviderNLP)
	assert.Equal(t, translate.DefaultNLPURL, opts.BaseURL)
}

func TestAPIKeyEnv(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", APIKeyEnv(translate.ProviderGemini))
	assert.Equal(t, "ANTHROPIC_API_KEY", APIKeyEnv(translate.ProviderAnthropic))
	assert.Empty(t, APIKeyEnv(translate.ProviderNLP))
}

func TestIsTracked(t *testing.T) {
	cfg := defaultConfig()
	assert.True(t, cfg.IsTracked("NLP"))
	assert.False(t, cfg.IsTracked("gemini"))
}

func TestCacheTTLDefaultWhenUnset(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.TTL = 0
	cfg.normalize()
	assert.Equal(t, 30*24*time.Hour, cfg.Cache.TTL)
}
