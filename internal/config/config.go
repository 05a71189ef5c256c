package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subdesk/internal/translate"
)

// Config holds all subdesk settings.
//
// Values are layered: defaults, then the YAML file, then a .env file in the
// working directory, then the process environment. CLI flags are applied by
// the caller on top of the result.
//
// Environment variables:
//   - SUBDESK_DB: SQLite database path
//   - SUBDESK_SOURCE_LANG, SUBDESK_TARGET_LANG: default language pair
//   - SUBDESK_CONCURRENCY: parallel translation batches
//   - SUBDESK_REDIS_ADDR: switches the cache backend to Redis
//   - GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY
//   - LIBRETRANSLATE_URL, LIBRETRANSLATE_API_KEY, NLP_URL
type Config struct {
	DBPath           string   `yaml:"db_path"`
	SourceLanguage   string   `yaml:"source_language"`
	TargetLanguage   string   `yaml:"target_language"`
	Concurrency      int      `yaml:"concurrency"`
	TrackedProviders []string `yaml:"tracked_providers"`

	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`

	path string
}

type ProvidersConfig struct {
	Gemini         LLMConfig  `yaml:"gemini"`
	OpenAI         LLMConfig  `yaml:"openai"`
	Anthropic      LLMConfig  `yaml:"anthropic"`
	LibreTranslate HTTPConfig `yaml:"libretranslate"`
	NLP            HTTPConfig `yaml:"nlp"`
}

type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type HTTPConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// cache backends
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

const defaultCacheTTL = 30 * 24 * time.Hour

func defaultConfig() *Config {
	return &Config{
		DBPath:           defaultDBPath(),
		SourceLanguage:   "auto",
		Concurrency:      translate.DefaultConcurrency,
		TrackedProviders: []string{"libretranslate", "nlp"},
		Providers: ProvidersConfig{
			LibreTranslate: HTTPConfig{URL: translate.DefaultLibreTranslateURL},
			NLP:            HTTPConfig{URL: translate.DefaultNLPURL},
		},
		Cache: CacheConfig{
			Backend: CacheSQLite,
			TTL:     defaultCacheTTL,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "subdesk.db"
	}
	return filepath.Join(home, ".subdesk", "subdesk.db")
}

// DefaultPath is the config file read when no --config flag is given
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "subdesk.yaml"
	}
	return filepath.Join(dir, "subdesk", "config.yaml")
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.normalize()

	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.path = path
	return nil
}

// Path returns the file the config was read from, empty when none was
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyEnv() {
	c.DBPath = getEnvString("SUBDESK_DB", c.DBPath)
	c.SourceLanguage = getEnvString("SUBDESK_SOURCE_LANG", c.SourceLanguage)
	c.TargetLanguage = getEnvString("SUBDESK_TARGET_LANG", c.TargetLanguage)
	c.Concurrency = getEnvInt("SUBDESK_CONCURRENCY", c.Concurrency)

	c.Providers.Gemini.APIKey = getEnvString("GEMINI_API_KEY", c.Providers.Gemini.APIKey)
	c.Providers.OpenAI.APIKey = getEnvString("OPENAI_API_KEY", c.Providers.OpenAI.APIKey)
	c.Providers.Anthropic.APIKey = getEnvString("ANTHROPIC_API_KEY", c.Providers.Anthropic.APIKey)
	c.Providers.LibreTranslate.URL = getEnvString("LIBRETRANSLATE_URL", c.Providers.LibreTranslate.URL)
	c.Providers.LibreTranslate.APIKey = getEnvString(
		"LIBRETRANSLATE_API_KEY",
		c.Providers.LibreTranslate.APIKey,
	)
	c.Providers.NLP.URL = getEnvString("NLP_URL", c.Providers.NLP.URL)

	if addr := os.Getenv("SUBDESK_REDIS_ADDR"); addr != "" {
		c.Cache.RedisAddr = addr
		c.Cache.Backend = CacheRedis
	}
}

func (c *Config) normalize() {
	c.SourceLanguage = strings.TrimSpace(c.SourceLanguage)
	if c.SourceLanguage == "" {
		c.SourceLanguage = "auto"
	}
	c.TargetLanguage = strings.TrimSpace(c.TargetLanguage)
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheSQLite
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	for i, p := range c.TrackedProviders {
		c.TrackedProviders[i] = strings.ToLower(strings.TrimSpace(p))
	}
}

// Validate checks values that would otherwise fail deep inside a command
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if !strings.EqualFold(c.SourceLanguage, "auto") {
		if _, err := language.Parse(c.SourceLanguage); err != nil {
			return fmt.Errorf("invalid source language %q: %w", c.SourceLanguage, err)
		}
	}
	if c.TargetLanguage != "" {
		if _, err := language.Parse(c.TargetLanguage); err != nil {
			return fmt.Errorf("invalid target language %q: %w", c.TargetLanguage, err)
		}
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if len(c.TrackedProviders) == 0 {
		return fmt.Errorf("at least one tracked provider is required")
	}
	for _, p := range c.TrackedProviders {
		if _, err := translate.ParseProvider(p); err != nil {
			return fmt.Errorf("tracked providers: %w", err)
		}
	}
	switch c.Cache.Backend {
	case CacheSQLite, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis cache requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q: use sqlite, redis, or none", c.Cache.Backend)
	}
	return nil
}

// APIKey returns the configured key for provider; empty for nlp
func (c *Config) APIKey(provider translate.Provider) string {
	switch provider {
	case translate.ProviderGemini:
		return c.Providers.Gemini.APIKey
	case translate.ProviderOpenAI:
		return c.Providers.OpenAI.APIKey
	case translate.ProviderAnthropic:
		return c.Providers.Anthropic.APIKey
	case translate.ProviderLibreTranslate:
		return c.Providers.LibreTranslate.APIKey
	default:
		return ""
	}
}

// APIKeyEnv names the environment variable holding provider's key
func APIKeyEnv(provider translate.Provider) string {
	switch provider {
	case translate.ProviderGemini:
		return "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case translate.ProviderLibreTranslate:
		return "LIBRETRANSLATE_API_KEY"
	default:
		return ""
	}
}

// TranslateOptions fills the provider-specific parts of translate.Options
func (c *Config) TranslateOptions(provider translate.Provider) translate.Options {
	opts := translate.Options{
		InputLanguage:  c.SourceLanguage,
		TargetLanguage: c.TargetLanguage,
	}
	switch provider {
	case translate.ProviderGemini:
		opts.Model = c.Providers.Gemini.Model
	case translate.ProviderOpenAI:
		opts.Model = c.Providers.OpenAI.Model
	case translate.ProviderAnthropic:
		opts.Model = c.Providers.Anthropic.Model
	case translate.ProviderLibreTranslate:
		opts.BaseURL = c.Providers.LibreTranslate.URL
	case translate.ProviderNLP:
		opts.BaseURL = c.Providers.NLP.URL
	}
	return opts
}

// IsTracked reports whether provider counts toward file progress
func (c *Config) IsTracked(provider string) bool {
	return slices.Contains(c.TrackedProviders, strings.ToLower(provider))
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
