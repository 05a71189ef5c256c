package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdesk/internal/config"
	"github.com/mgpai22/subdesk/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file_id]",
	Short: "Fill one provider's translation candidates for a stored file",
	Long: `Translate every entry of a stored file with one provider and store the
results as that provider's candidates. The selected translation of each
entry is not changed; use "subdesk select" to pick candidates.

A failed request is recorded on the entry as the provider's error and does
not stop the run. Interrupting the run keeps the entries that finished.

Providers: gemini, openai, anthropic (LLM, batched JSON prompt),
libretranslate, nlp (HTTP, one request per entry).

Examples:
  subdesk translate 3f6c... --provider nlp
  subdesk translate 3f6c... --provider libretranslate -t vi
  subdesk translate 3f6c... --provider gemini -t ja --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List translation providers and check the NLP service",
	Args:  cobra.NoArgs,
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(translateCmd, providersCmd)

	translateCmd.Flags().
		StringP("provider", "p", "", "Translation provider (required)")
	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language (default from config)")
	translateCmd.Flags().
		StringP("language", "l", "", "Source language, or auto (default: file language)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for LLM providers (provider default if empty)")
	translateCmd.Flags().
		String("prompt", "", "Extra instructions for LLM providers")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel requests (default from config)")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of subtitle entries per LLM request")
	translateCmd.Flags().
		Bool("no-cache", false, "Skip the translation cache")

	_ = translateCmd.MarkFlagRequired("provider")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	fileID := args[0]
	ctx := cmd.Context()

	providerStr, _ := cmd.Flags().GetString("provider")
	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	provider, err := translate.ParseProvider(providerStr)
	if err != nil {
		return err
	}

	rec, err := db.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	opts := cfg.TranslateOptions(provider)
	if targetLang != "" {
		opts.TargetLanguage = targetLang
	}
	switch {
	case inputLang != "":
		opts.InputLanguage = inputLang
	case rec.Language != "":
		opts.InputLanguage = rec.Language
	}
	if model != "" {
		opts.Model = model
	}
	opts.Prompt = prompt
	opts.BatchSize = batchSize

	if opts.TargetLanguage == "" {
		return fmt.Errorf("target language is required: use --target-language or set SUBDESK_TARGET_LANG")
	}
	if strings.EqualFold(strings.TrimSpace(opts.InputLanguage), strings.TrimSpace(opts.TargetLanguage)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			opts.InputLanguage,
			opts.TargetLanguage,
		)
	}

	if concurrency == 0 {
		concurrency = cfg.Concurrency
	}
	if concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if apiKey == "" {
		apiKey = cfg.APIKey(provider)
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		if env := config.APIKeyEnv(provider); env != "" && apiKey == "" {
			return fmt.Errorf("%w (use --api-key or set %s)", err, env)
		}
		return fmt.Errorf("failed to create translator: %w", err)
	}

	if !noCache {
		c, closeCache, err := translationCache(ctx)
		if err != nil {
			logger.Warnw("Translation cache unavailable, continuing without it", "error", err)
		}
		defer closeCache()
		translator = translate.WithCache(translator, c, provider, opts)
	}

	logger.Infow("Starting subtitle translation",
		"file_id", fileID,
		"provider", provider,
		"target_language", opts.TargetLanguage,
		"input_language", opts.InputLanguage,
		"model", opts.Model,
		"cache", !noCache && cfg.Cache.Backend != config.CacheNone,
	)

	summary, err := ws.Translate(ctx, fileID, provider, translator, concurrency)
	if err != nil && summary == nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if !cfg.IsTracked(string(provider)) {
		logger.Infow("Provider is not tracked; file progress is unchanged by its candidates",
			"provider", provider,
			"tracked", cfg.TrackedProviders,
		)
	}

	fmt.Printf("Translated %s with %s\n", rec.Name, provider)
	fmt.Printf("  Entries: %d/%d\n", summary.Translated, summary.Requested)
	if summary.Failed > 0 {
		fmt.Printf("  Failed: %d (see \"subdesk show %s\")\n", summary.Failed, fileID)
	}
	if summary.Cancelled > 0 {
		fmt.Printf("  Not translated (interrupted): %d\n", summary.Cancelled)
	}
	fmt.Printf("  Target language: %s\n", opts.TargetLanguage)
	fmt.Printf("  Progress: %.1f%% (%s)\n", summary.Progress, summary.Status)

	if err != nil {
		return fmt.Errorf("translation interrupted: %w", err)
	}
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	for _, p := range translate.Providers() {
		marker := " "
		if cfg.IsTracked(string(p)) {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s", marker, p)

		switch p {
		case translate.ProviderLibreTranslate:
			line += "  " + cfg.Providers.LibreTranslate.URL
		case translate.ProviderNLP:
			nlp, err := translate.NewNLPTranslator(cfg.TranslateOptions(p))
			if err != nil {
				return err
			}
			h := nlp.Health(cmd.Context())
			line += fmt.Sprintf("  %s  status=%s", cfg.Providers.NLP.URL, h.Status)
			if h.Status != "down" && h.Status != "error" {
				line += fmt.Sprintf(" model_loaded=%t", h.ModelLoaded)
				if h.Device != "" {
					line += " device=" + h.Device
				}
			}
		default:
			if cfg.APIKey(p) == "" {
				line += "  (no API key: " + config.APIKeyEnv(p) + ")"
			}
		}
		fmt.Println(line)
	}
	fmt.Println("\n* counts toward file progress")
	return nil
}
