package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subdesk/internal/cache"
	"github.com/mgpai22/subdesk/internal/config"
	"github.com/mgpai22/subdesk/internal/logging"
	"github.com/mgpai22/subdesk/internal/store"
	"github.com/mgpai22/subdesk/internal/translate"
	"github.com/mgpai22/subdesk/internal/workspace"
)

var (
	verbose    bool
	configPath string
	dbPath     string

	logger *logging.Logger
	cfg    *config.Config
	db     *store.Store
	ws     *workspace.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "subdesk",
	Short: "Subtitle translation workbench",
	Long: `Subdesk stores SRT subtitle files, collects translations for every
caption from several providers, and lets you pick the one to keep.

It also reports reading speed and timing problems, compares two versions
of the same subtitles, and exports SRT in source, translated, or
bilingual form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		db, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		logger.Debugw("Opened database", "path", cfg.DBPath, "config", cfg.Path())

		ws = workspace.New(db, cfg.TrackedProviders, logger)
		return nil
	},
}

// Execute runs the CLI; an interrupt cancels the running command so a
// translation run can save what it finished.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return executeContext(ctx)
}

// executeContext runs the root command and releases the database and
// logger whether or not the command failed
func executeContext(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

func shutdown() {
	if db != nil {
		if err := db.Close(); err != nil && logger != nil {
			logger.Warnw("Failed to close database", "error", err)
		}
		db = nil
	}
	if logger != nil {
		logger.Sync()
	}
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().
		StringVar(&dbPath, "db", "", "SQLite database path (overrides config and SUBDESK_DB)")
}

// translationCache returns the configured cache backend, nil when caching
// is off. The returned close func is never nil.
func translationCache(ctx context.Context) (translate.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err != nil {
			return nil, func() {}, err
		}
		return rc, func() { _ = rc.Close() }, nil
	case config.CacheSQLite:
		return db.TranslationCache(), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
