package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/config"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/progress"
	"github.com/abhisek/nibble/internal/store"
)

// env is everything a command needs, built from flags and config.
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	cache    store.CacheRepo
	redis    *store.RedisCache
	provider llm.Provider
	lessons  *lessons.Service
	progress *progress.Service
	tutor    *chat.Tutor
}

// envOptions tweak setup per command.
type envOptions struct {
	// quiet turns console logging off, for the TUI.
	quiet bool
}

// setup loads config, opens the store and wires the services. The caller
// must call close.
func setup(cmd *cobra.Command, opts envOptions) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if opts.quiet {
		cfg.Log.Console = false
	}

	llmErr := cfg.Validate()
	if llmErr != nil && !errors.Is(llmErr, config.ErrLLMConfig) {
		return nil, fmt.Errorf("invalid config: %w", llmErr)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{cfg: cfg, log: log, store: st, cache: st.CacheRepo()}

	if cfg.Store.Cache == "redis" {
		rc, err := store.OpenRedisCache(ctx, cfg.Store.RedisURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		e.redis = rc
		e.cache = rc
	}

	if llmErr == nil {
		e.provider, llmErr = llm.NewProvider(ctx, cfg.LLMConfig(), st.EventRepo(), log)
	}
	if llmErr != nil {
		log.Warn("LLM provider not configured, lessons will use offline copies", "error", llmErr)
		e.provider = llm.Offline(llmErr)
	}

	e.lessons = lessons.NewService(e.provider, e.cache, log, cfg.LessonsConfig())
	e.progress = progress.NewService(st.ProgressRepo(), e.lessons, log)
	chatCfg := cfg.ChatConfig()
	e.tutor = chat.NewTutor(e.provider, chat.NewCompressor(e.provider, chatCfg.Summary), log, chatCfg)
	return e, nil
}

func (e *env) close() {
	e.lessons.Wait()
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.log.Warn("close redis", "error", err)
		}
	}
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}

// resolveDBPath returns the database path using --db (highest priority),
// then the config file or NIBBLE_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.DBPath != "" {
		return cfg.Store.DBPath, store.EnsureDir(cfg.Store.DBPath)
	}
	return store.DefaultDBPath()
}

func userFlag(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString("user")
	return u
}

func defaultUser() string {
	if u := os.Getenv("NIBBLE_USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// openStore opens just the database, for commands that only read events or
// delete rows.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
