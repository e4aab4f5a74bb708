// Package config loads Nibble settings from .env, an optional YAML file
// and NIBBLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/llm"
	"github.com/abhisek/nibble/internal/logger"
)

// EnvPrefix is prepended to every automatically bound variable.
const EnvPrefix = "NIBBLE"

// ErrLLMConfig marks validation failures in the llm section. Callers that can
// run without a model (every lesson has an offline copy) may ignore it.
var ErrLLMConfig = errors.New("llm")

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Lessons LessonsConfig `mapstructure:"lessons"`
	Chat    ChatConfig    `mapstructure:"chat"`
}

type ServerConfig struct {
	Port           string          `mapstructure:"port"`
	Mode           string          `mapstructure:"mode"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type RateLimitConfig struct {
	// RequestsPerSecond per client. Zero disables limiting.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type StoreConfig struct {
	// DBPath is the SQLite file. Empty means the XDG data dir.
	DBPath string `mapstructure:"db_path"`
	// Cache selects the lesson cache backend: "sqlite" or "redis".
	Cache    string `mapstructure:"cache"`
	RedisURL string `mapstructure:"redis_url"`
}

type AuthConfig struct {
	// JWTSecret enables bearer-token auth on user routes when set.
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

type LLMConfig struct {
	// Provider may be empty, in which case it is inferred from the keys present.
	Provider   string        `mapstructure:"provider"`
	Candidates []string      `mapstructure:"candidates"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`

	Gemini      ProviderConfig `mapstructure:"gemini"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
	Anthropic   ProviderConfig `mapstructure:"anthropic"`
	OpenRouter  ProviderConfig `mapstructure:"openrouter"`
	HuggingFace ProviderConfig `mapstructure:"huggingface"`
	TextGen     ProviderConfig `mapstructure:"textgen"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LessonsConfig struct {
	MaxTokens        int     `mapstructure:"max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
	QuizMaxTokens    int     `mapstructure:"quiz_max_tokens"`
	QuizTemperature  float64 `mapstructure:"quiz_temperature"`
	StructuredOutput bool    `mapstructure:"structured_output"`
}

type ChatConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxTurns         int           `mapstructure:"max_turns"`
	Temperature      float64       `mapstructure:"temperature"`
	SummaryMaxTokens int           `mapstructure:"summary_max_tokens"`
}

// Load reads configuration. path names a YAML file; when empty an
// optional nibble.yaml in the working directory is used. A .env file in
// the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("nibble")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// Comma separated values arrive as a single element from the environment.
	cfg.LLM.Candidates = llm.SplitList(strings.Join(cfg.LLM.Candidates, ","))
	cfg.Server.AllowedOrigins = llm.SplitList(strings.Join(cfg.Server.AllowedOrigins, ","))
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit.requests_per_second", 5.0)
	v.SetDefault("server.rate_limit.burst", 10)

	v.SetDefault("store.db_path", "")
	v.SetDefault("store.cache", "sqlite")
	v.SetDefault("store.redis_url", "")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.console", true)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.candidates", []string{})
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("llm.retries", llmDefaults.Retry.MaxAttempts)
	for _, p := range []string{"gemini", "openai", "anthropic", "openrouter", "huggingface", "textgen"} {
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".model", "")
		v.SetDefault("llm."+p+".base_url", "")
	}

	lessonDefaults := lessons.DefaultConfig()
	v.SetDefault("lessons.max_tokens", lessonDefaults.MaxTokens)
	v.SetDefault("lessons.temperature", lessonDefaults.Temperature)
	v.SetDefault("lessons.quiz_max_tokens", lessonDefaults.QuizMaxTokens)
	v.SetDefault("lessons.quiz_temperature", lessonDefaults.QuizTemperature)
	v.SetDefault("lessons.structured_output", lessonDefaults.StructuredOutput)

	chatDefaults := chat.DefaultConfig()
	v.SetDefault("chat.timeout", chatDefaults.Timeout)
	v.SetDefault("chat.max_turns", chatDefaults.MaxTurns)
	v.SetDefault("chat.temperature", chatDefaults.Temperature)
	v.SetDefault("chat.summary_max_tokens", chatDefaults.Summary.MaxTokens)
}

// bindEnv maps the conventional unprefixed variable names. Each key keeps
// its NIBBLE_ name as the first choice.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":             {"NIBBLE_SERVER_PORT", "PORT"},
		"store.db_path":           {"NIBBLE_STORE_DB_PATH", "NIBBLE_DB"},
		"store.redis_url":         {"NIBBLE_STORE_REDIS_URL", "NIBBLE_REDIS_URL", "REDIS_URL"},
		"auth.jwt_secret":         {"NIBBLE_AUTH_JWT_SECRET", "NIBBLE_JWT_SECRET", "JWT_SECRET"},
		"llm.provider":            {"NIBBLE_LLM_PROVIDER"},
		"llm.candidates":          {"NIBBLE_LLM_CANDIDATES"},
		"llm.timeout":             {"NIBBLE_LLM_TIMEOUT"},
		"llm.gemini.api_key":      {"NIBBLE_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"llm.gemini.model":        {"NIBBLE_GEMINI_MODEL"},
		"llm.openai.api_key":      {"NIBBLE_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.openai.model":        {"NIBBLE_OPENAI_MODEL"},
		"llm.openai.base_url":     {"NIBBLE_OPENAI_BASE_URL"},
		"llm.anthropic.api_key":   {"NIBBLE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"llm.anthropic.model":     {"NIBBLE_ANTHROPIC_MODEL"},
		"llm.openrouter.api_key":  {"NIBBLE_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		"llm.openrouter.model":    {"NIBBLE_OPENROUTER_MODEL"},
		"llm.huggingface.api_key": {"NIBBLE_HF_API_KEY", "HF_API_KEY", "HUGGINGFACE_API_KEY"},
		"llm.huggingface.model":   {"NIBBLE_HF_MODEL"},
		"llm.textgen.base_url":    {"NIBBLE_TEXTGEN_URL"},
		"llm.textgen.api_key":     {"NIBBLE_TEXTGEN_API_KEY"},
	}
	for key, names := range bindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch c.Store.Cache {
	case "sqlite":
	case "redis":
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required when store.cache is redis")
		}
	default:
		return fmt.Errorf("unknown store.cache %q (want sqlite or redis)", c.Store.Cache)
	}
	if c.Server.RateLimit.RequestsPerSecond < 0 {
		return errors.New("server.rate_limit.requests_per_second must not be negative")
	}
	if c.Chat.MaxTurns < 0 {
		return errors.New("chat.max_turns must not be negative")
	}
	if err := c.LLMConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrLLMConfig, err)
	}
	return nil
}

// LLMConfig maps the llm section onto the generation client's Config.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	provider := c.LLM.Provider
	if provider == "" {
		provider = c.inferProvider()
	}
	out.Provider = provider
	out.Candidates = c.LLM.Candidates
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}
	if c.LLM.Retries > 0 {
		out.Retry.MaxAttempts = c.LLM.Retries
	}

	apply := func(p ProviderConfig, key, model, baseURL *string) {
		if p.APIKey != "" {
			*key = p.APIKey
		}
		if p.Model != "" {
			*model = p.Model
		}
		if baseURL != nil && p.BaseURL != "" {
			*baseURL = p.BaseURL
		}
	}
	apply(c.LLM.Gemini, &out.Gemini.APIKey, &out.Gemini.Model, &out.Gemini.BaseURL)
	apply(c.LLM.OpenAI, &out.OpenAI.APIKey, &out.OpenAI.Model, &out.OpenAI.BaseURL)
	apply(c.LLM.Anthropic, &out.Anthropic.APIKey, &out.Anthropic.Model, &out.Anthropic.BaseURL)
	apply(c.LLM.OpenRouter, &out.OpenRouter.APIKey, &out.OpenRouter.Model, &out.OpenRouter.BaseURL)
	apply(c.LLM.HuggingFace, &out.HuggingFace.APIKey, &out.HuggingFace.Model, &out.HuggingFace.BaseURL)
	apply(c.LLM.TextGen, &out.TextGen.APIKey, &out.TextGen.Model, &out.TextGen.BaseURL)
	return out
}

// inferProvider picks the first backend with credentials, falling back to
// the vendor variables probed by llm.DiscoverConfig.
func (c *Config) inferProvider() string {
	switch {
	case c.LLM.Gemini.APIKey != "":
		return "gemini"
	case c.LLM.OpenAI.APIKey != "":
		return "openai"
	case c.LLM.Anthropic.APIKey != "":
		return "anthropic"
	case c.LLM.OpenRouter.APIKey != "":
		return "openrouter"
	case c.LLM.HuggingFace.APIKey != "":
		return "huggingface"
	case c.LLM.TextGen.BaseURL != "":
		return "textgen"
	}
	if d, ok := llm.DiscoverConfig(); ok {
		return d.Provider
	}
	return llm.DefaultConfig().Provider
}

// LoggerConfig maps the log section onto logger.Config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Console:    c.Log.Console,
	}
}

// LessonsConfig maps the lessons section onto lessons.Config.
func (c *Config) LessonsConfig() lessons.Config {
	return lessons.Config{
		MaxTokens:        c.Lessons.MaxTokens,
		Temperature:      c.Lessons.Temperature,
		QuizMaxTokens:    c.Lessons.QuizMaxTokens,
		QuizTemperature:  c.Lessons.QuizTemperature,
		StructuredOutput: c.Lessons.StructuredOutput,
	}
}

// ChatConfig maps the chat section onto chat.Config.
func (c *Config) ChatConfig() chat.Config {
	out := chat.DefaultConfig()
	if c.Chat.Timeout > 0 {
		out.Timeout = c.Chat.Timeout
	}
	out.MaxTurns = c.Chat.MaxTurns
	if c.Chat.Temperature > 0 {
		out.Temperature = c.Chat.Temperature
	}
	if c.Chat.SummaryMaxTokens > 0 {
		out.Summary.MaxTokens = c.Chat.SummaryMaxTokens
	}
	return out
}
