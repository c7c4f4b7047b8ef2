package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderNone   LLMProvider = "none"
)

// Config holds application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Generation backend
	LLMProvider   LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string      `env:"GEMINI_API_KEY"`
	GeminiModel   string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenAIAPIKey  string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string      `env:"OPENAI_BASE_URL"`
	OpenAIModel   string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Retry / pacing for the generation call
	GenerationMaxRetries int           `env:"GENERATION_MAX_RETRIES" envDefault:"3"`
	GenerationBaseDelay  time.Duration `env:"GENERATION_BASE_DELAY" envDefault:"1s"`
	GenerationMaxDelay   time.Duration `env:"GENERATION_MAX_DELAY" envDefault:"60s"`
	GenerationRPS        float64       `env:"GENERATION_RPS" envDefault:"0"`
	GenerationBurst      int           `env:"GENERATION_BURST" envDefault:"1"`

	// Prompts
	PromptTemplatesPath string `env:"PROMPT_TEMPLATES_PATH"`

	// Summary cache
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	SummaryCacheTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"10m"`

	// Doctor notifications
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	DoctorChatID     int64  `env:"DOCTOR_CHAT_ID"`
	ReportFontPath   string `env:"REPORT_FONT_PATH"`
	// Tried first for hi-IN session PDFs.
	ReportDevanagariFontPath string `env:"REPORT_DEVANAGARI_FONT_PATH"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from environment variables only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(strings.TrimSpace(string(cfg.LLMProvider))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.GenerationMaxRetries < 1 {
		return fmt.Errorf("config: GENERATION_MAX_RETRIES must be at least 1, got %d", c.GenerationMaxRetries)
	}
	if c.GenerationBaseDelay < 0 || c.GenerationMaxDelay < 0 {
		return errors.New("config: generation delays must not be negative")
	}
	return nil
}

// NotificationsEnabled reports whether doctor notifications can be delivered.
func (c *Config) NotificationsEnabled() bool {
	return strings.TrimSpace(c.TelegramBotToken) != "" && c.DoctorChatID != 0
}
