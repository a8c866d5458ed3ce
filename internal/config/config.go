package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Version is stamped at build time with
// -ldflags "-X travelmind/internal/config.Version=...".
var Version = "dev"

// Config is resolved in three layers: built-in defaults, an optional YAML
// file named by TRAVELMIND_CONFIG, then environment variables.
type Config struct {
	Env         string `yaml:"env"`
	Port        string `yaml:"port"`
	PostgresURL string `yaml:"postgres_url"`
	RedisURL    string `yaml:"redis_url"`
	Timezone    string `yaml:"timezone"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Companion CompanionConfig `yaml:"companion"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	JWTSecret       string        `yaml:"jwt_secret"`
	SentryDSN       string        `yaml:"sentry_dsn"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LLMConfig struct {
	OllamaURL      string `yaml:"ollama_url"`
	DefaultModel   string `yaml:"default_model"`
	ComplexModel   string `yaml:"complex_model"`
	CompanionModel string `yaml:"companion_model"`

	OpenAIKey     string `yaml:"openai_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	GeminiKey   string `yaml:"gemini_key"`
	GeminiModel string `yaml:"gemini_model"`

	MaxDuration      time.Duration `yaml:"max_duration"`
	MaxOutputTokens  int           `yaml:"max_output_tokens"`
	Retries          int           `yaml:"retries"`
	ContextTokens    int           `yaml:"context_tokens"`
	FallbackAttempts int           `yaml:"fallback_attempts"`
	Temperature      float32       `yaml:"temperature"`
	Keywords         []string      `yaml:"keywords"`
}

type CompanionConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	ResultTTL      time.Duration `yaml:"result_ttl"`
	PollWait       time.Duration `yaml:"poll_wait"`
	WeatherURL     string        `yaml:"weather_url"`
	WeatherTimeout time.Duration `yaml:"weather_timeout"`
	WeatherTTL     time.Duration `yaml:"weather_ttl"`
	WorkerEnabled  bool          `yaml:"worker_enabled"`
}

func Default() Config {
	return Config{
		Env:         "development",
		Port:        "3001",
		RedisURL:    "redis://127.0.0.1:6379",
		Timezone:    "UTC",
		AutoMigrate: true,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			CORSOrigins:     []string{"*"},
			RateLimitRPS:    10,
			RateLimitBurst:  20,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			OllamaURL:        "http://127.0.0.1:11434",
			DefaultModel:     "llama3.1:latest",
			ComplexModel:     "qwen3:30b",
			CompanionModel:   "mistral:7b",
			OpenAIModel:      "gpt-4o-mini",
			GeminiModel:      "gemini-1.5-flash",
			MaxDuration:      280 * time.Second,
			MaxOutputTokens:  800,
			Retries:          1,
			ContextTokens:    8192,
			FallbackAttempts: 2,
			Temperature:      0.3,
		},
		Companion: CompanionConfig{
			CacheTTL:       60 * time.Second,
			ResultTTL:      time.Hour,
			PollWait:       30 * time.Second,
			WeatherURL:     "https://api.open-meteo.com/v1/forecast",
			WeatherTimeout: 10 * time.Second,
			WeatherTTL:     30 * time.Minute,
			WorkerEnabled:  true,
		},
	}
}

// Load reads .env (if present), the YAML overlay and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("TRAVELMIND_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnvWithDefault("APP_ENV", c.Env)
	c.Port = getEnvWithDefault("PORT", c.Port)
	c.PostgresURL = getEnvWithDefault("POSTGRES_URL", c.PostgresURL)
	c.RedisURL = getEnvWithDefault("REDIS_URL", c.RedisURL)
	c.Timezone = getEnvWithDefault("APP_TIMEZONE", c.Timezone)

	c.Log.Level = getEnvWithDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvWithDefault("LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	c.HTTP.JWTSecret = getEnvWithDefault("JWT_SECRET", c.HTTP.JWTSecret)
	c.HTTP.SentryDSN = getEnvWithDefault("SENTRY_DSN", c.HTTP.SentryDSN)

	c.LLM.OllamaURL = getEnvWithDefault("OLLAMA_BASE_URL", c.LLM.OllamaURL)
	c.LLM.DefaultModel = getEnvWithDefault("OLLAMA_MODEL_DEFAULT", c.LLM.DefaultModel)
	c.LLM.ComplexModel = getEnvWithDefault("OLLAMA_MODEL_COMPLEX", c.LLM.ComplexModel)
	c.LLM.CompanionModel = getEnvWithDefault("OLLAMA_MODEL_COMPANION", c.LLM.CompanionModel)
	c.LLM.OpenAIKey = getEnvWithDefault("OPENAI_API_KEY", c.LLM.OpenAIKey)
	c.LLM.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", c.LLM.OpenAIModel)
	c.LLM.OpenAIBaseURL = getEnvWithDefault("OPENAI_BASE_URL", c.LLM.OpenAIBaseURL)
	c.LLM.GeminiKey = getEnvWithDefault("GEMINI_API_KEY", c.LLM.GeminiKey)
	c.LLM.GeminiModel = getEnvWithDefault("GEMINI_MODEL", c.LLM.GeminiModel)

	var err error
	set := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	set(envBool("AUTO_MIGRATE", &c.AutoMigrate))
	set(envBool("COMPANION_WORKER_ENABLED", &c.Companion.WorkerEnabled))
	set(envFloat("RATE_LIMIT_RPS", &c.HTTP.RateLimitRPS))
	set(envInt("RATE_LIMIT_BURST", &c.HTTP.RateLimitBurst))
	set(envMillis("AI_MAX_DURATION_MS", &c.LLM.MaxDuration))
	set(envInt("AI_MAX_OUTPUT_TOKENS", &c.LLM.MaxOutputTokens))
	set(envInt("AI_RETRY_OLLAMA", &c.LLM.Retries))
	set(envInt("AI_CONTEXT_TOKENS", &c.LLM.ContextTokens))
	set(envInt("AI_FALLBACK_ATTEMPTS", &c.LLM.FallbackAttempts))

	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		f, perr := strconv.ParseFloat(v, 32)
		if perr != nil {
			set(fmt.Errorf("AI_TEMPERATURE: %w", perr))
		} else {
			c.LLM.Temperature = float32(f)
		}
	}

	return err
}

func (c *Config) Validate() error {
	var problems []string
	if c.Port == "" {
		problems = append(problems, "port is required")
	}
	if c.LLM.MaxOutputTokens <= 0 {
		problems = append(problems, "llm.max_output_tokens must be positive")
	}
	if c.LLM.Retries < 0 {
		problems = append(problems, "llm.retries cannot be negative")
	}
	if c.LLM.FallbackAttempts < 0 {
		problems = append(problems, "llm.fallback_attempts cannot be negative")
	}
	if c.LLM.ContextTokens > 0 && c.LLM.ContextTokens <= c.LLM.MaxOutputTokens {
		problems = append(problems, "llm.context_tokens must exceed llm.max_output_tokens")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// getEnvWithDefault returns environment variable or default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envMillis(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
