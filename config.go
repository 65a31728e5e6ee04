package dailyquiz

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the binaries need. It is loaded once at startup
// and passed by reference to the components that use it.
type Config struct {
	AI      AIConfig     `mapstructure:"ai"`
	Store   StoreConfig  `mapstructure:"store"`
	Server  ServerConfig `mapstructure:"server"`
	LLMLog  string       `mapstructure:"llm_log"`
	Verbose bool         `mapstructure:"verbose"`
}

// AIConfig configures the chat-completions endpoint
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Referer     string        `mapstructure:"referer"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects and configures the daily cache backend
type StoreConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// ServerConfig configures cmd/webserver
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "tngtech/deepseek-r1t2-chimera:free"
)

// LoadConfig reads dir/.env (if present), dir/dailyquiz.yaml (if present) and
// the environment. A missing API key is not an error: generation will fail
// fast and the fallback bank is used instead.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("dailyquiz")
	v.SetConfigType("yaml")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", DefaultBaseURL)
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.referer", "http://localhost")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 3000)
	v.SetDefault("ai.timeout", 90*time.Second)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "2two.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("server.port", "8180")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("verbose", false)
	v.SetDefault("llm_log", filepath.Join("log", "llm.log"))

	v.SetEnvPrefix("DAILYQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", "DAILYQUIZ_AI_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}
	if err := v.BindEnv("server.session_secret", "DAILYQUIZ_SERVER_SESSION_SECRET", "SESSION_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind session secret env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	switch cfg.Store.Driver {
	case "sqlite", "redis":
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}

	return &cfg, nil
}
