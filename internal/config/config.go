// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	FeedPageSize          int `mapstructure:"FEED_PAGE_SIZE"`
	CommentLimit          int `mapstructure:"COMMENT_LIMIT"`
	CommentWindowSeconds  int `mapstructure:"COMMENT_WINDOW_SECONDS"`
	SuggestionLimit       int `mapstructure:"SUGGESTION_LIMIT"`
	TokenCacheTTLSeconds  int `mapstructure:"TOKEN_CACHE_TTL_SECONDS"`
	SearchResultLimit     int `mapstructure:"SEARCH_RESULT_LIMIT"`
	CommentsLatestMaxRows int `mapstructure:"COMMENTS_LATEST_MAX_ROWS"`

	DefaultThemes string `mapstructure:"DEFAULT_THEMES"`
	SeedPreset    string `mapstructure:"SEED_PRESET"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "agora")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEED_PAGE_SIZE", 10)
	viper.SetDefault("COMMENT_LIMIT", 20)
	viper.SetDefault("COMMENT_WINDOW_SECONDS", 300)
	viper.SetDefault("SUGGESTION_LIMIT", 5)
	viper.SetDefault("TOKEN_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("SEARCH_RESULT_LIMIT", 10)
	viper.SetDefault("COMMENTS_LATEST_MAX_ROWS", 100)
	viper.SetDefault("DEFAULT_THEMES", "General,Technology,Music,Books,Travel")
	viper.SetDefault("SEED_PRESET", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

// ThemeNames splits DEFAULT_THEMES, dropping blanks.
func (c *Config) ThemeNames() []string {
	var names []string
	for _, name := range strings.Split(c.DefaultThemes, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// CommentWindow is the engagement throttling window.
func (c *Config) CommentWindow() time.Duration {
	return time.Duration(c.CommentWindowSeconds) * time.Second
}

// TokenCacheTTL is how long a resolved bearer token may be served from Redis.
func (c *Config) TokenCacheTTL() time.Duration {
	return time.Duration(c.TokenCacheTTLSeconds) * time.Second
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.FeedPageSize <= 0 {
		return errors.New("FEED_PAGE_SIZE must be positive")
	}
	if c.CommentLimit <= 0 {
		return errors.New("COMMENT_LIMIT must be positive")
	}
	if c.CommentWindowSeconds <= 0 {
		return errors.New("COMMENT_WINDOW_SECONDS must be positive")
	}
	if c.TokenCacheTTLSeconds < 0 {
		return errors.New("TOKEN_CACHE_TTL_SECONDS must not be negative")
	}

	if c.IsProduction() {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.SeedPreset != "" {
			return errors.New("SEED_PRESET must not be set in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
