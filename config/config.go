package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Metals    MetalsConfig
	Embedding EmbeddingConfig
	Pricing   PricingConfig
	Matching  MatchingConfig
	Data      DataConfig
	Diag      DiagConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetalsConfig holds the gold spot quote API configuration
type MetalsConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	FallbackPerGram float64       `mapstructure:"fallback_per_gram"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

// EmbeddingConfig holds the embeddings API configuration
type EmbeddingConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	BatchSize  int           `mapstructure:"batch_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// PricingConfig holds the retail costing schedule
type PricingConfig struct {
	MakingChargePerGram float64 `mapstructure:"making_charge_per_gram"`
	MarkupPct           float64 `mapstructure:"markup_pct"`
	NaturalPerCarat     float64 `mapstructure:"natural_per_carat"`
	LabPerCarat         float64 `mapstructure:"lab_per_carat"`
	GoldPurity          float64 `mapstructure:"gold_purity"`
	MinPrice            float64 `mapstructure:"min_price"`
}

// MatchingConfig holds similarity matching configuration
type MatchingConfig struct {
	TopN           int     `mapstructure:"top_n"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

// DataConfig points at the scraped CSV datasets
type DataConfig struct {
	TargetCSV      string   `mapstructure:"target_csv"`
	CompetitorCSVs []string `mapstructure:"competitor_csvs"`
}

// DiagConfig holds diagnostics configuration
type DiagConfig struct {
	MismatchLogPath string `mapstructure:"mismatch_log_path"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gemgem/")

	v.SetEnvPrefix("GEMGEM")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults carry the rest
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Metals quote defaults
	v.SetDefault("metals.base_url", "https://api.metalpriceapi.com")
	v.SetDefault("metals.fallback_per_gram", 80.0)
	v.SetDefault("metals.cache_ttl", "5m")
	v.SetDefault("metals.fetch_timeout", "10s")

	// Embedding defaults
	v.SetDefault("embedding.base_url", "http://localhost:8000/v1")
	v.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.batch_size", 64)
	v.SetDefault("embedding.timeout", "30s")

	// Pricing defaults
	v.SetDefault("pricing.making_charge_per_gram", 20.0)
	v.SetDefault("pricing.markup_pct", 15.0)
	v.SetDefault("pricing.natural_per_carat", 1500.0)
	v.SetDefault("pricing.lab_per_carat", 400.0)
	v.SetDefault("pricing.gold_purity", 0.75)
	v.SetDefault("pricing.min_price", 1000.0)

	// Matching defaults
	v.SetDefault("matching.top_n", 5)
	v.SetDefault("matching.score_threshold", 0.05)

	// Data defaults
	v.SetDefault("data.target_csv", "data/poc_gemgem.csv")
	v.SetDefault("data.competitor_csvs", []string{"data/poc_kay.csv", "data/poc_glamira.csv"})

	// Diagnostics defaults
	v.SetDefault("diag.mismatch_log_path", "mismatches.jsonl")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Metals.APIKey == "" {
		return fmt.Errorf("metals API key is required (set GEMGEM_METALS_API_KEY)")
	}

	if config.Data.TargetCSV == "" {
		return fmt.Errorf("target dataset path is required")
	}

	if config.Pricing.GoldPurity <= 0 || config.Pricing.GoldPurity > 1 {
		return fmt.Errorf("gold purity must be in (0, 1], got: %v", config.Pricing.GoldPurity)
	}

	if config.Matching.ScoreThreshold < -1 || config.Matching.ScoreThreshold > 1 {
		return fmt.Errorf("score threshold must be a cosine value in [-1, 1], got: %v", config.Matching.ScoreThreshold)
	}

	return nil
}
