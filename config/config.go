package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// External service configurations
	AlphaVantage AlphaVantageConfig
	Bedrock      BedrockConfig

	// Research pipeline configuration
	Research ResearchConfig

	// Response cache configuration
	Cache CacheConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
	// CallDelaySeconds spaces calls for the free-tier quota
	CallDelaySeconds int
}

// BedrockConfig holds AWS Bedrock configuration for narrative summaries
type BedrockConfig struct {
	Region    string
	ModelID   string
	MaxTokens int
	// Disabled skips Bedrock entirely and serves a placeholder summary
	Disabled bool
}

// ResearchConfig holds research pipeline configuration
type ResearchConfig struct {
	// HistoryYears is the price-history lookback window
	HistoryYears int
	// ProviderTimeoutSeconds bounds each upstream call
	ProviderTimeoutSeconds int
	// RequestTimeoutSeconds bounds a whole research request
	RequestTimeoutSeconds int
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTLSeconds int
	Capacity   int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		AlphaVantage: AlphaVantageConfig{
			APIKey:           os.Getenv("ALPHA_VANTAGE_API_KEY"),
			CallDelaySeconds: getEnvInt("ALPHA_VANTAGE_CALL_DELAY_SECONDS", 12),
		},
		Bedrock: BedrockConfig{
			Region:    getEnvString("BEDROCK_REGION", "us-east-1"),
			ModelID:   getEnvString("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
			MaxTokens: getEnvInt("BEDROCK_MAX_TOKENS", 1024),
			Disabled:  getEnvBool("SUMMARY_DISABLED", false),
		},
		Research: ResearchConfig{
			HistoryYears:           getEnvInt("RESEARCH_HISTORY_YEARS", 5),
			ProviderTimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30),
			RequestTimeoutSeconds:  getEnvInt("REQUEST_TIMEOUT_SECONDS", 120),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300),
			Capacity:   getEnvInt("CACHE_CAPACITY", 512),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required")
	}
	if c.AlphaVantage.CallDelaySeconds <= 0 {
		return fmt.Errorf("ALPHA_VANTAGE_CALL_DELAY_SECONDS must be positive, got %d", c.AlphaVantage.CallDelaySeconds)
	}
	if c.Research.HistoryYears <= 0 {
		return fmt.Errorf("RESEARCH_HISTORY_YEARS must be positive, got %d", c.Research.HistoryYears)
	}
	if c.Research.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %d", c.Research.ProviderTimeoutSeconds)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive, got %d", c.Cache.Capacity)
	}
	return nil
}

// HasBedrock returns true if narrative summaries are enabled
func (c *Config) HasBedrock() bool {
	return !c.Bedrock.Disabled
}

// AlphaVantageDelay returns the configured call spacing as a duration
func (c *Config) AlphaVantageDelay() time.Duration {
	return time.Duration(c.AlphaVantage.CallDelaySeconds) * time.Second
}

// ProviderTimeout returns the per-provider call deadline as a duration
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Research.ProviderTimeoutSeconds) * time.Second
}

// CacheTTL returns the response cache TTL as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		AlphaVantage: AlphaVantageConfig{
			APIKey:           "test-key",
			CallDelaySeconds: 12,
		},
		Bedrock: BedrockConfig{
			Region:    "us-east-1",
			ModelID:   "anthropic.claude-3-5-sonnet-20240620-v1:0",
			MaxTokens: 1024,
			Disabled:  true,
		},
		Research: ResearchConfig{
			HistoryYears:           5,
			ProviderTimeoutSeconds: 30,
			RequestTimeoutSeconds:  120,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
			Capacity:   512,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
	}
}
