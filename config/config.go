package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Backends      BackendsConfig
	Routing       RoutingConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// BackendsConfig holds model backend configurations
type BackendsConfig struct {
	SLM    SLMConfig
	Gemini GeminiConfig
}

// SLMConfig holds the local small-model sidecar configuration.
// An empty Endpoint means the light tier is permanently unconfigured for
// this process; the adapter reports that without attempting network I/O.
type SLMConfig struct {
	Endpoint string
	Model    string
}

// GeminiConfig holds the hosted large-model provider configuration.
// APIKey is required for the standard and premium tiers; when absent those
// backends are never constructed.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	FlashModel string
	ProModel   string
}

// RoutingConfig holds tier thresholds and the per-call timeout.
// Thresholds are configuration, not routing-engine constants, so they can
// be tuned without touching routing logic.
type RoutingConfig struct {
	// LightMaxWords is the exclusive upper bound for the light tier.
	LightMaxWords int

	// StandardMaxWords is the exclusive upper bound for the standard tier;
	// anything at or above it classifies as premium.
	StandardMaxWords int

	// CallTimeout bounds every single backend invocation.
	CallTimeout time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
	TracingEnabled bool
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backends: BackendsConfig{
			SLM: SLMConfig{
				Endpoint: getEnv("SLM_SERVICE_URL", ""),
				Model:    getEnv("SLM_MODEL", "phi-3-mini"),
			},
			Gemini: GeminiConfig{
				APIKey:     getEnv("GEMINI_API_KEY", ""),
				BaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
				FlashModel: getEnv("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
				ProModel:   getEnv("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
			},
		},
		Routing: RoutingConfig{
			LightMaxWords:    getEnvAsInt("ROUTING_LIGHT_MAX_WORDS", 15),
			StandardMaxWords: getEnvAsInt("ROUTING_STANDARD_MAX_WORDS", 50),
			CallTimeout:      getEnvAsDuration("ROUTING_CALL_TIMEOUT", 8*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Routing.LightMaxWords <= 0 {
		return fmt.Errorf("routing light threshold must be positive")
	}
	if c.Routing.StandardMaxWords <= c.Routing.LightMaxWords {
		return fmt.Errorf("routing standard threshold must exceed the light threshold")
	}
	if c.Routing.CallTimeout <= 0 {
		return fmt.Errorf("routing call timeout must be positive")
	}

	// Hosted tiers back the fallback path, so production requires a credential
	if c.IsProduction() && c.Backends.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required in production")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
