// Package config loads and validates application configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment constants
const (
	EnvProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Scan      ScanConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name  string
	Env   string
	Debug bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration // Per-request handler timeout (non-streaming routes)
	ShutdownTimeout time.Duration
	MaxBodySize     int64
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string

	// SlowRequestSeconds logs requests slower than this as warnings.
	SlowRequestSeconds int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled         bool
	RequestsPerSec  float64
	Burst           int
	CleanupInterval time.Duration
}

// LLMProvider selects the analysis backend.
type LLMProvider string

const (
	// LLMProviderBedrock invokes Anthropic models through AWS Bedrock.
	LLMProviderBedrock LLMProvider = "bedrock"
	// LLMProviderClaude invokes the Anthropic Messages API directly.
	LLMProviderClaude LLMProvider = "claude"
)

// IsValid checks if the provider is valid.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderBedrock, LLMProviderClaude:
		return true
	default:
		return false
	}
}

// LLMConfig holds external analysis capability configuration. The client
// built from it is process-wide and shared read-only across sessions.
type LLMConfig struct {
	Provider LLMProvider
	Model    string
	Timeout  time.Duration

	// Bedrock credentials. Variable names kept from the original deployment.
	AWSRegion          string // AWS_REGION_NAME
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY

	// Direct Anthropic API credential.
	AnthropicAPIKey string // ANTHROPIC_API_KEY
}

// ScanConfig holds scan pipeline configuration.
type ScanConfig struct {
	// FileExtensions is the candidate-file allowlist, lowercase with dots.
	FileExtensions []string

	// ExcludeVCSDirs skips version-control metadata directories (.git)
	// during traversal.
	ExcludeVCSDirs bool

	// CloneTimeout bounds repository acquisition.
	CloneTimeout time.Duration
}

// defaultFileExtensions mirrors the supported-language set of the original
// scanner.
var defaultFileExtensions = []string{
	".py", ".js", ".java", ".rb", ".php", ".go", ".ts", ".tsx", ".html", ".css",
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "repoguard"),
			Env:   getEnv("APP_ENV", "development"),
			Debug: getEnvBool("APP_DEBUG", false),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 0), // streaming responses: no write deadline
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodySize:     getEnvInt64("SERVER_MAX_BODY_SIZE", 1<<20), // 1MB default
		},
		Log: LogConfig{
			Level:              getEnv("LOG_LEVEL", "info"),
			Format:             getEnv("LOG_FORMAT", "json"),
			SlowRequestSeconds: getEnvInt("LOG_SLOW_REQUEST_SECONDS", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Accept", "Content-Type", "X-Request-ID"}),
			MaxAge:         getEnvInt("CORS_MAX_AGE", 86400),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSec:  getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst:           getEnvInt("RATE_LIMIT_BURST", 20),
			CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP", 1*time.Minute),
		},
		LLM: LLMConfig{
			Provider:           LLMProvider(getEnv("LLM_PROVIDER", "bedrock")),
			Model:              getEnv("LLM_MODEL", ""),
			Timeout:            getEnvDuration("LLM_TIMEOUT", 2*time.Minute),
			AWSRegion:          getEnv("AWS_REGION_NAME", ""),
			AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		},
		Scan: ScanConfig{
			FileExtensions: getEnvSlice("SCAN_FILE_EXTENSIONS", defaultFileExtensions),
			ExcludeVCSDirs: getEnvBool("SCAN_EXCLUDE_VCS_DIRS", true),
			CloneTimeout:   getEnvDuration("SCAN_CLONE_TIMEOUT", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration required at startup is present.
// Missing analysis credentials are a startup-time fatal condition, not a
// per-request error.
func (c *Config) Validate() error {
	if !c.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM_PROVIDER %q (expected bedrock or claude)", c.LLM.Provider)
	}

	switch c.LLM.Provider {
	case LLMProviderBedrock:
		var missing []string
		if c.LLM.AWSRegion == "" {
			missing = append(missing, "AWS_REGION_NAME")
		}
		if c.LLM.AWSAccessKeyID == "" {
			missing = append(missing, "AWS_ACCESS_KEY_ID")
		}
		if c.LLM.AWSSecretAccessKey == "" {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
		}
	case LLMProviderClaude:
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("missing required environment variables: ANTHROPIC_API_KEY")
		}
	}

	if len(c.Scan.FileExtensions) == 0 {
		return fmt.Errorf("SCAN_FILE_EXTENSIONS must not be empty")
	}
	for _, ext := range c.Scan.FileExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid scan file extension %q: must start with a dot", ext)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}

	return nil
}

// IsProduction returns true when running in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				result = append(result, v)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
