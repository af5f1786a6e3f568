// Package config holds the typed weaver configuration and its loader.
package config

import (
	"time"
)

// Provider names an LLM backend implementation.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderLiteLLM  Provider = "litellm"
	ProviderLMStudio Provider = "lmstudio"
	ProviderEcho     Provider = "echo"
)

// Providers is the closed set of supported providers.
var Providers = []Provider{ProviderOpenAI, ProviderLiteLLM, ProviderLMStudio, ProviderEcho}

// Well-known capability names. Other names may be referenced by a task's model field.
const (
	CapabilityOrchestrator = "orchestrator"
	CapabilityTask         = "task"
)

// Config is the root configuration, built once at startup.
type Config struct {
	Dir     string        `yaml:"dir"`
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	Sources SourcesConfig `yaml:"sources"`
	Breaker BreakerConfig `yaml:"breaker"`
	Server  ServerConfig  `yaml:"server"`

	// Capabilities maps a capability name to the model that serves it.
	Capabilities map[string]Capability `yaml:"capabilities"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects and tunes the state backend.
type StorageConfig struct {
	Backend       string        `yaml:"backend"` // file, redis or memory
	LockTTL       time.Duration `yaml:"lock_ttl"`
	EncryptionKey string        `yaml:"encryption_key"`
	FallbackKeys  []string      `yaml:"fallback_keys"`
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig addresses the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SourcesConfig tunes corpus ingestion.
type SourcesConfig struct {
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	MaxBytes     int64         `yaml:"max_bytes"`
	CacheEntries int64         `yaml:"cache_entries"`
}

// BreakerConfig tunes the circuit breaker in front of every LLM capability.
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ServerConfig configures `weaver serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// AllowedOrigins lists browser origins granted CORS access to the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Capability binds a capability name to a concrete model.
type Capability struct {
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// Parameters is decoded strictly into Params at load time.
	Parameters map[string]any `yaml:"parameters"`
	Params     Parameters     `yaml:"-"`
}

// Parameters are the typed model parameters accepted under `parameters:`.
type Parameters struct {
	Temperature *float64      `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	TopP        *float64      `mapstructure:"top_p"`
	Timeout     time.Duration `mapstructure:"timeout"`
	System      string        `mapstructure:"system"`
}

// Defaults returns a Config that works offline with the echo provider.
func Defaults() Config {
	return Config{
		Dir: ".",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend: "file",
			LockTTL: 30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "weaver:project:",
			},
		},
		Sources: SourcesConfig{
			HTTPTimeout:  30 * time.Second,
			MaxBytes:     8 << 20,
			CacheEntries: 256,
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Capabilities: map[string]Capability{
			CapabilityOrchestrator: {Provider: ProviderEcho},
			CapabilityTask:         {Provider: ProviderEcho},
		},
	}
}
