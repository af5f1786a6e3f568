package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "weaver.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and decodes it strictly over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	// A capabilities block in the file replaces the default one.
	if hasCapabilities(data) {
		cfg.Capabilities = nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func hasCapabilities(data []byte) bool {
	var probe struct {
		Capabilities map[string]any `yaml:"capabilities"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Capabilities) > 0
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Dir, "WEAVER_DIR")
	setString(&cfg.Logging.Level, "WEAVER_LOG_LEVEL")
	setString(&cfg.Logging.Format, "WEAVER_LOG_FORMAT")
	setString(&cfg.Storage.Backend, "WEAVER_STORAGE")
	setDuration(&cfg.Storage.LockTTL, "WEAVER_LOCK_TTL")
	setString(&cfg.Storage.EncryptionKey, "WEAVER_ENCRYPTION_KEY")
	setString(&cfg.Storage.Redis.Addr, "WEAVER_REDIS_ADDR")
	setString(&cfg.Storage.Redis.Password, "WEAVER_REDIS_PASSWORD")
	setInt(&cfg.Storage.Redis.DB, "WEAVER_REDIS_DB")
	setDuration(&cfg.Sources.HTTPTimeout, "WEAVER_SOURCE_TIMEOUT")
	setInt(&cfg.Breaker.MaxFailures, "WEAVER_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "WEAVER_BREAKER_TIMEOUT")
	setString(&cfg.Server.Addr, "WEAVER_ADDR")

	// Per-capability overrides: WEAVER_<NAME>_PROVIDER / _MODEL / _BASE_URL.
	for name, c := range cfg.Capabilities {
		prefix := "WEAVER_" + envName(name) + "_"
		var provider string
		setString(&provider, prefix+"PROVIDER")
		if provider != "" {
			c.Provider = Provider(provider)
		}
		setString(&c.Model, prefix+"MODEL")
		setString(&c.BaseURL, prefix+"BASE_URL")
		cfg.Capabilities[name] = c
	}
}

func envName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// validate checks required fields and decodes capability parameters.
func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("storage.backend %q must be one of file, redis, memory", cfg.Storage.Backend)
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Storage.LockTTL <= 0 {
		return errors.New("storage.lock_ttl must be positive")
	}
	for _, required := range []string{CapabilityOrchestrator, CapabilityTask} {
		if _, ok := cfg.Capabilities[required]; !ok {
			return fmt.Errorf("capabilities.%s is required", required)
		}
	}
	for name, c := range cfg.Capabilities {
		if !slices.Contains(Providers, c.Provider) {
			return fmt.Errorf("capabilities.%s: unknown provider %q", name, c.Provider)
		}
		if c.Provider != ProviderEcho && c.Model == "" {
			return fmt.Errorf("capabilities.%s: model is required for provider %s", name, c.Provider)
		}
		params, err := decodeParameters(c.Parameters)
		if err != nil {
			return fmt.Errorf("capabilities.%s.parameters: %w", name, err)
		}
		c.Params = params
		cfg.Capabilities[name] = c
	}
	return nil
}

func decodeParameters(raw map[string]any) (Parameters, error) {
	var params Parameters
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return params, err
	}
	if err := dec.Decode(raw); err != nil {
		return params, err
	}
	return params, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
