// Package config loads the flowcanvas configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up when no --config flag is given.
const DefaultPath = "flowcanvas.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the root of the configuration file.
type Config struct {
	Log         LogConfig    `yaml:"log" json:"log"`
	Catalog     string       `yaml:"catalog" json:"catalog"`
	Tools       string       `yaml:"tools" json:"tools"`
	StrictPorts bool         `yaml:"strict_ports" json:"strict_ports"`
	Parallelism int          `yaml:"parallelism" json:"parallelism"`
	Store       StoreConfig  `yaml:"store" json:"store"`
	HTTP        HTTPConfig   `yaml:"http" json:"http"`
	OpenAI      OpenAIConfig `yaml:"openai" json:"openai"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver" json:"driver"`
	Path   string      `yaml:"path" json:"path"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`

	// EncryptionKeyEnv names the variable holding a base64 AES-256 key. When
	// set, node data is encrypted at rest.
	EncryptionKeyEnv string `yaml:"encryption_key_env" json:"encryption_key_env"`
	// Redact lists patterns of data keys whose values are masked on save.
	Redact []string `yaml:"redact" json:"redact"`
}

// EncryptionKey reads the key variable, empty when encryption is off.
func (s StoreConfig) EncryptionKey() string {
	if s.EncryptionKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.EncryptionKeyEnv)
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

// OpenAIConfig configures the generation executors.
// When the variable named by APIKeyEnv is empty the executors run in mock mode.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" json:"api_key_env"`
	OutputDir   string `yaml:"output_dir" json:"output_dir"`
	TextModel   string `yaml:"text_model" json:"text_model"`
	ImageModel  string `yaml:"image_model" json:"image_model"`
	SpeechModel string `yaml:"speech_model" json:"speech_model"`
}

// APIKey resolves the key from the environment.
func (c OpenAIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:         LogConfig{Level: "info", Format: "text"},
		Parallelism: 1,
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   ".flowcanvas/workflows",
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "flowcanvas:workflow:"},
		},
		HTTP:   HTTPConfig{Port: 8080},
		OpenAI: OpenAIConfig{APIKeyEnv: "OPENAI_API_KEY"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// YAML is a superset of JSON, so .json files go through the same decoder.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Driver) {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism: must be at least 1, got %d", c.Parallelism))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port: out of range: %d", c.HTTP.Port))
	}
	return errors.Join(errs...)
}
