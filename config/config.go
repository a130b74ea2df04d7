// Package config loads the service configuration from defaults, an
// optional YAML file and the environment, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the YAML file to load.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPath is read when CONFIG_PATH is unset and the file exists.
const DefaultConfigPath = "config.yaml"

// Storage drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Mux      MuxConfig      `koanf:"mux"`
	Storage  StorageConfig  `koanf:"storage"`
	Logging  LoggingConfig  `koanf:"logging"`
	Backfill BackfillConfig `koanf:"backfill"`
}

type ServerConfig struct {
	Port        string   `koanf:"port" validate:"required,numeric"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// MuxConfig holds the API credentials and webhook settings. The API client
// is only built when both token fields are set.
type MuxConfig struct {
	TokenID            string        `koanf:"token_id"`
	TokenSecret        string        `koanf:"token_secret"`
	BaseURL            string        `koanf:"base_url" validate:"omitempty,url"`
	WebhookSecret      string        `koanf:"webhook_secret" validate:"required_if=VerifySignature true"`
	VerifySignature    bool          `koanf:"verify_signature"`
	SignatureTolerance time.Duration `koanf:"signature_tolerance" validate:"gte=0"`
	RequestsPerSecond  float64       `koanf:"requests_per_second" validate:"gte=0"`
}

type StorageConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=mongo memory"`
	MongoURI     string `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	Database     string `koanf:"database" validate:"required_if=Driver mongo"`
	Transactions bool   `koanf:"transactions"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type BackfillConfig struct {
	MaxAssets            int    `koanf:"max_assets" validate:"min=1"`
	DefaultUserID        string `koanf:"default_user_id"`
	IncludeVideoMetadata bool   `koanf:"include_video_metadata"`
}

// HasCredentials reports whether the Mux API can be called.
func (m MuxConfig) HasCredentials() bool {
	return m.TokenID != "" && m.TokenSecret != ""
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			CORSOrigins: []string{"*"},
		},
		Mux: MuxConfig{
			VerifySignature:    true,
			SignatureTolerance: 5 * time.Minute,
			RequestsPerSecond:  5,
		},
		Storage: StorageConfig{
			Driver:   DriverMongo,
			MongoURI: "mongodb://localhost:27017",
			Database: "muxsync",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Backfill: BackfillConfig{
			MaxAssets:            200,
			IncludeVideoMetadata: true,
		},
	}
}

var envMappings = map[string]string{
	"mux_token_id":         "mux.token_id",
	"mux_token_secret":     "mux.token_secret",
	"mux_webhook_secret":   "mux.webhook_secret",
	"mux_verify_signature": "mux.verify_signature",
	"mux_base_url":         "mux.base_url",
	"mongo_uri":            "storage.mongo_uri",
	"mongo_database":       "storage.database",
	"mongo_transactions":   "storage.transactions",
	"storage_driver":       "storage.driver",
	"port":                 "server.port",
	"cors_origins":         "server.cors_origins",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"backfill_max_assets":  "backfill.max_assets",
	"default_user_id":      "backfill.default_user_id",
}

// envTransformFunc maps a known environment variable to its config path.
// Unknown variables are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment. The result is validated.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if origins, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitList(origins)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
