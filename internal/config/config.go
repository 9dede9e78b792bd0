// Package config loads refsync settings from struct defaults, an optional
// TOML file and REFSYNC_* environment variables, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "REFSYNC_"

	// DirName is the per-user configuration directory under $HOME.
	DirName = ".refsync"

	// FileName is the configuration file inside DirName.
	FileName = "config.toml"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete refsync configuration.
type Config struct {
	IGDB    IGDBConfig    `koanf:"igdb"`
	Storage StorageConfig `koanf:"storage"`
	Sync    SyncConfig    `koanf:"sync"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// IGDBConfig holds the API endpoint and credentials.
type IGDBConfig struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	TokenURL          string        `koanf:"token_url" validate:"required,url"`
	ValidateURL       string        `koanf:"validate_url" validate:"required,url"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries        int           `koanf:"max_retries" validate:"gte=0,lte=10"`
}

// StorageConfig selects and configures the sink.
type StorageConfig struct {
	Driver  string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DataDir string `koanf:"data_dir"`
	DSN     string `koanf:"dsn" validate:"required_if=Driver postgres"`
}

// SyncConfig tunes the run loop. PageSize defaults to 500, the canonical IGDB
// page size; smaller values only shrink batches.
type SyncConfig struct {
	PageSize int `koanf:"page_size" validate:"gt=0,lte=500"`
}

// MetricsConfig controls the textfile export.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		IGDB: IGDBConfig{
			BaseURL:           "https://api.igdb.com/v4",
			TokenURL:          "https://id.twitch.tv/oauth2/token",
			ValidateURL:       "https://id.twitch.tv/oauth2/validate",
			RequestsPerSecond: 4,
			Timeout:           30 * time.Second,
			MaxRetries:        3,
		},
		Storage: StorageConfig{
			Driver:  DriverSQLite,
			DataDir: defaultDataDir(),
		},
		Sync: SyncConfig{
			PageSize: 500,
		},
	}
}

// DefaultPath returns ~/.refsync/config.toml, or "" when $HOME is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName, FileName)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DirName, "data")
}

// Load builds the configuration. An explicit path must exist; the default
// path is skipped when missing.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), TOML()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps REFSYNC_IGDB_CLIENT_ID to igdb.client_id. The first segment
// is the section; the rest is the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireCredentials reports whether the IGDB credentials are set.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.IGDB.ClientID) == "" || strings.TrimSpace(c.IGDB.ClientSecret) == "" {
		return fmt.Errorf("igdb credentials missing: set igdb.client_id and igdb.client_secret in %s or %sIGDB_CLIENT_ID and %sIGDB_CLIENT_SECRET",
			FileName, EnvPrefix, EnvPrefix)
	}
	return nil
}
