// Package config resolves earworm settings from defaults, a YAML file, the
// environment (optionally seeded from .env) and command-line overrides, in
// increasing priority.
package config

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/store"
)

// Progress backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// DefaultCatalog is the catalog file name, resolved against the working directory.
const DefaultCatalog = "music_qa.csv"

// ErrInvalidConfig is returned when a setting has an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds resolved settings.
type Config struct {
	Catalog         string `yaml:"catalog"`
	DB              string `yaml:"db"`
	User            string `yaml:"user"`
	PlayMode        string `yaml:"play_mode"`
	ProgressBackend string `yaml:"progress_backend"`
	ProgressDir     string `yaml:"progress_dir"`
	LogFile         string `yaml:"log_file"`
	LogLevel        string `yaml:"log_level"`
	OpenBrowser     bool   `yaml:"open_browser"`
}

// fileConfig mirrors Config with optional fields so an absent key keeps the
// lower-priority value.
type fileConfig struct {
	Catalog         *string `yaml:"catalog"`
	DB              *string `yaml:"db"`
	User            *string `yaml:"user"`
	PlayMode        *string `yaml:"play_mode"`
	ProgressBackend *string `yaml:"progress_backend"`
	ProgressDir     *string `yaml:"progress_dir"`
	LogFile         *string `yaml:"log_file"`
	LogLevel        *string `yaml:"log_level"`
	OpenBrowser     *bool   `yaml:"open_browser"`
}

// Overrides are command-line values. Empty strings and nil pointers are unset.
type Overrides struct {
	Catalog         string
	DB              string
	User            string
	PlayMode        string
	ProgressBackend string
	ProgressDir     string
	LogFile         string
	OpenBrowser     *bool
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist when set.
	File string
	// DotEnv is the .env file to seed the environment from. Empty means
	// ".env" in the working directory; a missing file is ignored.
	DotEnv string
}

// Defaults returns the built-in settings.
func Defaults() (*Config, error) {
	dataDir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Catalog:         DefaultCatalog,
		DB:              filepath.Join(dataDir, "earworm.db"),
		ProgressBackend: BackendSQLite,
		ProgressDir:     dataDir,
		LogFile:         filepath.Join(dataDir, "earworm.log"),
		LogLevel:        "info",
		OpenBrowser:     true,
	}, nil
}

// Load resolves the configuration. Command-line overrides are applied by the
// caller with Apply.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	path, required := opts.File, opts.File != ""
	if path == "" {
		path = os.Getenv("EARWORM_CONFIG")
		required = path != ""
	}
	if path == "" {
		if path, err = DefaultFilePath(); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeFile(path, required); err != nil {
		return nil, err
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultFilePath returns $XDG_CONFIG_HOME/earworm/config.yaml, falling back
// to ~/.config/earworm/config.yaml.
func DefaultFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "earworm", "config.yaml"), nil
}

func loadDotEnv(path string) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", cmp.Or(path, ".env"), err)
	}
	return nil
}

func (c *Config) mergeFile(path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Catalog, fc.Catalog)
	setString(&c.DB, fc.DB)
	setString(&c.User, fc.User)
	setString(&c.PlayMode, fc.PlayMode)
	setString(&c.ProgressBackend, fc.ProgressBackend)
	setString(&c.ProgressDir, fc.ProgressDir)
	setString(&c.LogFile, fc.LogFile)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.OpenBrowser != nil {
		c.OpenBrowser = *fc.OpenBrowser
	}
	return nil
}

func (c *Config) mergeEnv() error {
	envString(&c.Catalog, "EARWORM_CATALOG")
	envString(&c.DB, "EARWORM_DB")
	envString(&c.User, "EARWORM_USER")
	envString(&c.PlayMode, "EARWORM_PLAY_MODE")
	envString(&c.ProgressBackend, "EARWORM_PROGRESS_BACKEND")
	envString(&c.ProgressDir, "EARWORM_PROGRESS_DIR")
	envString(&c.LogFile, "EARWORM_LOG_FILE")
	envString(&c.LogLevel, "EARWORM_LOG_LEVEL")
	if v := os.Getenv("EARWORM_OPEN_BROWSER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: EARWORM_OPEN_BROWSER=%q", ErrInvalidConfig, v)
		}
		c.OpenBrowser = b
	}
	return nil
}

// Apply layers command-line overrides on top of c.
func (c *Config) Apply(o Overrides) {
	setString(&c.Catalog, nonEmpty(o.Catalog))
	setString(&c.DB, nonEmpty(o.DB))
	setString(&c.User, nonEmpty(o.User))
	setString(&c.PlayMode, nonEmpty(o.PlayMode))
	setString(&c.ProgressBackend, nonEmpty(o.ProgressBackend))
	setString(&c.ProgressDir, nonEmpty(o.ProgressDir))
	setString(&c.LogFile, nonEmpty(o.LogFile))
	if o.OpenBrowser != nil {
		c.OpenBrowser = *o.OpenBrowser
	}
}

// Validate checks values that would otherwise fail late. The play mode is
// checked when a session starts.
func (c *Config) Validate() error {
	switch c.ProgressBackend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("%w: progress_backend must be %q or %q, got %q",
			ErrInvalidConfig, BackendSQLite, BackendJSON, c.ProgressBackend)
	}
	if c.Catalog == "" {
		return fmt.Errorf("%w: catalog path is empty", ErrInvalidConfig)
	}
	if c.User != "" {
		if err := progress.ValidateUser(c.User); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
