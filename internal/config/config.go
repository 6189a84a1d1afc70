// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all phonebook configuration.
type Config struct {
	Book    Book    `yaml:"book"`
	Display Display `yaml:"display"`
	Log     Log     `yaml:"log"`
}

// Book holds persistence settings.
type Book struct {
	Path   string `yaml:"path" validate:"required"`
	Format string `yaml:"format" validate:"oneof=auto json yaml sqlite"` // "auto" picks by file extension
}

// Display holds console settings.
type Display struct {
	PageSize int  `yaml:"page_size" validate:"gte=1"`
	NoTUI    bool `yaml:"no_tui"` // Force the plain line console
}

// Log holds log file settings.
type Log struct {
	File       string `yaml:"file" validate:"required"`
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Book: Book{
			Path:   ".phonebook/book.json",
			Format: "auto",
		},
		Display: Display{
			PageSize: 2,
		},
		Log: Log{
			File:       ".phonebook/phonebook.log",
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	// Report the first violation; the rest usually follow from the same typo.
	fe := verrs[0]
	path := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("config: %s cannot be empty", path)
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "gte":
		return fmt.Errorf("config: %s must be at least %s, got %v", path, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("config: %s failed %s validation", path, fe.Tag())
	}
}

// envOverrides lists the supported environment variables.
type envOverrides struct {
	BookPath   *string `env:"PHONEBOOK_BOOK_PATH"`
	BookFormat *string `env:"PHONEBOOK_BOOK_FORMAT"`
	PageSize   *int    `env:"PHONEBOOK_PAGE_SIZE"`
	NoTUI      *bool   `env:"PHONEBOOK_NO_TUI"`
	LogFile    *string `env:"PHONEBOOK_LOG_FILE"`
	LogLevel   *string `env:"PHONEBOOK_LOG_LEVEL"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: PHONEBOOK_BOOK_PATH, PHONEBOOK_BOOK_FORMAT,
// PHONEBOOK_PAGE_SIZE, PHONEBOOK_NO_TUI, PHONEBOOK_LOG_FILE, PHONEBOOK_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	if o.BookPath != nil && *o.BookPath != "" {
		c.Book.Path = *o.BookPath
	}
	if o.BookFormat != nil && *o.BookFormat != "" {
		c.Book.Format = *o.BookFormat
	}
	if o.PageSize != nil {
		c.Display.PageSize = *o.PageSize
	}
	if o.NoTUI != nil {
		c.Display.NoTUI = *o.NoTUI
	}
	if o.LogFile != nil && *o.LogFile != "" {
		c.Log.File = *o.LogFile
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		c.Log.Level = *o.LogLevel
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Book    *rawBook    `yaml:"book"`
	Display *rawDisplay `yaml:"display"`
	Log     *rawLog     `yaml:"log"`
}

type rawBook struct {
	Path   *string `yaml:"path"`
	Format *string `yaml:"format"`
}

type rawDisplay struct {
	PageSize *int  `yaml:"page_size"`
	NoTUI    *bool `yaml:"no_tui"`
}

type rawLog struct {
	File       *string `yaml:"file"`
	Level      *string `yaml:"level"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Book != nil {
		if layer.Book.Path != nil {
			c.Book.Path = *layer.Book.Path
		}
		if layer.Book.Format != nil {
			c.Book.Format = *layer.Book.Format
		}
	}
	if layer.Display != nil {
		if layer.Display.PageSize != nil {
			c.Display.PageSize = *layer.Display.PageSize
		}
		if layer.Display.NoTUI != nil {
			c.Display.NoTUI = *layer.Display.NoTUI
		}
	}
	if layer.Log != nil {
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.MaxSizeMB != nil {
			c.Log.MaxSizeMB = *layer.Log.MaxSizeMB
		}
		if layer.Log.MaxBackups != nil {
			c.Log.MaxBackups = *layer.Log.MaxBackups
		}
	}
}
