// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, so no code execution is possible.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"ytresolve/internal/media"
)

const appName = "ytresolve"

// Config holds all application configuration.
type Config struct {
	Client      string        `toml:"client" validate:"clientcontext"`
	MaxBitrate  int           `toml:"max_bitrate" validate:"gte=0"`
	Timeout     time.Duration `toml:"timeout" validate:"gte=0"`
	HL          string        `toml:"hl" validate:"required,min=2,max=8"`
	GL          string        `toml:"gl" validate:"required,len=2"`
	Player      string        `toml:"player" validate:"oneof=mpv vlc iina celluloid"`
	DownloadDir string        `toml:"download_dir" validate:"required"`
	History     bool          `toml:"history"`
	Debug       bool          `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Client:      "android_embedded",
		MaxBitrate:  0,
		Timeout:     15 * time.Second,
		HL:          "en",
		GL:          "US",
		Player:      "mpv",
		DownloadDir: "~/Videos/ytresolve",
		History:     true,
		Debug:       false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("clientcontext", func(fl validator.FieldLevel) bool {
		_, err := media.ParseClientContext(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	c.Player = strings.ToLower(c.Player)

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "clientcontext":
		return fmt.Sprintf("unsupported client %q (valid: android_embedded, android, web, web_embedded)", fe.Value())
	case "oneof":
		return fmt.Sprintf("unsupported %s %q (valid: %s)", strings.ToLower(fe.Field()), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required":
		return fmt.Sprintf("%s cannot be empty", strings.ToLower(fe.Field()))
	default:
		return fmt.Sprintf("invalid %s %v (%s=%s)", strings.ToLower(fe.Field()), fe.Value(), fe.Tag(), fe.Param())
	}
}

// ClientContext returns the parsed client setting.
func (c *Config) ClientContext() media.ClientContext {
	cc, err := media.ParseClientContext(c.Client)
	if err != nil {
		return media.AndroidEmbedded
	}
	return cc
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.db"), nil
}
