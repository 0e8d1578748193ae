package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/shineymark/internal/export"
)

// Environment variables that override the config file.
const (
	EnvSaveDir      = "SHINEYMARK_SAVE_DIR"
	EnvOutputFormat = "SHINEYMARK_OUTPUT_FORMAT"
	EnvLineColor    = "SHINEYMARK_LINE_COLOR"
	EnvThickness    = "SHINEYMARK_THICKNESS"
	EnvShadow       = "SHINEYMARK_SHADOW"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string
	// EnvFile is an optional .env file read before the process
	// environment. Process variables win.
	EnvFile string
	Getenv  func(string) string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
		EnvFile:      ".env",
		Getenv:       os.Getenv,
	}
}

// Load reads the config file, if any, then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, l.lookup()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) lookup() func(string) string {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	values := map[string]string{}
	if l.EnvFile != "" {
		if m, err := godotenv.Read(l.EnvFile); err == nil {
			values = m
		}
	}
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return values[key]
	}
}

// ApplyEnv overrides cfg with the SHINEYMARK_* variables returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvSaveDir)); v != "" {
		cfg.SaveDir = v
	}
	if v := strings.TrimSpace(getenv(EnvOutputFormat)); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOutputFormat, err)
		}
		cfg.OutputFormat = f
	}
	if v := strings.TrimSpace(getenv(EnvLineColor)); v != "" {
		c, err := ParseColor(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLineColor, err)
		}
		cfg.Style.LineColor = c
	}
	if v := strings.TrimSpace(getenv(EnvThickness)); v != "" {
		n, err := parsePositive(EnvThickness, v)
		if err != nil {
			return err
		}
		cfg.Style.Thickness = n
	}
	if v := strings.TrimSpace(getenv(EnvShadow)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShadow, err)
		}
		cfg.Export.Shadow = b
	}
	return nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".shineymarkrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.rc", "shineymark.rc"} {
		p := filepath.Join(dir, "shineymark", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
