// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration.
//
// Settings are layered: built-in defaults, then config.yaml in the XDG config
// dir, then an optional .env file, then SFQUERY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"sfquery/cli/internal/xdg"
)

const (
	DefaultSOAPURL         = "https://login.salesforce.com/services/Soap/u/35.0"
	DefaultRESTPathVersion = "/services/data/v35.0/"
	DefaultLoginRetries    = 3

	envPrefix = "sfquery"
)

// Config holds the CLI settings.
type Config struct {
	SOAPURL         string `yaml:"soap_url" envconfig:"SOAP_URL"`
	RESTPathVersion string `yaml:"rest_url_ver" envconfig:"REST_URL_VER"`
	Username        string `yaml:"username,omitempty" envconfig:"USERNAME"`
	Password        string `yaml:"password,omitempty" envconfig:"PASSWORD"`

	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	// TimeoutSeconds bounds each HTTP round-trip; 0 leaves the transport default.
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS"`
	// RequestsPerSecond throttles REST calls; 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	LoginRetries      int     `yaml:"login_retries" envconfig:"LOGIN_RETRIES"`
}

// Defaults returns the configuration used when no source overrides a value.
func Defaults() Config {
	return Config{
		SOAPURL:         DefaultSOAPURL,
		RESTPathVersion: DefaultRESTPathVersion,
		LogLevel:        "info",
		LoginRetries:    DefaultLoginRetries,
	}
}

// Timeout returns the HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HasCredentials reports whether both username and password are configured.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from the default path.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		c := Defaults()
		return c, applyEnv(&c)
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from path. A missing file yields defaults.
// When the file exists but cannot be read or parsed, the returned Config still
// holds usable values (defaults plus environment) alongside the error, so
// callers may warn and carry on.
func LoadFrom(path string) (Config, error) {
	c := Defaults()
	fileErr := readFile(path, &c)
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	c.fillBlanks()
	return c, fileErr
}

func readFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	fromFile := Defaults()
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	*c = fromFile
	return nil
}

func applyEnv(c *Config) error {
	// A .env next to the working directory is optional.
	_ = godotenv.Load()
	if err := envconfig.Process(envPrefix, c); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

// fillBlanks restores defaults for settings that a source explicitly blanked.
func (c *Config) fillBlanks() {
	d := Defaults()
	if c.SOAPURL == "" {
		c.SOAPURL = d.SOAPURL
	}
	if c.RESTPathVersion == "" {
		c.RESTPathVersion = d.RESTPathVersion
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LoginRetries <= 0 {
		c.LoginRetries = d.LoginRetries
	}
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to path with 0600 permissions.
func SaveTo(path string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
