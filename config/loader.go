/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigFile is read when no path is given and it exists.
	DefaultConfigFile = "quick.yaml"
	// DefaultEnvFile is read for QUICK_AWS_* settings when it exists.
	DefaultEnvFile = ".env"
)

// Environment variables overriding the aws section.
const (
	EnvRegion    = "QUICK_AWS_REGION"
	EnvEndpoint  = "QUICK_AWS_ENDPOINT"
	EnvTable     = "QUICK_AWS_TABLE"
	EnvAccessKey = "QUICK_AWS_ACCESS_KEY"
	EnvSecretKey = "QUICK_AWS_SECRET_KEY"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	envFile string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, envFile: DefaultEnvFile}
}

// WithEnvFile changes the dotenv file consulted for QUICK_AWS_* settings.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. The YAML file at path (quick.yaml when path is empty and the file exists)
// 3. Variables from the dotenv file
// 4. Process environment variables
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		l.logger.Debug("Loaded config file", slog.String("path", path), slog.Int("entries", len(fileCfg.Entries)))
		cfg = fileCfg
	} else {
		l.logger.Debug("No config file found")
	}

	dotenv := map[string]string{}
	if l.envFile != "" {
		vars, err := godotenv.Read(l.envFile)
		switch {
		case err == nil:
			l.logger.Debug("Loaded env file", slog.String("path", l.envFile))
			dotenv = vars
		case !os.IsNotExist(err):
			l.logger.Warn("Failed to load env file", slog.String("path", l.envFile), slog.String("error", err.Error()))
		}
	}

	ApplyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	})

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path with a default Loader.
func Load(path string) (*Config, error) {
	return NewLoader(nil).Load(path)
}

// ApplyEnv overrides aws settings with the variables lookup reports as set.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvRegion, &cfg.AWS.Region},
		{EnvEndpoint, &cfg.AWS.Endpoint},
		{EnvTable, &cfg.AWS.Table},
		{EnvAccessKey, &cfg.AWS.AccessKey},
		{EnvSecretKey, &cfg.AWS.SecretKey},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok {
			*o.target = v
		}
	}
}
