/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads quick.yaml registrations and registers them with a registry.
package config

import (
	"fmt"
	"os"

	"github.com/suparena/quickcontext/errors"
	"gopkg.in/yaml.v3"
)

// Config is the content of a quick.yaml file.
type Config struct {
	AWS     AWSConfig      `yaml:"aws"`
	Entries []EntryConfig  `yaml:"entries"`
	Values  map[string]any `yaml:"values"`
}

// AWSConfig configures the DynamoDB client shared by all entries.
type AWSConfig struct {
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	// Table is used by entries that do not name their own.
	Table     string `yaml:"table,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// EntryConfig registers one model entry backed by a DynamoDB table.
type EntryConfig struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table,omitempty"`
	LookupField string `yaml:"lookup_field"`
	// IndexMap holds the key templates, e.g. PK: "USER#{username}".
	IndexMap   map[string]string `yaml:"index_map,omitempty"`
	EntityType string            `yaml:"entity_type,omitempty"`
	GSIs       []GSIConfig       `yaml:"gsi,omitempty"`
}

// GSIConfig names a global secondary index usable for lookups.
type GSIConfig struct {
	IndexName    string `yaml:"index_name"`
	PartitionKey string `yaml:"partition_key"`
}

// DefaultConfig returns an empty configuration.
func DefaultConfig() *Config {
	return &Config{
		Values: map[string]any{},
	}
}

// LoadFromFile decodes a YAML file on top of DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Values == nil {
		cfg.Values = map[string]any{}
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyDefaults fills entry tables from aws.table.
func (c *Config) ApplyDefaults() {
	for i := range c.Entries {
		if c.Entries[i].Table == "" {
			c.Entries[i].Table = c.AWS.Table
		}
	}
}

// Validate checks that every entry can be registered.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Entries)+len(c.Values))
	for name := range c.Values {
		if name == "" {
			return errors.NewValidationError("values", "name must not be empty")
		}
		seen[name] = true
	}

	for i, e := range c.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		switch {
		case e.Name == "":
			return errors.NewValidationError(field+".name", "is required")
		case e.LookupField == "":
			return errors.NewValidationError(field+".lookup_field", "is required")
		case e.Table == "":
			return errors.NewValidationError(field+".table", "is required when aws.table is not set")
		case seen[e.Name]:
			return errors.NewValidationError(field+".name", fmt.Sprintf("%q is defined more than once", e.Name))
		}
		seen[e.Name] = true

		for j, g := range e.GSIs {
			if g.IndexName == "" || g.PartitionKey == "" {
				return errors.NewValidationError(fmt.Sprintf("%s.gsi[%d]", field, j), "index_name and partition_key are required")
			}
		}
	}
	return nil
}
