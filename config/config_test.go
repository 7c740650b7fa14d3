/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/quickcontext"
	"github.com/suparena/quickcontext/datastore"
	"github.com/suparena/quickcontext/datastore/ddb"
	"github.com/suparena/quickcontext/datastore/mock"
	"github.com/suparena/quickcontext/errors"
	"github.com/suparena/quickcontext/storagemodels"
)

const sampleYAML = `
aws:
  region: eu-west-1
  table: quick
entries:
  - name: user
    lookup_field: username
    index_map:
      PK: "USER#{username}"
      SK: "USER#{username}"
  - name: team
    table: teams
    lookup_field: slug
    entity_type: Team
    gsi:
      - index_name: GSI1
        partition_key: GSI1PK
values:
  site_name: Example
  links:
    home: https://example.com
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearAWSEnv(t *testing.T) {
	for _, key := range []string{EnvRegion, EnvEndpoint, EnvTable, EnvAccessKey, EnvSecretKey} {
		t.Setenv(key, "")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quick.yaml", sampleYAML)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	require.Len(t, cfg.Entries, 2)
	assert.Equal(t, "USER#{username}", cfg.Entries[0].IndexMap["PK"])
	assert.Equal(t, "Team", cfg.Entries[1].EntityType)
	assert.Equal(t, "GSI1PK", cfg.Entries[1].GSIs[0].PartitionKey)
	assert.Equal(t, "Example", cfg.Values["site_name"])
	assert.Equal(t, map[string]any{"home": "https://example.com"}, cfg.Values["links"])

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Malformed", func(t *testing.T) {
		bad := writeFile(t, t.TempDir(), "bad.yaml", "entries: [")
		_, err := LoadFromFile(bad)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AWS:     AWSConfig{Table: "quick"},
			Entries: []EntryConfig{{Name: "user", LookupField: "username"}},
			Values:  map[string]any{"site_name": "Example"},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid config", modify: func(c *Config) {}},
		{name: "missing name", modify: func(c *Config) { c.Entries[0].Name = "" }, wantErr: true},
		{name: "missing lookup field", modify: func(c *Config) { c.Entries[0].LookupField = "" }, wantErr: true},
		{name: "missing table", modify: func(c *Config) { c.AWS.Table = "" }, wantErr: true},
		{name: "entry table without default", modify: func(c *Config) { c.AWS.Table = ""; c.Entries[0].Table = "users" }},
		{
			name: "duplicate entry",
			modify: func(c *Config) {
				c.Entries = append(c.Entries, EntryConfig{Name: "user", LookupField: "email"})
			},
			wantErr: true,
		},
		{name: "entry shadows value", modify: func(c *Config) { c.Values["user"] = "x" }, wantErr: true},
		{
			name:    "incomplete gsi",
			modify:  func(c *Config) { c.Entries[0].GSIs = []GSIConfig{{IndexName: "GSI1"}} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoaderLoad(t *testing.T) {
	t.Run("DefaultsTableFromAWS", func(t *testing.T) {
		clearAWSEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "quick.yaml", sampleYAML)

		cfg, err := NewLoader(nil).WithEnvFile(filepath.Join(dir, ".env")).Load(path)
		require.NoError(t, err)
		assert.Equal(t, "quick", cfg.Entries[0].Table)
		assert.Equal(t, "teams", cfg.Entries[1].Table)
	})

	t.Run("EnvFileOverridesFile", func(t *testing.T) {
		clearAWSEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "quick.yaml", sampleYAML)
		envFile := writeFile(t, dir, ".env", "QUICK_AWS_REGION=us-west-2\nQUICK_AWS_ENDPOINT=http://localhost:8000\n")

		cfg, err := NewLoader(nil).WithEnvFile(envFile).Load(path)
		require.NoError(t, err)
		assert.Equal(t, "us-west-2", cfg.AWS.Region)
		assert.Equal(t, "http://localhost:8000", cfg.AWS.Endpoint)
		assert.Equal(t, "quick", cfg.AWS.Table)
	})

	t.Run("ProcessEnvWins", func(t *testing.T) {
		clearAWSEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "quick.yaml", sampleYAML)
		envFile := writeFile(t, dir, ".env", "QUICK_AWS_TABLE=from-dotenv\n")
		t.Setenv(EnvTable, "from-env")

		cfg, err := NewLoader(nil).WithEnvFile(envFile).Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.AWS.Table)
		assert.Equal(t, "from-env", cfg.Entries[0].Table)
	})

	t.Run("EnvSuppliesMissingTable", func(t *testing.T) {
		clearAWSEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "quick.yaml", "entries:\n  - name: user\n    lookup_field: username\n")
		t.Setenv(EnvTable, "users")

		cfg, err := NewLoader(nil).WithEnvFile("").Load(path)
		require.NoError(t, err)
		assert.Equal(t, "users", cfg.Entries[0].Table)
	})

	t.Run("InvalidFile", func(t *testing.T) {
		clearAWSEnv(t)
		dir := t.TempDir()
		path := writeFile(t, dir, "quick.yaml", "entries:\n  - name: user\n")

		_, err := NewLoader(nil).WithEnvFile("").Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromFile(writeFile(t, dir, "quick.yaml", sampleYAML))
	require.NoError(t, err)

	out := filepath.Join(dir, "copy.yaml")
	require.NoError(t, cfg.SaveToFile(out))

	again, err := LoadFromFile(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "quick.yaml", sampleYAML)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	cfg.ApplyDefaults()

	stores := map[string]*mock.DataStore[storagemodels.Record]{}
	factory := func(_ context.Context, e EntryConfig) (datastore.DataStore[storagemodels.Record], error) {
		s := mock.New[storagemodels.Record]()
		stores[e.Name] = s
		return s, nil
	}

	reg := quickcontext.NewRegistry()
	require.NoError(t, Apply(ctx, cfg, reg, factory))

	assert.Equal(t, []string{"links", "site_name", "user", "team"}, reg.Names())

	require.NoError(t, stores["user"].Put(ctx, storagemodels.Record{"username": "root", "email": "root@example.com"}))
	entry, err := quickcontext.Model[storagemodels.Record](reg, "user")
	require.NoError(t, err)
	assert.Equal(t, "username", entry.LookupField())

	rec, err := entry.Get(ctx, "root")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "root@example.com", (*rec)["email"])

	t.Run("SecondApplyConflicts", func(t *testing.T) {
		err := Apply(ctx, cfg, reg, factory)
		assert.True(t, errors.IsDuplicateEntry(err))
	})

	t.Run("FactoryError", func(t *testing.T) {
		failing := func(context.Context, EntryConfig) (datastore.DataStore[storagemodels.Record], error) {
			return nil, assert.AnError
		}
		err := Apply(ctx, &Config{Entries: cfg.Entries}, quickcontext.NewRegistry(), failing)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "entry user")
	})
}

func TestDynamoDBFactory(t *testing.T) {
	ctx := context.Background()
	factory, err := DynamoDBFactory(ctx, AWSConfig{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:8000",
		AccessKey: "local",
		SecretKey: "local",
	}, nil)
	require.NoError(t, err)

	store, err := factory(ctx, EntryConfig{
		Name:        "user",
		Table:       "users",
		LookupField: "username",
		IndexMap:    map[string]string{"PK": "USER#{username}"},
		GSIs:        []GSIConfig{{IndexName: "ByEmail", PartitionKey: "EmailPK"}},
	})
	require.NoError(t, err)

	ds, ok := store.(*ddb.DynamodbDataStore[storagemodels.Record])
	require.True(t, ok)
	assert.Equal(t, "users", ds.TableName())
}
