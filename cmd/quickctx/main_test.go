/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/quickcontext/config"
	"github.com/suparena/quickcontext/datastore"
	"github.com/suparena/quickcontext/datastore/mock"
	"github.com/suparena/quickcontext/errors"
	"github.com/suparena/quickcontext/storagemodels"
)

const testConfig = `
aws:
  table: quick
entries:
  - name: user
    lookup_field: username
  - name: member
    lookup_field: profile
values:
  site_name: Example
`

func memoryFactory(_ context.Context, _ config.AWSConfig, _ *slog.Logger) (config.StoreFactory, error) {
	seed := map[string][]storagemodels.Record{
		"user": {
			{"username": "root", "email": "root@example.com", "active": true},
			{"username": "alice", "email": "alice@gmail.com", "active": true},
			{"username": "bob", "email": "bob@gmail.com", "active": false},
		},
		"member": {
			{"name": "ana", "profile": map[string]any{"city": "Lisbon"}},
			{"name": "ben", "profile": map[string]any{"city": "Porto"}},
		},
	}
	return func(ctx context.Context, e config.EntryConfig) (datastore.DataStore[storagemodels.Record], error) {
		store := mock.New[storagemodels.Record]()
		for _, r := range seed[e.Name] {
			if err := store.Put(ctx, r); err != nil {
				return nil, err
			}
		}
		return store, nil
	}, nil
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{config.EnvRegion, config.EnvEndpoint, config.EnvTable, config.EnvAccessKey, config.EnvSecretKey} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "quick.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

	cmd := newRootCmd(&app{newFactory: memoryFactory})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNamesCommand(t *testing.T) {
	out, err := run(t, "names")
	require.NoError(t, err)
	assert.Equal(t, "site_name\tvalue\nuser\tmodel\tlookup=username\nmember\tmodel\tlookup=profile\n", out)
}

func TestGetCommand(t *testing.T) {
	t.Run("Record", func(t *testing.T) {
		out, err := run(t, "get", "user", "root")
		require.NoError(t, err)
		assert.Contains(t, out, `"email": "root@example.com"`)
	})

	t.Run("Absent", func(t *testing.T) {
		out, err := run(t, "get", "user", "ghost")
		require.NoError(t, err)
		assert.Equal(t, "null\n", out)
	})

	t.Run("PlainValue", func(t *testing.T) {
		out, err := run(t, "get", "site_name")
		require.NoError(t, err)
		assert.Equal(t, "\"Example\"\n", out)
	})

	t.Run("ModelWithoutValue", func(t *testing.T) {
		_, err := run(t, "get", "user")
		assert.Error(t, err)
	})

	t.Run("UnknownName", func(t *testing.T) {
		_, err := run(t, "get", "nobody", "x")
		assert.True(t, errors.IsEntryNotFound(err))
	})
}

func TestFilterCommand(t *testing.T) {
	t.Run("NestedField", func(t *testing.T) {
		out, err := run(t, "filter", "member", "city", "Porto")
		require.NoError(t, err)
		assert.Contains(t, out, `"name": "ben"`)
		assert.NotContains(t, out, `"ana"`)
	})

	t.Run("NoMatches", func(t *testing.T) {
		out, err := run(t, "filter", "member", "city", "Faro")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("ScalarLookupField", func(t *testing.T) {
		// username is a string, so username__active is not traversable.
		_, err := run(t, "filter", "user", "active", "true")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestRenderCommand(t *testing.T) {
	t.Run("Expression", func(t *testing.T) {
		out, err := run(t, "render", "--expr", "upper(quick.user.alice.email)")
		require.NoError(t, err)
		assert.Equal(t, "ALICE@GMAIL.COM\n", out)
	})

	t.Run("ExpressionJSON", func(t *testing.T) {
		out, err := run(t, "render", "-e", "quick.user.bob.active")
		require.NoError(t, err)
		assert.Equal(t, "false\n", out)
	})

	t.Run("TemplateFile", func(t *testing.T) {
		tmpl := filepath.Join(t.TempDir(), "hello.tmpl")
		require.NoError(t, os.WriteFile(tmpl, []byte("${greeting}, ${quick.user.root.username} at ${quick.site_name}\n"), 0o644))

		out, err := run(t, "render", "--var", "greeting=Hi", tmpl)
		require.NoError(t, err)
		assert.Equal(t, "Hi, root at Example\n", out)
	})

	t.Run("NeedsExactlyOneSource", func(t *testing.T) {
		_, err := run(t, "render")
		assert.Error(t, err)

		_, err = run(t, "render", "--expr", "1", "file.tmpl")
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quickctx version 0.1.0")
}
