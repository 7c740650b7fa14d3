/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package quickcontext

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/suparena/quickcontext/datastore"
	"github.com/suparena/quickcontext/errors"
)

// Registry maps names to values exposed under the template namespace. A value is
// either opaque or an Entry that resolves lookups against a datastore.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]any
	names   []string
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]any),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds value to name. It fails with a DuplicateEntryError if name is
// already bound; use Update to replace a value.
func (r *Registry) Register(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return errors.NewDuplicateEntryError(name)
	}
	r.entries[name] = value
	r.names = append(r.names, name)

	r.logger.Debug("Registered context entry",
		slog.String("name", name),
		slog.String("type", fmt.Sprintf("%T", value)))
	return nil
}

// Update replaces the value bound to name. It fails with an EntryNotFoundError if
// name was never registered. Registration order is unchanged.
func (r *Registry) Update(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return errors.NewEntryNotFoundError(name)
	}
	r.entries[name] = value

	r.logger.Debug("Updated context entry",
		slog.String("name", name),
		slog.String("type", fmt.Sprintf("%T", value)))
	return nil
}

// Lookup returns the value bound to name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[name]
	return v, ok
}

// Names returns the registered names in registration order. The slice is a copy.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// RegisterModel builds a ModelEntry over store keyed by lookupField and registers it under name.
func RegisterModel[T any](r *Registry, name string, store datastore.DataStore[T], lookupField string) (*ModelEntry[T], error) {
	entry := NewModelEntry(store, lookupField)
	if err := r.Register(name, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Model returns the ModelEntry registered under name for type T.
func Model[T any](r *Registry, name string) (*ModelEntry[T], error) {
	v, ok := r.Lookup(name)
	if !ok {
		return nil, errors.NewEntryNotFoundError(name)
	}
	entry, ok := v.(*ModelEntry[T])
	if !ok {
		var zero T
		return nil, errors.NewValidationError(name, fmt.Sprintf("entry holds %T, not a model entry for %T", v, zero))
	}
	return entry, nil
}
