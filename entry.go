/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package quickcontext

import (
	"context"
	"strings"

	"github.com/suparena/quickcontext/datastore"
	"github.com/suparena/quickcontext/errors"
	"github.com/suparena/quickcontext/storagemodels"
)

// FilterPrefix marks an attribute that selects a filter field instead of a lookup value.
const FilterPrefix = "filter__"

// Entry is a registered value that turns attribute access into queries. Consumers
// that only know attribute names, such as the template renderer, go through it.
type Entry interface {
	LookupField() string
	// Resolve returns the record whose lookup field equals value, or nil.
	Resolve(ctx context.Context, value string) (any, error)
	// ResolveFilter returns the records matching lookupField__field == value.
	ResolveFilter(ctx context.Context, field, value string) (any, error)
}

// ModelEntry binds a datastore to the field used as its lookup key.
type ModelEntry[T any] struct {
	store       datastore.DataStore[T]
	lookupField string
}

// NewModelEntry creates a ModelEntry. Both arguments are fixed for the entry's lifetime.
func NewModelEntry[T any](store datastore.DataStore[T], lookupField string) *ModelEntry[T] {
	return &ModelEntry[T]{
		store:       store,
		lookupField: lookupField,
	}
}

// LookupField returns the field values are matched against.
func (e *ModelEntry[T]) LookupField() string {
	return e.lookupField
}

// Get returns the record whose lookup field equals value. A missing record yields
// (nil, nil); any other datastore error is returned as is.
func (e *ModelEntry[T]) Get(ctx context.Context, value string) (*T, error) {
	record, err := e.store.GetBy(ctx, e.lookupField, value)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Filter returns a pending filter on field. Nothing is queried until Match.
func (e *ModelEntry[T]) Filter(field string) PendingFilter[T] {
	return PendingFilter[T]{entry: e, field: field}
}

// FilterBy is Filter(field).Match(ctx, value).
func (e *ModelEntry[T]) FilterBy(ctx context.Context, field, value string) ([]T, error) {
	return e.Filter(field).Match(ctx, value)
}

func (e *ModelEntry[T]) Resolve(ctx context.Context, value string) (any, error) {
	record, err := e.Get(ctx, value)
	if err != nil || record == nil {
		return nil, err
	}
	return record, nil
}

func (e *ModelEntry[T]) ResolveFilter(ctx context.Context, field, value string) (any, error) {
	records, err := e.FilterBy(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PendingFilter is the first half of a filtered lookup. It is an immutable value;
// each Match runs an independent query.
type PendingFilter[T any] struct {
	entry *ModelEntry[T]
	field string
}

// Field returns the filter field as given to Filter.
func (p PendingFilter[T]) Field() string {
	return p.field
}

// Expression returns the field path sent to the datastore: lookupField__field.
func (p PendingFilter[T]) Expression() string {
	return p.entry.lookupField + storagemodels.PathSeparator + p.field
}

// Match returns the records whose Expression equals value.
func (p PendingFilter[T]) Match(ctx context.Context, value string) ([]T, error) {
	return p.entry.store.Filter(ctx, p.Expression(), value)
}

// ParseFilterAttr reports whether attr carries FilterPrefix and returns the field after it.
func ParseFilterAttr(attr string) (string, bool) {
	if !strings.HasPrefix(attr, FilterPrefix) {
		return "", false
	}
	return attr[len(FilterPrefix):], true
}

// ResolvePath resolves name followed by attribute accesses. For an Entry, the first
// attribute is a lookup value, or a filter__<field> attribute followed by the value.
// The unconsumed attributes are returned for the caller to apply to the result.
func (r *Registry) ResolvePath(ctx context.Context, name string, attrs ...string) (any, []string, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return nil, nil, errors.NewEntryNotFoundError(name)
	}

	entry, ok := v.(Entry)
	if !ok || len(attrs) == 0 {
		return v, attrs, nil
	}

	if field, isFilter := ParseFilterAttr(attrs[0]); isFilter {
		if len(attrs) < 2 {
			return nil, nil, errors.NewValidationError(attrs[0], "filter requires a value")
		}
		records, err := entry.ResolveFilter(ctx, field, attrs[1])
		return records, attrs[2:], err
	}

	record, err := entry.Resolve(ctx, attrs[0])
	return record, attrs[1:], err
}
