/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/suparena/quickcontext/errors"
	"github.com/suparena/quickcontext/storagemodels"
)

// DataStore is an in-memory implementation of datastore.DataStore[T]. Records keep
// their insertion order so filtered results are deterministic.
type DataStore[T any] struct {
	mu         sync.RWMutex
	items      []T
	index      map[string]int
	getKeyFunc func(entity T) string
	filterFunc func(ctx context.Context, fieldPath, value string) ([]T, error)
	putError   error
	queryError error
	calls      int
}

// New creates a new mock DataStore
func New[T any]() *DataStore[T] {
	return &DataStore[T]{
		index: make(map[string]int),
	}
}

// WithGetKeyFunc sets a function extracting a unique key; Put replaces records with an equal key
func (m *DataStore[T]) WithGetKeyFunc(f func(T) string) *DataStore[T] {
	m.getKeyFunc = f
	return m
}

// WithFilterFunc replaces the built-in Filter implementation
func (m *DataStore[T]) WithFilterFunc(f func(ctx context.Context, fieldPath, value string) ([]T, error)) *DataStore[T] {
	m.filterFunc = f
	return m
}

// WithPutError makes Put operations return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithQueryError makes GetBy and Filter return an error
func (m *DataStore[T]) WithQueryError(err error) *DataStore[T] {
	m.queryError = err
	return m
}

// GetBy retrieves the single entity matching fieldPath == value
func (m *DataStore[T]) GetBy(ctx context.Context, fieldPath, value string) (*T, error) {
	matches, err := m.match(ctx, fieldPath, value)
	if err != nil {
		return nil, err
	}

	var zero T
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), fieldPath, value)
	case 1:
		return &matches[0], nil
	default:
		return nil, errors.NewMultipleResultsError(fmt.Sprintf("%T", zero), fieldPath, value, len(matches))
	}
}

// Filter returns all entities matching the field-path expression
func (m *DataStore[T]) Filter(ctx context.Context, fieldPath, value string) ([]T, error) {
	if m.filterFunc != nil {
		m.mu.Lock()
		m.calls++
		m.mu.Unlock()
		return m.filterFunc(ctx, fieldPath, value)
	}
	return m.match(ctx, fieldPath, value)
}

func (m *DataStore[T]) match(ctx context.Context, fieldPath, value string) ([]T, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.queryError != nil {
		return nil, m.queryError
	}

	path, err := storagemodels.ParseFieldPath(fieldPath)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]T, 0)
	for _, entity := range m.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := attributevalue.MarshalMap(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entity: %w", err)
		}
		ok, err := path.Match(item, value)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, entity)
		}
	}
	return results, nil
}

// Put stores an entity
func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	if m.putError != nil {
		return m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getKeyFunc == nil {
		m.items = append(m.items, entity)
		return nil
	}

	key := m.getKeyFunc(entity)
	if key == "" {
		return errors.NewValidationError("key", "unable to extract key from entity")
	}
	if i, exists := m.index[key]; exists {
		m.items[i] = entity
		return nil
	}
	m.index[key] = len(m.items)
	m.items = append(m.items, entity)
	return nil
}

// Helper methods for testing

// GetData returns a copy of the stored entities in insertion order
func (m *DataStore[T]) GetData() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]T, len(m.items))
	copy(result, m.items)
	return result
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Calls returns how many lookups reached the store
func (m *DataStore[T]) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.index = make(map[string]int)
}
