/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
)

// DataStore is the query layer a model entry resolves against.
type DataStore[T any] interface {
	// GetBy returns the single record whose fieldPath equals value. It returns a
	// NotFoundError when nothing matches and a MultipleResultsError when more than
	// one record does.
	GetBy(ctx context.Context, fieldPath, value string) (*T, error)

	// Filter returns every record matching the field-path expression.
	Filter(ctx context.Context, fieldPath, value string) ([]T, error)

	Put(ctx context.Context, entity T) error
}
