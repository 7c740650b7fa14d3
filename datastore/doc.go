/*
Package datastore defines the query layer behind quickcontext model entries.

The main interface is DataStore[T], which provides the two lookups a model
entry needs plus a write for seeding data:

	type DataStore[T any] interface {
	    GetBy(ctx context.Context, fieldPath, value string) (*T, error)
	    Filter(ctx context.Context, fieldPath, value string) ([]T, error)
	    Put(ctx context.Context, entity T) error
	}

Field paths follow the storagemodels.FieldPath convention
("username", "email__icontains", "profile__city").

Implementations:
  - ddb: DynamoDB implementation with macro-based key expansion
  - mock: In-memory implementation for testing
*/
package datastore
