/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"
)

// IndexMapRegistry is a registry for Go types and their DynamoDB index maps.

var (
	indexMapRegistry = make(map[reflect.Type]map[string]string)
	mu               sync.RWMutex
)

// RegisterIndexMap associates a Go type T with a given DynamoDB index map (PK, SK, etc.).
// The map is copied; later changes to idxMap have no effect.
func RegisterIndexMap[T any](idxMap map[string]string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[t] = copyMap(idxMap)
}

// GetIndexMap retrieves a copy of the index map for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[t]
	if !ok {
		return nil, false
	}
	return copyMap(m), true
}

// UnregisterIndexMap removes the index map for type T.
func UnregisterIndexMap[T any]() {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	delete(indexMapRegistry, t)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
