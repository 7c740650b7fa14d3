/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when no record matches a single-record lookup
	ErrNotFound = errors.New("record not found")

	// ErrMultipleResults is returned when a single-record lookup matches more than one record
	ErrMultipleResults = errors.New("multiple records returned")

	// ErrDuplicateEntry is returned when registering a name that is already bound
	ErrDuplicateEntry = errors.New("entry already registered")

	// ErrEntryNotFound is returned when updating or fetching a name that was never registered
	ErrEntryNotFound = errors.New("entry not registered")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")
)

// NotFoundError represents a record lookup that matched nothing
type NotFoundError struct {
	Type  string
	Field string
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %q not found", e.Type, e.Field, e.Value)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MultipleResultsError represents a single-record lookup that matched several records
type MultipleResultsError struct {
	Type  string
	Field string
	Value string
	Count int
}

func (e *MultipleResultsError) Error() string {
	return fmt.Sprintf("%s with %s %q returned %d records, expected one", e.Type, e.Field, e.Value, e.Count)
}

func (e *MultipleResultsError) Is(target error) bool {
	return target == ErrMultipleResults
}

// DuplicateEntryError is returned by registries on a name collision
type DuplicateEntryError struct {
	Name string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("an entry with the name %q already exists", e.Name)
}

func (e *DuplicateEntryError) Is(target error) bool {
	return target == ErrDuplicateEntry
}

// EntryNotFoundError is returned by registries for unknown names
type EntryNotFoundError struct {
	Name string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("no entry with the name %q exists", e.Name)
}

func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, field, value string) error {
	return &NotFoundError{Type: entityType, Field: field, Value: value}
}

// NewMultipleResultsError creates a new MultipleResultsError
func NewMultipleResultsError(entityType, field, value string, count int) error {
	return &MultipleResultsError{Type: entityType, Field: field, Value: value, Count: count}
}

// NewDuplicateEntryError creates a new DuplicateEntryError
func NewDuplicateEntryError(name string) error {
	return &DuplicateEntryError{Name: name}
}

// NewEntryNotFoundError creates a new EntryNotFoundError
func NewEntryNotFoundError(name string) error {
	return &EntryNotFoundError{Name: name}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMultipleResults checks if an error is a multiple results error
func IsMultipleResults(err error) bool {
	return errors.Is(err, ErrMultipleResults)
}

// IsDuplicateEntry checks if an error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsEntryNotFound checks if an error is an entry not found error
func IsEntryNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
