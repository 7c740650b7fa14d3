/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package quickcontext

import (
	"fmt"
	"testing"

	"github.com/suparena/quickcontext/datastore/mock"
	"github.com/suparena/quickcontext/datastore/testmodels"
	"github.com/suparena/quickcontext/errors"
)

func TestRegistry(t *testing.T) {
	t.Run("RegisterAndLookup", func(t *testing.T) {
		reg := NewRegistry()

		for i, name := range []string{"site_name", "year", "flags"} {
			if err := reg.Register(name, i); err != nil {
				t.Fatalf("Register(%q) failed: %v", name, err)
			}
		}

		v, ok := reg.Lookup("year")
		if !ok || v != 1 {
			t.Fatalf("Expected year=1, got %v (found=%v)", v, ok)
		}
		if _, ok := reg.Lookup("missing"); ok {
			t.Fatal("Expected missing name to be absent")
		}
		if reg.Len() != 3 {
			t.Fatalf("Expected 3 entries, got %d", reg.Len())
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		reg := NewRegistry()

		if err := reg.Register("site_name", "first"); err != nil {
			t.Fatalf("First registration failed: %v", err)
		}
		err := reg.Register("site_name", "second")
		if !errors.IsDuplicateEntry(err) {
			t.Fatalf("Expected duplicate entry error, got %v", err)
		}

		v, _ := reg.Lookup("site_name")
		if v != "first" {
			t.Fatalf("Duplicate registration altered the value: %v", v)
		}
		if names := reg.Names(); len(names) != 1 {
			t.Fatalf("Duplicate registration altered the names: %v", names)
		}
	})

	t.Run("Update", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("a", 1)
		reg.Register("b", 2)

		if err := reg.Update("a", 10); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if v, _ := reg.Lookup("a"); v != 10 {
			t.Fatalf("Expected updated value 10, got %v", v)
		}

		names := reg.Names()
		if len(names) != 2 || names[0] != "a" || names[1] != "b" {
			t.Fatalf("Update must not change registration order: %v", names)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		reg := NewRegistry()

		err := reg.Update("missing", 1)
		if !errors.IsEntryNotFound(err) {
			t.Fatalf("Expected entry not found error, got %v", err)
		}
		if _, ok := reg.Lookup("missing"); ok {
			t.Fatal("Update must not create entries")
		}
	})

	t.Run("NamesIsCopy", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("first", nil)
		reg.Register("second", nil)

		names := reg.Names()
		names[0] = "mutated"

		again := reg.Names()
		if len(again) != 2 || again[0] != "first" || again[1] != "second" {
			t.Fatalf("Mutating Names() result leaked into registry: %v", again)
		}
	})
}

func TestRegisterModel(t *testing.T) {
	reg := NewRegistry()
	store := mock.New[testmodels.User]()

	entry, err := RegisterModel(reg, "user", store, "username")
	if err != nil {
		t.Fatalf("RegisterModel failed: %v", err)
	}
	if entry.LookupField() != "username" {
		t.Fatalf("Expected lookup field username, got %q", entry.LookupField())
	}

	if _, err := RegisterModel(reg, "user", store, "email"); !errors.IsDuplicateEntry(err) {
		t.Fatalf("Expected duplicate entry error, got %v", err)
	}

	got, err := Model[testmodels.User](reg, "user")
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if got != entry {
		t.Fatal("Model returned a different entry")
	}

	if _, err := Model[testmodels.User](reg, "missing"); !errors.IsEntryNotFound(err) {
		t.Fatalf("Expected entry not found error, got %v", err)
	}

	reg.Register("site_name", "Example")
	if _, err := Model[testmodels.User](reg, "site_name"); !errors.IsValidationError(err) {
		t.Fatalf("Expected validation error for non-model entry, got %v", err)
	}
}

func TestRegistryThreadSafety(t *testing.T) {
	reg := NewRegistry()
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(id int) {
			reg.Register(fmt.Sprintf("entry%d", id), id)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		go func() {
			reg.Names()
			done <- true
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}

	if reg.Len() != 10 {
		t.Fatalf("Expected 10 entries, got %d", reg.Len())
	}
}
