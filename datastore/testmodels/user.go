package testmodels

import "github.com/go-openapi/strfmt"

type User struct {

	// Unique identifier of the user.
	// Format: uuid
	ID strfmt.UUID `json:"id" dynamodbav:"id"`

	// Login name, unique per user.
	// Required: true
	Username string `json:"username" dynamodbav:"username"`

	// Contact address.
	// Format: email
	Email strfmt.Email `json:"email" dynamodbav:"email"`

	// Name shown in rendered pages.
	DisplayName string `json:"displayName,omitempty" dynamodbav:"displayName,omitempty"`

	// Free-form labels.
	Tags []string `json:"tags,omitempty" dynamodbav:"tags,omitempty,stringset"`

	// Whether the account can sign in.
	Active bool `json:"active" dynamodbav:"active"`
}

// Users returns a small fixture set shared by package tests.
func Users() []User {
	return []User{
		{
			ID:          "6f1c2d7e-0a51-4b7c-9f7e-3d1a2b4c5d60",
			Username:    "root",
			Email:       "root@example.com",
			DisplayName: "Superuser",
			Tags:        []string{"admin"},
			Active:      true,
		},
		{
			ID:          "0b7d9c3a-42e1-4f0e-8a55-9c7e1f2a3b41",
			Username:    "alice",
			Email:       "alice@gmail.com",
			DisplayName: "Alice",
			Active:      true,
		},
		{
			ID:       "2e4a6c8e-1b3d-4f5a-9c7e-0d2f4a6c8e10",
			Username: "bob",
			Email:    "bob@gmail.com",
			Active:   false,
		},
	}
}
