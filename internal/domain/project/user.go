package project

import (
	"strings"
	"time"

	"github.com/reqtrace/backend/internal/domain/shared"
)

// User is a principal known to the identity provider. ID is the provider's
// subject identifier.
type User struct {
	ID        string
	Name      string
	Email     string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds a user from verified identity claims
func NewUser(id, name, email, imageURL string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError("INVALID_USER", "User id cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}
	now := time.Now()
	return &User{
		ID:        id,
		Name:      name,
		Email:     strings.TrimSpace(email),
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
