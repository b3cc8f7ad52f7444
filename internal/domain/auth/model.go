// Package auth provides collaborator authentication: password login and
// JWT issue/verify.
package auth

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
)

// Role controls what a collaborator may do.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleCollaborator Role = "COLLABORATOR"
)

// Collaborator is a store employee with system access.
type Collaborator struct {
	ID           id.ID  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	FullName     string `db:"full_name" json:"fullName"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	IsActive     bool   `db:"is_active" json:"isActive"`

	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCollaborator creates an active collaborator.
func NewCollaborator(username, fullName, passwordHash string, role Role) *Collaborator {
	now := time.Now().UTC()
	return &Collaborator{
		ID:           id.New(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks collaborator invariants.
func (c *Collaborator) Validate(ctx context.Context) error {
	if c.Username == "" {
		return apperror.NewValidation("username is required").
			WithDetail("field", "username")
	}
	if c.PasswordHash == "" {
		return apperror.NewValidation("password hash is required").
			WithDetail("field", "password")
	}
	if c.Role != RoleAdmin && c.Role != RoleCollaborator {
		return apperror.NewValidation("unknown role").
			WithDetail("field", "role").
			WithDetail("role", c.Role)
	}
	return nil
}

// CanLogin reports whether the account accepts logins.
func (c *Collaborator) CanLogin() error {
	if !c.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Repository defines collaborator storage operations.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Collaborator, error)
	GetByID(ctx context.Context, collaboratorID id.ID) (*Collaborator, error)
	Create(ctx context.Context, c *Collaborator) error

	// RecordLogin stamps last_login_at.
	RecordLogin(ctx context.Context, collaboratorID id.ID, at time.Time) error
}
