package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user: not found")
	ErrInvalidRole   = errors.New("user: invalid role")
	ErrNameRequired  = errors.New("user: name is required")
	ErrEmailRequired = errors.New("user: email is required")
)

type ID string

type Role string

const (
	// RoleUser is the default guest-facing role.
	RoleUser  Role = "user"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleHost, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        ID
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	// ListByRole returns every user carrying the role. Used for admin
	// broadcast fan-out.
	ListByRole(ctx context.Context, role Role) ([]*User, error)
	Save(ctx context.Context, u *User) error
}

type CreateParams struct {
	ID        ID
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
}

func New(params CreateParams) (*User, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	role := params.Role
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:        params.ID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
func (u *User) IsHost() bool  { return u.Role == RoleHost }
