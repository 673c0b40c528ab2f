package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired  = errors.New("user: id is required")
	ErrInvalidRole = errors.New("user: invalid role")
	ErrNotFound    = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the contact directory entry used for notifications.
type User struct {
	ID        ID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:        ID(id),
		Email:     normalizeEmail(params.Email),
		Name:      strings.TrimSpace(params.Name),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ParseRole defaults an empty value to RoleUser.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "user", "guest":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UpdateContact overwrites non-empty fields and reports whether anything changed.
func (u *User) UpdateContact(email, name string, now time.Time) bool {
	changed := false
	if email = normalizeEmail(email); email != "" && email != u.Email {
		u.Email = email
		changed = true
	}
	if name = strings.TrimSpace(name); name != "" && name != u.Name {
		u.Name = name
		changed = true
	}
	if changed {
		u.touch(now)
	}
	return changed
}

// DisplayName falls back to the id when no name is on file.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return string(u.ID)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
