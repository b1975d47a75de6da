package entities

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// User is a staff member
type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// NewUser creates a validated active User; the password hash is set by the caller
func NewUser(username, email, fullName string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid email: %q", email))
	}
	if role == RoleGuest {
		return nil, NewValidationError("guest is not an assignable role")
	}

	return &User{
		Username: username,
		Email:    strings.ToLower(email),
		FullName: fullName,
		Role:     role,
		Active:   true,
	}, nil
}

// Principal is the authenticated identity behind a request or connection
type Principal struct {
	UserID   UserID
	Username string
	Role     Role
}

// Guest is the principal of an unauthenticated live-update subscriber
func Guest() Principal {
	return Principal{Role: RoleGuest}
}

// IsGuest reports whether the principal is unauthenticated
func (p Principal) IsGuest() bool {
	return p.Role == RoleGuest
}
