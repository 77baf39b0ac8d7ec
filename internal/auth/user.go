// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// User represents a GradeMe account as stored by the credential store.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	Active       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// PublicUser is the sanitized view of a User that is safe to send to clients.
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      Role       `json:"user_type"`
	FullName  string     `json:"full_name"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// Profile is the denormalized profile record written alongside a new user.
type Profile struct {
	ID       ulid.ULID
	Email    string
	Role     Role
	FullName string
}

// NormalizeEmail returns the lookup and uniqueness key for an email address.
// Only ASCII letters are folded: strings.ToLower maps some non-ASCII runes
// (the Kelvin sign) onto ASCII ones.
func NormalizeEmail(email string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, strings.TrimSpace(email))
}

// ValidEmail reports whether a normalized email can be stored. Emails are
// restricted to ASCII so that Go and PostgreSQL agree on the lowercase form.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	for i := 0; i < len(email); i++ {
		if email[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// NewUser creates an active User with a fresh ID.
// The email is normalized; the role must be valid and the hash non-empty.
func NewUser(email, passwordHash string, role Role, fullName string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if !ValidEmail(email) {
		return nil, oops.Code("USER_INVALID_EMAIL").With("email", email).Errorf("email must be ASCII")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("USER_INVALID_ROLE").With("role", uint8(role)).Errorf("invalid role")
	}

	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FullName:     strings.TrimSpace(fullName),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Public strips the password hash and returns the client-facing view.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// Profile returns the denormalized profile record for u.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		FullName: u.FullName,
	}
}

// UserRepository is the credential store gateway for user rows.
// Implementations normalize emails before lookup and storage.
type UserRepository interface {
	// Create stores a new user.
	// Returns ErrConflict if the normalized email is already taken; the
	// storage layer is expected to enforce this itself.
	Create(ctx context.Context, user *User) error

	// EmailExists reports whether any user, active or not, has the email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// GetActiveByEmail retrieves an active user by email (case-insensitive).
	// Returns ErrNotFound if no active user has the email.
	GetActiveByEmail(ctx context.Context, email string) (*User, error)

	// GetActiveByID retrieves an active user by ID.
	// Returns ErrNotFound if the user does not exist or is deactivated.
	GetActiveByID(ctx context.Context, id ulid.ULID) (*User, error)

	// UpdateLastLogin records a successful sign-in time.
	UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error

	// SetActive flips the soft-deactivation flag.
	SetActive(ctx context.Context, id ulid.ULID, active bool) error
}

// ProfileRepository stores denormalized profile records.
type ProfileRepository interface {
	// Create stores the profile for a newly created user.
	Create(ctx context.Context, profile Profile) error
}
