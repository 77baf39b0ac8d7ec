// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package memory provides an in-process credential store for demos and tests.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
)

// Store implements auth.UserRepository and auth.ProfileRepository.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	users    map[ulid.ULID]*auth.User
	byEmail  map[string]ulid.ULID
	profiles map[ulid.ULID]auth.Profile
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[ulid.ULID]*auth.User),
		byEmail:  make(map[string]ulid.ULID),
		profiles: make(map[ulid.ULID]auth.Profile),
	}
}

// Create stores a copy of user. The email check and insert happen under one
// lock, so of two concurrent creates for the same email exactly one succeeds.
func (s *Store) Create(_ context.Context, user *auth.User) error {
	email := auth.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return oops.Code("USER_EMAIL_TAKEN").With("email", email).Wrap(auth.ErrConflict)
	}
	if _, taken := s.users[user.ID]; taken {
		return oops.Code("USER_ID_TAKEN").With("id", user.ID.String()).Wrap(auth.ErrConflict)
	}

	stored := cloneUser(user)
	stored.Email = email
	s.users[stored.ID] = stored
	s.byEmail[email] = stored.ID
	return nil
}

// EmailExists reports whether any user, active or not, has the email.
func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[auth.NormalizeEmail(email)]
	return ok, nil
}

// GetActiveByEmail returns a copy of the active user with the email.
func (s *Store) GetActiveByEmail(_ context.Context, email string) (*auth.User, error) {
	email = auth.NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(auth.ErrNotFound)
	}
	return s.activeLocked(id)
}

// GetActiveByID returns a copy of the active user with the ID.
func (s *Store) GetActiveByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked(id)
}

// UpdateLastLogin records a sign-in time.
func (s *Store) UpdateLastLogin(_ context.Context, id ulid.ULID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	at = at.UTC()
	u.LastLogin = &at
	return nil
}

// SetActive sets the soft-deactivation flag.
func (s *Store) SetActive(_ context.Context, id ulid.ULID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	u.Active = active
	return nil
}

// ProfileRepository returns a view of s satisfying auth.ProfileRepository.
func (s *Store) ProfileRepository() auth.ProfileRepository {
	return profileView{s: s}
}

// Profile returns the stored profile for id.
func (s *Store) Profile(id ulid.ULID) (auth.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// Len returns the number of stored users, active or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) activeLocked(id ulid.ULID) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok || !u.Active {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return cloneUser(u), nil
}

type profileView struct {
	s *Store
}

func (v profileView) Create(_ context.Context, profile auth.Profile) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.profiles[profile.ID]; !exists {
		v.s.profiles[profile.ID] = profile
	}
	return nil
}

func cloneUser(u *auth.User) *auth.User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// Compile-time interface checks.
var (
	_ auth.UserRepository    = (*Store)(nil)
	_ auth.ProfileRepository = profileView{}
)
