// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package guard

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
)

// Fetcher resolves the current user from the server.
type Fetcher interface {
	// Me returns the signed-in user, or nil when there is no session.
	Me(ctx context.Context) (*auth.PublicUser, error)
}

// Authenticator performs the session-changing calls.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.PublicUser, error)
	SignOut(ctx context.Context) error
}

// Session is the client session view. It starts out loading, is filled by
// Refresh, and is re-derived from the server after every sign-in or sign-out.
type Session struct {
	fetcher Fetcher
	authn   Authenticator
	logger  *slog.Logger

	mu     sync.Mutex
	view   View
	gen    uint64 // bumped by every Refresh, SignIn and SignOut
	subs   map[uint64]func(View)
	nextID uint64
}

// NewSession creates a Session in the loading state.
func NewSession(fetcher Fetcher, authn Authenticator, logger *slog.Logger) (*Session, error) {
	if fetcher == nil {
		return nil, oops.Code("GUARD_INVALID_CONFIG").Errorf("fetcher is required")
	}
	if authn == nil {
		return nil, oops.Code("GUARD_INVALID_CONFIG").Errorf("authenticator is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		fetcher: fetcher,
		authn:   authn,
		logger:  logger,
		view:    View{Loading: true},
		subs:    make(map[uint64]func(View)),
	}, nil
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Subscribe registers fn to be called with the new view after every change.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(View)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Refresh re-queries the server. A failed query leaves the view signed out
// and returns the error. A result that arrives after a newer Refresh, SignIn
// or SignOut has started is discarded.
func (s *Session) Refresh(ctx context.Context) error {
	gen := s.begin()
	user, err := s.fetcher.Me(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "session refresh failed", "error", err.Error())
		s.set(gen, View{})
		return oops.Code("GUARD_REFRESH_FAILED").Wrap(err)
	}
	s.set(gen, View{User: user})
	return nil
}

// SignIn signs in and then refreshes the view from the server.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	s.begin()
	if _, err := s.authn.SignIn(ctx, email, password); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// SignOut signs out and then refreshes the view. If the server call fails
// the view is cleared anyway, since the cookie may already be gone.
func (s *Session) SignOut(ctx context.Context) error {
	gen := s.begin()
	if err := s.authn.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "sign out failed", "error", err.Error())
		s.set(gen, View{})
		return err
	}
	return s.Refresh(ctx)
}

// begin starts a new generation, invalidating results of earlier calls.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// set publishes v unless a newer generation has begun since gen.
func (s *Session) set(gen uint64, v View) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("dropped stale session view", "generation", gen)
		return
	}
	s.view = v
	subs := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Watch evaluates req against the session now and after every change,
// passing each decision to onDecision. The returned function stops watching.
func Watch(s *Session, req Requirement, onDecision func(Decision)) (stop func()) {
	stop = s.Subscribe(func(v View) {
		onDecision(Evaluate(v, req))
	})
	onDecision(Evaluate(s.View(), req))
	return stop
}
