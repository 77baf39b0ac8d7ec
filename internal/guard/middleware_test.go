// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumindu-Test/GradeMe/internal/auth"
)

type resolverFunc func(ctx context.Context, token string) (*auth.PublicUser, error)

func (f resolverFunc) CurrentUser(ctx context.Context, token string) (*auth.PublicUser, error) {
	return f(ctx, token)
}

func headerToken(r *http.Request) string {
	return r.Header.Get("X-Test-Token")
}

func byToken(users map[string]*auth.PublicUser) Resolver {
	return resolverFunc(func(_ context.Context, token string) (*auth.PublicUser, error) {
		return users[token], nil
	})
}

func TestMiddleware(t *testing.T) {
	resolver := byToken(map[string]*auth.PublicUser{"a": admin, "s": student})

	tests := []struct {
		name         string
		token        string
		req          Requirement
		wantStatus   int
		wantLocation string
	}{
		{"admin page as admin", "a", Require(auth.RoleAdmin), http.StatusOK, ""},
		{"admin page as student", "s", Require(auth.RoleAdmin), http.StatusSeeOther, "/student/dashboard"},
		{"student page as admin", "a", Require(auth.RoleStudent), http.StatusSeeOther, "/admin/dashboard"},
		{"admin page signed out", "", Require(auth.RoleAdmin), http.StatusSeeOther, "/"},
		{"unknown token", "forged", AnyRole, http.StatusSeeOther, "/"},
		{"any role as student", "s", AnyRole, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *auth.PublicUser
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := Middleware(resolver, headerToken, tt.req, nil)(next)

			r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			r.Header.Set("X-Test-Token", tt.token)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestMiddleware_ResolverErrorRedirectsToEntry(t *testing.T) {
	resolver := resolverFunc(func(context.Context, string) (*auth.PublicUser, error) {
		return nil, errors.New("database unreachable")
	})
	h := Middleware(resolver, headerToken, AnyRole, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("protected handler must not run")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/student/exams", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestMiddleware_ResolvesEveryRequest(t *testing.T) {
	current := student
	resolver := resolverFunc(func(context.Context, string) (*auth.PublicUser, error) {
		return current, nil
	})
	h := Middleware(resolver, headerToken, AnyRole, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/student/dashboard", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	current = nil // deactivated between requests
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/student/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
