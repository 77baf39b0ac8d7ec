// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/web"
)

func TestNewRouter_RequiresService(t *testing.T) {
	_, err := web.NewRouter(nil, web.Options{})
	require.Error(t, err)
}

func TestPages_Guarded(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.signUp(t, "admin@test.com", "admin123", "admin").status)
	require.Equal(t, http.StatusCreated, env.signUp(t, "student@test.com", "student123", "student").status)

	tests := []struct {
		name         string
		signInAs     string
		password     string
		path         string
		wantStatus   int
		wantLocation string
	}{
		{"anonymous admin page", "", "", "/admin/dashboard", http.StatusSeeOther, "/"},
		{"anonymous student page", "", "", "/student/exams", http.StatusSeeOther, "/"},
		{"student on admin page", "student@test.com", "student123", "/admin/students", http.StatusSeeOther, "/student/dashboard"},
		{"admin on student page", "admin@test.com", "admin123", "/student/dashboard", http.StatusSeeOther, "/admin/dashboard"},
		{"admin on admin page", "admin@test.com", "admin123", "/admin/dashboard", http.StatusOK, ""},
		{"student on student page", "student@test.com", "student123", "/student/results", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.do(t, http.MethodPost, "/auth/signout", "")
			if tt.signInAs != "" {
				require.Equal(t, http.StatusOK, env.signIn(t, tt.signInAs, tt.password).status)
			}

			resp := env.do(t, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantStatus, resp.status)
			assert.Equal(t, tt.wantLocation, resp.header.Get("Location"))
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, resp.body, "Signed in as "+tt.signInAs)
			}
		})
	}
}

func TestPages_EntryIsPublic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.header.Get("Content-Type"), "text/html")
	assert.Contains(t, resp.body, "Sign in to continue.")
}

func TestPages_EscapesPageName(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.signUp(t, "x@test.com", "pass123", "admin").status)
	require.Equal(t, http.StatusOK, env.signIn(t, "x@test.com", "pass123").status)

	resp := env.do(t, http.MethodGet, "/admin/%3Cscript%3E", "")

	assert.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, resp.body, "<script>")
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/auth/nope", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/admin/a/b", http.StatusNotFound, `{"error":"Not found"}`},
		{http.MethodGet, "/auth/signin", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodGet, "/auth/signup", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodPost, "/auth/me", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodGet, "/api/auth/signout", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{http.MethodPost, "/admin/dashboard", http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, resp.status)
			assert.JSONEq(t, tt.wantBody, resp.body)
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	env := newTestEnv(t)

	generated := env.do(t, http.MethodGet, "/auth/me", "")
	assert.Len(t, generated.header.Get(web.RequestIDHeader), 26)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, env.srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set(web.RequestIDHeader, "trace-me-123")
	resp, err := env.client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "trace-me-123", resp.Header.Get(web.RequestIDHeader))
}

// panicService blows up on every call.
type panicService struct{}

func (panicService) SignUp(context.Context, auth.SignUpInput) (*auth.PublicUser, error) {
	panic("boom")
}

func (panicService) SignIn(context.Context, string, string) (*auth.SignInResult, error) {
	panic("boom")
}

func (panicService) CurrentUser(context.Context, string) (*auth.PublicUser, error) {
	panic("boom")
}

func TestRouter_RecoversPanics(t *testing.T) {
	router, err := web.NewRouter(panicService{}, web.Options{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
