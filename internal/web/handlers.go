// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/observability"
	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

// maxBodyBytes bounds auth request bodies.
const maxBodyBytes = 1 << 20

// AuthService is the subset of auth.Service the HTTP layer drives.
type AuthService interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (*auth.PublicUser, error)
	SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error)
	CurrentUser(ctx context.Context, token string) (*auth.PublicUser, error)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	FullName string `json:"fullName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *auth.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	svc             AuthService
	logger          *slog.Logger
	metrics         *observability.Metrics
	secureCookies   bool
	sessionLifetime time.Duration
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc AuthService, opts Options) (*AuthHandler, error) {
	if svc == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth service is required")
	}
	opts = opts.withDefaults()
	return &AuthHandler{
		svc:             svc,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		secureCookies:   opts.SecureCookies,
		sessionLifetime: opts.SessionLifetime,
	}, nil
}

// SignUp handles POST /auth/signup. No session is started.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !h.decode(w, r, "signup", &req) {
		return
	}

	user, err := h.svc.SignUp(r.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.UserType,
		FullName: req.FullName,
	})
	if err != nil {
		h.writeServiceError(w, r, "signup", err)
		return
	}

	h.metrics.RecordAuth("signup", observability.OutcomeSuccess)
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// SignIn handles POST /auth/signin and sets the session cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !h.decode(w, r, "signin", &req) {
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "signin", err)
		return
	}

	h.setSessionCookie(w, r, res.Token, res.ExpiresAt)
	h.metrics.RecordAuth("signin", observability.OutcomeSuccess)
	h.logger.InfoContext(r.Context(), "user signed in", "user_id", res.User.ID)
	writeJSON(w, http.StatusOK, userResponse{User: res.User})
}

// SignOut handles POST /auth/signout. It always succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w, r)
	h.metrics.RecordAuth("signout", observability.OutcomeSuccess)
	writeJSON(w, http.StatusOK, messageResponse{Message: msgSignedOut})
}

// Me handles GET /auth/me. A missing or unusable session is a normal
// response with a null user, and so is a store failure.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.CurrentUser(r.Context(), SessionToken(r))
	if err != nil {
		h.metrics.RecordAuth("me", observability.OutcomeError)
		errutil.LogErrorContext(r.Context(), h.logger, "me failed", err)
		user = nil
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// decode reads a JSON body into dst, writing a 400 on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.DebugContext(r.Context(), "rejected request body",
			"operation", operation,
			"error", err.Error())
		h.metrics.RecordAuth(operation, observability.OutcomeRejected)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away; nothing useful to do
	json.NewEncoder(w).Encode(v)
}
