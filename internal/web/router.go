// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package web is the GradeMe HTTP transport: the JSON auth endpoints, the
// session cookie, and the guarded page routes.
package web

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/guard"
	"github.com/dumindu-Test/GradeMe/internal/observability"
)

// authPrefixes are the mount points of the auth endpoints. /api/auth is the
// path used by browser clients.
var authPrefixes = []string{"/auth", "/api/auth"}

// Options configures the HTTP layer.
type Options struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	// SecureCookies marks the session cookie Secure on plain-HTTP requests too.
	SecureCookies   bool
	SessionLifetime time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.SessionLifetime == 0 {
		o.SessionLifetime = auth.SessionLifetime
	}
	return o
}

// Service is what the router needs from the auth layer: the endpoint
// operations plus session resolution for the page guard.
type Service interface {
	AuthService
	guard.Resolver
}

// NewRouter builds the full route table.
func NewRouter(svc Service, opts Options) (*mux.Router, error) {
	if svc == nil {
		return nil, oops.Code("WEB_INVALID_CONFIG").Errorf("auth service is required")
	}
	opts = opts.withDefaults()

	h, err := NewAuthHandler(svc, opts)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(requestID, accessLog(opts.Logger), recordMetrics(opts.Metrics), recoverPanic(opts.Logger))

	// Every route lives on the parent router: mux subrouters answer a wrong
	// method with 404 instead of 405.
	for _, prefix := range authPrefixes {
		r.HandleFunc(prefix+"/signup", h.SignUp).Methods(http.MethodPost)
		r.HandleFunc(prefix+"/signin", h.SignIn).Methods(http.MethodPost)
		r.HandleFunc(prefix+"/signout", h.SignOut).Methods(http.MethodPost)
		r.HandleFunc(prefix+"/me", h.Me).Methods(http.MethodGet)
	}

	r.HandleFunc("/", entryPage).Methods(http.MethodGet)

	for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleStudent} {
		gate := guard.Middleware(svc, SessionToken, guard.Require(role), opts.Logger)
		r.Handle("/"+role.String()+"/{page}", gate(http.HandlerFunc(rolePage))).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
	})

	return r, nil
}

