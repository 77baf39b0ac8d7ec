// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package guard

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

// Resolver resolves a session token to the active user it names.
type Resolver interface {
	CurrentUser(ctx context.Context, token string) (*auth.PublicUser, error)
}

// TokenFunc extracts the session token from a request.
type TokenFunc func(r *http.Request) string

type userKey struct{}

// UserFromContext returns the user admitted by Middleware.
func UserFromContext(ctx context.Context) (*auth.PublicUser, bool) {
	u, ok := ctx.Value(userKey{}).(*auth.PublicUser)
	return u, ok && u != nil
}

// Middleware gates page routes server-side. Every request is resolved
// afresh, so deactivation or a cleared cookie takes effect on the next page
// load. Denied requests are redirected with 303 See Other.
func Middleware(resolver Resolver, token TokenFunc, req Requirement, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.CurrentUser(r.Context(), token(r))
			if err != nil {
				errutil.LogErrorContext(r.Context(), logger, "page guard could not resolve session", err)
				user = nil
			}

			d := Evaluate(View{User: user}, req)
			w.Header().Set("Cache-Control", "no-store")
			if d.State != StateAuthorized {
				logger.DebugContext(r.Context(), "page guard redirect",
					"path", r.URL.Path,
					"state", d.State.String(),
					"redirect_to", d.RedirectTo)
				http.Redirect(w, r, d.RedirectTo, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
		})
	}
}
