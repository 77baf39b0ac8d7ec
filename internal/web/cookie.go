// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package web

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth-token"

// SessionToken returns the session token sent with r, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// secure reports whether the session cookie must carry the Secure flag.
func (h *AuthHandler) secure(r *http.Request) bool {
	return h.secureCookies || r.TLS != nil
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionLifetime / time.Second),
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookie overwrites the cookie with an empty, already-expired one.
// net/http writes MaxAge -1 as "Max-Age=0".
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteStrictMode,
	})
}
