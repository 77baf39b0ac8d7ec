// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionLifetime is the fixed validity window of a session token.
const SessionLifetime = 24 * time.Hour

// MinSecretLength is the shortest signing secret NewTokenService accepts.
const MinSecretLength = 16

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"userType"`
}

// TokenService issues and verifies HS256-signed session tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService signing with secret.
// A zero lifetime selects SessionLifetime.
func NewTokenService(secret []byte, lifetime time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("SESSION_SECRET_INVALID").
			With("min_length", MinSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	if lifetime == 0 {
		lifetime = SessionLifetime
	}
	if lifetime < 0 {
		return nil, oops.Code("SESSION_LIFETIME_INVALID").
			With("lifetime", lifetime.String()).
			Errorf("session lifetime must be positive")
	}

	s := &TokenService{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lifetime returns the validity window of issued tokens.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for the given identity. The returned time is the token expiry.
func (s *TokenService) Issue(userID ulid.ULID, email string, role Role) (string, time.Time, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return "", time.Time{}, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if !role.Valid() {
		return "", time.Time{}, oops.Code("SESSION_INVALID_USER").
			With("user_id", userID.String()).
			Errorf("user role is invalid")
	}

	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID.String(),
		Email:  email,
		Role:   role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("SESSION_SIGN_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and returns its claims.
// Every failure wraps ErrInvalidToken; callers treat them all as "no session".
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, oops.Code("SESSION_TOKEN_EMPTY").Wrap(ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID").With("cause", err.Error()).Wrap(ErrInvalidToken)
	}
	if !token.Valid {
		return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidToken)
	}

	if _, err := ulid.Parse(claims.UserID); err != nil {
		return nil, oops.Code("SESSION_INVALID").With("cause", "malformed user id").Wrap(ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, oops.Code("SESSION_INVALID").With("cause", "missing role").Wrap(ErrInvalidToken)
	}

	return claims, nil
}
