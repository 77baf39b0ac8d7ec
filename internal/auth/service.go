// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SignUpInput carries the fields of a sign-up request.
// Role is the wire string so that "missing" and "invalid" can be told apart.
type SignUpInput struct {
	Email    string
	Password string
	Role     string
	FullName string
}

// SignInResult is returned by a successful SignIn.
type SignInResult struct {
	User      *PublicUser
	Token     string
	ExpiresAt time.Time
}

// Service provides account operations: sign-up, sign-in, and session resolution.
type Service struct {
	users    UserRepository
	profiles ProfileRepository
	hasher   PasswordHasher
	tokens   *TokenService
	logger   *slog.Logger
}

// NewService creates a new Service that logs to slog.Default.
func NewService(users UserRepository, profiles ProfileRepository, hasher PasswordHasher, tokens *TokenService) (*Service, error) {
	return NewServiceWithLogger(users, profiles, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, profiles ProfileRepository, hasher PasswordHasher, tokens *TokenService, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("users repository is required")
	}
	if profiles == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("profiles repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("token service is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("logger is required")
	}
	return &Service{
		users:    users,
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}, nil
}

// Tokens returns the token service used to issue sessions.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// SignUp registers a new account. It does not start a session.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*PublicUser, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.Role == "" {
		return nil, oops.Code(CodeMissingFields).Errorf("email, password, and user type are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, oops.Code(CodePasswordTooShort).
			With("min_length", MinPasswordLength).
			Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !ValidEmail(email) {
		return nil, oops.Code(CodeInvalidEmail).
			With("email", email).
			Errorf("email must contain only ASCII characters")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, oops.Code(CodeSignUpFailed).
			With("operation", "check email").
			Wrap(err)
	}
	if exists {
		return nil, oops.Code(CodeEmailTaken).
			With("email", email).
			Errorf("user with this email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() == CodePasswordTooLong {
			return nil, err
		}
		return nil, oops.Code(CodeSignUpFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash, role, in.FullName)
	if err != nil {
		return nil, oops.Code(CodeSignUpFailed).
			With("operation", "build user").
			Wrap(err)
	}

	// EmailExists is only a fast path; two concurrent sign-ups can both pass it
	// and the store's uniqueness constraint decides.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code(CodeEmailTaken).
				With("email", email).
				Errorf("user with this email already exists")
		}
		return nil, oops.Code(CodeSignUpFailed).
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.profiles.Create(ctx, user.Profile()); err != nil {
		s.logger.WarnContext(ctx, "best-effort profile create failed",
			"operation", "create_profile",
			"user_id", user.ID.String(),
			"error", err.Error())
	}

	s.logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID.String(),
		"user_type", role.String())
	return user.Public(), nil
}

// SignIn checks credentials and issues a session token.
// Unknown email, deactivated account, and wrong password are indistinguishable
// to the caller and take comparable time.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, oops.Code(CodeMissingCredentials).Errorf("email and password are required")
	}

	user, lookupErr := s.users.GetActiveByEmail(ctx, email)

	var targetHash string
	var userExists bool
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code(CodeSignInFailed).
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
		targetHash = s.dummyHash()
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, invalidCredentials()
		}
		return nil, oops.Code(CodeSignInFailed).
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(verifyErr)
	}
	if !userExists || !valid {
		return nil, invalidCredentials()
	}

	now := s.tokens.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "best-effort last login update failed",
			"operation", "update_last_login",
			"user_id", user.ID.String(),
			"error", err.Error())
	} else {
		user.LastLogin = &now
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, oops.Code(CodeSignInFailed).
			With("operation", "issue token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	return &SignInResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// CurrentUser resolves a session token to the active user it names.
// A (nil, nil) result means there is no valid session: the token is empty,
// fails verification, or names a user that is missing or deactivated.
// A non-nil error is returned only when the store itself fails.
func (s *Service) CurrentUser(ctx context.Context, token string) (*PublicUser, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "session token rejected", "error", err.Error())
		return nil, nil
	}

	id, err := ulid.Parse(claims.UserID)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code(CodeSessionFailed).
			With("operation", "get user by id").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user.Public(), nil
}

// Deactivate soft-deletes the active account with the given email.
// Tokens already issued to it stop resolving immediately.
func (s *Service) Deactivate(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("USER_NOT_FOUND").With("email", email).Wrap(err)
		}
		return oops.Code("USER_DEACTIVATE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	if err := s.users.SetActive(ctx, user.ID, false); err != nil {
		return oops.Code("USER_DEACTIVATE_FAILED").
			With("operation", "set active").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	s.logger.InfoContext(ctx, "user deactivated", "user_id", user.ID.String())
	return nil
}

// dummyHasher is implemented by hashers that can supply a never-matching hash
// in their own format.
type dummyHasher interface {
	dummyHash() string
}

// dummyHash returns the hash verified against when the email is unknown, so
// that the lookup miss still pays the full hashing cost.
func (s *Service) dummyHash() string {
	if d, ok := s.hasher.(dummyHasher); ok {
		return d.dummyHash()
	}
	return fmt.Sprintf("$2a$%02d$%s", DefaultBcryptCost, strings.Repeat("A", 53))
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
}
