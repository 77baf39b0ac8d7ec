// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package auth provides authentication primitives for GradeMe.
//
// # Domain Types
//
// A User is created with NewUser, which normalizes the email and validates
// the role. Repository implementations receive pre-validated users and are
// the only code that builds User values directly from stored rows.
//
// A User never leaves this package's callers as-is: transports serialize the
// PublicUser returned by User.Public, which carries no password hash.
//
// # Collaborators
//
//   - UserRepository, ProfileRepository - the credential store gateway
//   - PasswordHasher - BcryptHasher (default) or Argon2idHasher
//   - TokenService - signed, time-limited session tokens
//
// # Services
//
// Service composes the collaborators into the sign-up, sign-in and
// current-user use cases. Sign-out has no server state: the session token is
// stateless and is discarded by overwriting the cookie that carries it.
package auth
