// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested user does not exist or is deactivated.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a user with the same normalized email already exists.
var ErrConflict = errors.New("conflict")

// ErrInvalidToken is returned for any session token that fails verification:
// malformed, unsigned, tampered, signed with another algorithm, or expired.
var ErrInvalidToken = errors.New("invalid session token")

// Error codes attached to errors returned by Service. Transport layers switch
// on these to choose a status and a stable public message.
//
// oops reports the innermost code, so a store failure that already carries a
// code (USER_GET_BY_ID_FAILED, ...) keeps it and the *Failed codes below only
// show for uncoded causes. Either way the code is not public. Client-facing
// codes are always attached to fresh errors, never by wrapping.
const (
	CodeMissingFields      = "AUTH_MISSING_FIELDS"
	CodePasswordTooShort   = "AUTH_PASSWORD_TOO_SHORT"
	CodePasswordTooLong    = "AUTH_PASSWORD_TOO_LONG"
	CodeInvalidRole        = "AUTH_INVALID_ROLE"
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeMissingCredentials = "AUTH_MISSING_CREDENTIALS"
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeSignUpFailed       = "AUTH_SIGNUP_FAILED"
	CodeSignInFailed       = "AUTH_SIGNIN_FAILED"
	CodeSessionFailed      = "AUTH_SESSION_FAILED"
)
