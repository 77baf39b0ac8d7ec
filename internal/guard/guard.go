// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package guard decides whether a session may see a role-gated page.
//
// Evaluate is the pure decision. Session holds the client-side view of the
// current user and notifies watchers when it changes; Middleware applies the
// same decision server-side to HTML page routes.
package guard

import (
	"github.com/dumindu-Test/GradeMe/internal/auth"
)

// EntryPath is the public page unauthenticated visitors are sent to.
const EntryPath = "/"

// State is the outcome of evaluating a view against a requirement.
type State uint8

// Guard states.
const (
	// StateLoading means the session is still being resolved; nothing is
	// rendered and no redirect happens.
	StateLoading State = iota
	StateUnauthenticated
	StateWrongRole
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateWrongRole:
		return "wrong_role"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// View is the client's picture of the session. It is derived from
// Who-am-I and is never authoritative.
type View struct {
	User    *auth.PublicUser
	Loading bool
}

// Requirement names the role a page needs. The zero value admits any
// signed-in user.
type Requirement struct {
	role auth.Role
}

// AnyRole admits every signed-in user.
var AnyRole = Requirement{}

// Require admits only users with the given role.
func Require(role auth.Role) Requirement {
	return Requirement{role: role}
}

// Role returns the required role, or the zero Role for AnyRole.
func (r Requirement) Role() auth.Role {
	return r.role
}

// Decision is the result of Evaluate.
type Decision struct {
	State State
	// RedirectTo is set for StateUnauthenticated and StateWrongRole.
	RedirectTo string
}

// Evaluate decides what a page with requirement req shows for view.
func Evaluate(view View, req Requirement) Decision {
	if view.Loading {
		return Decision{State: StateLoading}
	}
	if view.User == nil || !view.User.Role.Valid() {
		return Decision{State: StateUnauthenticated, RedirectTo: EntryPath}
	}
	if !admits(req, view.User.Role) {
		return Decision{State: StateWrongRole, RedirectTo: view.User.Role.LandingPath()}
	}
	return Decision{State: StateAuthorized}
}

func admits(req Requirement, role auth.Role) bool {
	switch req.role {
	case 0:
		return true
	case auth.RoleAdmin, auth.RoleStudent:
		return req.role == role
	default:
		return false
	}
}
