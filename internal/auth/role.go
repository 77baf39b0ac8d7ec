// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package auth

import (
	"encoding/json"

	"github.com/samber/oops"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role uint8

// Roles known to GradeMe.
const (
	RoleAdmin Role = iota + 1
	RoleStudent
)

// ParseRole resolves the wire representation ("admin" or "student") to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "student":
		return RoleStudent, nil
	default:
		return 0, oops.Code(CodeInvalidRole).
			With("user_type", s).
			Errorf("user type must be either admin or student")
	}
}

// String returns the wire representation of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStudent:
		return "student"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent:
		return true
	default:
		return false
	}
}

// LandingPath is the page a user of this role is sent to after sign-in or
// when they request a page belonging to the other role.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleStudent:
		return "/student/dashboard"
	default:
		return "/"
	}
}

// MarshalJSON encodes the role as its wire string.
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, oops.Code(CodeInvalidRole).With("role", uint8(r)).Errorf("cannot encode invalid role")
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a wire string into a Role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return oops.Code(CodeInvalidRole).Wrap(err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
