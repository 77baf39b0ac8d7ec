// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
)

// ProfileRepository implements auth.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool poolIface
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool poolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Create stores a profile row. Re-creating an existing profile is a no-op.
func (r *ProfileRepository) Create(ctx context.Context, profile auth.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (id, email, user_type, full_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, profile.ID.String(), profile.Email, profile.Role.String(), profile.FullName)
	if err != nil {
		return oops.Code("PROFILE_CREATE_FAILED").
			With("operation", "insert profile").
			With("id", profile.ID.String()).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.ProfileRepository = (*ProfileRepository)(nil)
