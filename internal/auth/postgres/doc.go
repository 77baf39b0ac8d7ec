// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package postgres implements the auth credential store on PostgreSQL.
// It expects the schema applied by store.Migrator.
//
// Error codes follow oops semantics: the innermost code is the one reported.
// Each repository method codes its own failures (USER_GET_BY_ID_FAILED,
// PROFILE_CREATE_FAILED, ...) and helpers below it add context only, except
// for rows that cannot be decoded (USER_INVALID_ID, USER_INVALID_ROLE).
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface is the subset of *pgxpool.Pool the repositories use, so tests can
// substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
