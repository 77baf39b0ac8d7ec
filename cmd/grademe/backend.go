// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/auth/memory"
	"github.com/dumindu-Test/GradeMe/internal/auth/postgres"
	"github.com/dumindu-Test/GradeMe/internal/config"
	"github.com/dumindu-Test/GradeMe/internal/observability"
	"github.com/dumindu-Test/GradeMe/internal/store"
)

// backend is the credential store selected by store.driver.
type backend struct {
	users    auth.UserRepository
	profiles auth.ProfileRepository
	ready    observability.ReadinessChecker
	// memory is set for the in-process store only.
	memory *memory.Store
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, deps *Deps, logger *slog.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		logger.Warn("using the in-memory credential store; accounts are lost on exit")
		return &backend{
			users:    mem,
			profiles: mem.ProfileRepository(),
			ready:    func(context.Context) bool { return true },
			memory:   mem,
			close:    func() {},
		}, nil
	case config.DriverPostgres:
		pool, err := openPool(ctx, cfg, deps, logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			users:    postgres.NewUserRepository(pool),
			profiles: postgres.NewProfileRepository(pool),
			ready: func(ctx context.Context) bool {
				return pool.Ping(ctx) == nil
			},
			close: pool.Close,
		}, nil
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Store.Driver).
			Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// openPool connects to the configured database.
func openPool(ctx context.Context, cfg *config.Config, deps *Deps, logger *slog.Logger) (Pool, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").
			Errorf("store.database_url (or DATABASE_URL) is required")
	}
	pool, err := deps.PoolFactory(ctx, cfg.Store.DatabaseURL, store.ConnectOptions{
		Attempts: cfg.Store.ConnectAttempts,
		Logger:   logger,
	})
	if err != nil {
		return nil, oops.With("operation", "connect to database").Wrap(err)
	}
	logger.Info("connected to database")
	return pool, nil
}

// newAuthService assembles the auth service from the configured hasher and
// session settings.
func newAuthService(cfg *config.Config, users auth.UserRepository, profiles auth.ProfileRepository, logger *slog.Logger) (*auth.Service, error) {
	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.SessionLifetime)
	if err != nil {
		return nil, err
	}
	return auth.NewServiceWithLogger(users, profiles, hasher, tokens, logger)
}
