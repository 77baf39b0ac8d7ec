// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/dumindu-Test/GradeMe/internal/auth/postgres"
	"github.com/dumindu-Test/GradeMe/internal/logging"
)

// NewUserCmd creates the user subcommand.
func NewUserCmd() *cobra.Command {
	return newUserCmd(nil)
}

func newUserCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate <email>",
		Short: "Deactivate an account",
		Long: `Deactivate the active account with the given email. The account can no
longer sign in and its existing sessions stop resolving. The email stays
reserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeactivate(cmd, deps, args[0])
		},
	})

	return cmd
}

func runDeactivate(cmd *cobra.Command, deps *Deps, email string) error {
	deps = deps.withDefaults()
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	logger := logging.Setup(serviceName, version, "text", cmd.ErrOrStderr())
	pool, err := openPool(ctx, cfg, deps, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, err := newAuthService(cfg, postgres.NewUserRepository(pool), postgres.NewProfileRepository(pool), logger)
	if err != nil {
		return err
	}
	if err := svc.Deactivate(ctx, email); err != nil {
		return err
	}
	cmd.Printf("Deactivated %s\n", email)
	return nil
}
