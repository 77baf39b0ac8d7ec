// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/dumindu-Test/GradeMe/internal/auth/postgres"
	"github.com/dumindu-Test/GradeMe/internal/fixture"
	"github.com/dumindu-Test/GradeMe/internal/logging"
)

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return newSeedCmd(nil)
}

func newSeedCmd(deps *Deps) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create accounts from a fixture file",
		Long: `Create the accounts listed in a YAML fixture. Accounts whose email is
already registered are skipped, so seeding twice is safe. Without --file the
built-in demo accounts are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, deps, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file (default: built-in demo accounts)")
	return cmd
}

func runSeed(cmd *cobra.Command, deps *Deps, file string) error {
	deps = deps.withDefaults()
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	f := fixture.Demo()
	if file != "" {
		if f, err = fixture.Load(file); err != nil {
			return err
		}
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

	res, err := fixture.Apply(ctx, svc, f)
	for _, email := range res.Created {
		cmd.Printf("created  %s\n", email)
	}
	for _, email := range res.Skipped {
		cmd.Printf("skipped  %s (already registered)\n", email)
	}
	if err != nil {
		return err
	}
	cmd.Printf("Seeded %d account(s), skipped %d\n", len(res.Created), len(res.Skipped))
	return nil
}
