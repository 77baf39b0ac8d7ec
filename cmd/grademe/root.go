// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dumindu-Test/GradeMe/internal/config"
	"github.com/dumindu-Test/GradeMe/internal/xdg"
)

const serviceName = "grademe"

// NewRootCmd creates the root command for the GradeMe CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grademe",
		Short: "GradeMe - accounts and sessions for the GradeMe grading platform",
		Long: `GradeMe runs the account service of the grading platform: sign-up,
sign-in, cookie sessions and the role-based page guard for admins and students.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: $XDG_CONFIG_HOME/grademe/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewCertCmd())

	return cmd
}

// loadConfig loads the configuration for cmd. An explicit --config file must
// exist; the XDG default is optional.
func loadConfig(cmd *cobra.Command, flags *pflag.FlagSet) (*config.Config, error) {
	var path string
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}
	required := path != ""
	if path == "" {
		if p, err := xdg.ConfigFile(); err == nil {
			path = p
		}
	}
	return config.Load(path, required, flags)
}
