// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	gmtls "github.com/dumindu-Test/GradeMe/internal/tls"
	"github.com/dumindu-Test/GradeMe/internal/xdg"
)

// NewCertCmd creates the cert subcommand.
func NewCertCmd() *cobra.Command {
	var (
		dir   string
		hosts []string
	)

	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Generate a development TLS certificate",
		Long: `Generate a server certificate for local HTTPS, signed by a development CA.
The CA is created on first use and reused afterwards; trust root-ca.crt in
your browser once. Point http.tls_cert and http.tls_key at the printed paths.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCert(cmd, dir, hosts)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: $XDG_CONFIG_HOME/grademe/certs)")
	cmd.Flags().StringSliceVar(&hosts, "host", nil, "extra DNS name or IP for the server certificate (repeatable)")

	return cmd
}

func runCert(cmd *cobra.Command, dir string, hosts []string) error {
	if dir == "" {
		d, err := xdg.CertsDir()
		if err != nil {
			return err
		}
		dir = d
	}

	ca, created, err := gmtls.EnsureCA(dir)
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("Created CA     %s\n", filepath.Join(dir, gmtls.CAFile))
	} else {
		cmd.Printf("Using CA       %s\n", filepath.Join(dir, gmtls.CAFile))
	}

	server, err := gmtls.GenerateServerCert(ca, hosts...)
	if err != nil {
		return err
	}
	if err := gmtls.Save(dir, ca, server); err != nil {
		return err
	}

	cmd.Printf("http.tls_cert: %s\n", filepath.Join(dir, gmtls.ServerFile))
	cmd.Printf("http.tls_key:  %s\n", filepath.Join(dir, gmtls.ServerKeyFile))
	return nil
}
