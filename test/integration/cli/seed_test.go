// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

//go:build integration

package cli_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("CLI against PostgreSQL", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		dropSchema(ctx, env.pool)
	})

	Describe("migrate", func() {
		It("applies, reports, and rolls back the schema", func() {
			out, err := grademe(ctx, "migrate", "version")
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("Version: none"))
			Expect(out).To(ContainSubstring("000001_create_users"))

			out, err = grademe(ctx, "migrate", "up")
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("Migrations completed successfully"))

			out, err = grademe(ctx, "migrate", "version")
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("Version: 2 (000002_create_user_profiles)"))
			Expect(out).To(ContainSubstring("Pending: none"))

			out, err = grademe(ctx, "migrate", "down", "--steps", "1")
			Expect(err).NotTo(HaveOccurred(), out)

			var exists bool
			Expect(env.pool.QueryRow(ctx, "SELECT to_regclass('user_profiles') IS NOT NULL").Scan(&exists)).To(Succeed())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("seed", func() {
		BeforeEach(func() {
			out, err := grademe(ctx, "migrate", "up")
			Expect(err).NotTo(HaveOccurred(), out)
		})

		It("creates the demo accounts once", func() {
			out, err := grademe(ctx, "seed")
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("Seeded 3 account(s), skipped 0"))

			out, err = grademe(ctx, "seed")
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("Seeded 0 account(s), skipped 3"))

			var count int
			Expect(env.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)).To(Succeed())
			Expect(count).To(Equal(3))

			var userType string
			Expect(env.pool.QueryRow(ctx,
				"SELECT user_type FROM users WHERE email = $1", "teacher@grademe.com",
			).Scan(&userType)).To(Succeed())
			Expect(userType).To(Equal("admin"))
		})

		It("creates accounts from a fixture file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "accounts.yaml")
			Expect(os.WriteFile(path, []byte(`
accounts:
  - email: Grader@School.edu
    password: grader-pass
    user_type: admin
    full_name: Grader
`), 0o600)).To(Succeed())

			out, err := grademe(ctx, "seed", "--file", path)
			Expect(err).NotTo(HaveOccurred(), out)
			Expect(out).To(ContainSubstring("created  grader@school.edu"))

			var fullName string
			Expect(env.pool.QueryRow(ctx,
				"SELECT full_name FROM user_profiles WHERE email = $1", "grader@school.edu",
			).Scan(&fullName)).To(Succeed())
			Expect(fullName).To(Equal("Grader"))
		})
	})

	Describe("user deactivate", func() {
		It("soft-deactivates an account", func() {
			out, err := grademe(ctx, "migrate", "up")
			Expect(err).NotTo(HaveOccurred(), out)
			out, err = grademe(ctx, "seed")
			Expect(err).NotTo(HaveOccurred(), out)

			out, err = grademe(ctx, "user", "deactivate", "student@university.edu")
			Expect(err).NotTo(HaveOccurred(), out)

			var active bool
			Expect(env.pool.QueryRow(ctx,
				"SELECT is_active FROM users WHERE email = $1", "student@university.edu",
			).Scan(&active)).To(Succeed())
			Expect(active).To(BeFalse())

			out, err = grademe(ctx, "user", "deactivate", "student@university.edu")
			Expect(err).To(HaveOccurred())
			Expect(out).To(ContainSubstring("not found"))
		})
	})

	Describe("error handling", func() {
		It("fails when no database is configured", func() {
			cmd := exec.CommandContext(ctx, "go", "run", ".", "seed")
			cmd.Dir = "../../../cmd/grademe"
			cmd.Env = append(cmd.Environ(), "DATABASE_URL=", "XDG_CONFIG_HOME="+GinkgoT().TempDir())

			output, err := cmd.CombinedOutput()
			Expect(err).To(HaveOccurred())
			Expect(string(output)).To(ContainSubstring("DATABASE_URL"))
		})
	})
})
