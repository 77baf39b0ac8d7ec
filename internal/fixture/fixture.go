// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

// Package fixture loads account fixtures: YAML lists of accounts that are
// created through the normal sign-up path.
package fixture

import (
	"context"
	_ "embed"
	"errors"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

//go:embed accounts.yaml
var demoAccounts []byte

// Fixture is the content of an accounts file.
type Fixture struct {
	Accounts []Account `yaml:"accounts" json:"accounts" jsonschema:"minItems=1"`
}

// Account is one account to create.
type Account struct {
	Email    string `yaml:"email" json:"email" jsonschema:"minLength=3,pattern=@"`
	Password string `yaml:"password" json:"password" jsonschema:"minLength=6"`
	UserType string `yaml:"user_type" json:"user_type" jsonschema:"enum=admin,enum=student"`
	FullName string `yaml:"full_name,omitempty" json:"full_name,omitempty"`
}

// Demo returns the built-in demo accounts.
func Demo() *Fixture {
	f, err := Parse(demoAccounts)
	if err != nil {
		panic(err) // embedded file is covered by tests
	}
	return f
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	//nolint:gosec // path comes from the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("FIXTURE_READ_FAILED").With("path", path).Wrap(err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return f, nil
}

// Parse validates data against the fixture schema and decodes it.
func Parse(data []byte) (*Fixture, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("FIXTURE_INVALID").Wrap(err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks constraints the schema cannot express.
func (f *Fixture) Validate() error {
	seen := make(map[string]int, len(f.Accounts))
	for i, a := range f.Accounts {
		email := auth.NormalizeEmail(a.Email)
		if first, dup := seen[email]; dup {
			return oops.Code("FIXTURE_INVALID").
				With("email", email).
				Errorf("accounts[%d] duplicates accounts[%d] (%s)", i, first, email)
		}
		seen[email] = i
	}
	return nil
}

// Registrar creates accounts.
type Registrar interface {
	SignUp(ctx context.Context, in auth.SignUpInput) (*auth.PublicUser, error)
}

// Result reports what Apply did, by normalized email.
type Result struct {
	Created []string
	Skipped []string
}

// Apply creates every account in f. Accounts whose email is already taken
// are skipped, so applying a fixture twice is harmless.
func Apply(ctx context.Context, r Registrar, f *Fixture) (Result, error) {
	var res Result
	for _, a := range f.Accounts {
		email := auth.NormalizeEmail(a.Email)
		_, err := r.SignUp(ctx, auth.SignUpInput{
			Email:    a.Email,
			Password: a.Password,
			Role:     a.UserType,
			FullName: a.FullName,
		})
		switch {
		case err == nil:
			res.Created = append(res.Created, email)
		case errutil.Code(err) == auth.CodeEmailTaken:
			res.Skipped = append(res.Skipped, email)
		case errors.Is(err, context.Canceled):
			return res, oops.Code("FIXTURE_APPLY_CANCELED").Wrap(err)
		default:
			return res, oops.Code("FIXTURE_APPLY_FAILED").With("email", email).Wrap(err)
		}
	}
	return res, nil
}
