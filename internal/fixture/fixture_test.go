// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package fixture_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/auth/memory"
	"github.com/dumindu-Test/GradeMe/internal/fixture"
	"github.com/dumindu-Test/GradeMe/pkg/errutil"
)

func TestDemo(t *testing.T) {
	f := fixture.Demo()
	require.Len(t, f.Accounts, 3)

	byEmail := make(map[string]fixture.Account)
	for _, a := range f.Accounts {
		byEmail[a.Email] = a
	}
	assert.Equal(t, "admin", byEmail["admin@grademe.com"].UserType)
	assert.Equal(t, "student123", byEmail["student@university.edu"].Password)
	assert.Equal(t, "admin", byEmail["teacher@grademe.com"].UserType)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid",
			yaml: `
accounts:
  - email: a@example.com
    password: secret1
    user_type: student
`,
		},
		{
			name: "full name optional",
			yaml: `
accounts:
  - email: a@example.com
    password: secret1
    user_type: admin
    full_name: A
`,
		},
		{name: "empty", yaml: "", wantErr: true},
		{name: "malformed yaml", yaml: "accounts: [", wantErr: true},
		{name: "no accounts", yaml: "accounts: []", wantErr: true},
		{
			name: "unknown role",
			yaml: `
accounts:
  - email: a@example.com
    password: secret1
    user_type: teacher
`,
			wantErr: true,
		},
		{
			name: "short password",
			yaml: `
accounts:
  - email: a@example.com
    password: abc
    user_type: student
`,
			wantErr: true,
		},
		{
			name: "missing email",
			yaml: `
accounts:
  - password: secret1
    user_type: student
`,
			wantErr: true,
		},
		{
			name: "unknown field",
			yaml: `
accounts:
  - email: a@example.com
    password: secret1
    user_type: student
    shoe_size: 9
`,
			wantErr: true,
		},
		{
			name: "duplicate email after normalization",
			yaml: `
accounts:
  - email: a@example.com
    password: secret1
    user_type: student
  - email: " A@Example.com"
    password: secret2
    user_type: admin
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := fixture.Parse([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "FIXTURE_INVALID")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, f.Accounts)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - email: load@example.com
    password: secret1
    user_type: admin
`), 0o600))

	f, err := fixture.Load(path)
	require.NoError(t, err)
	require.Len(t, f.Accounts, 1)
	assert.Equal(t, "load@example.com", f.Accounts[0].Email)

	_, err = fixture.Load(filepath.Join(dir, "missing.yaml"))
	errutil.AssertErrorCode(t, err, "FIXTURE_READ_FAILED")
}

func TestGenerateSchema(t *testing.T) {
	data, err := fixture.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, fixture.SchemaID, doc["$id"])
	assert.Contains(t, doc["required"], "accounts")
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, fixture.FormatSchemaError(nil))
	assert.Equal(t, "plain", fixture.FormatSchemaError(errors.New("plain")))
	assert.Equal(t, "at '/accounts': bad", fixture.FormatSchemaError(errors.New("header\n  at '/accounts': bad")))
}

func newService(t *testing.T) (*auth.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("fixture-test-secret-0123456789"), 0)
	require.NoError(t, err)
	svc, err := auth.NewService(store, store.ProfileRepository(), hasher, tokens)
	require.NoError(t, err)
	return svc, store
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	res, err := fixture.Apply(ctx, svc, fixture.Demo())
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@grademe.com", "student@university.edu", "teacher@grademe.com"}, res.Created)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 3, store.Len())

	signedIn, err := svc.SignIn(ctx, "teacher@grademe.com", "teacher123")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, signedIn.User.Role)
	assert.Equal(t, "Demo Teacher", signedIn.User.FullName)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	_, err := fixture.Apply(ctx, svc, fixture.Demo())
	require.NoError(t, err)

	res, err := fixture.Apply(ctx, svc, fixture.Demo())
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Skipped, 3)
	assert.Equal(t, 3, store.Len())
}

type mockRegistrar struct {
	mock.Mock
}

func (m *mockRegistrar) SignUp(ctx context.Context, in auth.SignUpInput) (*auth.PublicUser, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*auth.PublicUser)
	return user, args.Error(1)
}

func TestApplyStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	f := &fixture.Fixture{Accounts: []fixture.Account{
		{Email: "one@example.com", Password: "secret1", UserType: "student"},
		{Email: "two@example.com", Password: "secret2", UserType: "student"},
		{Email: "three@example.com", Password: "secret3", UserType: "student"},
	}}

	reg := &mockRegistrar{}
	reg.On("SignUp", ctx, mock.MatchedBy(func(in auth.SignUpInput) bool { return in.Email == "one@example.com" })).
		Return(&auth.PublicUser{Email: "one@example.com"}, nil).Once()
	reg.On("SignUp", ctx, mock.MatchedBy(func(in auth.SignUpInput) bool { return in.Email == "two@example.com" })).
		Return(nil, oops.Code(auth.CodeSignUpFailed).Errorf("store down")).Once()

	res, err := fixture.Apply(ctx, reg, f)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, auth.CodeSignUpFailed)
	errutil.AssertErrorContext(t, err, "email", "two@example.com")
	assert.Equal(t, []string{"one@example.com"}, res.Created)
	reg.AssertExpectations(t)
}

func TestApplyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := &mockRegistrar{}
	reg.On("SignUp", ctx, mock.Anything).Return(nil, oops.Wrap(context.Canceled)).Once()

	_, err := fixture.Apply(ctx, reg, fixture.Demo())
	errutil.AssertErrorCode(t, err, "FIXTURE_APPLY_CANCELED")
}
