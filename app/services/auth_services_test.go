package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestRegisterThenLogin(t *testing.T) {
	svc := services.NewAuthService(repositories.NewUserRepository(testdb.Open(t)))
	ctx := context.Background()

	res, err := svc.Register(ctx, services.RegisterInput{Email: "Jane@Example.com", Password: "secret1", Name: "Jane"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, auth.RoleCustomer, res.User.Role)

	_, err = svc.Register(ctx, services.RegisterInput{Email: "jane@example.com", Password: "other", Name: "Jane 2"})
	assertKind(t, err, services.ErrConflict, "Email already exists")

	login, err := svc.Login(ctx, services.LoginInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := auth.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, claims.Role)
	assert.Equal(t, res.User.ID, claims.Identity.ID)

	me, err := svc.Me(ctx, claims.Identity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", me.Name)
}

func TestRegisterValidation(t *testing.T) {
	svc := services.NewAuthService(repositories.NewUserRepository(testdb.Open(t)))
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{Email: "a@b.c", Password: "", Name: "A"})
	assertKind(t, err, services.ErrInvalidInput, "All fields are required")

	_, err = svc.Register(ctx, services.RegisterInput{Email: "not-an-email", Password: "x", Name: "A"})
	assertKind(t, err, services.ErrInvalidInput, "email must be a valid email address")

	long := strings.Repeat("a", auth.MaxPasswordBytes+1)
	_, err = svc.Register(ctx, services.RegisterInput{Email: "long@example.com", Password: long, Name: "A"})
	assertKind(t, err, services.ErrInvalidInput, "Password must be at most 72 bytes")

	_, err = svc.Register(ctx, services.RegisterInput{Email: "edge@example.com", Password: long[:auth.MaxPasswordBytes], Name: "A"})
	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	svc := services.NewAuthService(repositories.NewUserRepository(testdb.Seeded(t)))
	ctx := context.Background()

	_, err := svc.Login(ctx, services.LoginInput{Email: seeders.AdminEmail})
	assertKind(t, err, services.ErrInvalidInput, "Email and password are required")

	_, err = svc.Login(ctx, services.LoginInput{Email: seeders.AdminEmail, Password: "wrong"})
	assertKind(t, err, services.ErrUnauthorized, "Invalid credentials")

	_, err = svc.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "x"})
	assertKind(t, err, services.ErrUnauthorized, "Invalid credentials")

	res, err := svc.Login(ctx, services.LoginInput{Email: seeders.AdminEmail, Password: seeders.AdminPassword})
	require.NoError(t, err)
	assert.True(t, res.User.IsAdmin())
}
