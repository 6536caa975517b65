package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string        `json:"token"`
	User  auth.Identity `json:"user"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a customer account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return AuthResult{}, fail(ErrInvalidInput, "All fields are required")
	}
	if err := validate.Var("email", in.Email, "email"); err != nil {
		return AuthResult{}, fail(ErrInvalidInput, "%s", err.Error())
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return AuthResult{}, fail(ErrInvalidInput, "Password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, fail(ErrConflict, "Email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("auth: lookup %s: %w", in.Email, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{Email: in.Email, Password: hash, Name: in.Name, Role: auth.RoleCustomer}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return AuthResult{}, fail(ErrConflict, "Email already exists")
		}
		return AuthResult{}, fmt.Errorf("auth: create user: %w", err)
	}
	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return AuthResult{}, fail(ErrInvalidInput, "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return AuthResult{}, fail(ErrUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth: lookup %s: %w", email, err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return AuthResult{}, fail(ErrUnauthorized, "Invalid credentials")
	}
	return s.issue(user)
}

// Me returns the account behind a verified identity.
func (s *AuthService) Me(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return user, fail(ErrNotFound, "User not found")
	}
	return user, err
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	id := IdentityOf(user)
	token, err := auth.GenerateToken(id)
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return AuthResult{Token: token, User: id}, nil
}

// IdentityOf is the token identity of user.
func IdentityOf(user models.User) auth.Identity {
	return auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}
