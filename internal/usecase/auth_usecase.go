// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"scribe/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	FullName  string
	Email     string
	Password  string
	AvatarURL string
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AuthOutput returns the authenticated user together with a signed token.
type AuthOutput struct {
	Token string
	User  *entity.User
}

// AuthUsecase defines the interface for identity-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Register creates a new account and returns it with a fresh token.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Login verifies credentials and returns the user with a fresh token.
	// Unknown email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Authenticate resolves a bearer token to the user ID it was issued for.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)

	// Me returns the account behind an authenticated user ID.
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
