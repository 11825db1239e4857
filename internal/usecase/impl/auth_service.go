// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scribe/config"
	deliverycontext "scribe/internal/delivery/context"
	"scribe/internal/domain/entity"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/domain/repository"
	"scribe/internal/domain/service"
	"scribe/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// fieldValidator backs ad-hoc field checks inside the usecase layer. It is
// shared and safe for concurrent use.
//
//nolint:gochecknoglobals
var fieldValidator = validator.New()

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo          repository.UserRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	minPasswordLength int
	logger            *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	minPasswordLength := 0
	if params.Config != nil && params.Config.Auth != nil {
		minPasswordLength = params.Config.Auth.MinPasswordLength
	}

	return &authService{
		userRepo:          params.UserRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		minPasswordLength: minPasswordLength,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account registration process.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.validateRegistration(input); err != nil {
		srv.log(ctx).Warn("Registration validation failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		AvatarURL:    input.AvatarURL,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			srv.log(ctx).Warn("Registration rejected, email already registered", slog.String("email", newUser.Email))

			return nil, domainerrors.ErrEmailAlreadyRegistered.WrapMessage("registration failed")
		}
		srv.log(ctx).Error("Failed to create user during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	token, err := srv.tokenService.Generate(newUser.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate token after registration", slog.Any("userID", newUser.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate token after registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.AuthOutput{Token: token, User: newUser}, nil
}

// Login orchestrates the credential verification process.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, unknown email", slog.String("email", input.Email))

			// Same error as a wrong password so callers cannot probe
			// which emails are registered.
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}
		srv.log(ctx).Error("Failed to load user during login", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find user by email during login")
	}

	// bcrypt comparison is CPU-bound and constant-time per attempt.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	token, err := srv.tokenService.Generate(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate token during login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate token during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to the user ID it was issued for.
func (srv *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := srv.tokenService.Validate(token)
	if err != nil {
		srv.log(ctx).Debug("Token validation failed", slog.Any("error", err))

		// Expired, malformed and forged tokens all collapse to the same
		// outcome for the caller.
		return uuid.Nil, domainerrors.ErrUnauthorized.WrapMessage("token validation failed")
	}

	return claims.UserID, nil
}

// Me returns the account behind an authenticated user ID.
func (srv *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Authenticated user no longer exists", slog.Any("userID", userID))

			return nil, domainerrors.ErrUserNotFound.WrapMessage("me lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

func (srv *authService) validateRegistration(input *usecase.RegisterInput) error {
	var fields []string

	if strings.TrimSpace(input.FullName) == "" {
		fields = append(fields, "fullName must not be empty")
	}
	// Validate the normalized form so surrounding whitespace or mixed case
	// never fails an otherwise valid address.
	if err := fieldValidator.Var(normalizeEmail(input.Email), "required,email"); err != nil {
		fields = append(fields, "email must be a valid address")
	}
	if len(input.Password) < srv.minPasswordLength {
		fields = append(fields, fmt.Sprintf("password must be at least %d characters", srv.minPasswordLength))
	}
	if input.AvatarURL != "" {
		if err := fieldValidator.Var(input.AvatarURL, "url"); err != nil {
			fields = append(fields, "avatarUrl must be a valid URL")
		}
	}

	if len(fields) > 0 {
		return domainerrors.ErrValidationFailed.WithDetails(strings.Join(fields, "; "))
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
