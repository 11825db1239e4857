package impl

import (
	"context"
	"log/slog"
	"testing"

	"scribe/config"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestService() (usecase.AuthUsecase, *fakeUserRepo, *fakeTokenService) {
	userRepo := newFakeUserRepo()
	tokens := newFakeTokenService()

	svc := NewAuthService(AuthServiceParams{
		UserRepo:     userRepo,
		Hasher:       fakeHasher{},
		TokenService: tokens,
		Config: &config.Config{
			Auth: &config.AuthConfig{MinPasswordLength: 6},
		},
		Logger: slog.New(slog.DiscardHandler),
	})

	return svc, userRepo, tokens
}

func validRegisterInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		FullName: "Jamie Writer",
		Email:    "jamie@example.com",
		Password: "sup3rsecret",
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _ := newAuthTestService()

	out, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	require.NotNil(t, out.User)

	assert.NotEmpty(t, out.Token)
	assert.NotEqual(t, uuid.Nil, out.User.ID)
	assert.Equal(t, "jamie@example.com", out.User.Email)
	assert.NotEqual(t, "sup3rsecret", out.User.PasswordHash, "password must never be stored verbatim")
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	svc, _, _ := newAuthTestService()

	input := validRegisterInput()
	input.Email = "  Jamie@Example.COM "

	out, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", out.User.Email)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usecase.RegisterInput)
	}{
		{"empty full name", func(in *usecase.RegisterInput) { in.FullName = "   " }},
		{"malformed email", func(in *usecase.RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *usecase.RegisterInput) { in.Password = "abc" }},
		{"bad avatar url", func(in *usecase.RegisterInput) { in.AvatarURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo, _ := newAuthTestService()

			input := validRegisterInput()
			tt.mutate(input)

			_, err := svc.Register(context.Background(), input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
			assert.Empty(t, userRepo.users, "nothing may be persisted on validation failure")
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, userRepo, _ := newAuthTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	second := validRegisterInput()
	second.FullName = "Impostor"
	second.Password = "different-pass"

	_, err = svc.Register(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)

	// The original account must be left intact.
	stored, err := userRepo.FindByID(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie Writer", stored.FullName)
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	out, err := svc.Login(ctx, &usecase.LoginInput{
		Email:    "jamie@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	assert.Equal(t, registered.User.ID, out.User.ID)
	assert.NotEmpty(t, out.Token)
}

func TestAuthService_Login_Indistinguishable(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, unknownEmailErr := svc.Login(ctx, &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "sup3rsecret",
	})
	_, wrongPasswordErr := svc.Login(ctx, &usecase.LoginInput{
		Email:    "jamie@example.com",
		Password: "wrong-password",
	})

	// Both failure modes must collapse to the same credential error so the
	// endpoint cannot be used to probe registered emails.
	require.Error(t, unknownEmailErr)
	require.Error(t, wrongPasswordErr)
	assert.ErrorIs(t, unknownEmailErr, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPasswordErr, domainerrors.ErrInvalidCredentials)

	var appErrA, appErrB domainerrors.AppError
	require.True(t, errors.As(unknownEmailErr, &appErrA))
	require.True(t, errors.As(wrongPasswordErr, &appErrB))
	assert.Equal(t, appErrA.ErrorCode(), appErrB.ErrorCode())
	assert.Equal(t, appErrA.Message(), appErrB.Message())
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	userID, err := svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, userID)
}

func TestAuthService_Authenticate_InvalidToken(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Authenticate(context.Background(), "garbage-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	user, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", user.Email)
}

func TestAuthService_Me_Missing(t *testing.T) {
	svc, _, _ := newAuthTestService()

	_, err := svc.Me(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
