package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scribe/internal/domain/entity"
	domainerrors "scribe/internal/domain/errors"
	"scribe/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthUsecase struct {
	userID uuid.UUID
	token  string
}

func (s *stubAuthUsecase) Register(context.Context, *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	panic("not used")
}

func (s *stubAuthUsecase) Login(context.Context, *usecase.LoginInput) (*usecase.AuthOutput, error) {
	panic("not used")
}

func (s *stubAuthUsecase) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if token != s.token {
		return uuid.Nil, domainerrors.ErrUnauthorized
	}

	return s.userID, nil
}

func (s *stubAuthUsecase) Me(context.Context, uuid.UUID) (*entity.User, error) {
	panic("not used")
}

func runAuthMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	m := NewAuthMiddleware(&stubAuthUsecase{userID: userID, token: "good-token"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	var seenUserID uuid.UUID
	next := func(c echo.Context) error {
		nextCalled = true
		seenUserID, _ = UserID(c)

		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, m.Authenticate(next)(c))

	if nextCalled {
		assert.Equal(t, userID, seenUserID)
	}

	return rec, nextCalled, userID
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, nextCalled, _ := runAuthMiddleware(t, "")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	rec, nextCalled, _ := runAuthMiddleware(t, "Basic dXNlcjpwYXNz")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec, nextCalled, _ := runAuthMiddleware(t, "Bearer forged-token")

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rec, nextCalled, _ := runAuthMiddleware(t, "Bearer good-token")

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
}
