package services_test

import (
	"context"
	"testing"
	"time"

	"qissa-server/internal/auth"
	"qissa-server/internal/config"
	"qissa-server/internal/models"
	"qissa-server/internal/repo"
	"qissa-server/internal/services"
	"qissa-server/internal/utils"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(users services.UserRepository) (*services.AuthService, *auth.TokenIssuer) {
	cfg := &config.Config{PasswordMinLen: 6, JWTExpiry: 7 * 24 * time.Hour}
	issuer := auth.NewTokenIssuer("test-secret", cfg.JWTExpiry)
	cookies := services.DefaultCookieOptions(cfg.JWTExpiry)
	return services.NewAuthService(users, issuer, cookies, cfg), issuer
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

func TestAuthService_Register_Success(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, issuer := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, repo.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, token, err := svc.Register(context.Background(), services.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
		Username: "anna",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)

	// stored hash, never the plaintext
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.True(t, auth.CheckPassword("secret1", user.PasswordHash))

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_MissingPassword(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, _ := newAuthService(mockRepo)

	_, _, err := svc.Register(context.Background(), services.RegisterInput{Email: "a@x.com"})
	requireAppError(t, err, "VALIDATION_ERROR")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, _ := newAuthService(mockRepo)

	existing := &models.User{ID: "u1", Email: "a@x.com"}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(existing, nil).Once()

	_, _, err := svc.Register(context.Background(), services.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	})
	requireAppError(t, err, "DUPLICATE_EMAIL")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_DuplicateCaughtAtInsert(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, _ := newAuthService(mockRepo)

	// the advisory check passes but a racing insert hit the unique index
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, repo.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicateEmail).Once()

	_, _, err := svc.Register(context.Background(), services.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	})
	requireAppError(t, err, "DUPLICATE_EMAIL")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, _ := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, repo.ErrNotFound).Once()

	_, _, err := svc.Login(context.Background(), "nobody@x.com", "secret1")
	requireAppError(t, err, "INVALID_CREDENTIALS")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, _ := newAuthService(mockRepo)

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&models.User{ID: "u1", Email: "a@x.com", PasswordHash: hash}, nil).Once()

	_, _, err = svc.Login(context.Background(), "a@x.com", "wrong")
	requireAppError(t, err, "INVALID_CREDENTIALS")
}

func TestAuthService_Login_Success(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc, issuer := newAuthService(mockRepo)

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&models.User{ID: "u1", Email: "a@x.com", PasswordHash: hash}, nil).Once()

	user, token, err := svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}
