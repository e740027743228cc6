package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qissa-server/internal/auth"
	"qissa-server/internal/config"
	"qissa-server/internal/models"
	"qissa-server/internal/repo"
	"qissa-server/internal/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPasswordService(users services.UserRepository, mailer services.Mailer) *services.PasswordService {
	cfg := &config.Config{PasswordMinLen: 6, FrontendURL: "https://app.example.com"}
	return services.NewPasswordService(users, mailer, cfg, discardLogger())
}

func TestPasswordService_Forgot_UnknownEmail(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	svc := newPasswordService(mockRepo, mockMailer)

	mockRepo.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, repo.ErrNotFound).Once()

	err := svc.Forgot(context.Background(), "nobody@x.com")
	requireAppError(t, err, "UNKNOWN_EMAIL")

	mockMailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordService_Forgot_Success(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	svc := newPasswordService(mockRepo, mockMailer)

	user := &models.User{ID: "u1", Email: "a@x.com"}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()

	var issuedToken string
	mockRepo.On("SetResetToken", mock.Anything, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			issuedToken = args.String(2)
			expiry := args.Get(3).(time.Time)
			require.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)
		}).
		Return(nil).Once()

	mockMailer.On("Send", "a@x.com", "Reset Password", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			require.Contains(t, args.String(2), "https://app.example.com/reset-password/"+issuedToken)
		}).
		Return(nil).Once()

	require.NoError(t, svc.Forgot(context.Background(), "a@x.com"))
	require.Len(t, issuedToken, 40)

	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestPasswordService_Forgot_MailFailureRollsBack(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	svc := newPasswordService(mockRepo, mockMailer)

	user := &models.User{ID: "u1", Email: "a@x.com"}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
	mockRepo.On("SetResetToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	mockRepo.On("ClearResetToken", mock.Anything, "u1").Return(nil).Once()

	err := svc.Forgot(context.Background(), "a@x.com")
	requireAppError(t, err, "MAIL_DELIVERY_FAILED")

	mockRepo.AssertExpectations(t)
}

func TestPasswordService_Forgot_RollbackFailure(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	svc := newPasswordService(mockRepo, mockMailer)

	user := &models.User{ID: "u1", Email: "a@x.com"}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()
	mockRepo.On("SetResetToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	mockRepo.On("ClearResetToken", mock.Anything, "u1").Return(errors.New("db down")).Once()

	err := svc.Forgot(context.Background(), "a@x.com")
	requireAppError(t, err, "INCONSISTENT_STATE")
}

func TestPasswordService_Reset_InvalidToken(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	mockRepo.On("GetByResetToken", mock.Anything, "bad-token").Return(nil, repo.ErrNotFound).Once()

	err := svc.Reset(context.Background(), "bad-token", "newpassword1")
	requireAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")
}

func TestPasswordService_Reset_Success(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	user := &models.User{ID: "u1", Email: "a@x.com"}
	mockRepo.On("GetByResetToken", mock.Anything, "good-token").Return(user, nil).Once()
	mockRepo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			require.True(t, auth.CheckPassword("newpassword1", args.String(2)))
		}).
		Return(nil).Once()

	require.NoError(t, svc.Reset(context.Background(), "good-token", "newpassword1"))
	mockRepo.AssertExpectations(t)
}

func TestPasswordService_Reset_MissingPassword(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	err := svc.Reset(context.Background(), "good-token", "")
	requireAppError(t, err, "VALIDATION_ERROR")

	mockRepo.AssertNotCalled(t, "GetByResetToken", mock.Anything, mock.Anything)
}

func TestPasswordService_Change_WrongOldPassword(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	hash, err := auth.HashPassword("oldpassword")
	require.NoError(t, err)
	mockRepo.On("GetByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", PasswordHash: hash}, nil).Once()

	err = svc.Change(context.Background(), "u1", "not-the-old-one", "newpassword1")
	requireAppError(t, err, "INVALID_OLD_PASSWORD")

	mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestPasswordService_Change_UserNotFound(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	mockRepo.On("GetByID", mock.Anything, "ghost").Return(nil, repo.ErrNotFound).Once()

	err := svc.Change(context.Background(), "ghost", "oldpassword", "newpassword1")
	requireAppError(t, err, "NOT_FOUND")
}

func TestPasswordService_Change_Success(t *testing.T) {
	t.Parallel()

	mockRepo := new(MockUserRepository)
	svc := newPasswordService(mockRepo, new(MockMailer))

	hash, err := auth.HashPassword("oldpassword")
	require.NoError(t, err)
	mockRepo.On("GetByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", PasswordHash: hash}, nil).Once()
	mockRepo.On("UpdatePassword", mock.Anything, "u1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			require.True(t, auth.CheckPassword("newpassword1", args.String(2)))
		}).
		Return(nil).Once()

	require.NoError(t, svc.Change(context.Background(), "u1", "oldpassword", "newpassword1"))
	mockRepo.AssertExpectations(t)
}
