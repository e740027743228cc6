package services_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"qissa-server/internal/models"
	"qissa-server/internal/repo"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	args := m.Called(ctx, userID, token, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID string, upd repo.ProfileUpdate) error {
	args := m.Called(ctx, userID, upd)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, data []byte, contentType string) (*models.Avatar, error) {
	args := m.Called(ctx, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Avatar), args.Error(1)
}

func (m *MockAssetStore) Delete(ctx context.Context, assetID string) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
