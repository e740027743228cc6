package services

import (
	"context"
	"time"

	"qissa-server/internal/models"
	"qissa-server/internal/repo"
)

// UserRepository is the slice of the store adapter the services need.
// Satisfied by *repo.UserRepo; mocked in tests.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, upd repo.ProfileUpdate) error
}

type Mailer interface {
	Send(to, subject, body string) error
}

type AssetStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (*models.Avatar, error)
	Delete(ctx context.Context, assetID string) error
}

// CookieOptions is the explicit session-cookie policy handed to the
// boundary layer instead of process-wide state.
type CookieOptions struct {
	Name       string
	MaxAgeSecs int
	HTTPOnly   bool
	Secure     bool
}

func DefaultCookieOptions(maxAge time.Duration) CookieOptions {
	return CookieOptions{
		Name:       "token",
		MaxAgeSecs: int(maxAge.Seconds()),
		HTTPOnly:   true,
		Secure:     true,
	}
}
