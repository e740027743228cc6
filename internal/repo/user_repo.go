package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qissa-server/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `
	id, email, username, first_name, last_name, country, gender, pronoun, bio,
	avatar_asset_id, avatar_url, password_hash, reset_token, reset_token_expiry,
	created_at, updated_at`

// ProfileUpdate carries a partial profile change: nil fields are left
// unchanged. The whole delta, avatar included, commits in one UPDATE.
type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	Country   *string
	Gender    *string
	Pronoun   *string
	Bio       *string
	Avatar    *models.Avatar
}

type UserRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewUserRepo(pool *pgxpool.Pool, timeout time.Duration) *UserRepo {
	return &UserRepo{pool: pool, timeout: timeout}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, username, first_name, last_name, country, gender, pronoun, bio, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.Country, user.Gender, user.Pronoun, user.Bio, user.PasswordHash)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByResetToken matches the exact stored token and requires the expiry
// to still be in the future. A consumed or expired token never matches.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_token = $1 AND reset_token_expiry > NOW()
	`, token)
	return scanUser(row)
}

// UpdatePassword sets a new password hash and clears any pending reset
// token in the same statement, so a reset is single-use by construction.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token = $1, reset_token_expiry = $2, updated_at = NOW()
		WHERE id = $3
	`, token, expiry, userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) ClearResetToken(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var avatarAssetID, avatarURL *string
	if upd.Avatar != nil {
		avatarAssetID = &upd.Avatar.AssetID
		avatarURL = &upd.Avatar.URL
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username        = COALESCE($1, username),
		    first_name      = COALESCE($2, first_name),
		    last_name       = COALESCE($3, last_name),
		    country         = COALESCE($4, country),
		    gender          = COALESCE($5, gender),
		    pronoun         = COALESCE($6, pronoun),
		    bio             = COALESCE($7, bio),
		    avatar_asset_id = COALESCE($8, avatar_asset_id),
		    avatar_url      = COALESCE($9, avatar_url),
		    updated_at      = NOW()
		WHERE id = $10
	`, upd.Username, upd.FirstName, upd.LastName, upd.Country, upd.Gender,
		upd.Pronoun, upd.Bio, avatarAssetID, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var avatarAssetID, avatarURL *string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Country,
		&user.Gender,
		&user.Pronoun,
		&user.Bio,
		&avatarAssetID,
		&avatarURL,
		&user.PasswordHash,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if avatarAssetID != nil && avatarURL != nil {
		user.Avatar = &models.Avatar{AssetID: *avatarAssetID, URL: *avatarURL}
	}
	return &user, nil
}
