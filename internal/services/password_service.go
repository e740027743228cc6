package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"qissa-server/internal/auth"
	"qissa-server/internal/config"
	"qissa-server/internal/repo"
	"qissa-server/internal/utils"
)

// PasswordService owns the reset and change-password flows. A reset
// attempt moves through token-issued to consumed or expired; the token
// fields on the user row are always set and cleared together.
type PasswordService struct {
	users  UserRepository
	mailer Mailer
	cfg    *config.Config
	log    *slog.Logger
}

func NewPasswordService(users UserRepository, mailer Mailer, cfg *config.Config, log *slog.Logger) *PasswordService {
	return &PasswordService{users: users, mailer: mailer, cfg: cfg, log: log}
}

func (s *PasswordService) Forgot(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewAppError(http.StatusBadRequest, "UNKNOWN_EMAIL", "Email is not registered")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, expiry, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.cfg.FrontendURL, token)
	subject := "Reset Password"
	body := fmt.Sprintf(
		`You can reset your password by clicking <a href=%q target="_blank">Reset your password</a>.<br>`+
			`If the link does not work, copy this URL into a new tab: %s<br>`+
			`If you have not requested this, kindly ignore this mail.`,
		resetURL, resetURL)

	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		// A pending reset must not survive a failed delivery.
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error("reset token rollback failed", "user_id", user.ID, "error", clearErr)
			return utils.NewAppError(http.StatusInternalServerError, "INCONSISTENT_STATE",
				"Could not send reset email and failed to roll back reset state")
		}
		s.log.Error("reset email delivery failed", "user_id", user.ID, "error", err)
		return utils.NewAppError(http.StatusInternalServerError, "MAIL_DELIVERY_FAILED", "Could not send reset email")
	}

	return nil
}

func (s *PasswordService) Reset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "Password is required")
	}
	if len(newPassword) < s.cfg.PasswordMinLen {
		return utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Password must be at least %d characters", s.cfg.PasswordMinLen))
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewAppError(http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN",
				"Token is invalid or expired, please try again")
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// UpdatePassword clears the token fields in the same statement, which
	// is what makes the token single-use.
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PasswordService) Change(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "All fields are mandatory")
	}
	if len(newPassword) < s.cfg.PasswordMinLen {
		return utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Password must be at least %d characters", s.cfg.PasswordMinLen))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return utils.NewAppError(http.StatusBadRequest, "NOT_FOUND", "User doesn't exist")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(oldPassword, user.PasswordHash) {
		return utils.NewAppError(http.StatusBadRequest, "INVALID_OLD_PASSWORD", "Invalid old password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
