package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"qissa-server/internal/models"
	"qissa-server/internal/repo"
	"qissa-server/internal/storage"
	"qissa-server/internal/utils"
)

type ProfileService struct {
	users  UserRepository
	assets AssetStore
	log    *slog.Logger
}

type ProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Country   *string
	Gender    *string
	Pronoun   *string
	Bio       *string
	Avatar    []byte
}

func NewProfileService(users UserRepository, assets AssetStore, log *slog.Logger) *ProfileService {
	return &ProfileService{users: users, assets: assets, log: log}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "User does not exist")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// Update applies only the fields present in the input. When an avatar
// blob is supplied it is normalized and uploaded before anything is
// persisted, so a failed upload leaves the profile untouched; the field
// changes and the new avatar descriptor then commit as one write.
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "User does not exist")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	upd := repo.ProfileUpdate{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Country:   in.Country,
		Gender:    in.Gender,
		Pronoun:   in.Pronoun,
		Bio:       in.Bio,
	}

	if len(in.Avatar) > 0 {
		normalized, err := storage.NormalizeAvatar(in.Avatar)
		if err != nil {
			return nil, utils.NewAppError(http.StatusInternalServerError, "ASSET_UPLOAD_FAILED", "Could not process avatar image")
		}
		avatar, err := s.assets.Upload(ctx, normalized, "image/jpeg")
		if err != nil {
			s.log.Error("avatar upload failed", "user_id", userID, "error", err)
			return nil, utils.NewAppError(http.StatusInternalServerError, "ASSET_UPLOAD_FAILED", "Could not upload avatar")
		}
		upd.Avatar = avatar
	}

	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, utils.NewAppError(http.StatusNotFound, "NOT_FOUND", "User does not exist")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// Replaced avatars are deleted best-effort once the new state is
	// committed; an orphaned object is only a storage-cost concern.
	if upd.Avatar != nil && current.Avatar != nil {
		if err := s.assets.Delete(ctx, current.Avatar.AssetID); err != nil {
			s.log.Warn("old avatar cleanup failed", "asset_id", current.Avatar.AssetID, "error", err)
		}
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return updated, nil
}
