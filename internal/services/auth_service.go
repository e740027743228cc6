package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"qissa-server/internal/auth"
	"qissa-server/internal/config"
	"qissa-server/internal/models"
	"qissa-server/internal/repo"
	"qissa-server/internal/utils"

	"github.com/google/uuid"
)

type AuthService struct {
	users   UserRepository
	issuer  *auth.TokenIssuer
	cookies CookieOptions
	cfg     *config.Config
}

type RegisterInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
	Country   string
	Gender    string
	Pronoun   string
	Bio       string
}

func NewAuthService(users UserRepository, issuer *auth.TokenIssuer, cookies CookieOptions, cfg *config.Config) *AuthService {
	return &AuthService{users: users, issuer: issuer, cookies: cookies, cfg: cfg}
}

func (s *AuthService) CookieOptions() CookieOptions {
	return s.cookies
}

// Register creates the user and immediately issues a session token.
// The duplicate check here is advisory; the unique index on email is the
// real guarantee, and a violation at insert maps to the same error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if in.Password == "" {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", "Password is required")
	}
	if len(in.Password) < s.cfg.PasswordMinLen {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Password must be at least %d characters", s.cfg.PasswordMinLen))
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "DUPLICATE_EMAIL", "Email already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", fmt.Errorf("check existing email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Country:      in.Country,
		Gender:       in.Gender,
		Pronoun:      in.Pronoun,
		Bio:          in.Bio,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, "", utils.NewAppError(http.StatusBadRequest, "DUPLICATE_EMAIL", "Email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	return user, token, nil
}

// Login looks the user up by the email taken from the request body and
// verifies the password against the stored hash. Not-found and bad
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", utils.NewAppError(http.StatusBadRequest, "INVALID_CREDENTIALS", "Email or password does not match")
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", utils.NewAppError(http.StatusBadRequest, "INVALID_CREDENTIALS", "Email or password does not match")
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	return user, token, nil
}
