package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/pkg/hash"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/tokens"
	"github.com/socialmesh/platform/services/identity/internal/models"
	"github.com/socialmesh/platform/services/identity/internal/repo"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password so
// login responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

var ErrTokenInvalid = repo.ErrTokenInvalid

type AuthService struct {
	Repo      repo.GormRepo
	JWTSecret []byte
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	UserID       uuid.UUID
}

// Issue signs a 15-minute access token and mints a new refresh token for the
// user. The refresh row is persisted before the pair is returned: a crash
// in between leaves a short-lived access token with no refresh path, which is
// an acceptable degraded state, while the reverse is not.
func (s *AuthService) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now().UTC()
	accessToken, accessExp, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Username, now)
	if err != nil {
		return nil, err
	}

	refreshValue, err := tokens.NewRefreshValue()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, user.ID, refreshValue, now.Add(tokens.RefreshTokenTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		AccessExp:    accessExp,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("register_failed", "status", 400, "reason", "user already exists")
			return nil, repo.ErrUserExists
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID.String())
	return s.Issue(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 400, "reason", "bad credentials")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 400, "reason", "bad credentials")
		return nil, ErrInvalidCredentials
	}

	l.Info("login_successful", "user_id", user.ID.String())
	return s.Issue(ctx, user)
}

// Refresh rotates value for a fresh pair. Consuming the old row and creating
// the replacement run in one transaction backed by a conditional delete, so
// at most one concurrent caller per value succeeds and a consumed value can
// never mint a second pair.
func (s *AuthService) Refresh(ctx context.Context, value string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")
	now := time.Now().UTC()

	var pair *TokenPair
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := repo.ConsumeRefreshToken(tx, value, now)
		if err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}

		accessToken, accessExp, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), user.Username, now)
		if err != nil {
			return err
		}
		refreshValue, err := tokens.NewRefreshValue()
		if err != nil {
			return err
		}
		row := models.RefreshToken{
			TokenHash: tokens.Digest(refreshValue),
			UserID:    user.ID,
			ExpiresAt: now.Add(tokens.RefreshTokenTTL),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		pair = &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshValue,
			AccessExp:    accessExp,
			UserID:       user.ID,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrTokenInvalid) {
			l.Warn("refresh_failed", "status", 401, "reason", "token invalid or expired")
		} else {
			l.Error("refresh_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("refresh_successful", "user_id", pair.UserID.String())
	return pair, nil
}

// Logout revokes value. Revoking an absent or already-consumed token is still
// success.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if err := s.Repo.DeleteRefreshToken(ctx, value); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}
	l.Info("logout_successful")
	return nil
}
