package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

type UserService struct {
	repository UserRepository
	settings   SettingsRepository
	logger     *zap.Logger
}

func NewUserService(repository UserRepository, settings SettingsRepository, logger *zap.Logger) *UserService {
	return &UserService{repository: repository, settings: settings, logger: logger}
}

// EnsureUser stores the Telegram profile and creates default settings for new users.
func (s *UserService) EnsureUser(ctx context.Context, user *entities.User) error {
	created, err := s.repository.Save(ctx, user)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if err := s.settings.Create(ctx, user.ID); err != nil {
		return fmt.Errorf("create default settings: %w", err)
	}
	s.logger.Info("new user registered", zap.Int64("user_id", user.ID))
	return nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID int64) (*entities.User, error) {
	return s.repository.GetByID(ctx, userID)
}

// DisplayName returns the name shown to other players, honoring the name preference.
func (s *UserService) DisplayName(ctx context.Context, userID int64) (string, error) {
	user, err := s.repository.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	pref := entities.NameFull
	settings, err := s.settings.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrSettingsNotFound) {
		return "", err
	}
	if settings != nil {
		pref = settings.NamePreference
	}
	return user.DisplayName(pref), nil
}

// LeaderboardName returns the name shown on leaderboards.
func (s *UserService) LeaderboardName(ctx context.Context, userID int64) (string, error) {
	settings, err := s.settings.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrSettingsNotFound) {
		return "", err
	}
	if settings != nil && settings.LeaderboardAnonymity {
		return entities.AnonymousName, nil
	}
	return s.DisplayName(ctx, userID)
}
