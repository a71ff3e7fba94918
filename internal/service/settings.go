package service

import (
	"context"
	"errors"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
)

var ErrInvalidNamePreference = errors.New("unknown name preference")

type SettingsService struct {
	repository SettingsRepository
}

func NewSettingsService(repository SettingsRepository) *SettingsService {
	return &SettingsService{repository: repository}
}

func (s *SettingsService) GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	settings, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			// Create default settings.
			if err := s.repository.Create(ctx, userID); err != nil {
				return nil, err
			}
			return s.repository.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	return settings, nil
}

func (s *SettingsService) UpdateQuestionCount(ctx context.Context, userID int64, count int) error {
	if !entities.ValidQuestionCount(count) {
		return ErrInvalidQuestionCount
	}
	return s.repository.UpdateQuestionCount(ctx, userID, count)
}

func (s *SettingsService) UpdateNamePreference(ctx context.Context, userID int64, pref entities.NamePreference) error {
	if pref != entities.NameFull && pref != entities.NameUsername {
		return ErrInvalidNamePreference
	}
	return s.repository.UpdateNamePreference(ctx, userID, pref)
}

func (s *SettingsService) ToggleLeaderboardAnonymity(ctx context.Context, userID int64) error {
	settings, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.repository.UpdateLeaderboardAnonymity(ctx, userID, !settings.LeaderboardAnonymity)
}
