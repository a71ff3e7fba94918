package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

const maxLobbySize = 20

// PresenceService tracks who can be challenged.
type PresenceService struct {
	store  PresenceStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewPresenceService(store PresenceStore, ttl time.Duration, logger *zap.Logger) *PresenceService {
	return &PresenceService{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// Touch marks the player as seen now in state.
func (s *PresenceService) Touch(ctx context.Context, userID int64, name string, state entities.PresenceState) {
	err := s.store.Touch(ctx, entities.Presence{
		UserID:      userID,
		DisplayName: name,
		State:       state,
		LastSeen:    s.now(),
	})
	if err != nil {
		s.logger.Warn("failed to update presence", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Online lists players seen within the TTL, excluding userID.
func (s *PresenceService) Online(ctx context.Context, userID int64) ([]entities.Presence, error) {
	all, err := s.store.Online(ctx, s.now().Add(-s.ttl), maxLobbySize+1)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Presence, 0, len(all))
	for _, p := range all {
		if p.UserID == userID {
			continue
		}
		out = append(out, p)
	}
	if len(out) > maxLobbySize {
		out = out[:maxLobbySize]
	}
	return out, nil
}

// Start prunes expired presence entries on schedule until ctx is done.
func (s *PresenceService) Start(ctx context.Context, schedule string) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(schedule, func() {
		n, err := s.store.Prune(ctx, s.now().Add(-s.ttl))
		if err != nil {
			s.logger.Error("failed to prune presence", zap.Error(err))
			return
		}
		s.logger.Debug("presence pruned", zap.Int("removed", n))
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.String("schedule", schedule), zap.Error(err))
		return
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}
