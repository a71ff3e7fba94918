package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

// MatchSweeper closes matches nobody touched for staleAfter: waiting
// challenges expire and active matches are finished by forfeit.
type MatchSweeper struct {
	matches    MatchRepository
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewMatchSweeper(matches MatchRepository, staleAfter time.Duration, logger *zap.Logger) *MatchSweeper {
	return &MatchSweeper{
		matches:    matches,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs Sweep on schedule until ctx is done.
func (s *MatchSweeper) Start(ctx context.Context, schedule string) {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(schedule, func() {
		expired, finished, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("failed to sweep stale matches", zap.Error(err))
			return
		}
		if expired+finished > 0 {
			s.logger.Info("stale matches swept",
				zap.Int("expired", expired),
				zap.Int("finished", finished),
			)
		}
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.String("schedule", schedule), zap.Error(err))
		return
	}

	c.Start()
	s.logger.Info("match sweeper started", zap.String("schedule", schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("match sweeper stopped")
}

// Sweep expires stale waiting challenges and forfeits stale active matches.
// Matches that changed meanwhile are left alone.
func (s *MatchSweeper) Sweep(ctx context.Context) (expired, finished int, err error) {
	before := s.now().Add(-s.staleAfter)

	waiting, err := s.matches.ListStale(ctx, entities.MatchWaiting, before)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range waiting {
		ok, err := s.matches.UpdateStatus(ctx, m.ID, entities.MatchWaiting, entities.MatchExpired)
		if err != nil {
			return expired, finished, err
		}
		if ok {
			expired++
		}
	}

	active, err := s.matches.ListStale(ctx, entities.MatchActive, before)
	if err != nil {
		return expired, finished, err
	}
	for _, m := range active {
		winner := entities.ForfeitWinner(*m)
		ok, err := s.matches.ForceFinish(ctx, m.ID, m.Version, winner)
		if err != nil {
			return expired, finished, err
		}
		if ok {
			finished++
			s.logger.Info("match finished by forfeit",
				zap.String("match_id", m.ID),
				zap.String("winner", string(winner)),
			)
		}
	}

	return expired, finished, nil
}
