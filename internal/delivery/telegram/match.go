package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

type watchKey struct {
	matchID string
	userID  int64
}

// ensureWatch starts following matchID on behalf of userID unless a watch is
// already running. The board is rendered into chatID.
func (h *Handler) ensureWatch(ctx context.Context, matchID string, userID, chatID int64) error {
	key := watchKey{matchID: matchID, userID: userID}

	h.mu.Lock()
	if _, ok := h.watches[key]; ok {
		h.mu.Unlock()
		return nil
	}
	h.watches[key] = func() {}
	h.mu.Unlock()

	view := &matchView{h: h, chatID: chatID, key: key}
	stop, err := h.services.Matches.Watch(ctx, matchID, userID, view)
	if err != nil {
		h.forgetWatch(key)
		return err
	}

	h.mu.Lock()
	if _, ok := h.watches[key]; ok {
		h.watches[key] = stop
	}
	h.mu.Unlock()
	return nil
}

func (h *Handler) forgetWatch(key watchKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watches, key)
}

func (h *Handler) stopWatches() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, stop := range h.watches {
		stop()
		delete(h.watches, key)
	}
}

// matchView renders the match board of one participant.
type matchView struct {
	h      *Handler
	chatID int64
	key    watchKey
}

func (v *matchView) MatchChanged(ctx context.Context, userID int64, m entities.Match) {
	v.h.upsert(matchMessageKey(m.ID), userID, v.chatID, formatMatch(m, userID), buildMatchKeyboard(m, userID))

	switch {
	case m.Status == entities.MatchActive:
		v.touch(ctx, m, userID, entities.PresenceInGame)
	case m.Status.IsTerminal():
		v.h.forgetWatch(v.key)
		v.h.messages.Delete(matchMessageKey(m.ID), userID)
		v.touch(ctx, m, userID, entities.PresenceOnline)

		v.h.logger.Debug("match board closed",
			zap.String("match_id", m.ID),
			zap.Int64("user_id", userID),
			zap.String("status", string(m.Status)),
		)
	}
}

func (v *matchView) MatchNotice(_ context.Context, userID int64, err error) {
	v.h.logger.Warn("match notice",
		zap.String("match_id", v.key.matchID),
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
	v.h.sendText(v.chatID, msgMatchNotice)
}

func (v *matchView) touch(ctx context.Context, m entities.Match, userID int64, state entities.PresenceState) {
	slot, err := m.Slot(userID)
	if err != nil {
		return
	}
	v.h.services.Presence.Touch(ctx, userID, m.Players[slot].DisplayName, state)
}
