package storage

import (
	"sync"

	"github.com/lexarena/lexarena-bot/internal/service"
)

// SessionStorage keeps the running single-player session of each user in memory.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*service.SessionEngine
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*service.SessionEngine),
	}
}

// Replace stores engine for userID and returns the session it replaced, if any.
func (s *SessionStorage) Replace(userID int64, engine *service.SessionEngine) (prev *service.SessionEngine, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.sessions[userID]
	s.sessions[userID] = engine
	return prev, hadPrev
}

// Get retrieves the running session of userID.
func (s *SessionStorage) Get(userID int64) (*service.SessionEngine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[userID]
	return e, ok
}

// Delete removes the session of userID if it is still engine.
func (s *SessionStorage) Delete(userID int64, engine *service.SessionEngine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[userID] == engine {
		delete(s.sessions, userID)
	}
}
