package storage

import (
	"testing"

	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/service"
)

func newEngine(t *testing.T) *service.SessionEngine {
	t.Helper()
	q := entities.Question{ID: "q1", Options: [4]string{"a", "b", "c", "d"}}
	session, err := entities.NewGameSession(entities.ModeTimed, []entities.Question{q})
	if err != nil {
		t.Fatal(err)
	}
	return service.NewSessionEngine(session, service.SessionMeta{UserID: 1}, service.Pacing{}, nil, nil, zap.NewNop())
}

func TestSessionStorageReplace(t *testing.T) {
	s := NewSessionStorage()
	first, second := newEngine(t), newEngine(t)

	if _, had := s.Replace(1, first); had {
		t.Error("empty storage reported a previous session")
	}
	prev, had := s.Replace(1, second)
	if !had || prev != first {
		t.Errorf("Replace() = %p, %v, want first session", prev, had)
	}

	s.Delete(1, first)
	if got, ok := s.Get(1); !ok || got != second {
		t.Error("deleting a stale session removed the current one")
	}
	s.Delete(1, second)
	if _, ok := s.Get(1); ok {
		t.Error("session still stored after Delete")
	}
}

func TestMessageStorageKeys(t *testing.T) {
	s := NewMessageStorage()
	s.Store("match-1", 10, 100, 5)
	s.Store("match-1", 11, 110, 6)
	s.Store("session", 10, 100, 7)

	tests := []struct {
		key    string
		userID int64
		wantID int
	}{
		{"match-1", 10, 5},
		{"match-1", 11, 6},
		{"session", 10, 7},
	}
	for _, tt := range tests {
		ref, ok := s.Get(tt.key, tt.userID)
		if !ok || ref.MessageID != tt.wantID {
			t.Errorf("Get(%q, %d) = %+v, %v", tt.key, tt.userID, ref, ok)
		}
	}

	s.Delete("match-1", 10)
	if _, ok := s.Get("match-1", 10); ok {
		t.Error("message still stored after Delete")
	}
}
