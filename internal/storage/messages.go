package storage

import (
	"sync"
	"time"
)

// MessageRef points at a bot message that is edited in place.
type MessageRef struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// MessageStorage remembers the live message of a user per key, such as the
// question message of a session or the board of a match.
type MessageStorage struct {
	mu       sync.RWMutex
	messages map[messageKey]MessageRef
}

type messageKey struct {
	key    string
	userID int64
}

func NewMessageStorage() *MessageStorage {
	return &MessageStorage{
		messages: make(map[messageKey]MessageRef),
	}
}

func (s *MessageStorage) Store(key string, userID, chatID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[messageKey{key, userID}] = MessageRef{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    time.Now(),
	}
}

func (s *MessageStorage) Get(key string, userID int64) (MessageRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, ok := s.messages[messageKey{key, userID}]
	return ref, ok
}

func (s *MessageStorage) Delete(key string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, messageKey{key, userID})
}
