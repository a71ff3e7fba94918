package telegram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres/repository"
	"github.com/lexarena/lexarena-bot/internal/service"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   string
		wantOK bool
	}{
		{name: "not enough questions", err: service.ErrNotEnoughQuestions, want: msgNotEnoughQuestions, wantOK: true},
		{name: "empty review topic", err: service.ErrNoQuestions, want: msgNoQuestions, wantOK: true},
		{name: "wrapped lock", err: fmt.Errorf("start: %w", service.ErrTopicLocked), want: msgTopicLocked, wantOK: true},
		{name: "closed challenge", err: entities.ErrInvalidTransition, want: msgChallengeClosed, wantOK: true},
		{name: "missing match", err: repository.ErrMatchNotFound, want: msgMatchNotFound, wantOK: true},
		{name: "unknown error", err: errors.New("connection reset"), want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := userMessage(tt.err)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("userMessage(%v) = %q, %v; want %q, %v", tt.err, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
