package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrStaleMatch       = errors.New("match was modified by another participant")
	ErrAlreadyAnswered  = errors.New("question already answered")
)

// notFound maps pgx.ErrNoRows to sentinel and wraps everything else with op.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}
