package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx postgres.DBTX) error) error
}

// MatchRepository stores matches. Every write bumps the match version and
// publishes the match id on postgres.MatchChannel in the same transaction.
type MatchRepository struct {
	db postgres.DBTX
	tr txRunner
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(db postgres.DBTX, tr txRunner) *MatchRepository {
	return &MatchRepository{db: db, tr: tr}
}

// Create inserts a match together with both player slots.
func (r *MatchRepository) Create(ctx context.Context, m *entities.Match) error {
	questions, err := json.Marshal(m.Questions)
	if err != nil {
		return fmt.Errorf("encode match questions: %w", err)
	}

	return r.tr.WithinTx(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO matches (
				id, topic_id, topic_name, opponent_id, questions,
				current_question_index, status, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			m.ID,
			m.TopicID,
			m.TopicName,
			m.OpponentID,
			questions,
			m.CurrentQuestionIndex,
			string(m.Status),
			m.Version,
			m.CreatedAt,
			m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}

		for slot, p := range m.Players {
			_, err := tx.Exec(ctx, `
				INSERT INTO match_players (match_id, slot, user_id, display_name, score, answers)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, m.ID, slot, p.UserID, p.DisplayName, p.Score, p.Answers)
			if err != nil {
				return fmt.Errorf("create match player %d: %w", slot, err)
			}
		}

		return postgres.Notify(ctx, tx, postgres.MatchChannel, m.ID)
	})
}

// Get loads a match with both players.
func (r *MatchRepository) Get(ctx context.Context, id string) (*entities.Match, error) {
	query := `
		SELECT id::text, topic_id, topic_name, opponent_id, questions,
		       current_question_index, status, winner_id, version, created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	m, err := scanMatch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, ErrMatchNotFound, "get match")
	}

	if err := r.loadPlayers(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListIncoming returns waiting challenges addressed to opponentID, newest first.
func (r *MatchRepository) ListIncoming(ctx context.Context, opponentID int64) ([]*entities.Match, error) {
	return r.list(ctx, `
		SELECT id::text, topic_id, topic_name, opponent_id, questions,
		       current_question_index, status, winner_id, version, created_at, updated_at
		FROM matches
		WHERE opponent_id = $1 AND status = 'waiting'
		ORDER BY created_at DESC
	`, opponentID)
}

// ListStale returns matches in status that have not changed since before.
func (r *MatchRepository) ListStale(ctx context.Context, status entities.MatchStatus, before time.Time) ([]*entities.Match, error) {
	return r.list(ctx, `
		SELECT id::text, topic_id, topic_name, opponent_id, questions,
		       current_question_index, status, winner_id, version, created_at, updated_at
		FROM matches
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
	`, string(status), before)
}

// RecordAnswer appends selected to the answers of slot and adds points to its
// score, but only while the match is active at index and the slot has not
// answered it yet. It reports whether the answer was stored.
func (r *MatchRepository) RecordAnswer(ctx context.Context, matchID string, slot, index, selected, points int) (bool, error) {
	var applied bool
	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		tag, err := tx.Exec(ctx, `
			UPDATE match_players p
			SET answers = array_append(p.answers, $4),
			    score = p.score + $5
			FROM matches m
			WHERE p.match_id = $1 AND p.slot = $2
			  AND m.id = p.match_id
			  AND m.status = 'active'
			  AND m.current_question_index = $3
			  AND cardinality(p.answers) = $3
		`, matchID, slot, index, selected, points)
		if err != nil {
			return fmt.Errorf("record match answer: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if err := touchMatch(ctx, tx, matchID); err != nil {
			return err
		}
		applied = true
		return postgres.Notify(ctx, tx, postgres.MatchChannel, matchID)
	})

	return applied, err
}

// Advance moves the match to the next question if it is still active at expectedIndex.
func (r *MatchRepository) Advance(ctx context.Context, matchID string, expectedIndex int) (bool, error) {
	return r.conditional(ctx, matchID, "advance match", `
		UPDATE matches
		SET current_question_index = current_question_index + 1,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND current_question_index = $2
	`, matchID, expectedIndex)
}

// Finish ends the match with winner if it is still active at expectedIndex.
func (r *MatchRepository) Finish(ctx context.Context, matchID string, expectedIndex int, winner entities.Winner) (bool, error) {
	return r.conditional(ctx, matchID, "finish match", `
		UPDATE matches
		SET status = 'finished',
		    winner_id = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND current_question_index = $2
	`, matchID, expectedIndex, string(winner))
}

// UpdateStatus moves the match from one status to another. It reports false
// when the match was no longer in from.
func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID string, from, to entities.MatchStatus) (bool, error) {
	return r.conditional(ctx, matchID, "update match status", `
		UPDATE matches
		SET status = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, matchID, string(from), string(to))
}

// ForceFinish ends an active match with winner, regardless of its index, if
// nothing was written to it since expectedVersion.
func (r *MatchRepository) ForceFinish(ctx context.Context, matchID string, expectedVersion int64, winner entities.Winner) (bool, error) {
	return r.conditional(ctx, matchID, "force finish match", `
		UPDATE matches
		SET status = 'finished',
		    winner_id = $3,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND version = $2
	`, matchID, expectedVersion, string(winner))
}

func (r *MatchRepository) conditional(ctx context.Context, matchID, op, query string, args ...any) (bool, error) {
	var applied bool
	err := r.tr.WithinTx(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		applied = true
		return postgres.Notify(ctx, tx, postgres.MatchChannel, matchID)
	})

	return applied, err
}

func (r *MatchRepository) list(ctx context.Context, query string, args ...any) ([]*entities.Match, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	var matches []*entities.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	for _, m := range matches {
		if err := r.loadPlayers(ctx, m); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (r *MatchRepository) loadPlayers(ctx context.Context, m *entities.Match) error {
	rows, err := r.db.Query(ctx, `
		SELECT slot, user_id, display_name, score, answers
		FROM match_players
		WHERE match_id = $1
		ORDER BY slot
	`, m.ID)
	if err != nil {
		return fmt.Errorf("load match players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var p entities.Player
		if err := rows.Scan(&slot, &p.UserID, &p.DisplayName, &p.Score, &p.Answers); err != nil {
			return fmt.Errorf("scan match player: %w", err)
		}
		if slot < 0 || slot > 1 {
			continue
		}
		if p.Answers == nil {
			p.Answers = []int{}
		}
		m.Players[slot] = p
	}

	return rows.Err()
}

func touchMatch(ctx context.Context, tx postgres.DBTX, matchID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE matches SET version = version + 1, updated_at = NOW() WHERE id = $1
	`, matchID)
	if err != nil {
		return fmt.Errorf("touch match: %w", err)
	}
	return nil
}

func scanMatch(row pgx.Row) (*entities.Match, error) {
	var (
		m         entities.Match
		status    string
		winner    *string
		questions []byte
	)

	err := row.Scan(
		&m.ID,
		&m.TopicID,
		&m.TopicName,
		&m.OpponentID,
		&questions,
		&m.CurrentQuestionIndex,
		&status,
		&winner,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &m.Questions); err != nil {
		return nil, fmt.Errorf("decode match %s questions: %w", m.ID, err)
	}
	m.Status = entities.MatchStatus(status)
	if winner != nil {
		m.Winner = entities.Winner(*winner)
	}

	return &m, nil
}
