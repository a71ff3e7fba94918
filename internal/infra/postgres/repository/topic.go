package repository

import (
	"context"
	"fmt"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

// TopicRepository provides read access to legal topics.
type TopicRepository struct {
	db postgres.DBTX
}

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(db postgres.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

// List returns all topics ordered by display order, with question counts.
func (r *TopicRepository) List(ctx context.Context) ([]entities.Topic, error) {
	query := `
		SELECT t.id, t.name, t.description, t.display_order, COUNT(q.id)
		FROM legal_topics t
		LEFT JOIN questions q ON q.topic_id = t.id
		GROUP BY t.id
		ORDER BY t.display_order, t.name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []entities.Topic
	for rows.Next() {
		var t entities.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DisplayOrder, &t.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}

	return topics, rows.Err()
}

// GetByID retrieves a topic.
func (r *TopicRepository) GetByID(ctx context.Context, id string) (*entities.Topic, error) {
	query := `
		SELECT t.id, t.name, t.description, t.display_order,
		       (SELECT COUNT(*) FROM questions q WHERE q.topic_id = t.id)
		FROM legal_topics t
		WHERE t.id = $1
	`

	var t entities.Topic
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Description, &t.DisplayOrder, &t.QuestionCount)
	if err != nil {
		return nil, notFound(err, ErrTopicNotFound, "get topic")
	}

	return &t, nil
}
