package repository

import (
	"context"
	"fmt"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
	"github.com/lexarena/lexarena-bot/internal/infra/postgres"
)

// ReportRepository stores question reports. Reports are append-only.
type ReportRepository struct {
	db postgres.DBTX
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db postgres.DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a report.
func (r *ReportRepository) Create(ctx context.Context, report *entities.QuestionReport) error {
	query := `
		INSERT INTO question_reports (
			id, question_id, question_text, reporter_id, reporter_comment, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.QuestionID,
		report.QuestionText,
		report.ReporterID,
		report.ReporterComment,
		string(report.Status),
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create question report: %w", err)
	}

	return nil
}
