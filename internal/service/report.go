package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexarena/lexarena-bot/internal/domain/entities"
)

var ErrEmptyComment = errors.New("report comment is empty")

// ReportService collects complaints about defective questions.
type ReportService struct {
	reports   ReportRepository
	questions QuestionStore
	logger    *zap.Logger
}

func NewReportService(reports ReportRepository, questions QuestionStore, logger *zap.Logger) *ReportService {
	return &ReportService{reports: reports, questions: questions, logger: logger}
}

// ReportQuestion stores a new report. The question text is copied so the
// report stays readable after the question is edited.
func (s *ReportService) ReportQuestion(ctx context.Context, questionID string, reporterID int64, comment string) (*entities.QuestionReport, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	report := &entities.QuestionReport{
		ID:              uuid.NewString(),
		QuestionID:      q.ID,
		QuestionText:    q.Prompt,
		ReporterID:      reporterID,
		ReporterComment: comment,
		Status:          entities.ReportNew,
		CreatedAt:       time.Now(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("report question: %w", err)
	}

	s.logger.Info("question reported",
		zap.String("report_id", report.ID),
		zap.String("question_id", questionID),
		zap.Int64("reporter_id", reporterID),
	)
	return report, nil
}
