package entities

import "time"

// ReportStatus tracks moderation of a question report.
type ReportStatus string

const (
	ReportNew      ReportStatus = "new"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// QuestionReport is an append-only complaint about a defective question.
type QuestionReport struct {
	ID              string
	QuestionID      string
	QuestionText    string
	ReporterID      int64
	ReporterComment string
	Status          ReportStatus
	CreatedAt       time.Time
}
