package entities

// Topic groups questions. DisplayOrder defines the boss campaign order.
type Topic struct {
	ID            string
	Name          string
	Description   string
	DisplayOrder  int
	QuestionCount int
}
