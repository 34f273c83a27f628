package domain

import "time"

// Score bounds. Scores are integers on a 0-10 scale.
const (
	ScoreMin = 0
	ScoreMax = 10
)

// Score is one judge's rating of one submission. The (judge, submission)
// pair is the primary key; re-scoring overwrites, no history is kept.
type Score struct {
	JudgeID      int64     `json:"judge_id"`
	SubmissionID int64     `json:"submission_id"`
	Score        int       `json:"score"`
	Notes        string    `json:"notes,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScoreRequest is the judge-facing score submission payload. Score is a
// pointer so that a legitimate 0 survives required-field validation.
type ScoreRequest struct {
	SubmissionID int64  `json:"submission_id" validate:"required,min=1"`
	Score        *int   `json:"score" validate:"required,min=0,max=10"`
	Notes        string `json:"notes,omitempty" validate:"max=2000"`
}

// ScoreResponse confirms a recorded score.
type ScoreResponse struct {
	SubmissionID int64     `json:"submission_id"`
	Score        int       `json:"score"`
	Notes        string    `json:"notes,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}
