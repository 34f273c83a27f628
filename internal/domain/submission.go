package domain

import "time"

// SubmissionStatus is the lifecycle state of a project submission.
type SubmissionStatus string

const (
	StatusDraft        SubmissionStatus = "draft"
	StatusSubmitted    SubmissionStatus = "submitted"
	StatusDisqualified SubmissionStatus = "disqualified"
)

// Submission is a hackathon project entry. Disqualified submissions keep
// their row but are excluded from judging and winner calculation; Feedback
// holds the disqualification reason while the status is disqualified.
type Submission struct {
	ID          int64            `json:"id"`
	HackathonID int64            `json:"hackathon_id"`
	ProjectName string           `json:"project_name"`
	Description string           `json:"description"`
	RepoURL     string           `json:"repo_url,omitempty"`
	DemoURL     string           `json:"demo_url,omitempty"`
	OwnerID     string           `json:"owner_id"`
	TeamName    string           `json:"team_name,omitempty"`
	Status      SubmissionStatus `json:"status"`
	Feedback    *string          `json:"feedback,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Eligible reports whether the submission participates in judging.
func (s *Submission) Eligible() bool {
	return s.Status == StatusSubmitted
}

// ScoredSubmission is a submission as seen by one judge, annotated with that
// judge's existing score if any.
type ScoredSubmission struct {
	Submission
	MyScore *int    `json:"my_score"`
	MyNotes *string `json:"my_notes,omitempty"`
}

// Moderation actions.
const (
	ModerationDisqualify = "disqualify"
	ModerationReinstate  = "reinstate"
)

// ModerationRequest disqualifies or reinstates one submission.
type ModerationRequest struct {
	Action       string `json:"action" validate:"required,oneof=disqualify reinstate"`
	SubmissionID int64  `json:"submission_id" validate:"required,min=1"`
	Reason       string `json:"reason,omitempty" validate:"max=2000"`
}
