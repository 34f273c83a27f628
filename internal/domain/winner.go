package domain

import "time"

// WinnerStatus is the winner proposal lifecycle. The only transition is
// pending -> approved; approval is terminal.
type WinnerStatus string

const (
	WinnerPending  WinnerStatus = "pending"
	WinnerApproved WinnerStatus = "approved"
)

// Winner is a persisted winner row. Created in bulk at pending by the
// propose step, approved one at a time, never deleted once approved.
type Winner struct {
	ID           string       `json:"id"`
	HackathonID  int64        `json:"hackathon_id"`
	SubmissionID int64        `json:"submission_id"`
	ProjectName  string       `json:"project_name,omitempty"`
	Position     int          `json:"position"`
	PrizeName    string       `json:"prize_name"`
	FinalScore   float64      `json:"final_score"`
	Status       WinnerStatus `json:"status"`
	ProposedAt   time.Time    `json:"proposed_at"`
	ApprovedAt   *time.Time   `json:"approved_at,omitempty"`
}

// WinnerCandidate is one entry of the advisory ranked list produced by the
// calculation engine. Nothing is persisted until the organizer proposes.
type WinnerCandidate struct {
	SubmissionID      int64   `json:"submission_id"`
	ProjectName       string  `json:"project_name"`
	TeamName          string  `json:"team_name,omitempty"`
	FinalScore        float64 `json:"final_score"`
	ScoreCount        int     `json:"score_count"`
	SuggestedPosition int     `json:"suggested_position"`
	SuggestedPrize    string  `json:"suggested_prize,omitempty"`
}

// ProposeWinnerEntry is one row of a propose request, normally taken from a
// WinnerCandidate but editable by the organizer before proposing.
type ProposeWinnerEntry struct {
	SubmissionID int64   `json:"submission_id" validate:"required,min=1"`
	Position     int     `json:"position" validate:"required,min=1"`
	PrizeName    string  `json:"prize_name" validate:"max=200"`
	FinalScore   float64 `json:"final_score" validate:"min=0,max=10"`
}

// ProposeWinnersRequest persists a candidate list as pending winners,
// replacing any earlier pending set.
type ProposeWinnersRequest struct {
	Winners []ProposeWinnerEntry `json:"winners" validate:"required,min=1,dive"`
}

// Achievement is the credential written onto the winning submission owner's
// profile when a winner is approved.
type Achievement struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HackathonID int64     `json:"hackathon_id"`
	WinnerID    string    `json:"winner_id"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	AwardedAt   time.Time `json:"awarded_at"`
}
