package domain

import "time"

// Judge is a judging assignment on one hackathon. Judges have no platform
// account; the access token is their entire identity.
type Judge struct {
	ID          int64      `json:"id"`
	HackathonID int64      `json:"hackathon_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	AccessToken string     `json:"-"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the assignment token has lapsed. A nil ExpiresAt
// means the token never expires.
func (j *Judge) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && now.After(*j.ExpiresAt)
}

// JudgeContext is a resolved token: the judge plus the hackathon the token
// is scoped to.
type JudgeContext struct {
	Judge     *Judge     `json:"judge"`
	Hackathon *Hackathon `json:"hackathon"`
}

// JudgeBoard is everything a judge sees after token resolution: who they
// are, the hackathon, and the eligible submissions with their own scores.
type JudgeBoard struct {
	Judge       *Judge              `json:"judge"`
	Hackathon   *Hackathon          `json:"hackathon"`
	Submissions []*ScoredSubmission `json:"submissions"`
}

// JudgeProgress is one judge's scoring completion over the eligible
// submissions of their hackathon.
type JudgeProgress struct {
	JudgeID   int64  `json:"judge_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Scored    int    `json:"scored"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
}

// ProgressReport aggregates per-judge progress for a hackathon.
type ProgressReport struct {
	HackathonID      int64           `json:"hackathon_id"`
	Judges           []JudgeProgress `json:"judges"`
	TotalSubmissions int             `json:"total_submissions"`
	OverallProgress  int             `json:"overall_progress"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// ReminderResult reports the outcome of a reminder run.
type ReminderResult struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}
