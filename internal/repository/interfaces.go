package repository

import (
	"context"

	"maximally-judging/internal/domain"
)

// HackathonRepository provides hackathon lookups and organizer checks.
type HackathonRepository interface {
	// GetByID retrieves a hackathon, (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*domain.Hackathon, error)

	// IsOrganizer reports whether the user is the owner or a co-organizer
	// of the hackathon.
	IsOrganizer(ctx context.Context, hackathonID int64, userID string) (bool, error)
}

// JudgeRepository provides judge assignment lookups.
type JudgeRepository interface {
	// GetByToken resolves an access token to a judge, (nil, nil) when the
	// token is unknown. Expiry is not checked here.
	GetByToken(ctx context.Context, token string) (*domain.Judge, error)

	// ListByHackathon returns all judges assigned to a hackathon.
	ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Judge, error)
}

// SubmissionRepository provides submission reads and moderation writes.
type SubmissionRepository interface {
	// GetByID retrieves a submission, (nil, nil) when absent.
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)

	// ListEligible returns submitted (non-disqualified, non-draft)
	// submissions ordered by creation time then id.
	ListEligible(ctx context.Context, hackathonID int64) ([]*domain.Submission, error)

	// ListEligibleWithScores returns eligible submissions annotated with
	// the given judge's existing score where one exists.
	ListEligibleWithScores(ctx context.Context, hackathonID, judgeID int64) ([]*domain.ScoredSubmission, error)

	// ListForModeration returns every non-draft submission, including
	// disqualified ones with their feedback.
	ListForModeration(ctx context.Context, hackathonID int64) ([]*domain.Submission, error)

	// SetModeration updates status and feedback on one submission.
	SetModeration(ctx context.Context, id int64, status domain.SubmissionStatus, feedback *string) error
}

// ScoreRepository provides score persistence and aggregation reads.
type ScoreRepository interface {
	// Upsert writes a score, overwriting any existing (judge, submission)
	// row.
	Upsert(ctx context.Context, score *domain.Score) error

	// CountByJudge returns, per judge id, how many eligible submissions
	// of the hackathon that judge has scored.
	CountByJudge(ctx context.Context, hackathonID int64) (map[int64]int, error)

	// ListForHackathon returns all scores against eligible submissions of
	// the hackathon.
	ListForHackathon(ctx context.Context, hackathonID int64) ([]*domain.Score, error)
}

// WinnerRepository provides the winner state machine's persistence.
type WinnerRepository interface {
	// GetByID retrieves a winner row, (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*domain.Winner, error)

	// ListByHackathon returns the hackathon's winner rows ordered by
	// position.
	ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Winner, error)

	// HasApproved reports whether any winner of the hackathon is already
	// approved.
	HasApproved(ctx context.Context, hackathonID int64) (bool, error)

	// ReplacePending atomically deletes the hackathon's pending rows and
	// inserts the given set at pending.
	ReplacePending(ctx context.Context, hackathonID int64, winners []*domain.Winner) error

	// Approve transitions one pending winner to approved and records the
	// achievement in the same transaction. Returns false without error
	// when the row was already approved (idempotent no-op).
	Approve(ctx context.Context, winnerID string, achievement *domain.Achievement) (bool, error)
}
