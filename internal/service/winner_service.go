package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/metrics"
	"maximally-judging/internal/repository"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
	"maximally-judging/pkg/redis"

	"github.com/google/uuid"
)

// WinnerService implements the winner calculation engine and the
// propose/approve state machine.
//
// Ranking policy: each eligible submission's final score is the arithmetic
// mean of the scores actually submitted for it; judges who have not scored a
// submission do not contribute. Ties break by submission id ascending, and
// submissions nobody scored rank after every scored one, also by id. The
// policy is deterministic so repeated calculations agree.
type WinnerService struct {
	winnerRepo     repository.WinnerRepository
	submissionRepo repository.SubmissionRepository
	scoreRepo      repository.ScoreRepository
	redis          *redis.Client
	logger         *logger.Logger
}

// NewWinnerService creates a winner service. redisClient may be nil; the
// propose/approve idempotency locks are then skipped.
func NewWinnerService(
	winnerRepo repository.WinnerRepository,
	submissionRepo repository.SubmissionRepository,
	scoreRepo repository.ScoreRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) *WinnerService {
	return &WinnerService{
		winnerRepo:     winnerRepo,
		submissionRepo: submissionRepo,
		scoreRepo:      scoreRepo,
		redis:          redisClient,
		logger:         logger,
	}
}

// Calculate produces the advisory ranked candidate list for a hackathon.
// Nothing is persisted; the organizer reviews the list client-side and
// proposes it explicitly.
func (s *WinnerService) Calculate(ctx context.Context, hackathon *domain.Hackathon) ([]*domain.WinnerCandidate, error) {
	submissions, err := s.submissionRepo.ListEligible(ctx, hackathon.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list submissions", err)
	}

	scores, err := s.scoreRepo.ListForHackathon(ctx, hackathon.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list scores", err)
	}

	candidates := RankSubmissions(submissions, scores)
	for _, c := range candidates {
		c.SuggestedPrize = hackathon.PrizeForPosition(c.SuggestedPosition)
	}

	return candidates, nil
}

// RankSubmissions applies the ranking policy to eligible submissions and
// their scores. Disqualified submissions must already be filtered out by the
// caller; scores against them never reach this function.
func RankSubmissions(submissions []*domain.Submission, scores []*domain.Score) []*domain.WinnerCandidate {
	sums := make(map[int64]int, len(submissions))
	counts := make(map[int64]int, len(submissions))
	for _, sc := range scores {
		sums[sc.SubmissionID] += sc.Score
		counts[sc.SubmissionID]++
	}

	candidates := make([]*domain.WinnerCandidate, 0, len(submissions))
	for _, sub := range submissions {
		c := &domain.WinnerCandidate{
			SubmissionID: sub.ID,
			ProjectName:  sub.ProjectName,
			TeamName:     sub.TeamName,
			ScoreCount:   counts[sub.ID],
		}
		if c.ScoreCount > 0 {
			c.FinalScore = float64(sums[sub.ID]) / float64(c.ScoreCount)
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.ScoreCount > 0) != (b.ScoreCount > 0) {
			return a.ScoreCount > 0
		}
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		return a.SubmissionID < b.SubmissionID
	})

	for i, c := range candidates {
		c.SuggestedPosition = i + 1
	}

	return candidates
}

// Propose persists a candidate list as pending winners, atomically replacing
// any earlier pending set. Rejected once any winner of the hackathon has
// been approved: the announced set is frozen.
func (s *WinnerService) Propose(ctx context.Context, hackathon *domain.Hackathon, req *domain.ProposeWinnersRequest) ([]*domain.Winner, error) {
	if err := s.tryLock(ctx, s.lockKeyPropose(hackathon.ID), "Another propose request is in flight"); err != nil {
		return nil, err
	}

	approved, err := s.winnerRepo.HasApproved(ctx, hackathon.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to check winner state", err)
	}
	if approved {
		return nil, errors.NewPolicyError("Winners have already been approved for this hackathon; the pending set can no longer be replaced")
	}

	seenPositions := make(map[int]bool, len(req.Winners))
	seenSubmissions := make(map[int64]bool, len(req.Winners))
	winners := make([]*domain.Winner, 0, len(req.Winners))

	for _, entry := range req.Winners {
		if seenPositions[entry.Position] {
			return nil, errors.NewValidationError(fmt.Sprintf("Duplicate position %d", entry.Position), nil)
		}
		if seenSubmissions[entry.SubmissionID] {
			return nil, errors.NewValidationError(fmt.Sprintf("Submission %d listed twice", entry.SubmissionID), nil)
		}
		seenPositions[entry.Position] = true
		seenSubmissions[entry.SubmissionID] = true

		submission, err := s.submissionRepo.GetByID(ctx, entry.SubmissionID)
		if err != nil {
			return nil, errors.NewInternalError("Failed to load submission", err)
		}
		if submission == nil || submission.HackathonID != hackathon.ID {
			return nil, errors.NewValidationError(fmt.Sprintf("Submission %d does not belong to this hackathon", entry.SubmissionID), nil)
		}
		if !submission.Eligible() {
			return nil, errors.NewValidationError(fmt.Sprintf("Submission %d is disqualified and cannot win", entry.SubmissionID), nil)
		}

		winners = append(winners, &domain.Winner{
			ID:           uuid.NewString(),
			HackathonID:  hackathon.ID,
			SubmissionID: entry.SubmissionID,
			ProjectName:  submission.ProjectName,
			Position:     entry.Position,
			PrizeName:    entry.PrizeName,
			FinalScore:   entry.FinalScore,
		})
	}

	if err := s.winnerRepo.ReplacePending(ctx, hackathon.ID, winners); err != nil {
		return nil, errors.NewInternalError("Failed to persist proposed winners", err)
	}

	metrics.WinnersProposed.Add(float64(len(winners)))
	s.logger.WithFields(map[string]interface{}{
		"hackathon_id": hackathon.ID,
		"count":        len(winners),
	}).Info("Winners proposed")

	return winners, nil
}

// Approve transitions one winner from pending to approved and writes the
// achievement onto the winning submission owner's profile. Approving an
// already-approved winner is a no-op success; there is no reverse
// transition.
func (s *WinnerService) Approve(ctx context.Context, winnerID string) (*domain.Winner, error) {
	if err := s.tryLock(ctx, s.lockKeyApprove(winnerID), "Another approve request is in flight"); err != nil {
		return nil, err
	}

	winner, err := s.winnerRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load winner", err)
	}
	if winner == nil {
		return nil, errors.NewNotFoundError("Winner not found")
	}
	if winner.Status == domain.WinnerApproved {
		return winner, nil
	}

	submission, err := s.submissionRepo.GetByID(ctx, winner.SubmissionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load winning submission", err)
	}
	if submission == nil {
		return nil, errors.NewInternalError("Winner references a missing submission", nil)
	}

	achievement := &domain.Achievement{
		ID:          uuid.NewString(),
		UserID:      submission.OwnerID,
		HackathonID: winner.HackathonID,
		WinnerID:    winner.ID,
		Title:       achievementTitle(winner),
		Position:    winner.Position,
	}

	transitioned, err := s.winnerRepo.Approve(ctx, winnerID, achievement)
	if err != nil {
		return nil, errors.NewInternalError("Failed to approve winner", err)
	}

	if transitioned {
		metrics.WinnersApproved.Inc()
		s.logger.WithFields(map[string]interface{}{
			"winner_id":    winnerID,
			"hackathon_id": winner.HackathonID,
			"position":     winner.Position,
		}).Info("Winner approved")
	}

	winner.Status = domain.WinnerApproved
	if winner.ApprovedAt == nil {
		now := time.Now().UTC()
		winner.ApprovedAt = &now
	}

	return winner, nil
}

// Get returns one winner row. Used by the API layer to resolve a winner's
// hackathon for the organizer access check before approving.
func (s *WinnerService) Get(ctx context.Context, winnerID string) (*domain.Winner, error) {
	winner, err := s.winnerRepo.GetByID(ctx, winnerID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load winner", err)
	}
	if winner == nil {
		return nil, errors.NewNotFoundError("Winner not found")
	}
	return winner, nil
}

// List returns the hackathon's persisted winner rows.
func (s *WinnerService) List(ctx context.Context, hackathonID int64) ([]*domain.Winner, error) {
	winners, err := s.winnerRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list winners", err)
	}
	return winners, nil
}

func achievementTitle(w *domain.Winner) string {
	if w.PrizeName != "" {
		return w.PrizeName
	}
	return fmt.Sprintf("Place #%d", w.Position)
}

func (s *WinnerService) lockKeyPropose(hackathonID int64) string {
	if s.redis == nil {
		return ""
	}
	return s.redis.KeyBuilder.KeyProposeLock(hackathonID)
}

func (s *WinnerService) lockKeyApprove(winnerID string) string {
	if s.redis == nil {
		return ""
	}
	return s.redis.KeyBuilder.KeyApproveLock(winnerID)
}

// tryLock takes a short SetNX idempotency lock guarding the propose and
// approve writes against double-clicks and concurrent organizers. A Redis
// outage degrades to unguarded writes rather than blocking the workflow;
// the database transaction still keeps each individual write atomic.
func (s *WinnerService) tryLock(ctx context.Context, key, conflictMessage string) error {
	if s.redis == nil || key == "" {
		return nil
	}

	acquired, err := s.redis.SetNX(ctx, key, "1", redis.TTLActionLock)
	if err != nil {
		s.logger.WithError(err).Warn("Idempotency lock unavailable, proceeding without it")
		return nil
	}
	if !acquired {
		return errors.NewConflictError(conflictMessage)
	}

	return nil
}
