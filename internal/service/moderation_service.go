package service

import (
	"context"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/repository"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
)

// ModerationService lets organizers disqualify and reinstate submissions.
// Both actions are closed permanently once the hackathon's gallery goes
// public; that gate is a business rule, rejected as a policy error rather
// than a generic 403.
type ModerationService struct {
	submissionRepo repository.SubmissionRepository
	logger         *logger.Logger
}

// NewModerationService creates a moderation service.
func NewModerationService(submissionRepo repository.SubmissionRepository, logger *logger.Logger) *ModerationService {
	return &ModerationService{
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

// List returns every non-draft submission of the hackathon, including
// disqualified ones with their stored reason.
func (s *ModerationService) List(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	subs, err := s.submissionRepo.ListForModeration(ctx, hackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list submissions", err)
	}
	return subs, nil
}

// Moderate applies one disqualify or reinstate action. Repeating an action
// the submission is already in is a harmless re-write.
func (s *ModerationService) Moderate(ctx context.Context, hackathon *domain.Hackathon, req *domain.ModerationRequest) (*domain.Submission, error) {
	if hackathon.GalleryPublic {
		return nil, errors.NewPolicyError("The submission gallery is public; moderation is closed for this hackathon")
	}

	submission, err := s.submissionRepo.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load submission", err)
	}
	if submission == nil || submission.HackathonID != hackathon.ID {
		return nil, errors.NewNotFoundError("Submission not found")
	}

	var status domain.SubmissionStatus
	var feedback *string

	switch req.Action {
	case domain.ModerationDisqualify:
		if req.Reason == "" {
			return nil, errors.NewValidationError("A reason is required to disqualify a submission", nil)
		}
		status = domain.StatusDisqualified
		feedback = &req.Reason
	case domain.ModerationReinstate:
		if submission.Status == domain.StatusDraft {
			return nil, errors.NewValidationError("Draft submissions cannot be reinstated", nil)
		}
		status = domain.StatusSubmitted
		feedback = nil
	default:
		return nil, errors.NewValidationError("Unknown moderation action", nil)
	}

	if err := s.submissionRepo.SetModeration(ctx, submission.ID, status, feedback); err != nil {
		return nil, errors.NewInternalError("Failed to update submission", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"submission_id": submission.ID,
		"hackathon_id":  hackathon.ID,
		"action":        req.Action,
	}).Info("Submission moderated")

	submission.Status = status
	submission.Feedback = feedback

	return submission, nil
}
