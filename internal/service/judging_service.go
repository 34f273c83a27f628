package service

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/metrics"
	"maximally-judging/internal/repository"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
	"maximally-judging/pkg/redis"
)

// Judge tokens are issued as "mx_" followed by 32 hex characters. Anything
// else is rejected before touching storage.
var tokenPattern = regexp.MustCompile(`^mx_[0-9a-f]{32}$`)

// JudgingService implements the judge-facing workflow: token resolution,
// submission listing, and score recording.
type JudgingService struct {
	judgeRepo      repository.JudgeRepository
	submissionRepo repository.SubmissionRepository
	scoreRepo      repository.ScoreRepository
	hackathonRepo  repository.HackathonRepository
	redis          *redis.Client
	logger         *logger.Logger
}

// NewJudgingService creates a judging service. redisClient may be nil; token
// resolution then always hits the database.
func NewJudgingService(
	judgeRepo repository.JudgeRepository,
	submissionRepo repository.SubmissionRepository,
	scoreRepo repository.ScoreRepository,
	hackathonRepo repository.HackathonRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) *JudgingService {
	return &JudgingService{
		judgeRepo:      judgeRepo,
		submissionRepo: submissionRepo,
		scoreRepo:      scoreRepo,
		hackathonRepo:  hackathonRepo,
		redis:          redisClient,
		logger:         logger,
	}
}

// ResolveToken turns an opaque judge token into a judge+hackathon context.
// Fails with invalid_format, not_found, or expired; the three kinds are kept
// apart so the UI can tell a wrong link from a lapsed one.
func (s *JudgingService) ResolveToken(ctx context.Context, token string) (*domain.JudgeContext, error) {
	if !tokenPattern.MatchString(token) {
		return nil, errors.NewTokenError(errors.TokenErrInvalidFormat, "Malformed judge token")
	}

	judge, err := s.lookupJudge(ctx, token)
	if err != nil {
		return nil, errors.NewInternalError("Failed to resolve judge token", err)
	}
	if judge == nil {
		return nil, errors.NewTokenError(errors.TokenErrNotFound, "Unknown judge token")
	}

	// Expiry is checked on every request, including cache hits, so a
	// cached assignment cannot outlive its token.
	if judge.Expired(time.Now()) {
		return nil, errors.NewTokenError(errors.TokenErrExpired, "Judge token has expired")
	}

	hackathon, err := s.hackathonRepo.GetByID(ctx, judge.HackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load hackathon", err)
	}
	if hackathon == nil {
		s.logger.WithField("hackathon_id", judge.HackathonID).Error("Judge token points at missing hackathon")
		return nil, errors.NewTokenError(errors.TokenErrNotFound, "Unknown judge token")
	}

	return &domain.JudgeContext{Judge: judge, Hackathon: hackathon}, nil
}

// lookupJudge resolves a token with a cache-aside read through Redis.
func (s *JudgingService) lookupJudge(ctx context.Context, token string) (*domain.Judge, error) {
	if s.redis == nil {
		return s.judgeRepo.GetByToken(ctx, token)
	}

	cacheKey := s.redis.KeyBuilder.KeyJudgeToken(token)

	if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
		var judge domain.Judge
		if jsonErr := json.Unmarshal([]byte(cached), &judge); jsonErr == nil {
			metrics.CacheHits.WithLabelValues("judge_token").Inc()
			return &judge, nil
		}
		s.logger.WithField("key", cacheKey).Warn("Corrupted judge token cache entry, falling back to database")
	}
	metrics.CacheMisses.WithLabelValues("judge_token").Inc()

	judge, err := s.judgeRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if judge != nil {
		if data, jsonErr := json.Marshal(judge); jsonErr == nil {
			_ = s.redis.Set(ctx, cacheKey, data, redis.TTLJudgeToken)
		}
	}

	return judge, nil
}

// GetBoard resolves the token and returns the judge's submission listing,
// each entry annotated with that judge's existing score.
func (s *JudgingService) GetBoard(ctx context.Context, token string) (*domain.JudgeBoard, error) {
	jctx, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListEligibleWithScores(ctx, jctx.Hackathon.ID, jctx.Judge.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list submissions", err)
	}

	return &domain.JudgeBoard{
		Judge:       jctx.Judge,
		Hackathon:   jctx.Hackathon,
		Submissions: submissions,
	}, nil
}

// RecordScore validates and upserts one score for the token's judge.
// Re-scoring the same submission overwrites value and notes; exactly one row
// per (judge, submission) pair survives.
func (s *JudgingService) RecordScore(ctx context.Context, token string, req *domain.ScoreRequest) (*domain.ScoreResponse, error) {
	jctx, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if req.Score == nil || *req.Score < domain.ScoreMin || *req.Score > domain.ScoreMax {
		return nil, errors.NewValidationError("Score must be between 0 and 10", map[string]interface{}{
			"min": domain.ScoreMin,
			"max": domain.ScoreMax,
		})
	}

	submission, err := s.submissionRepo.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load submission", err)
	}
	// A submission from another hackathon is indistinguishable from a
	// missing one as far as this judge is concerned.
	if submission == nil || submission.HackathonID != jctx.Hackathon.ID {
		return nil, errors.NewNotFoundError("Submission not found")
	}
	if !submission.Eligible() {
		return nil, errors.NewValidationError("Submission is not eligible for judging", nil)
	}

	score := &domain.Score{
		JudgeID:      jctx.Judge.ID,
		SubmissionID: submission.ID,
		Score:        *req.Score,
		Notes:        req.Notes,
	}

	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, errors.NewInternalError("Failed to record score", err)
	}

	metrics.ScoresRecorded.Inc()
	s.invalidateProgress(ctx, jctx.Hackathon.ID)

	s.logger.WithFields(map[string]interface{}{
		"judge_id":      jctx.Judge.ID,
		"submission_id": submission.ID,
		"hackathon_id":  jctx.Hackathon.ID,
	}).Info("Score recorded")

	return &domain.ScoreResponse{
		SubmissionID: score.SubmissionID,
		Score:        score.Score,
		Notes:        score.Notes,
		RecordedAt:   score.UpdatedAt,
	}, nil
}

func (s *JudgingService) invalidateProgress(ctx context.Context, hackathonID int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyJudgeProgress(hackathonID)); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate progress cache")
	}
}
