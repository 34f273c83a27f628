package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/metrics"
	"maximally-judging/internal/repository"
	"maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
	"maximally-judging/pkg/redis"
)

// ProgressService computes per-judge and overall scoring completion, and
// drives the judge reminder flow off of it.
type ProgressService struct {
	judgeRepo      repository.JudgeRepository
	submissionRepo repository.SubmissionRepository
	scoreRepo      repository.ScoreRepository
	redis          *redis.Client
	mailer         Mailer
	logger         *logger.Logger
}

// NewProgressService creates a progress service. redisClient and mailer may
// be nil; reports are then uncached and reminders fail with an external
// error.
func NewProgressService(
	judgeRepo repository.JudgeRepository,
	submissionRepo repository.SubmissionRepository,
	scoreRepo repository.ScoreRepository,
	redisClient *redis.Client,
	mailer Mailer,
	logger *logger.Logger,
) *ProgressService {
	return &ProgressService{
		judgeRepo:      judgeRepo,
		submissionRepo: submissionRepo,
		scoreRepo:      scoreRepo,
		redis:          redisClient,
		mailer:         mailer,
		logger:         logger,
	}
}

// progressPercent is the rounded completion percentage. A zero denominator
// yields zero rather than dividing.
func progressPercent(scored, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(scored) / float64(total)))
}

// GetReport returns the hackathon's progress snapshot, cached briefly in
// Redis and recomputed from storage on a miss. Score writes invalidate the
// cache, so the snapshot is never more than one TTL stale.
func (s *ProgressService) GetReport(ctx context.Context, hackathonID int64) (*domain.ProgressReport, error) {
	if s.redis != nil {
		cacheKey := s.redis.KeyBuilder.KeyJudgeProgress(hackathonID)
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			var report domain.ProgressReport
			if jsonErr := json.Unmarshal([]byte(cached), &report); jsonErr == nil {
				metrics.CacheHits.WithLabelValues("progress").Inc()
				return &report, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("progress").Inc()
	}

	report, err := s.computeReport(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, jsonErr := json.Marshal(report); jsonErr == nil {
			_ = s.redis.Set(ctx, s.redis.KeyBuilder.KeyJudgeProgress(hackathonID), data, redis.TTLProgress)
		}
	}

	return report, nil
}

func (s *ProgressService) computeReport(ctx context.Context, hackathonID int64) (*domain.ProgressReport, error) {
	judges, err := s.judgeRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list judges", err)
	}

	eligible, err := s.submissionRepo.ListEligible(ctx, hackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list submissions", err)
	}
	total := len(eligible)

	counts, err := s.scoreRepo.CountByJudge(ctx, hackathonID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count scores", err)
	}

	report := &domain.ProgressReport{
		HackathonID:      hackathonID,
		Judges:           make([]domain.JudgeProgress, 0, len(judges)),
		TotalSubmissions: total,
		GeneratedAt:      time.Now().UTC(),
	}

	totalScored := 0
	for _, judge := range judges {
		scored := counts[judge.ID]
		if scored > total {
			// Can only happen if a submission was disqualified between
			// the two queries; clamp rather than report >100%.
			scored = total
		}
		totalScored += scored
		report.Judges = append(report.Judges, domain.JudgeProgress{
			JudgeID:   judge.ID,
			Name:      judge.Name,
			Email:     judge.Email,
			Scored:    scored,
			Total:     total,
			Progress:  progressPercent(scored, total),
			Completed: total > 0 && scored == total,
		})
	}

	report.OverallProgress = progressPercent(totalScored, total*len(judges))

	return report, nil
}

// SendReminders emails every judge whose scoring is incomplete. A Redis
// lock throttles the whole hackathon to one reminder run per hour so an
// impatient organizer cannot spam the panel.
func (s *ProgressService) SendReminders(ctx context.Context, hackathon *domain.Hackathon) (*domain.ReminderResult, error) {
	if s.mailer == nil {
		return nil, errors.NewExternalError("Mail delivery is not configured", nil)
	}

	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, s.redis.KeyBuilder.KeyReminderLock(hackathon.ID), "1", redis.TTLReminderLock)
		if err != nil {
			s.logger.WithError(err).Warn("Reminder lock check failed, proceeding without throttle")
		} else if !acquired {
			return nil, errors.NewConflictError("Reminders were already sent recently")
		}
	}

	report, err := s.GetReport(ctx, hackathon.ID)
	if err != nil {
		return nil, err
	}

	result := &domain.ReminderResult{}
	for _, jp := range report.Judges {
		if jp.Completed {
			result.Skipped++
			continue
		}

		subject := fmt.Sprintf("Reminder: %d submissions left to score for %s", jp.Total-jp.Scored, hackathon.Name)
		body := fmt.Sprintf(
			"Hi %s,\n\nYou have scored %d of %d submissions for %s (%d%%). "+
				"Please finish your reviews before judging closes.\n\n— The Maximally team",
			jp.Name, jp.Scored, jp.Total, hackathon.Name, jp.Progress,
		)

		if err := s.mailer.Send(ctx, jp.Email, subject, body); err != nil {
			s.logger.WithError(err).WithField("judge_id", jp.JudgeID).Error("Failed to send judge reminder")
			result.Failed = append(result.Failed, jp.Email)
			continue
		}
		result.Sent++
	}

	s.logger.WithFields(map[string]interface{}{
		"hackathon_id": hackathon.ID,
		"sent":         result.Sent,
		"skipped":      result.Skipped,
		"failed":       len(result.Failed),
	}).Info("Judge reminders processed")

	return result, nil
}
