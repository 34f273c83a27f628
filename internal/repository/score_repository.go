package repository

import (
	"context"
	"fmt"

	"maximally-judging/internal/domain"
	"maximally-judging/pkg/database"
)

type scoreRepository struct {
	db *database.PostgresDB
}

// NewScoreRepository creates a Postgres-backed ScoreRepository.
func NewScoreRepository(db *database.PostgresDB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Upsert(ctx context.Context, score *domain.Score) error {
	query := `
		INSERT INTO scores (judge_id, submission_id, score, notes, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (judge_id, submission_id)
		DO UPDATE SET score = EXCLUDED.score, notes = EXCLUDED.notes, updated_at = now()
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		score.JudgeID,
		score.SubmissionID,
		score.Score,
		score.Notes,
	).Scan(&score.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

// CountByJudge counts only scores against eligible submissions so that a
// disqualification retroactively shrinks both sides of the progress ratio.
func (r *scoreRepository) CountByJudge(ctx context.Context, hackathonID int64) (map[int64]int, error) {
	query := `
		SELECT sc.judge_id, COUNT(*)
		FROM scores sc
		JOIN submissions s ON s.id = sc.submission_id
		WHERE s.hackathon_id = $1 AND s.status = 'submitted'
		GROUP BY sc.judge_id
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to count scores: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var judgeID int64
		var count int
		if err := rows.Scan(&judgeID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan score count: %w", err)
		}
		counts[judgeID] = count
	}

	return counts, rows.Err()
}

func (r *scoreRepository) ListForHackathon(ctx context.Context, hackathonID int64) ([]*domain.Score, error) {
	query := `
		SELECT sc.judge_id, sc.submission_id, sc.score, sc.notes, sc.updated_at
		FROM scores sc
		JOIN submissions s ON s.id = sc.submission_id
		WHERE s.hackathon_id = $1 AND s.status = 'submitted'
		ORDER BY sc.submission_id, sc.judge_id
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.Score
	for rows.Next() {
		var sc domain.Score
		if err := rows.Scan(
			&sc.JudgeID,
			&sc.SubmissionID,
			&sc.Score,
			&sc.Notes,
			&sc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, &sc)
	}

	return scores, rows.Err()
}
