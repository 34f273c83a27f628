package repository

import (
	"context"
	"fmt"

	"maximally-judging/internal/domain"
	"maximally-judging/pkg/database"

	"github.com/jackc/pgx/v5"
)

type submissionRepository struct {
	db *database.PostgresDB
}

// NewSubmissionRepository creates a Postgres-backed SubmissionRepository.
func NewSubmissionRepository(db *database.PostgresDB) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `
	id, hackathon_id, project_name, description, repo_url, demo_url,
	owner_id, team_name, status, feedback, created_at, updated_at
`

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(
		&s.ID,
		&s.HackathonID,
		&s.ProjectName,
		&s.Description,
		&s.RepoURL,
		&s.DemoURL,
		&s.OwnerID,
		&s.TeamName,
		&s.Status,
		&s.Feedback,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return s, nil
}

func (r *submissionRepository) ListEligible(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE hackathon_id = $1 AND status = 'submitted'
		ORDER BY created_at, id
	`

	return r.list(ctx, query, hackathonID)
}

func (r *submissionRepository) ListForModeration(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE hackathon_id = $1 AND status <> 'draft'
		ORDER BY created_at, id
	`

	return r.list(ctx, query, hackathonID)
}

func (r *submissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Submission, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

func (r *submissionRepository) ListEligibleWithScores(ctx context.Context, hackathonID, judgeID int64) ([]*domain.ScoredSubmission, error) {
	query := `
		SELECT s.id, s.hackathon_id, s.project_name, s.description, s.repo_url,
		       s.demo_url, s.owner_id, s.team_name, s.status, s.feedback,
		       s.created_at, s.updated_at, sc.score, sc.notes
		FROM submissions s
		LEFT JOIN scores sc ON sc.submission_id = s.id AND sc.judge_id = $2
		WHERE s.hackathon_id = $1 AND s.status = 'submitted'
		ORDER BY s.created_at, s.id
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions with scores: %w", err)
	}
	defer rows.Close()

	var subs []*domain.ScoredSubmission
	for rows.Next() {
		var s domain.ScoredSubmission
		if err := rows.Scan(
			&s.ID,
			&s.HackathonID,
			&s.ProjectName,
			&s.Description,
			&s.RepoURL,
			&s.DemoURL,
			&s.OwnerID,
			&s.TeamName,
			&s.Status,
			&s.Feedback,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.MyScore,
			&s.MyNotes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scored submission: %w", err)
		}
		subs = append(subs, &s)
	}

	return subs, rows.Err()
}

func (r *submissionRepository) SetModeration(ctx context.Context, id int64, status domain.SubmissionStatus, feedback *string) error {
	query := `
		UPDATE submissions
		SET status = $2, feedback = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, feedback)
	if err != nil {
		return fmt.Errorf("failed to update submission moderation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %d not found", id)
	}

	return nil
}
