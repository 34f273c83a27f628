package repository

import (
	"context"
	"fmt"

	"maximally-judging/internal/domain"
	"maximally-judging/pkg/database"

	"github.com/jackc/pgx/v5"
)

type winnerRepository struct {
	db *database.PostgresDB
}

// NewWinnerRepository creates a Postgres-backed WinnerRepository.
func NewWinnerRepository(db *database.PostgresDB) WinnerRepository {
	return &winnerRepository{db: db}
}

func (r *winnerRepository) GetByID(ctx context.Context, id string) (*domain.Winner, error) {
	var w domain.Winner
	query := `
		SELECT w.id, w.hackathon_id, w.submission_id, s.project_name, w.position,
		       w.prize_name, w.final_score, w.status, w.proposed_at, w.approved_at
		FROM winners w
		JOIN submissions s ON s.id = w.submission_id
		WHERE w.id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.HackathonID,
		&w.SubmissionID,
		&w.ProjectName,
		&w.Position,
		&w.PrizeName,
		&w.FinalScore,
		&w.Status,
		&w.ProposedAt,
		&w.ApprovedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}

	return &w, nil
}

func (r *winnerRepository) ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Winner, error) {
	query := `
		SELECT w.id, w.hackathon_id, w.submission_id, s.project_name, w.position,
		       w.prize_name, w.final_score, w.status, w.proposed_at, w.approved_at
		FROM winners w
		JOIN submissions s ON s.id = w.submission_id
		WHERE w.hackathon_id = $1
		ORDER BY w.position
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer rows.Close()

	var winners []*domain.Winner
	for rows.Next() {
		var w domain.Winner
		if err := rows.Scan(
			&w.ID,
			&w.HackathonID,
			&w.SubmissionID,
			&w.ProjectName,
			&w.Position,
			&w.PrizeName,
			&w.FinalScore,
			&w.Status,
			&w.ProposedAt,
			&w.ApprovedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	return winners, rows.Err()
}

func (r *winnerRepository) HasApproved(ctx context.Context, hackathonID int64) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM winners WHERE hackathon_id = $1 AND status = 'approved')`

	if err := r.db.Pool.QueryRow(ctx, query, hackathonID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check approved winners: %w", err)
	}

	return ok, nil
}

// ReplacePending swaps the hackathon's pending set in one transaction, so a
// re-propose can never leave a mix of old and new rows behind.
func (r *winnerRepository) ReplacePending(ctx context.Context, hackathonID int64, winners []*domain.Winner) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM winners WHERE hackathon_id = $1 AND status = 'pending'`,
		hackathonID,
	); err != nil {
		return fmt.Errorf("failed to clear pending winners: %w", err)
	}

	query := `
		INSERT INTO winners (id, hackathon_id, submission_id, position, prize_name, final_score, status, proposed_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', now())
		RETURNING proposed_at
	`

	for _, w := range winners {
		if err := tx.QueryRow(ctx, query,
			w.ID,
			w.HackathonID,
			w.SubmissionID,
			w.Position,
			w.PrizeName,
			w.FinalScore,
		).Scan(&w.ProposedAt); err != nil {
			return fmt.Errorf("failed to insert winner for submission %d: %w", w.SubmissionID, err)
		}
		w.Status = domain.WinnerPending
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit propose: %w", err)
	}

	return nil
}

// Approve flips one pending row to approved and writes the achievement in
// the same transaction. The WHERE status = 'pending' guard makes a repeat
// approval a zero-row update, reported as (false, nil).
func (r *winnerRepository) Approve(ctx context.Context, winnerID string, achievement *domain.Achievement) (bool, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE winners SET status = 'approved', approved_at = now() WHERE id = $1 AND status = 'pending'`,
		winnerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to approve winner: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Already approved (or raced). Nothing to write; the caller
		// treats this as an idempotent success.
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO achievements (id, user_id, hackathon_id, winner_id, title, position, awarded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		achievement.ID,
		achievement.UserID,
		achievement.HackathonID,
		achievement.WinnerID,
		achievement.Title,
		achievement.Position,
	); err != nil {
		return false, fmt.Errorf("failed to record achievement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit approval: %w", err)
	}

	return true, nil
}
