package repository

import (
	"context"
	"fmt"

	"maximally-judging/internal/domain"
	"maximally-judging/pkg/database"

	"github.com/jackc/pgx/v5"
)

type judgeRepository struct {
	db *database.PostgresDB
}

// NewJudgeRepository creates a Postgres-backed JudgeRepository.
func NewJudgeRepository(db *database.PostgresDB) JudgeRepository {
	return &judgeRepository{db: db}
}

func (r *judgeRepository) GetByToken(ctx context.Context, token string) (*domain.Judge, error) {
	var j domain.Judge
	query := `
		SELECT id, hackathon_id, name, email, access_token, expires_at, created_at
		FROM judges
		WHERE access_token = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&j.ID,
		&j.HackathonID,
		&j.Name,
		&j.Email,
		&j.AccessToken,
		&j.ExpiresAt,
		&j.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get judge by token: %w", err)
	}

	return &j, nil
}

func (r *judgeRepository) ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Judge, error) {
	query := `
		SELECT id, hackathon_id, name, email, access_token, expires_at, created_at
		FROM judges
		WHERE hackathon_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	defer rows.Close()

	var judges []*domain.Judge
	for rows.Next() {
		var j domain.Judge
		if err := rows.Scan(
			&j.ID,
			&j.HackathonID,
			&j.Name,
			&j.Email,
			&j.AccessToken,
			&j.ExpiresAt,
			&j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan judge: %w", err)
		}
		judges = append(judges, &j)
	}

	return judges, rows.Err()
}
