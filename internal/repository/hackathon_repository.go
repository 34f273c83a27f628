package repository

import (
	"context"
	"fmt"

	"maximally-judging/internal/domain"
	"maximally-judging/pkg/database"

	"github.com/jackc/pgx/v5"
)

type hackathonRepository struct {
	db *database.PostgresDB
}

// NewHackathonRepository creates a Postgres-backed HackathonRepository.
func NewHackathonRepository(db *database.PostgresDB) HackathonRepository {
	return &hackathonRepository{db: db}
}

func (r *hackathonRepository) GetByID(ctx context.Context, id int64) (*domain.Hackathon, error) {
	var h domain.Hackathon
	query := `
		SELECT id, name, slug, organizer_id, judging_opens_at, judging_closes_at,
		       gallery_public, prize_ladder, created_at, updated_at
		FROM hackathons
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&h.ID,
		&h.Name,
		&h.Slug,
		&h.OrganizerID,
		&h.JudgingOpensAt,
		&h.JudgingClosesAt,
		&h.GalleryPublic,
		&h.PrizeLadder,
		&h.CreatedAt,
		&h.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hackathon: %w", err)
	}

	return &h, nil
}

func (r *hackathonRepository) IsOrganizer(ctx context.Context, hackathonID int64, userID string) (bool, error) {
	var ok bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM hackathons WHERE id = $1 AND organizer_id = $2
			UNION
			SELECT 1 FROM hackathon_organizers WHERE hackathon_id = $1 AND user_id = $2
		)
	`

	if err := r.db.Pool.QueryRow(ctx, query, hackathonID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check organizer: %w", err)
	}

	return ok, nil
}
