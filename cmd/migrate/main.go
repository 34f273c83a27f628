package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/migrate [up|drop|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("Tables created")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("Tables dropped")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS hackathons (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			organizer_id TEXT NOT NULL,
			judging_opens_at TIMESTAMPTZ,
			judging_closes_at TIMESTAMPTZ,
			gallery_public BOOLEAN NOT NULL DEFAULT FALSE,
			prize_ladder TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS hackathon_organizers (
			hackathon_id BIGINT NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'co_organizer'
				CHECK (role IN ('owner', 'co_organizer')),
			PRIMARY KEY (hackathon_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS judges (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			hackathon_id BIGINT NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			access_token TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			hackathon_id BIGINT NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			project_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			repo_url TEXT NOT NULL DEFAULT '',
			demo_url TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL,
			team_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft'
				CHECK (status IN ('draft', 'submitted', 'disqualified')),
			feedback TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_hackathon_status
			ON submissions (hackathon_id, status)`,
		`CREATE TABLE IF NOT EXISTS scores (
			judge_id BIGINT NOT NULL REFERENCES judges(id) ON DELETE CASCADE,
			submission_id BIGINT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 10),
			notes TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (judge_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS winners (
			id UUID PRIMARY KEY,
			hackathon_id BIGINT NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			submission_id BIGINT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL CHECK (position >= 1),
			prize_name TEXT NOT NULL DEFAULT '',
			final_score NUMERIC(4,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'approved')),
			proposed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			approved_at TIMESTAMPTZ,
			UNIQUE (hackathon_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			hackathon_id BIGINT NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			winner_id UUID NOT NULL REFERENCES winners(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			position INTEGER NOT NULL,
			awarded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}

	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		DROP TABLE IF EXISTS achievements, winners, scores, submissions,
			judges, hackathon_organizers, hackathons CASCADE
	`)
	return err
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		INSERT INTO hackathons (name, slug, organizer_id, gallery_public, prize_ladder)
		VALUES ('Maximally Demo Hackathon', 'demo-hackathon', 'demo-organizer',
			FALSE, ARRAY['Grand Prize', 'Runner Up', 'Third Place'])
		ON CONFLICT (slug) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed hackathon: %w", err)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO judges (hackathon_id, name, email, access_token)
		SELECT h.id, 'Demo Judge', 'judge@example.com',
			'mx_' || encode(gen_random_bytes(16), 'hex')
		FROM hackathons h
		WHERE h.slug = 'demo-hackathon'
		  AND NOT EXISTS (SELECT 1 FROM judges j WHERE j.hackathon_id = h.id)
	`)
	if err != nil {
		return fmt.Errorf("failed to seed judge: %w", err)
	}

	return nil
}
