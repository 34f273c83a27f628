package service

import (
	"context"

	"maximally-judging/internal/domain"
)

// AuthService validates organizer bearer tokens.
type AuthService interface {
	// ValidateToken verifies a Supabase JWT and returns the user profile.
	ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error)
}

// Mailer sends transactional email. Only the judge reminder flow uses it.
type Mailer interface {
	// Send delivers one message. The error describes a per-recipient
	// failure; the caller decides whether to continue.
	Send(ctx context.Context, to, subject, body string) error
}
