package domain

import "time"

// OrganizerRole is a user's role on a hackathon.
type OrganizerRole string

const (
	RoleOwner       OrganizerRole = "owner"
	RoleCoOrganizer OrganizerRole = "co_organizer"
)

// Hackathon is the event a judging round belongs to. GalleryPublic is the
// terminal publication flag: once true, submission moderation is closed for
// good.
type Hackathon struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	OrganizerID     string     `json:"organizer_id"`
	JudgingOpensAt  *time.Time `json:"judging_opens_at,omitempty"`
	JudgingClosesAt *time.Time `json:"judging_closes_at,omitempty"`
	GalleryPublic   bool       `json:"gallery_public"`
	PrizeLadder     []string   `json:"prize_ladder"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PrizeForPosition returns the prize label for a 1-based position, or an
// empty string when the ladder is shorter than the ranking.
func (h *Hackathon) PrizeForPosition(position int) string {
	if position < 1 || position > len(h.PrizeLadder) {
		return ""
	}
	return h.PrizeLadder[position-1]
}
