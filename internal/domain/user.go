package domain

// UserProfile is the authenticated platform user extracted from a Supabase
// JWT. Only organizers reach authenticated routes in this service.
type UserProfile struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
