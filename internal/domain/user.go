package domain

import "time"

// PlaceholderDisplayName is shown when a user's name cannot be resolved.
const PlaceholderDisplayName = "Anonymous"

// Principal is the authenticated identity making a request.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Name returns the display name, falling back to the placeholder.
func (p *Principal) Name() string {
	if p == nil || p.DisplayName == "" {
		return PlaceholderDisplayName
	}
	return p.DisplayName
}

// UserProfile is the directory entry for a forum member.
type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
