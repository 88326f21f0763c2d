package auth

import (
	"strings"
	"time"

	"github.com/mommylounge/lounge-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	DisplayName string `json:"display_name"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Principal converts the claims into the caller identity used by services.
func (c *AccessClaims) Principal() *domain.Principal {
	return &domain.Principal{
		ID:          c.Subject,
		DisplayName: strings.TrimSpace(c.DisplayName),
	}
}
