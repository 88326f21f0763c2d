package auth

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/id"
)

const (
	tokenIssuer   = "lounge-identity"
	tokenAudience = "lounge-client"
)

// TokenService verifies PASETO v4.local bearer tokens.
// It can also mint tokens for development tooling that shares the same key.
type TokenService struct {
	symmetricKey        paseto.V4SymmetricKey
	accessTokenDuration time.Duration
	now                 func() time.Time
}

// NewTokenService creates a token service from a hex-encoded 32-byte key.
func NewTokenService(keyHex string, accessDuration time.Duration) (*TokenService, error) {
	keyBytes, err := decodeKey(keyHex)
	if err != nil {
		return nil, err
	}
	return NewTokenServiceFromBytes(keyBytes, accessDuration)
}

// NewTokenServiceFromBytes creates a token service from raw key bytes.
func NewTokenServiceFromBytes(keyBytes []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(keyBytes) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(keyBytes))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:        key,
		accessTokenDuration: accessDuration,
		now:                 time.Now,
	}, nil
}

// GenerateAccessToken mints a token for the principal.
func (s *TokenService) GenerateAccessToken(principal domain.Principal) (string, error) {
	if strings.TrimSpace(principal.ID) == "" {
		return "", domainerrors.Validation("principal id is required")
	}

	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(principal.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessTokenDuration))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("display_name", principal.DisplayName)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyAccessToken decrypts and validates a token.
// Any failure is reported as an Unauthorized domain error.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domainerrors.Unauthorized("missing access token")
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, domainerrors.Unauthorized("malformed token claims").WithCause(err)
	}
	if claims.Subject == "" {
		return nil, domainerrors.Unauthorized("token has no subject")
	}

	return &claims, nil
}

// Authenticate verifies the token and returns the caller principal.
func (s *TokenService) Authenticate(tokenString string) (*domain.Principal, error) {
	claims, err := s.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// KeyHex returns the hex-encoded key, for handing to tools sharing this key.
func KeyHex(key []byte) string {
	return hex.EncodeToString(key)
}
