package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsBadKeys(t *testing.T) {
	_, err := NewTokenService("abcd", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateAccessToken(domain.Principal{ID: "user-1", DisplayName: "Dana"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	principal, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, "Dana", principal.DisplayName)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.True(t, strings.HasPrefix(claims.TokenID, "token-"))
}

func TestVerifyAccessToken_Failures(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService(strings.Repeat("ab", 32), time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateAccessToken(domain.Principal{ID: "user-1"})
	require.NoError(t, err)

	expiredSvc := newTestTokenService(t)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.GenerateAccessToken(domain.Principal{ID: "user-1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong key", foreign},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
		})
	}
}

func TestGenerateAccessToken_RequiresID(t *testing.T) {
	svc := newTestTokenService(t)
	_, err := svc.GenerateAccessToken(domain.Principal{ID: "  "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	key, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	again, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = NewTokenService(KeyHex(key), time.Hour)
	assert.NoError(t, err)
}

func TestLoadOrGenerateKey_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, keyFileName), []byte("short"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid auth key length")
}
