package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
)

func TestCurrentPrincipal(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	token, err := svc.tokens.GenerateAccessToken(domain.Principal{ID: "user-1", DisplayName: "Dana"})
	require.NoError(t, err)

	got := svc.identity.CurrentPrincipal("Bearer " + token)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "Dana", got.DisplayName)

	assert.Nil(t, svc.identity.CurrentPrincipal(""))
	assert.Nil(t, svc.identity.CurrentPrincipal(token))
	assert.Nil(t, svc.identity.CurrentPrincipal("Bearer "))
	assert.Nil(t, svc.identity.CurrentPrincipal("Bearer v4.local.garbage"))
}

func TestResolveDisplayNames_FallsBackToPlaceholder(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	svc.identity.Touch(ctx, principal("known", "Kim"))

	names := svc.identity.ResolveDisplayNames(ctx, []string{"known", "ghost", "known", ""})
	assert.Equal(t, map[string]string{
		"known": "Kim",
		"ghost": domain.PlaceholderDisplayName,
	}, names)
}

func TestResolveDisplayNames_StoreDownMapsEverythingToPlaceholder(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.identity.Touch(context.Background(), principal("known", "Kim"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	names := svc.identity.ResolveDisplayNames(ctx, []string{"known"})
	assert.Equal(t, domain.PlaceholderDisplayName, names["known"])
}

func TestProfile(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.identity.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.identity.UpdateBio(ctx, nil, UpdateBioInput{Bio: "hi"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	profile, err := svc.identity.UpdateBio(ctx, principal("u1", "Uma"), UpdateBioInput{Bio: "  Mom of twins  "})
	require.NoError(t, err)
	assert.Equal(t, "Uma", profile.DisplayName)
	assert.Equal(t, "Mom of twins", profile.Bio)

	_, err = svc.identity.UpdateBio(ctx, principal("u1", "Uma"), UpdateBioInput{Bio: strings.Repeat("x", 501)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// A token without a display name keeps the stored one.
	svc.identity.Touch(ctx, principal("u1", ""))
	profile, err = svc.identity.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Uma", profile.DisplayName)
}
