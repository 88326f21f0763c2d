package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mommylounge/lounge-server/internal/auth"
	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/store"
	"github.com/mommylounge/lounge-server/internal/validation"
)

// IdentityService turns bearer tokens into principals and owns the users
// directory used to resolve display names.
type IdentityService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIdentityService creates a new identity service.
func NewIdentityService(store *store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// UpdateBioInput is the profile edit command.
type UpdateBioInput struct {
	Bio string `json:"bio" validate:"max=500"`
}

// Authenticate verifies a raw token and returns the caller.
func (s *IdentityService) Authenticate(token string) (*domain.Principal, error) {
	return s.tokens.Authenticate(token)
}

// CurrentPrincipal extracts the caller from an Authorization header value.
// A missing or invalid token yields nil; callers decide whether that is fatal.
func (s *IdentityService) CurrentPrincipal(authHeader string) *domain.Principal {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil
	}
	principal, err := s.tokens.Authenticate(token)
	if err != nil {
		s.logger.Debug("rejected bearer token", "error", err)
		return nil
	}
	return principal
}

// Touch records the principal in the directory. Failures are logged and
// swallowed since the directory only feeds display names.
func (s *IdentityService) Touch(ctx context.Context, principal *domain.Principal) {
	if principal == nil || principal.ID == "" {
		return
	}
	if err := s.store.TouchUser(ctx, *principal); err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to record user in directory", "user_id", principal.ID, "error", err)
	}
}

// ResolveDisplayNames maps each id to a display name in one directory query.
// Ids without a directory entry map to the placeholder. If the directory is
// unreachable every id maps to the placeholder.
func (s *IdentityService) ResolveDisplayNames(ctx context.Context, userIDs []string) map[string]string {
	names, err := s.store.DisplayNames(ctx, userIDs)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("display name lookup failed, using placeholder", "ids", len(userIDs), "error", err)
		names = map[string]string{}
	}

	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if name, ok := names[id]; ok {
			out[id] = name
		} else {
			out[id] = domain.PlaceholderDisplayName
		}
	}
	return out
}

// GetProfile returns a user's directory entry.
func (s *IdentityService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.Validation("user id is required")
	}

	profile, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.DisplayName == "" {
		profile.DisplayName = domain.PlaceholderDisplayName
	}
	return profile, nil
}

// UpdateBio sets the caller's bio and returns the updated profile.
func (s *IdentityService) UpdateBio(ctx context.Context, principal *domain.Principal, input UpdateBioInput) (*domain.UserProfile, error) {
	if principal == nil {
		return nil, domainerrors.Unauthorized("sign in to edit your profile")
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBio(ctx, *principal, strings.TrimSpace(input.Bio)); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, principal.ID)
}
