package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/color"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
)

// recentPostsOnProfile is how many of a user's posts a profile shows.
const recentPostsOnProfile = 5

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get my profile",
		Description: "Returns the caller's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMyProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update my profile",
		Description: "Updates the caller's bio",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user profile",
		Description: "Returns a user's profile and most recent posts",
		Tags:        []string{"Users"},
	}, s.handleGetUserProfile)
}

// === Request/Response Types ===

// AuthenticatedInput documents the bearer header on operations without other input.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

// ProfileResponse contains profile data.
type ProfileResponse struct {
	UserID         string        `json:"user_id" doc:"User ID"`
	DisplayName    string        `json:"display_name" doc:"Display name"`
	Bio            string        `json:"bio" doc:"Short bio"`
	AvatarColor    string        `json:"avatar_color" doc:"Avatar background color"`
	AvatarInitials string        `json:"avatar_initials" doc:"Avatar initials"`
	MemberSince    time.Time     `json:"member_since" doc:"When the user was first seen"`
	LastSeenAt     time.Time     `json:"last_seen_at" doc:"When the user was last active"`
	IsOwnProfile   bool          `json:"is_own_profile" doc:"Whether the caller is viewing their own profile"`
	RecentPosts    []domain.Post `json:"recent_posts,omitempty" doc:"Most recent posts by the user"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// UpdateProfileInput contains the update request.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		Bio string `json:"bio" maxLength:"500" doc:"Short bio"`
	}
}

// GetUserProfileInput identifies the profile to view.
type GetUserProfileInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, _ *AuthenticatedInput) (*ProfileOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	// First contact may come through here, so make sure the entry exists.
	s.services.Identity.Touch(ctx, principal)

	profile, err := s.services.Identity.GetProfile(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: newProfileResponse(profile, principal.ID)}, nil
}

func (s *Server) handleUpdateMyProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Identity.UpdateBio(ctx, principal, service.UpdateBioInput{Bio: input.Body.Bio})
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: newProfileResponse(profile, principal.ID)}, nil
}

func (s *Server) handleGetUserProfile(ctx context.Context, input *GetUserProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Identity.GetProfile(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var callerID string
	if p := principalFrom(ctx); p != nil {
		callerID = p.ID
	}
	resp := newProfileResponse(profile, callerID)

	page, err := s.services.Posts.ListPostsByOwner(ctx, profile.ID, 1, recentPostsOnProfile)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to load recent posts for profile", "user_id", profile.ID, "error", err)
	} else {
		resp.RecentPosts = page.Items
	}

	return &ProfileOutput{Body: resp}, nil
}

func newProfileResponse(profile *domain.UserProfile, callerID string) ProfileResponse {
	return ProfileResponse{
		UserID:         profile.ID,
		DisplayName:    profile.DisplayName,
		Bio:            profile.Bio,
		AvatarColor:    color.ForUser(profile.ID),
		AvatarInitials: color.Initials(profile.DisplayName),
		MemberSince:    profile.CreatedAt,
		LastSeenAt:     profile.LastSeenAt,
		IsOwnProfile:   callerID != "" && callerID == profile.ID,
	}
}
