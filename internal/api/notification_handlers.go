package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/domain"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns the caller's notifications, newest first, with the current unread count",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUnreadCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications/count",
		Summary:     "Unread count",
		Description: "Returns how many of the caller's notifications are unread",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnreadCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark notification read",
		Description: "Marks one notification read. Marking an already-read notification is a no-op",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark all notifications read",
		Description: "Marks every unread notification of the caller read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkAllRead)
}

// === Request/Response Types ===

// ListNotificationsInput contains list filters.
type ListNotificationsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Unread        bool   `query:"unread" doc:"Only return unread notifications"`
	Limit         int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum number of notifications (0 for the server cap)"`
}

// NotificationListResponse carries the list and the recomputed unread count.
type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications" doc:"Notifications, newest first"`
	UnreadCount   int                   `json:"unread_count" doc:"Unread notifications of the caller"`
}

// NotificationListOutput wraps the list for Huma.
type NotificationListOutput struct {
	Body NotificationListResponse
}

// UnreadCountResponse carries the unread count.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count" doc:"Unread notifications of the caller"`
}

// UnreadCountOutput wraps the count for Huma.
type UnreadCountOutput struct {
	Body UnreadCountResponse
}

// MarkReadInput identifies the notification to acknowledge.
type MarkReadInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Notification ID"`
}

// MarkReadOutput wraps the acknowledgement result for Huma.
type MarkReadOutput struct {
	Body domain.MarkReadResult
}

// MarkAllReadOutput wraps the bulk acknowledgement result for Huma.
type MarkAllReadOutput struct {
	Body domain.MarkAllReadResult
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, input *ListNotificationsInput) (*NotificationListOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	notifications, err := s.services.Notifications.ListNotifications(ctx, principal.ID, input.Unread, input.Limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.services.Notifications.UnreadCount(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	return &NotificationListOutput{
		Body: NotificationListResponse{
			Notifications: notifications,
			UnreadCount:   unread,
		},
	}, nil
}

func (s *Server) handleUnreadCount(ctx context.Context, _ *AuthenticatedInput) (*UnreadCountOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	unread, err := s.services.Notifications.UnreadCount(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountOutput{Body: UnreadCountResponse{UnreadCount: unread}}, nil
}

func (s *Server) handleMarkRead(ctx context.Context, input *MarkReadInput) (*MarkReadOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Notifications.MarkRead(ctx, principal.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &MarkReadOutput{Body: *result}, nil
}

func (s *Server) handleMarkAllRead(ctx context.Context, _ *AuthenticatedInput) (*MarkAllReadOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Notifications.MarkAllRead(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadOutput{Body: *result}, nil
}
