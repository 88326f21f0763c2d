package api

import (
	"github.com/mommylounge/lounge-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Identity      *service.IdentityService
	Posts         *service.PostService
	Comments      *service.CommentService
	Notifications *service.NotificationService
}
