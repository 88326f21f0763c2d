package providers

import (
	"github.com/samber/do/v2"

	"github.com/mommylounge/lounge-server/internal/auth"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/dto"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
	"github.com/mommylounge/lounge-server/internal/validation"
)

// ProvideIdentityService provides the identity and profile service.
func ProvideIdentityService(i do.Injector) (*service.IdentityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIdentityService(storeHandle.Store, tokens, v, log.Logger), nil
}

// ProvideEnricher provides the display-name enricher for read models.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	identity := do.MustInvoke[*service.IdentityService](i)
	return dto.NewEnricher(identity), nil
}

// ProvideNotificationService provides the notification service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Store, sseHandle.Manager, publisher.Publisher, log.Logger), nil
}

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	identity := do.MustInvoke[*service.IdentityService](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, identity, enricher, sseHandle.Manager, v, cfg.Feed, log.Logger), nil
}

// ProvideCommentService provides the comment service.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	identity := do.MustInvoke[*service.IdentityService](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommentService(
		storeHandle.Store,
		identity,
		enricher,
		notifications,
		sseHandle.Manager,
		publisher.Publisher,
		v,
		log.Logger,
	), nil
}
