// Package di provides dependency injection configuration for the lounge server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mommylounge/lounge-server/internal/auth"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/di/providers"
	"github.com/mommylounge/lounge-server/internal/dto"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Storage and transport
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvidePublisher)

	// Business services
	do.Provide(injector, providers.ProvideIdentityService)
	do.Provide(injector, providers.ProvideEnricher)
	do.Provide(injector, providers.ProvideNotificationService)
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideCommentService)

	// Workers
	do.Provide(injector, providers.ProvideNotificationRetentionJob)

	// Server
	do.Provide(injector, providers.ProvideSSEHandler)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization of everything registered in NewContainer.
func Bootstrap(injector *do.RootScope) error {
	// Core infrastructure
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	do.MustInvoke[*logger.Logger](injector)
	do.MustInvoke[*validation.Validator](injector)

	// Auth layer
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Storage and transport
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	do.MustInvoke[*providers.SSEManagerHandle](injector)
	do.MustInvoke[*providers.PublisherHandle](injector)

	// Business services
	do.MustInvoke[*service.IdentityService](injector)
	do.MustInvoke[*dto.Enricher](injector)
	do.MustInvoke[*service.NotificationService](injector)
	do.MustInvoke[*service.PostService](injector)
	do.MustInvoke[*service.CommentService](injector)

	// Workers
	do.MustInvoke[*providers.NotificationRetentionJob](injector)

	// Server
	do.MustInvoke[*sse.Handler](injector)
	do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
