package providers

import (
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mommylounge/lounge-server/internal/api"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
	"github.com/mommylounge/lounge-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := shutdownContext()
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideSSEHandler provides the event stream endpoint handler.
func ProvideSSEHandler(i do.Injector) (*sse.Handler, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	identity := do.MustInvoke[*service.IdentityService](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return sse.NewHandler(sseHandle.Manager, identity, notifications, log.Logger), nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	sseHandler := do.MustInvoke[*sse.Handler](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Identity:      do.MustInvoke[*service.IdentityService](i),
		Posts:         do.MustInvoke[*service.PostService](i),
		Comments:      do.MustInvoke[*service.CommentService](i),
		Notifications: do.MustInvoke[*service.NotificationService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, sseHandle.Manager, sseHandler, cfg, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
