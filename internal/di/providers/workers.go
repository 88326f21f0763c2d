package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/service"
)

// NotificationRetentionJob periodically purges old read notifications.
type NotificationRetentionJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *NotificationRetentionJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideNotificationRetentionJob provides the retention job. A zero
// retention leaves it idle.
func ProvideNotificationRetentionJob(i do.Injector) (*NotificationRetentionJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &NotificationRetentionJob{cancel: cancel}

	retention := cfg.Notifications.Retention
	if retention <= 0 {
		log.Info("Notification retention disabled")
		return job, nil
	}

	interval := cfg.Notifications.CleanupInterval

	purge := func() {
		pctx, done := context.WithTimeout(ctx, purgeTimeout)
		defer done()
		if count, err := notifications.PurgeRead(pctx, retention); err != nil {
			log.Warn("Notification cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Notification cleanup completed", "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		purge()

		for {
			select {
			case <-ticker.C:
				purge()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Notification retention job started",
		"retention", retention,
		"interval", interval,
	)

	return job, nil
}
