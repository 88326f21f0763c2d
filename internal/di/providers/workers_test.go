package providers

import (
	"context"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/bus"
	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/id"
	"github.com/mommylounge/lounge-server/internal/logger"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
)

func setupWorkerInjector(t *testing.T, retention, interval time.Duration) (*do.RootScope, *store.Store) {
	t.Helper()

	log := logger.Discard()
	st, err := store.OpenMemory(context.Background(), log.Logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	manager := sse.NewManager(log.Logger)
	go manager.Start(ctx)

	injector := do.New()
	do.ProvideValue(injector, &config.Config{
		Notifications: config.NotificationConfig{
			Retention:       retention,
			CleanupInterval: interval,
		},
	})
	do.ProvideValue(injector, log)
	do.ProvideValue(injector, &StoreHandle{Store: st})
	do.ProvideValue(injector, &SSEManagerHandle{Manager: manager, cancel: cancel})
	do.ProvideValue(injector, &PublisherHandle{Publisher: bus.Noop{}})
	do.Provide(injector, ProvideNotificationService)
	do.Provide(injector, ProvideNotificationRetentionJob)

	t.Cleanup(func() {
		_ = injector.Shutdown()
	})
	return injector, st
}

func readNotification(t *testing.T, st *store.Store, recipient string) string {
	t.Helper()
	ctx := context.Background()

	n := &domain.Notification{
		RecipientUserID: recipient,
		ActorID:         "actor",
		PostID:          id.NewObjectID().Hex(),
		Message:         "actor commented on your post",
	}
	require.NoError(t, st.CreateNotification(ctx, n))

	changed, err := st.MarkRead(ctx, recipient, n.ID)
	require.NoError(t, err)
	require.True(t, changed)
	return n.ID
}

func TestNotificationRetentionJob_PurgesReadNotifications(t *testing.T) {
	injector, st := setupWorkerInjector(t, time.Millisecond, 10*time.Millisecond)
	readNotification(t, st, "alice")

	_, err := do.Invoke[*NotificationRetentionJob](injector)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		list, err := st.ListNotifications(context.Background(), "alice", false, 0)
		return err == nil && len(list) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationRetentionJob_DisabledKeepsNotifications(t *testing.T) {
	injector, st := setupWorkerInjector(t, 0, 10*time.Millisecond)
	readNotification(t, st, "alice")

	job, err := do.Invoke[*NotificationRetentionJob](injector)
	require.NoError(t, err)
	require.NotNil(t, job)

	time.Sleep(50 * time.Millisecond)

	list, err := st.ListNotifications(context.Background(), "alice", false, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
