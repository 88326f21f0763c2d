package providers

import (
	"context"
	"time"
)

const (
	// shutdownTimeout bounds how long a handle drains before giving up.
	shutdownTimeout = 30 * time.Second

	// purgeTimeout bounds one notification retention pass.
	purgeTimeout = time.Minute
)

// shutdownContext returns a fresh context that expires after shutdownTimeout.
// Handles call it from Shutdown, after the container context is gone.
func shutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
