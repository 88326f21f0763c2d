package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mommylounge/lounge-server/internal/config"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	p := New(config.BusConfig{}, slog.New(slog.DiscardHandler))
	assert.IsType(t, Noop{}, p)
	p.Publish(context.Background(), Event{Type: CommentCreated})
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	p.Publish(ctx, Event{Type: CommentCreated, ActorID: "u1", PostID: "p1", CommentID: "c1"})
	cancel()
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.True(t, w.closed)

	msg := w.msgs[0]
	assert.Equal(t, []byte("p1"), msg.Key)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, CommentCreated, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "c1", decoded.CommentID)
	assert.WithinDuration(t, time.Now(), decoded.OccurredAt, time.Minute)
}

func TestKafkaPublisher_FailureIsSwallowed(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, slog.New(slog.DiscardHandler))

	p.Publish(context.Background(), Event{Type: NotificationCreated, PostID: "p1"})
	require.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}
