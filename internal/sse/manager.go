package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mommylounge/lounge-server/internal/id"
)

const (
	eventQueueSize  = 1000
	clientQueueSize = 100
)

// ErrShuttingDown is returned by Connect once Shutdown has started.
var ErrShuttingDown = errors.New("sse manager is shutting down")

// Client is one open event stream. A user may hold several, one per tab or device.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	UserID      string
}

// Manager fans events out to connected streams. Events with a UserID only
// reach that user's sessions; events without one reach everybody.
type Manager struct {
	logger *slog.Logger
	events chan Event
	wg     sync.WaitGroup

	mu       sync.RWMutex
	clients  map[string]*Client
	sessions map[string]map[string]*Client // user id -> client id -> client

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:   logger,
		events:   make(chan Event, eventQueueSize),
		clients:  make(map[string]*Client),
		sessions: make(map[string]map[string]*Client),
	}
}

// Start runs the dispatch loop until ctx is canceled or Shutdown closes the queue.
// Call it once, in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("SSE manager starting")

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				return
			}
			m.dispatch(event)

		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.closeAllClients()
			return
		}
	}
}

// Shutdown stops accepting events, flushes what is queued and closes every stream.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.events)
	m.closeMu.Unlock()

	flushed := make(chan struct{})
	go func() {
		for event := range m.events {
			m.dispatch(event)
		}
		close(flushed)
	}()

	select {
	case <-flushed:
	case <-ctx.Done():
		m.logger.Warn("SSE flush timed out, queued events dropped")
	}

	m.wg.Wait()
	m.closeAllClients()

	m.logger.Info("SSE manager shut down")
	return nil
}

func (m *Manager) dispatch(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := m.clients
	if event.UserID != "" {
		targets = m.sessions[event.UserID]
	}

	var delivered, dropped int
	for _, client := range targets {
		select {
		case client.EventChan <- event:
			delivered++
		default:
			dropped++
			m.logger.Warn("dropped event for slow client",
				slog.String("client_id", client.ID),
				slog.String("event_type", string(event.Type)))
		}
	}

	m.logger.Debug("event dispatched",
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

// Connect opens a session for userID.
func (m *Manager) Connect(userID string) (*Client, error) {
	m.closeMu.RLock()
	closed := m.closed
	m.closeMu.RUnlock()
	if closed {
		return nil, ErrShuttingDown
	}

	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		UserID:      userID,
		EventChan:   make(chan Event, clientQueueSize),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[clientID] = client
	if m.sessions[userID] == nil {
		m.sessions[userID] = make(map[string]*Client)
	}
	m.sessions[userID][clientID] = client
	userSessions := len(m.sessions[userID])
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("user_id", userID),
		slog.Int("user_sessions", userSessions),
		slog.Int("total_clients", total))
	return client, nil
}

// Disconnect closes a session. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.removeLocked(client)
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.String("user_id", client.UserID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// removeLocked drops client from both indexes and closes its channels.
// m.mu must be held for writing.
func (m *Manager) removeLocked(client *Client) {
	delete(m.clients, client.ID)
	if sessions := m.sessions[client.UserID]; sessions != nil {
		delete(sessions, client.ID)
		if len(sessions) == 0 {
			delete(m.sessions, client.UserID)
		}
	}
	close(client.Done)
	close(client.EventChan)
}

// Emit queues an event without blocking. Events are dropped when the queue
// is full or the manager is shutting down.
func (m *Manager) Emit(event Event) {
	// The read lock is held through the send so Shutdown cannot close the
	// queue underneath it.
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("SSE event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// EmitToUser queues an event for every session of userID.
func (m *Manager) EmitToUser(userID string, event Event) {
	event.UserID = userID
	m.Emit(event)
}

// ClientCount returns the number of open sessions.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// SessionCount returns how many sessions userID has open.
func (m *Manager) SessionCount(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[userID])
}

// UserCount returns the number of distinct connected users.
func (m *Manager) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.clients) == 0 {
		return
	}
	for _, client := range m.clients {
		close(client.Done)
		close(client.EventChan)
	}
	m.clients = make(map[string]*Client)
	m.sessions = make(map[string]map[string]*Client)

	m.logger.Info("all SSE clients disconnected")
}
