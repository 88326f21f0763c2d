// Package store is the document store adapter. It speaks the MongoDB driver API
// through lungo interfaces so the same code runs against a MongoDB deployment
// or lungo's embedded engine.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/config"
)

// Collection names.
const (
	PostsCollection         = "posts"
	NotificationsCollection = "notifications"
	UsersCollection         = "users"
)

// Store wraps a document database handle.
type Store struct {
	client lungo.IClient
	engine *lungo.Engine // set when running on the embedded engine
	logger *slog.Logger
	now    func() time.Time

	posts         lungo.ICollection
	notifications lungo.ICollection
	users         lungo.ICollection
}

// Open connects to the configured database. A memory:// URI opens lungo's
// in-memory engine, anything else dials MongoDB and pings it.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if cfg.IsMemory() {
		return openEngine(ctx, cfg.Name, logger)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := lungo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := newStore(client, nil, cfg.Name, logger)

	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = s.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	if logger != nil {
		logger.Info("Document store connected", "database", cfg.Name)
	}
	return s, nil
}

// OpenMemory opens a store on a fresh in-memory engine. Used by tests and
// by the memory:// development mode.
func OpenMemory(ctx context.Context, logger *slog.Logger) (*Store, error) {
	return openEngine(ctx, "lounge", logger)
}

func openEngine(ctx context.Context, dbName string, logger *slog.Logger) (*Store, error) {
	client, engine, err := lungo.Open(ctx, lungo.Options{
		Store: lungo.NewMemoryStore(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open memory engine: %w", err)
	}

	if logger != nil {
		logger.Info("In-memory document store opened", "database", dbName)
	}
	return newStore(client, engine, dbName, logger), nil
}

func newStore(client lungo.IClient, engine *lungo.Engine, dbName string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db := client.Database(dbName)
	return &Store{
		client:        client,
		engine:        engine,
		logger:        logger,
		now:           time.Now,
		posts:         db.Collection(PostsCollection),
		notifications: db.Collection(NotificationsCollection),
		users:         db.Collection(UsersCollection),
	}
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.logger.Info("Closing document store")

	if s.engine != nil {
		s.engine.Close()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return wrapErr(err, "ping")
	}
	return nil
}

// EnsureIndexes creates the indexes the query paths rely on.
// The embedded engine scans collections, so it is skipped there.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.engine != nil {
		return nil
	}

	indexes := []struct {
		coll   lungo.ICollection
		models []mongo.IndexModel
	}{
		{s.posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
		{s.notifications, []mongo.IndexModel{
			{Keys: bson.D{{Key: "recipient_user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "is_read", Value: 1}, {Key: "read_at", Value: 1}}},
		}},
	}

	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateMany(ctx, ix.models); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return nil
}

// timestamp returns the current time at the precision BSON dates keep.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
