// Package mongostore owns the process-wide MongoDB connection used for price
// records. This is part of the platform layer and contains no business logic.
package mongostore

import (
	"context"
	"sync"
	"time"

	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

const defaultConnectTimeout = 10 * time.Second

// Client is the subset of *mongo.Client the manager relies on.
type Client interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
}

// Dialer opens a new client for uri.
type Dialer func(ctx context.Context, uri string, timeout time.Duration) (Client, error)

// Manager lazily creates a single shared client and hands out collection
// handles on it. Every acquisition pings the current client and replaces it
// when the ping fails, so callers never receive a handle on a dead
// connection. Safe for concurrent use.
type Manager struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration
	dial       Dialer
	log        *logger.Logger

	mu     sync.RWMutex
	client Client
	dials  singleflight.Group
}

// NewManager creates a manager for the configured price collection. No
// connection is made until the first call to Collection.
func NewManager(cfg config.PriceStoreConfig, log *logger.Logger) *Manager {
	return &Manager{
		uri:        cfg.GetMongoURL(),
		database:   cfg.GetMongoDatabase(),
		collection: cfg.GetMongoCollection(),
		timeout:    cfg.GetMongoConnectTimeout(),
		dial:       DialMongo,
		log:        log,
	}
}

// DialMongo connects with the official driver and bounded timeouts.
func DialMongo(ctx context.Context, uri string, timeout time.Duration) (Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Collection returns the price collection on a live connection. Connection
// errors are returned as-is.
func (m *Manager) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.database).Collection(m.collection), nil
}

// Ping reports whether the store is reachable, connecting if needed.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := m.acquire(ctx)
	return err
}

// Close disconnects the shared client. Calling Close before any connection
// was made is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (m *Manager) acquire(ctx context.Context) (Client, error) {
	m.mu.RLock()
	current := m.client
	m.mu.RUnlock()

	if current != nil {
		err := current.Ping(ctx, readpref.Primary())
		if err == nil {
			return current, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.log.WithContext(ctx).Warn("price store connection lost, reconnecting", "error", err)
	}

	v, err, _ := m.dials.Do("connect", func() (interface{}, error) {
		return m.replace(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

// replace dials a fresh client unless another caller already swapped out
// stale, and disconnects the stale client afterwards.
func (m *Manager) replace(ctx context.Context, stale Client) (Client, error) {
	m.mu.RLock()
	current := m.client
	m.mu.RUnlock()
	if current != nil && current != stale {
		return current, nil
	}

	timeout := m.timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	fresh, err := m.dial(dialCtx, m.uri, timeout)
	if err != nil {
		m.log.WithContext(ctx).StoreError("connect", err)
		return nil, err
	}
	if err := fresh.Ping(dialCtx, readpref.Primary()); err != nil {
		m.log.WithContext(ctx).StoreError("ping", err)
		_ = fresh.Disconnect(dialCtx)
		return nil, err
	}

	m.mu.Lock()
	old := m.client
	m.client = fresh
	m.mu.Unlock()

	if old != nil {
		if err := old.Disconnect(dialCtx); err != nil {
			m.log.Debug("disconnect stale price store client", "error", err)
		}
	}
	m.log.Info("price store connected", "database", m.database, "collection", m.collection)
	return fresh, nil
}
