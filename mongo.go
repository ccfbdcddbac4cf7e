package wctx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig encapsulates the parameters required to connect to MongoDB.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// MongoComponent is a context-managed MongoDB connection. It connects when
// the context refreshes, disconnects when the context closes, exposes a
// readiness probe, and can also live as a disposable container attribute.
type MongoComponent struct {
	mu     sync.RWMutex
	cfg    MongoConfig
	client *mongo.Client
}

// NewMongoComponent builds an unconnected component; the connection is
// established by Start.
func NewMongoComponent(cfg MongoConfig) *MongoComponent {
	return &MongoComponent{cfg: cfg}
}

// Start establishes the MongoDB connection and verifies it with a ping.
func (m *MongoComponent) Start(ctx context.Context) error {
	if m.cfg.URI == "" {
		return errors.New("mongo uri is required")
	}
	if m.cfg.Database == "" {
		return errors.New("mongo database is required")
	}
	connectTimeout := m.cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	return nil
}

// Stop closes the underlying client. Stopping an unstarted component is a
// no-op.
func (m *MongoComponent) Stop(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// Dispose releases the connection, satisfying the Disposable contract for
// attribute-held components.
func (m *MongoComponent) Dispose(ctx context.Context) error {
	return m.Stop(ctx)
}

// Collection returns a typed collection handle. It panics when the component
// has not been started.
func (m *MongoComponent) Collection(name string) *mongo.Collection {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		panic("mongo component not started")
	}
	return client.Database(m.cfg.Database).Collection(name)
}

// HealthChecks exposes a readiness probe that pings the primary.
func (m *MongoComponent) HealthChecks() HealthChecks {
	return HealthChecks{
		Readiness: map[string]HealthCheck{
			"mongo": func(ctx context.Context) error {
				m.mu.RLock()
				client := m.client
				m.mu.RUnlock()
				if client == nil {
					return errors.New("mongo not connected")
				}
				return client.Ping(ctx, readpref.Primary())
			},
		},
	}
}
