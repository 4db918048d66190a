// Package database owns the single MongoDB connection shared by every request
// and the narrow query surface the schema and tool layers use.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database is the query surface of one connected database.
type Database interface {
	// Name is the name of the connected database.
	Name() string
	CollectionNames(ctx context.Context) ([]string, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	// FindOne returns nil and no error when nothing matches.
	FindOne(ctx context.Context, collection string, filter bson.D, opts *FindOptions) (bson.Raw, error)
	Find(ctx context.Context, collection string, filter bson.D, opts *FindOptions) ([]bson.Raw, error)
	Aggregate(ctx context.Context, collection string, pipeline []bson.D, opts *AggregateOptions) ([]bson.Raw, error)
}

// FindOptions are the find/findOne options passed through to the driver.
// Limit and BatchSize are ignored by FindOne.
type FindOptions struct {
	AllowDiskUse        *bool
	AllowPartialResults *bool
	BatchSize           *int32
	Collation           *options.Collation
	Comment             *string
	CursorType          *options.CursorType
	Hint                any // index name or key document
	Let                 bson.D
	Limit               *int64
	Max                 bson.D
	MaxAwaitTime        *time.Duration
	MaxTime             *time.Duration
	Min                 bson.D
	NoCursorTimeout     *bool
	Projection          bson.D
	ReturnKey           *bool
	ShowRecordID        *bool
	Skip                *int64
	Sort                bson.D
}

// AggregateOptions are the aggregate options passed through to the driver.
type AggregateOptions struct {
	AllowDiskUse             *bool
	BatchSize                *int32
	BypassDocumentValidation *bool
	Collation                *options.Collation
	Comment                  *string
	Custom                   bson.M
	Hint                     any
	Let                      bson.D
	MaxAwaitTime             *time.Duration
	MaxTime                  *time.Duration
}

type conn struct {
	client *mongo.Client // nil when a Database was attached directly
	db     Database
}

// Handle is the process-wide connection context. It starts not ready,
// becomes ready once connected, and returns to not ready after Close.
type Handle struct {
	info ConnInfo
	cur  atomic.Pointer[conn]
}

// NewHandle returns a handle that is not yet connected.
func NewHandle(info ConnInfo) *Handle {
	return &Handle{info: info}
}

// Attach returns a ready handle serving db. Used for embedding and tests.
func Attach(info ConnInfo, db Database) *Handle {
	h := NewHandle(info)
	h.cur.Store(&conn{db: db})
	return h
}

// Connect dials the server, verifies it with a ping and makes the handle ready.
func (h *Handle) Connect(ctx context.Context, uri string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("pinging MongoDB: %w", err)
	}

	db := &mongoDatabase{db: client.Database(h.info.Database)}
	if prev := h.cur.Swap(&conn{client: client, db: db}); prev != nil && prev.client != nil {
		_ = prev.client.Disconnect(ctx)
	}

	slog.Info("database connection successful",
		slog.String("database", h.info.Database),
		slog.String("hosts", h.info.Hosts),
	)
	return nil
}

// Info returns the parsed connection string.
func (h *Handle) Info() ConnInfo {
	return h.info
}

// Ready reports whether requests can be served.
func (h *Handle) Ready() bool {
	return h.cur.Load() != nil
}

// DB returns the connected database or ErrNotInitialized.
func (h *Handle) DB() (Database, error) {
	c := h.cur.Load()
	if c == nil {
		return nil, ErrNotInitialized
	}
	return c.db, nil
}

// Close disconnects the client. Only the first call after a connect does
// any work; later calls return nil.
func (h *Handle) Close(ctx context.Context) error {
	c := h.cur.Swap(nil)
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("closing MongoDB connection: %w", err)
	}
	slog.Info("MongoDB connection closed", slog.String("database", h.info.Database))
	return nil
}
