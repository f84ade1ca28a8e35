// Package db archives chat transcripts in SurrealDB over an auto-reconnecting connection.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// The websocket upgrade fails when TLS negotiates HTTP/2.
func init() {
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{NextProtos: []string{"http/1.1"}}
}

const (
	connectTimeout  = 5 * time.Second
	maxReconnects   = 10
	firstRetryDelay = time.Second
	maxRetryDelay   = 30 * time.Second
)

// Config locates the archive. AuthLevel "database" signs in scoped to
// Namespace/Database; anything else signs in as a root user.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string
}

func (c Config) auth() surrealdb.Auth {
	if c.AuthLevel == "database" {
		return surrealdb.Auth{
			Namespace: c.Namespace,
			Database:  c.Database,
			Username:  c.Username,
			Password:  c.Password,
		}
	}
	return surrealdb.Auth{Username: c.Username, Password: c.Password}
}

// endpoint strips a trailing /rpc, which gorillaws appends itself.
func (c Config) endpoint() string {
	return strings.TrimSuffix(strings.TrimRight(c.URL, "/"), "/rpc")
}

// Client is the transcript archive.
type Client struct {
	conn *rews.Connection[*gorillaws.Connection]
	db   *surrealdb.DB
	log  logger.Logger
}

// NewClient connects, signs in and selects the archive namespace.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLog := logger.New(log.Handler())
	codec := surrealcbor.New()

	conn := rews.New(func(ctx context.Context) (*gorillaws.Connection, error) {
		return gorillaws.New(&connection.Config{
			BaseURL:     cfg.endpoint(),
			Marshaler:   codec,
			Unmarshaler: codec,
			Logger:      sdkLog,
		}), nil
	}, connectTimeout, codec, sdkLog)

	retry := rews.NewExponentialBackoffRetryer()
	retry.InitialDelay = firstRetryDelay
	retry.MaxDelay = maxRetryDelay
	retry.Multiplier = 2
	retry.MaxRetries = maxReconnects
	conn.Retryer = retry

	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect transcript archive %s: %w", cfg.URL, err)
	}

	db, err := open(ctx, conn, cfg)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	log.Info("transcript archive connected", "url", cfg.URL, "namespace", cfg.Namespace, "database", cfg.Database)
	return &Client{conn: conn, db: db, log: sdkLog}, nil
}

func open(ctx context.Context, conn *rews.Connection[*gorillaws.Connection], cfg Config) (*surrealdb.DB, error) {
	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.SignIn(ctx, cfg.auth()); err != nil {
		return nil, fmt.Errorf("sign in to archive as %s: %w", cfg.Username, err)
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}
	return db, nil
}

// Close closes the connection.
func (c *Client) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// InitSchema defines the conversation and message tables if missing.
func (c *Client) InitSchema(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, SchemaSQL, nil); err != nil {
		return fmt.Errorf("init transcript schema: %w", err)
	}
	return nil
}

// Query runs raw SurrealQL.
func (c *Client) Query(ctx context.Context, sql string, vars map[string]any) (*[]surrealdb.QueryResult[any], error) {
	return surrealdb.Query[any](ctx, c.db, sql, vars)
}

// WipeData deletes every archived transcript but keeps the schema.
func (c *Client) WipeData(ctx context.Context) error {
	c.log.Warn("wiping transcript archive")
	// message rows point at conversations
	if _, err := surrealdb.Query[any](ctx, c.db, "DELETE message; DELETE conversation;", nil); err != nil {
		return fmt.Errorf("wipe transcripts: %w", classify(err))
	}
	return nil
}
