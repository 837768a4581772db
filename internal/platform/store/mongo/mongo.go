// Package mongo provides a thin mongodb client bound to one database
package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config configures mongodb connectivity
type Config struct {
	URI            string
	Database       string
	AppName        string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration // default 10s
}

// Client owns the driver client and the selected database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// connect is a seam so tests can avoid a live server
var connect = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

// Open connects, pings the primary and selects cfg.Database
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo: empty uri")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("mongo: empty database name")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := connect(cctx, opts)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(cctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return &Client{client: c, db: c.Database(cfg.Database)}, nil
}

// Database returns the bound database
func (c *Client) Database() *mongo.Database { return c.db }

// Collection returns a handle on name in the bound database
func (c *Client) Collection(name string) *mongo.Collection { return c.db.Collection(name) }

// Ping checks the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("mongo: nil client")
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the driver client
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
