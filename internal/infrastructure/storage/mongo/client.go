// Package mongo provides the CRM document-store components.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

// ClientConfig holds connection configuration.
type ClientConfig struct {
	URI            string
	Database       string
	AppName        string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// DefaultClientConfig returns production defaults.
func DefaultClientConfig(uri, database string) ClientConfig {
	return ClientConfig{
		URI:            uri,
		Database:       database,
		AppName:        "billing-reports",
		MaxPoolSize:    50,
		ConnectTimeout: 10 * time.Second,
	}
}

// Client wraps mongo.Client bound to one database.
type Client struct {
	*mongo.Client
	db *mongo.Database
}

// Connect dials the store and verifies the connection. Reports only read, so
// secondaries are preferred when available.
func Connect(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetReadPreference(readpref.SecondaryPreferred())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info(ctx, "mongo connected", "database", cfg.Database)
	return &Client{Client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the bound database.
func (c *Client) Database() *mongo.Database { return c.db }

// Ping checks connectivity for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.SecondaryPreferred())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Disconnect(ctx)
}
