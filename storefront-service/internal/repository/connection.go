package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures the profile and user store connection. Zero
// fields take the defaults below.
type MongoOptions struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

const (
	defaultConnectTimeout         = 10 * time.Second
	defaultServerSelectionTimeout = 5 * time.Second
	defaultMaxPoolSize            = 100
	defaultMinPoolSize            = 10
)

func (o MongoOptions) clientOptions() *options.ClientOptions {
	connect := o.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}
	selection := o.ServerSelectionTimeout
	if selection <= 0 {
		selection = defaultServerSelectionTimeout
	}
	maxPool := o.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaultMaxPoolSize
	}
	minPool := min(o.MinPoolSize, maxPool)
	if o.MinPoolSize == 0 {
		minPool = min(uint64(defaultMinPoolSize), maxPool)
	}

	return options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(connect).
		SetServerSelectionTimeout(selection).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool)
}

func ConnectMongoDB(ctx context.Context, opts MongoOptions) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, opts.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(opts.Database), nil
}
