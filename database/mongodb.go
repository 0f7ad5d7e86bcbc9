package database

import (
	"context"
	"fmt"
	"net/url"
	"rally-metrics-go/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds MongoDB connection settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// URI builds the connection string. Credentials are authenticated against
// the target database.
func (c Config) URI() string {
	if c.Username != "" && c.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=%s",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password), c.Host, c.Port, c.Database, c.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", c.Host, c.Port, c.Database)
}

// redactedURI is URI with the password masked, for logs
func (c Config) redactedURI() string {
	if c.Password == "" {
		return c.URI()
	}
	masked := c
	masked.Password = "xxxxx"
	return masked.URI()
}

type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *logging.Logger
}

func NewMongoConnection(ctx context.Context, config Config) (*MongoDB, error) {
	logger := logging.WithPrefix("MongoDB")
	ctx, cancel := withTimeout(ctx, MediumTimeout)
	defer cancel()

	if config.Username != "" {
		logger.Infof("Connecting with authentication as user: %s", config.Username)
	} else {
		logger.Info("Connecting without authentication")
	}
	logger.Debugf("Connection URI: %s", config.redactedURI())

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI()))
	if err != nil {
		logger.Errorf("Failed to connect: %v", err)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorf("Failed to ping: %v", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Successfully connected to %s:%s database=%s", config.Host, config.Port, config.Database)

	return &MongoDB{
		client:   client,
		database: client.Database(config.Database),
		logger:   logger,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := withTimeout(context.Background(), ShortTimeout)
	defer cancel()

	err := m.client.Disconnect(ctx)
	if err != nil {
		m.logger.Errorf("Error disconnecting: %v", err)
	} else {
		m.logger.Info("Connection closed successfully")
	}
	return err
}

// Ping checks the connection is alive
func (m *MongoDB) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, ShortTimeout)
	defer cancel()

	if err := m.client.Ping(ctx, nil); err != nil {
		m.logger.Errorf("Ping test failed: %v", err)
		return fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return nil
}

func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.database.Collection(name)
}
