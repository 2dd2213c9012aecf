package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tmtrack/core/internal/infrastructure/config"
)

// CategoriesCollection holds the single shared category list document.
const CategoriesCollection = "categories"

// DB wraps the Mongo client and provides additional functionality
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	config config.MongoConfig
}

// New creates a new document store connection
func New(cfg config.MongoConfig) (*DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to open document store connection: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	return &DB{
		client: client,
		db:     client.Database(cfg.Database),
		config: cfg,
	}, nil
}

// NewConnection creates a new document store connection (alternative constructor)
func NewConnection(cfg config.MongoConfig) (*DB, error) {
	return New(cfg)
}

// Tasks returns the task document collection.
func (db *DB) Tasks() *mongo.Collection {
	return db.db.Collection(db.config.TasksCollection)
}

// Categories returns the collection holding the category list document.
func (db *DB) Categories() *mongo.Collection {
	return db.db.Collection(CategoriesCollection)
}

// Collection returns an arbitrary collection by name.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// Name returns the database name
func (db *DB) Name() string {
	return db.db.Name()
}

// TasksCollectionName returns the configured task collection name.
func (db *DB) TasksCollectionName() string {
	return db.config.TasksCollection
}

// Close closes the document store connection
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// Ping pings the document store
func (db *DB) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.client.Ping(ctx, readpref.Primary())
}

// HealthCheck checks document store health
func (db *DB) HealthCheck() error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("document store health check failed: %w", err)
	}
	return nil
}

// GetConnectionInfo returns connection details for health reporting
func (db *DB) GetConnectionInfo() map[string]interface{} {
	return map[string]interface{}{
		"uri":              db.config.URI,
		"database":         db.config.Database,
		"tasks_collection": db.config.TasksCollection,
	}
}
