package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/sma-announcements/pkg/config"
)

// Collection names shared with the other school services.
const (
	AnnouncementsCollection = "announcements"
	TeachersCollection      = "teachers"
)

// NewMongo connects to MongoDB and returns the client together with the
// configured database handle.
func NewMongo(cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureMongoIndexes creates the index backing the expire_date sort.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "expire_date", Value: 1}},
		Options: options.Index().SetName("idx_announcements_expire_date"),
	}
	if _, err := db.Collection(AnnouncementsCollection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create announcements index: %w", err)
	}
	return nil
}
