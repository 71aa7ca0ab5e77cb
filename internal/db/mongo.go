package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-dispatch/internal/models"
)

// SnapshotsCollection is the collection archived fleets are written to.
const SnapshotsCollection = "snapshots"

var ErrNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection for snapshot writes.
type MongoCollection struct {
	Collection *mongo.Collection
}

// NewSnapshotCollection returns the snapshot collection of database dbName.
func NewSnapshotCollection(client *mongo.Client, dbName string) *MongoCollection {
	if dbName == "" {
		dbName = "fleet"
	}
	return &MongoCollection{Collection: client.Database(dbName).Collection(SnapshotsCollection)}
}

// InsertSnapshot inserts one archived fleet.
func (c *MongoCollection) InsertSnapshot(ctx context.Context, snap models.FleetSnapshot) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if snap.ID.IsZero() {
		snap.ID = primitive.NewObjectID()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}
	if _, err := c.Collection.InsertOne(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}
