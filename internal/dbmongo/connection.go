// Package dbmongo owns the MongoDB side of the hub: the client and GridFS
// bucket, collection names, index bootstrap, per-stream sequences and
// schema migrations.
package dbmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cookinghub/internal/config"
)

const (
	UsersCollection     = "users"
	LikesCollection     = "likes"
	CommentsCollection  = "comments"
	ChatsCollection     = "chats"
	SequencesCollection = "sequences"

	defaultBucket = "media_files"
)

type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
}

func NewMongoConnection(c *config.Config) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return Connect(ctx, c.GetMongoURI(), c.MongoDB.Database, c.MongoDB.GridFSBucket)
}

// Connect dials uri, pings it and opens the named database and bucket.
func Connect(ctx context.Context, uri, database, bucketName string) (*MongoClient, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if bucketName == "" {
		bucketName = defaultBucket
	}

	db := client.Database(database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create GridFSBucket: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: db,
		GridFS:   bucket,
	}, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
