package dbmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var collectionIndexes = map[string][]mongo.IndexModel{
	UsersCollection: {
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
	},
	LikesCollection: {
		{
			Keys:    bson.D{{Key: "file_id", Value: 1}, {Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("file_user_unique"),
		},
	},
	CommentsCollection: {
		{
			Keys:    bson.D{{Key: "file_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetName("file_seq"),
		},
	},
	ChatsCollection: {
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetName("pair_seq"),
		},
	},
}

// EnsureIndexes creates the indexes the stores rely on. The unique ones
// are what make username creation and like toggling atomic, so stores
// must not be used against a database where this has not run.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range collectionIndexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
