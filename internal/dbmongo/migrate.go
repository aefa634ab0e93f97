package dbmongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserSchemaVersion is the shape account/mongo writes.
const UserSchemaVersion = 1

const defaultProfilePicFilename = "default.jpg"

// MigrateUsers upgrades user documents written before schema versioning:
// media arrays and the profile filename are backfilled and the version is
// stamped. Returns how many documents changed.
func MigrateUsers(ctx context.Context, db *mongo.Database) (int64, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "schema_version", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "schema_version", Value: bson.D{{Key: "$lt", Value: UserSchemaVersion}}}},
	}}}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "images", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$images", bson.A{}}}}},
			{Key: "videos", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$videos", bson.A{}}}}},
			{Key: "profile_pic_filename", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$profile_pic_filename", defaultProfilePicFilename}}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", bson.D{{Key: "$toDate", Value: "$_id"}}}}}},
			{Key: "schema_version", Value: UserSchemaVersion},
		}}},
	}

	res, err := db.Collection(UsersCollection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, errors.Wrap(err, "failed to migrate users")
	}
	return res.ModifiedCount, nil
}

// DedupeLikes removes duplicate (file_id, username) like documents so the
// unique index can be built on data written without it. The oldest
// document of each group is kept.
func DedupeLikes(ctx context.Context, db *mongo.Database) (int64, error) {
	likes := db.Collection(LikesCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "file_id", Value: "$file_id"}, {Key: "username", Value: "$username"}}},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gt", Value: 1}}}}}},
	}

	cursor, err := likes.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return 0, errors.Wrap(err, "failed to find duplicate likes")
	}
	defer cursor.Close(ctx)

	var removed int64
	for cursor.Next(ctx) {
		var group struct {
			IDs bson.A `bson:"ids"`
		}
		if err := cursor.Decode(&group); err != nil {
			return removed, errors.Wrap(err, "failed to decode duplicate likes")
		}

		res, err := likes.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: group.IDs[1:]}}}})
		if err != nil {
			return removed, errors.Wrap(err, "failed to delete duplicate likes")
		}
		removed += res.DeletedCount
	}
	if err := cursor.Err(); err != nil {
		return removed, errors.Wrap(err, "failed to iterate duplicate likes")
	}
	return removed, nil
}

// MigrateInteractions upgrades comments and chat messages written before
// ordering keys existed. Their timestamps were random hex strings, so the
// document's creation time replaces them and seq 0 sorts them ahead of
// everything stamped since. Chats also get their pair_key.
func MigrateInteractions(ctx context.Context, db *mongo.Database) (comments, chats int64, err error) {
	legacy := bson.D{{Key: "seq", Value: bson.D{{Key: "$exists", Value: false}}}}
	stamp := bson.D{
		{Key: "timestamp", Value: bson.D{{Key: "$toDate", Value: "$_id"}}},
		{Key: "seq", Value: 0},
	}

	res, err := db.Collection(CommentsCollection).UpdateMany(ctx, legacy, mongo.Pipeline{
		{{Key: "$set", Value: stamp}},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to migrate comments")
	}
	comments = res.ModifiedCount

	pairKey := bson.D{{Key: "$concat", Value: bson.A{
		bson.D{{Key: "$arrayElemAt", Value: bson.A{"$participants", 0}}},
		":",
		bson.D{{Key: "$arrayElemAt", Value: bson.A{"$participants", 1}}},
	}}}
	res, err = db.Collection(ChatsCollection).UpdateMany(ctx, legacy, mongo.Pipeline{
		{{Key: "$set", Value: stamp}},
		{{Key: "$set", Value: bson.D{{Key: "pair_key", Value: pairKey}}}},
	})
	if err != nil {
		return comments, 0, errors.Wrap(err, "failed to migrate chats")
	}
	return comments, res.ModifiedCount, nil
}

// Migrate runs every migration and then builds the indexes.
func Migrate(ctx context.Context, db *mongo.Database) (MigrationReport, error) {
	var report MigrationReport
	var err error

	if report.UsersUpgraded, err = MigrateUsers(ctx, db); err != nil {
		return report, err
	}
	if report.LikesRemoved, err = DedupeLikes(ctx, db); err != nil {
		return report, err
	}
	if report.CommentsUpgraded, report.ChatsUpgraded, err = MigrateInteractions(ctx, db); err != nil {
		return report, err
	}
	if err := EnsureIndexes(ctx, db); err != nil {
		return report, err
	}
	return report, nil
}

type MigrationReport struct {
	UsersUpgraded    int64
	LikesRemoved     int64
	CommentsUpgraded int64
	ChatsUpgraded    int64
}
