package dbmongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxUpsertAttempts = 3

// Stamp is the ordering key handed to one append on a stream.
type Stamp struct {
	Seq    int64     `bson:"seq"`
	LastAt time.Time `bson:"last_at"`
}

// nextStampPipeline bumps seq and moves last_at to the server clock unless
// the clock went backwards, in which case last_at holds.
var nextStampPipeline = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{
		{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$seq", 0}}},
			1,
		}}}},
		{Key: "last_at", Value: bson.D{{Key: "$max", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$last_at", "$$NOW"}}},
			"$$NOW",
		}}}},
	}}},
}

// NextStamp atomically reserves the next stamp for stream. Concurrent
// callers on the same stream always get distinct, increasing seq values
// with non-decreasing times.
func NextStamp(ctx context.Context, sequences *mongo.Collection, stream string) (Stamp, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var err error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		var stamp Stamp
		err = sequences.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: stream}}, nextStampPipeline, opts).Decode(&stamp)
		if err == nil {
			return stamp, nil
		}
		// two first-ever upserts on a stream race on _id; the loser retries
		// and finds the document
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return Stamp{}, errors.Wrapf(err, "failed to reserve sequence for %s", stream)
}
