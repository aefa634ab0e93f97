package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cookinghub/internal/account"
	"cookinghub/internal/common"
	"cookinghub/internal/dbmongo"
)

type store struct {
	users *mongo.Collection
}

// NewMongo expects dbmongo.EnsureIndexes to have run on db; the unique
// username index is what rejects duplicate users.
func NewMongo(db *mongo.Database) account.Store {
	return &store{
		users: db.Collection(dbmongo.UsersCollection),
	}
}

func (s *store) reset() {
	_, _ = s.users.DeleteMany(context.Background(), bson.D{})
}

func (s *store) CreateUser(ctx context.Context, user *account.User) (*account.User, error) {
	doc := userDoc{
		Username:           user.Username,
		Credential:         user.Credential,
		ProfilePicID:       string(user.ProfilePictureID),
		ProfilePicFilename: user.ProfilePictureFilename,
		Images:             toMediaDocs(user.Images),
		Videos:             toMediaDocs(user.Videos),
		CreatedAt:          time.Now().UTC().Truncate(time.Millisecond),
		SchemaVersion:      dbmongo.UserSchemaVersion,
	}
	if doc.ProfilePicFilename == "" {
		doc.ProfilePicFilename = account.DefaultProfilePictureFilename
	}

	res, err := s.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, account.ErrDuplicateUsername
	} else if err != nil {
		return nil, common.Fault("create user", errors.Wrap(err, "failed to insert user"))
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toModel(), nil
}

func (s *store) GetUser(ctx context.Context, username string) (*account.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, account.ErrUserNotFound
	} else if err != nil {
		return nil, common.Fault("get user", errors.Wrap(err, "failed to find user"))
	}
	return doc.toModel(), nil
}

// AppendMedia is a single $push, which the server applies atomically.
func (s *store) AppendMedia(ctx context.Context, username string, kind common.MediaFileType, item account.MediaItem) error {
	if !kind.IsValid() {
		return common.NewValidationError("kind", "must be image or video")
	}
	update := bson.D{{Key: "$push", Value: bson.D{{Key: kind.Plural(), Value: toMediaDoc(item)}}}}

	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "username", Value: username}}, update)
	if err != nil {
		return common.Fault("append media", errors.Wrap(err, "failed to push media item"))
	}
	if res.MatchedCount == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

func (s *store) ListUsers(ctx context.Context) ([]*account.User, error) {
	return s.find(ctx, bson.D{})
}

func (s *store) SearchUsers(ctx context.Context, term string) ([]*account.User, error) {
	if term == "" {
		return s.ListUsers(ctx)
	}

	filter := bson.D{{Key: "username", Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(term)},
		{Key: "$options", Value: "i"},
	}}}
	return s.find(ctx, filter)
}

func (s *store) ListCredentials(ctx context.Context) (map[string]string, error) {
	opts := options.Find().SetProjection(bson.D{
		{Key: "username", Value: 1},
		{Key: "password", Value: 1},
	})

	cursor, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, common.Fault("list credentials", errors.Wrap(err, "failed to query credentials"))
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.Fault("list credentials", errors.Wrap(err, "failed to decode credentials"))
	}

	credentials := make(map[string]string, len(docs))
	for _, doc := range docs {
		credentials[doc.Username] = doc.Credential
	}
	return credentials, nil
}

func (s *store) find(ctx context.Context, filter bson.D) ([]*account.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "password", Value: 0}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.Fault("list users", errors.Wrap(err, "failed to query users"))
	}

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.Fault("list users", errors.Wrap(err, "failed to decode users"))
	}

	users := make([]*account.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}
