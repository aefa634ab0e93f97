package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cookinghub/internal/common"
	"cookinghub/internal/dbmongo"
	"cookinghub/internal/ledger"
)

// Each attempt either flips the like or observes a concurrent toggle
// that did; only heavy contention on one key exhausts this.
const maxToggleAttempts = 16

var streamOrder = bson.D{{Key: "seq", Value: 1}, {Key: "_id", Value: 1}}

type store struct {
	likes     *mongo.Collection
	comments  *mongo.Collection
	chats     *mongo.Collection
	sequences *mongo.Collection
}

// NewMongo expects dbmongo.EnsureIndexes to have run on db; toggling
// relies on the unique (file_id, username) index.
func NewMongo(db *mongo.Database) ledger.Store {
	return &store{
		likes:     db.Collection(dbmongo.LikesCollection),
		comments:  db.Collection(dbmongo.CommentsCollection),
		chats:     db.Collection(dbmongo.ChatsCollection),
		sequences: db.Collection(dbmongo.SequencesCollection),
	}
}

func (s *store) reset() {
	ctx := context.Background()
	for _, c := range []*mongo.Collection{s.likes, s.comments, s.chats, s.sequences} {
		_, _ = c.DeleteMany(ctx, bson.D{})
	}
}

// ToggleLike never reads before writing: the conditional delete tells
// whether the like existed, and the unique index arbitrates inserts.
func (s *store) ToggleLike(ctx context.Context, fileID, username string) (ledger.LikeState, error) {
	filter := bson.D{{Key: "file_id", Value: fileID}, {Key: "username", Value: username}}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		res, err := s.likes.DeleteOne(ctx, filter)
		if err != nil {
			return "", common.Fault("toggle like", errors.Wrap(err, "failed to delete like"))
		}
		if res.DeletedCount > 0 {
			return ledger.Unliked, nil
		}

		_, err = s.likes.InsertOne(ctx, likeDoc{
			FileID:    fileID,
			Username:  username,
			CreatedAt: time.Now().UTC(),
		})
		if err == nil {
			return ledger.Liked, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", common.Fault("toggle like", errors.Wrap(err, "failed to insert like"))
		}
		// a concurrent toggle inserted first; ours now removes it
	}
	return "", common.Fault("toggle like", errors.Errorf("contention on like %s/%s", fileID, username))
}

func (s *store) LikesFor(ctx context.Context, fileID string) ([]string, error) {
	byFile, err := s.LikesForFiles(ctx, []string{fileID})
	if err != nil {
		return nil, err
	}
	if names, ok := byFile[fileID]; ok {
		return names, nil
	}
	return []string{}, nil
}

func (s *store) LikesForFiles(ctx context.Context, fileIDs []string) (map[string][]string, error) {
	if len(fileIDs) == 0 {
		return map[string][]string{}, nil
	}

	filter := bson.D{{Key: "file_id", Value: bson.D{{Key: "$in", Value: fileIDs}}}}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})

	cursor, err := s.likes.Find(ctx, filter, opts)
	if err != nil {
		return nil, common.Fault("list likes", errors.Wrap(err, "failed to query likes"))
	}

	var docs []likeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.Fault("list likes", errors.Wrap(err, "failed to decode likes"))
	}

	result := make(map[string][]string)
	for _, doc := range docs {
		result[doc.FileID] = append(result[doc.FileID], doc.Username)
	}
	return result, nil
}

func (s *store) AddComment(ctx context.Context, fileID, author, text string) (*ledger.Comment, error) {
	stamp, err := dbmongo.NextStamp(ctx, s.sequences, ledger.CommentStream(fileID))
	if err != nil {
		return nil, common.Fault("add comment", err)
	}

	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		FileID:    fileID,
		Author:    author,
		Text:      text,
		Timestamp: stamp.LastAt,
		Seq:       stamp.Seq,
	}
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return nil, common.Fault("add comment", errors.Wrap(err, "failed to insert comment"))
	}
	return doc.toModel(), nil
}

func (s *store) CommentsFor(ctx context.Context, fileID string) ([]*ledger.Comment, error) {
	byFile, err := s.CommentsForFiles(ctx, []string{fileID})
	if err != nil {
		return nil, err
	}
	if list, ok := byFile[fileID]; ok {
		return list, nil
	}
	return []*ledger.Comment{}, nil
}

func (s *store) CommentsForFiles(ctx context.Context, fileIDs []string) (map[string][]*ledger.Comment, error) {
	if len(fileIDs) == 0 {
		return map[string][]*ledger.Comment{}, nil
	}

	filter := bson.D{{Key: "file_id", Value: bson.D{{Key: "$in", Value: fileIDs}}}}

	cursor, err := s.comments.Find(ctx, filter, options.Find().SetSort(streamOrder))
	if err != nil {
		return nil, common.Fault("list comments", errors.Wrap(err, "failed to query comments"))
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.Fault("list comments", errors.Wrap(err, "failed to decode comments"))
	}

	result := make(map[string][]*ledger.Comment)
	for i := range docs {
		result[docs[i].FileID] = append(result[docs[i].FileID], docs[i].toModel())
	}
	return result, nil
}

func (s *store) AppendChatMessage(ctx context.Context, sender, receiver, text string) (*ledger.ChatMessage, error) {
	pairKey := ledger.PairKey(sender, receiver)

	stamp, err := dbmongo.NextStamp(ctx, s.sequences, ledger.ChatStream(pairKey))
	if err != nil {
		return nil, common.Fault("send chat message", err)
	}

	participants := []string{sender, receiver}
	if receiver < sender {
		participants = []string{receiver, sender}
	}

	doc := chatDoc{
		ID:           primitive.NewObjectID(),
		PairKey:      pairKey,
		Participants: participants,
		From:         sender,
		To:           receiver,
		Text:         text,
		Timestamp:    stamp.LastAt,
		Seq:          stamp.Seq,
	}
	if _, err := s.chats.InsertOne(ctx, doc); err != nil {
		return nil, common.Fault("send chat message", errors.Wrap(err, "failed to insert chat message"))
	}
	return doc.toModel(), nil
}

func (s *store) ChatHistory(ctx context.Context, pairKey string) ([]*ledger.ChatMessage, error) {
	filter := bson.D{{Key: "pair_key", Value: pairKey}}

	cursor, err := s.chats.Find(ctx, filter, options.Find().SetSort(streamOrder))
	if err != nil {
		return nil, common.Fault("chat history", errors.Wrap(err, "failed to query chats"))
	}

	var docs []chatDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.Fault("chat history", errors.Wrap(err, "failed to decode chats"))
	}

	history := make([]*ledger.ChatMessage, 0, len(docs))
	for i := range docs {
		history = append(history, docs[i].toModel())
	}
	return history, nil
}

func (s *store) Counts(ctx context.Context) (*ledger.Counts, error) {
	var counts ledger.Counts
	var err error

	if counts.Likes, err = s.likes.CountDocuments(ctx, bson.D{}); err != nil {
		return nil, common.Fault("count likes", errors.Wrap(err, "failed to count likes"))
	}
	if counts.Comments, err = s.comments.CountDocuments(ctx, bson.D{}); err != nil {
		return nil, common.Fault("count comments", errors.Wrap(err, "failed to count comments"))
	}
	if counts.ChatMessages, err = s.chats.CountDocuments(ctx, bson.D{}); err != nil {
		return nil, common.Fault("count chats", errors.Wrap(err, "failed to count chats"))
	}
	return &counts, nil
}
