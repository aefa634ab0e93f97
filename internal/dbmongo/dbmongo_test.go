package dbmongo_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cookinghub/internal/config"
	"cookinghub/internal/dbmongo"
	"cookinghub/internal/testutil"
)

var mongoURI string

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithMongo(m, &mongoURI))
}

func newClient(t *testing.T) *dbmongo.MongoClient {
	t.Helper()
	testutil.RequireMongo(t, mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbmongo.Connect(ctx, mongoURI, testutil.DatabaseName("dbmongo"), "")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Database.Drop(context.Background())
		_ = client.Close(context.Background())
	})
	return client
}

func TestNewMongoConnection_Unreachable(t *testing.T) {
	cfg := &config.Config{MongoDB: config.MongoDBConfig{
		URI:      "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		Database: "nothing",
	}}

	client, err := dbmongo.NewMongoConnection(cfg)
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestConnect(t *testing.T) {
	client := newClient(t)

	assert.NotNil(t, client.GridFS)
	assert.NotNil(t, client.Database)
	assert.Equal(t, dbmongo.UsersCollection, client.Database.Collection(dbmongo.UsersCollection).Name())
}

func TestEnsureIndexes(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	require.NoError(t, dbmongo.EnsureIndexes(ctx, client.Database))
	// idempotent
	require.NoError(t, dbmongo.EnsureIndexes(ctx, client.Database))

	users := client.Database.Collection(dbmongo.UsersCollection)
	_, err := users.InsertOne(ctx, bson.M{"username": "alice"})
	require.NoError(t, err)
	_, err = users.InsertOne(ctx, bson.M{"username": "alice"})
	assert.True(t, mongo.IsDuplicateKeyError(err))

	likes := client.Database.Collection(dbmongo.LikesCollection)
	_, err = likes.InsertOne(ctx, bson.M{"file_id": "f1", "username": "bob"})
	require.NoError(t, err)
	_, err = likes.InsertOne(ctx, bson.M{"file_id": "f1", "username": "bob"})
	assert.True(t, mongo.IsDuplicateKeyError(err))
	_, err = likes.InsertOne(ctx, bson.M{"file_id": "f2", "username": "bob"})
	assert.NoError(t, err)
}

func TestNextStamp(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	sequences := client.Database.Collection(dbmongo.SequencesCollection)

	first, err := dbmongo.NextStamp(ctx, sequences, "comments/a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
	assert.False(t, first.LastAt.IsZero())

	second, err := dbmongo.NextStamp(ctx, sequences, "comments/a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.False(t, second.LastAt.Before(first.LastAt))

	other, err := dbmongo.NextStamp(ctx, sequences, "comments/b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Seq)
}

func TestNextStamp_Concurrent(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	sequences := client.Database.Collection(dbmongo.SequencesCollection)

	const workers = 20
	seqs := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stamp, err := dbmongo.NextStamp(ctx, sequences, "chats/alice:bob")
			assert.NoError(t, err)
			seqs <- stamp.Seq
		}()
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for seq := range seqs {
		assert.False(t, seen[seq], "duplicate seq %d", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, workers)
}

func TestMigrate(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	users := client.Database.Collection(dbmongo.UsersCollection)
	_, err := users.InsertMany(ctx, []interface{}{
		bson.M{"username": "chef_john", "password": "password123"},
		bson.M{"username": "food_lover", "password": "password123", "images": bson.A{
			bson.M{"file_id": "abc", "filename": "cake.jpg", "description": "Cake"},
		}},
	})
	require.NoError(t, err)

	likes := client.Database.Collection(dbmongo.LikesCollection)
	_, err = likes.InsertMany(ctx, []interface{}{
		bson.M{"file_id": "abc", "username": "chef_john"},
		bson.M{"file_id": "abc", "username": "chef_john"},
		bson.M{"file_id": "abc", "username": "chef_john"},
		bson.M{"file_id": "abc", "username": "food_lover"},
	})
	require.NoError(t, err)

	_, err = client.Database.Collection(dbmongo.CommentsCollection).InsertOne(ctx,
		bson.M{"file_id": "abc", "user": "food_lover", "text": "Yum", "timestamp": "9f8e7d6c5b4a3921"})
	require.NoError(t, err)
	_, err = client.Database.Collection(dbmongo.ChatsCollection).InsertOne(ctx,
		bson.M{"participants": bson.A{"chef_john", "food_lover"}, "from": "food_lover", "to": "chef_john",
			"text": "hi", "timestamp": "0011223344556677"})
	require.NoError(t, err)

	report, err := dbmongo.Migrate(ctx, client.Database)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.UsersUpgraded)
	assert.Equal(t, int64(2), report.LikesRemoved)
	assert.Equal(t, int64(1), report.CommentsUpgraded)
	assert.Equal(t, int64(1), report.ChatsUpgraded)

	var chat bson.M
	require.NoError(t, client.Database.Collection(dbmongo.ChatsCollection).FindOne(ctx, bson.M{}).Decode(&chat))
	assert.Equal(t, "chef_john:food_lover", chat["pair_key"])
	assert.EqualValues(t, 0, chat["seq"])
	assert.IsType(t, primitive.DateTime(0), chat["timestamp"])

	var john bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"username": "chef_john"}).Decode(&john))
	assert.Len(t, john["images"], 0)
	assert.Len(t, john["videos"], 0)
	assert.Equal(t, "default.jpg", john["profile_pic_filename"])
	assert.EqualValues(t, dbmongo.UserSchemaVersion, john["schema_version"])

	var lover bson.M
	require.NoError(t, users.FindOne(ctx, bson.M{"username": "food_lover"}).Decode(&lover))
	assert.Len(t, lover["images"], 1)

	count, err := likes.CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// second run has nothing left to do
	report, err = dbmongo.Migrate(ctx, client.Database)
	require.NoError(t, err)
	assert.Zero(t, report.UsersUpgraded)
	assert.Zero(t, report.LikesRemoved)
	assert.Zero(t, report.CommentsUpgraded)
	assert.Zero(t, report.ChatsUpgraded)
}
