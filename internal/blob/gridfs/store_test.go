package gridfs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"cookinghub/internal/blob/tests"
	"cookinghub/internal/dbmongo"
	"cookinghub/internal/testutil"
)

var mongoURI string

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithMongo(m, &mongoURI))
}

func TestBlob_GridFSStore(t *testing.T) {
	testutil.RequireMongo(t, mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbmongo.Connect(ctx, mongoURI, testutil.DatabaseName("blob"), "media_files")
	require.NoError(t, err)
	defer func() {
		_ = client.Database.Drop(context.Background())
		_ = client.Close(context.Background())
	}()

	testStore := NewGridFS(client.GridFS)
	teardown := func() {
		_, _ = client.Database.Collection("media_files.files").DeleteMany(context.Background(), bson.D{})
		_, _ = client.Database.Collection("media_files.chunks").DeleteMany(context.Background(), bson.D{})
	}
	tests.RunStoreTests(t, testStore, teardown)
}
