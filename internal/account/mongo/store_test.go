package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cookinghub/internal/account/tests"
	"cookinghub/internal/dbmongo"
	"cookinghub/internal/testutil"
)

var mongoURI string

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithMongo(m, &mongoURI))
}

func TestAccount_MongoStore(t *testing.T) {
	testutil.RequireMongo(t, mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbmongo.Connect(ctx, mongoURI, testutil.DatabaseName("account"), "")
	require.NoError(t, err)
	defer func() {
		_ = client.Database.Drop(context.Background())
		_ = client.Close(context.Background())
	}()
	require.NoError(t, dbmongo.EnsureIndexes(ctx, client.Database))

	testStore := NewMongo(client.Database)
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
