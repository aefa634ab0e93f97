package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookinghub/internal/account"
	"cookinghub/internal/account/memory"
	"cookinghub/internal/account/tests"
	"cookinghub/internal/common"
)

func TestAccount_CacheStore(t *testing.T) {
	testStore := NewInCache(memory.NewInMemory(), time.Minute)
	defer testStore.(*Cache).Close()

	teardown := func() {
		c := testStore.(*Cache)
		c.cache.Close()
		fresh := NewInCache(memory.NewInMemory(), time.Minute).(*Cache)
		c.db, c.cache = fresh.db, fresh.cache
	}
	tests.RunStoreTests(t, testStore, teardown)
}

type countingStore struct {
	account.Store
	gets int
}

func (c *countingStore) GetUser(ctx context.Context, username string) (*account.User, error) {
	c.gets++
	return c.Store.GetUser(ctx, username)
}

func TestCache_ServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: memory.NewInMemory()}
	store := NewInCache(backing, time.Minute)
	defer store.(*Cache).Close()

	_, err := store.CreateUser(ctx, &account.User{Username: "alice", Credential: "secret"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		user, err := store.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	}
	assert.Equal(t, 1, backing.gets)

	// callers cannot mutate the cached copy
	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	user.Images = append(user.Images, account.MediaItem{BlobID: "bogus"})
	user, err = store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, user.Images)
}

func TestCache_AppendInvalidates(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: memory.NewInMemory()}
	store := NewInCache(backing, time.Minute)
	defer store.(*Cache).Close()

	_, err := store.CreateUser(ctx, &account.User{Username: "alice", Credential: "secret"})
	require.NoError(t, err)

	_, err = store.GetUser(ctx, "alice")
	require.NoError(t, err)

	item := account.MediaItem{BlobID: "b1", Filename: "cake.jpg", Description: "Cake"}
	require.NoError(t, store.AppendMedia(ctx, "alice", common.MediaFileTypeImage, item))

	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []account.MediaItem{item}, user.Images)
	assert.Equal(t, 2, backing.gets)
}

func TestCache_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewInCache(memory.NewInMemory(), time.Minute)
	defer store.(*Cache).Close()

	_, err := store.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, account.ErrUserNotFound)

	_, err = store.CreateUser(ctx, &account.User{Username: "ghost", Credential: "boo"})
	require.NoError(t, err)

	user, err := store.GetUser(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", user.Username)
}

// pausingStore holds the first GetUser after its read until released.
type pausingStore struct {
	account.Store

	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (p *pausingStore) GetUser(ctx context.Context, username string) (*account.User, error) {
	user, err := p.Store.GetUser(ctx, username)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return user, err
}

func TestCache_ReadOverlappingAppendIsNotCached(t *testing.T) {
	ctx := context.Background()
	backing := &pausingStore{
		Store:   memory.NewInMemory(),
		read:    make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewInCache(backing, time.Minute)
	defer store.(*Cache).Close()

	_, err := store.CreateUser(ctx, &account.User{Username: "alice", Credential: "secret"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := store.GetUser(ctx, "alice")
		done <- err
	}()

	<-backing.read
	item := account.MediaItem{BlobID: "b1", Filename: "cake.jpg", Description: "Cake"}
	require.NoError(t, store.AppendMedia(ctx, "alice", common.MediaFileTypeImage, item))
	close(backing.release)
	require.NoError(t, <-done)

	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []account.MediaItem{item}, user.Images)
}
