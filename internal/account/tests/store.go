package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookinghub/internal/account"
	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

func RunStoreTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testCreateAndGet,
		testDuplicateUsername,
		testConcurrentCreate,
		testAppendMedia,
		testConcurrentAppend,
		testListAndSearch,
		testListCredentials,
	} {
		tf(t, s)
		teardown()
	}
}

func newUser(username string) *account.User {
	return &account.User{
		Username:               username,
		Credential:             "credential-" + username,
		ProfilePictureFilename: account.DefaultProfilePictureFilename,
		Images:                 []account.MediaItem{},
		Videos:                 []account.MediaItem{},
	}
}

func testCreateAndGet(t *testing.T, s account.Store) {
	ctx := context.Background()

	_, err := s.GetUser(ctx, "alice")
	require.ErrorIs(t, err, account.ErrUserNotFound)

	alice := newUser("alice")
	alice.ProfilePictureID = blob.ID("65f1c0a2b3c4d5e6f7a8b9c0")
	alice.ProfilePictureFilename = "me.png"

	created, err := s.CreateUser(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "credential-alice", got.Credential)
	assert.Equal(t, alice.ProfilePictureID, got.ProfilePictureID)
	assert.Equal(t, "me.png", got.ProfilePictureFilename)
	assert.Empty(t, got.Images)
	assert.Empty(t, got.Videos)

	bob := newUser("bob")
	bob.ProfilePictureFilename = ""
	_, err = s.CreateUser(ctx, bob)
	require.NoError(t, err)

	got, err = s.GetUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, got.ProfilePictureID)
	assert.Equal(t, account.DefaultProfilePictureFilename, got.ProfilePictureFilename)

	// lookups are exact
	_, err = s.GetUser(ctx, "ALICE")
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}

func testDuplicateUsername(t *testing.T, s account.Store) {
	ctx := context.Background()

	_, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)

	dup := newUser("alice")
	dup.Credential = "other"
	_, err = s.CreateUser(ctx, dup)
	require.ErrorIs(t, err, account.ErrDuplicateUsername)

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "credential-alice", got.Credential)

	// usernames are case-sensitive
	_, err = s.CreateUser(ctx, newUser("Alice"))
	require.NoError(t, err)
}

func testConcurrentCreate(t *testing.T, s account.Store) {
	ctx := context.Background()

	const attempts = 10
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateUser(ctx, newUser("racer"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, account.ErrDuplicateUsername):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func testAppendMedia(t *testing.T, s account.Store) {
	ctx := context.Background()

	_, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)

	cake := account.MediaItem{BlobID: "b1", Filename: "cake.jpg", Description: "Chocolate cake"}
	pasta := account.MediaItem{BlobID: "b2", Filename: "recipe.mp4", Description: "Pasta night"}
	bread := account.MediaItem{BlobID: "b3", Filename: "bread.png", Description: ""}

	require.NoError(t, s.AppendMedia(ctx, "alice", common.MediaFileTypeImage, cake))
	require.NoError(t, s.AppendMedia(ctx, "alice", common.MediaFileTypeVideo, pasta))
	require.NoError(t, s.AppendMedia(ctx, "alice", common.MediaFileTypeImage, bread))

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []account.MediaItem{cake, bread}, got.Images)
	assert.Equal(t, []account.MediaItem{pasta}, got.Videos)

	err = s.AppendMedia(ctx, "nobody", common.MediaFileTypeImage, cake)
	assert.ErrorIs(t, err, account.ErrUserNotFound)

	err = s.AppendMedia(ctx, "alice", common.MediaFileType("audio"), cake)
	assert.ErrorIs(t, err, common.ErrValidation)

	got, err = s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got.Images, 2)
	assert.Len(t, got.Videos, 1)
}

func testConcurrentAppend(t *testing.T, s account.Store) {
	ctx := context.Background()

	_, err := s.CreateUser(ctx, newUser("alice"))
	require.NoError(t, err)

	const uploads = 20
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := account.MediaItem{
				BlobID:   blob.ID(fmt.Sprintf("blob-%02d", i)),
				Filename: fmt.Sprintf("photo-%02d.jpg", i),
			}
			assert.NoError(t, s.AppendMedia(ctx, "alice", common.MediaFileTypeImage, item))
		}(i)
	}
	wg.Wait()

	got, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got.Images, uploads)

	seen := map[blob.ID]bool{}
	for _, item := range got.Images {
		seen[item.BlobID] = true
	}
	assert.Len(t, seen, uploads)
}

func testListAndSearch(t *testing.T, s account.Store) {
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, name := range []string{"alice", "bob", "Malik", "chef_john", "chefxjohn"} {
		_, err := s.CreateUser(ctx, newUser(name))
		require.NoError(t, err)
	}
	require.NoError(t, s.AppendMedia(ctx, "bob", common.MediaFileTypeVideo,
		account.MediaItem{BlobID: "v1", Filename: "soup.mov", Description: "Soup"}))

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "Malik", "chef_john", "chefxjohn"}, usernames(users))
	for _, u := range users {
		assert.Empty(t, u.Credential, u.Username)
	}
	assert.Len(t, users[1].Videos, 1)

	for _, tc := range []struct {
		term     string
		expected []string
	}{
		{"", []string{"alice", "bob", "Malik", "chef_john", "chefxjohn"}},
		{"ALI", []string{"alice", "Malik"}},
		{"b", []string{"bob"}},
		{"_", []string{"chef_john"}},
		{"%", []string{}},
		{".", []string{}},
		{"zzz", []string{}},
	} {
		users, err := s.SearchUsers(ctx, tc.term)
		require.NoError(t, err, tc.term)
		assert.Equal(t, tc.expected, usernames(users), "term %q", tc.term)
		for _, u := range users {
			assert.Empty(t, u.Credential)
		}
	}
}

func testListCredentials(t *testing.T, s account.Store) {
	ctx := context.Background()

	credentials, err := s.ListCredentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, credentials)

	for _, name := range []string{"alice", "bob"} {
		_, err := s.CreateUser(ctx, newUser(name))
		require.NoError(t, err)
	}
	require.NoError(t, s.AppendMedia(ctx, "bob", common.MediaFileTypeImage,
		account.MediaItem{BlobID: "i1", Filename: "pie.jpg"}))

	credentials, err = s.ListCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"alice": "credential-alice",
		"bob":   "credential-bob",
	}, credentials)
}

func usernames(users []*account.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}
