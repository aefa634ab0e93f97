package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookinghub/internal/ledger"
)

func RunStoreTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testToggleLike,
		testConcurrentToggle,
		testLikesForFiles,
		testComments,
		testConcurrentComments,
		testCommentsForFiles,
		testChat,
		testConcurrentChat,
		testCounts,
	} {
		tf(t, s)
		teardown()
	}
}

func testToggleLike(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	likes, err := s.LikesFor(ctx, "file-1")
	require.NoError(t, err)
	assert.Empty(t, likes)

	for i := 1; i <= 5; i++ {
		state, err := s.ToggleLike(ctx, "file-1", "bob")
		require.NoError(t, err)

		likes, err := s.LikesFor(ctx, "file-1")
		require.NoError(t, err)

		if i%2 == 1 {
			assert.Equal(t, ledger.Liked, state, "toggle %d", i)
			assert.Equal(t, []string{"bob"}, likes)
		} else {
			assert.Equal(t, ledger.Unliked, state, "toggle %d", i)
			assert.Empty(t, likes)
		}
	}

	state, err := s.ToggleLike(ctx, "file-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, ledger.Liked, state)

	likes, err = s.LikesFor(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, likes)

	// likes are per file
	likes, err = s.LikesFor(ctx, "file-2")
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func testConcurrentToggle(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	for _, toggles := range []int{8, 7} {
		fileID := fmt.Sprintf("contended-%d", toggles)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			liked   int
			unliked int
		)
		for i := 0; i < toggles; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				state, err := s.ToggleLike(ctx, fileID, "bob")
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				defer mu.Unlock()
				if state == ledger.Liked {
					liked++
				} else {
					unliked++
				}
			}()
		}
		wg.Wait()

		likes, err := s.LikesFor(ctx, fileID)
		require.NoError(t, err)

		if toggles%2 == 0 {
			assert.Empty(t, likes)
			assert.Equal(t, liked, unliked)
		} else {
			assert.Equal(t, []string{"bob"}, likes)
			assert.Equal(t, liked, unliked+1)
		}
	}

	// distinct users on one file do not interfere
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, err := s.ToggleLike(ctx, "popular", fmt.Sprintf("user%02d", i))
			assert.NoError(t, err)
			assert.Equal(t, ledger.Liked, state)
		}(i)
	}
	wg.Wait()

	likes, err := s.LikesFor(ctx, "popular")
	require.NoError(t, err)
	assert.Len(t, likes, 10)
}

func testLikesForFiles(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	for _, like := range [][2]string{{"f1", "carol"}, {"f1", "alice"}, {"f2", "bob"}, {"f3", "bob"}} {
		_, err := s.ToggleLike(ctx, like[0], like[1])
		require.NoError(t, err)
	}

	byFile, err := s.LikesForFiles(ctx, []string{"f1", "f2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"f1": {"alice", "carol"},
		"f2": {"bob"},
	}, byFile)

	byFile, err = s.LikesForFiles(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, byFile)
}

func testComments(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	comments, err := s.CommentsFor(ctx, "file-1")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	first, err := s.AddComment(ctx, "file-1", "bob", "Looks great")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "file-1", first.FileID)
	assert.Equal(t, "bob", first.Author)
	assert.False(t, first.Timestamp.IsZero())

	second, err := s.AddComment(ctx, "file-1", "carol", "Yum")
	require.NoError(t, err)
	assert.Greater(t, second.Sequence, first.Sequence)
	assert.False(t, second.Timestamp.Before(first.Timestamp))

	_, err = s.AddComment(ctx, "file-2", "alice", "Elsewhere")
	require.NoError(t, err)

	comments, err = s.CommentsFor(ctx, "file-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, "Looks great", comments[0].Text)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "carol", comments[1].Author)
	assert.Equal(t, "Yum", comments[1].Text)

	again, err := s.CommentsFor(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, comments, again)
}

func testConcurrentComments(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddComment(ctx, "busy", fmt.Sprintf("user%02d", i), "hi")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	comments, err := s.CommentsFor(ctx, "busy")
	require.NoError(t, err)
	require.Len(t, comments, writers)

	for i := 1; i < len(comments); i++ {
		assert.Greater(t, comments[i].Sequence, comments[i-1].Sequence)
		assert.False(t, comments[i].Timestamp.Before(comments[i-1].Timestamp))
	}
}

func testCommentsForFiles(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	for _, c := range [][3]string{
		{"f1", "bob", "one"},
		{"f2", "carol", "two"},
		{"f1", "alice", "three"},
	} {
		_, err := s.AddComment(ctx, c[0], c[1], c[2])
		require.NoError(t, err)
	}

	byFile, err := s.CommentsForFiles(ctx, []string{"f1", "f2", "f3"})
	require.NoError(t, err)
	require.Len(t, byFile, 2)
	require.Len(t, byFile["f1"], 2)
	assert.Equal(t, "one", byFile["f1"][0].Text)
	assert.Equal(t, "three", byFile["f1"][1].Text)
	require.Len(t, byFile["f2"], 1)
	assert.Equal(t, "two", byFile["f2"][0].Text)
}

func testChat(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	history, err := s.ChatHistory(ctx, ledger.PairKey("alice", "bob"))
	require.NoError(t, err)
	assert.Empty(t, history)

	m1, err := s.AppendChatMessage(ctx, "alice", "bob", "hi bob")
	require.NoError(t, err)
	assert.Equal(t, "alice:bob", m1.PairKey)
	assert.Equal(t, "alice", m1.Sender)
	assert.Equal(t, "bob", m1.Receiver)

	m2, err := s.AppendChatMessage(ctx, "bob", "alice", "hey alice")
	require.NoError(t, err)
	assert.Equal(t, "alice:bob", m2.PairKey)
	assert.Greater(t, m2.Sequence, m1.Sequence)

	_, err = s.AppendChatMessage(ctx, "alice", "carol", "other thread")
	require.NoError(t, err)

	history, err = s.ChatHistory(ctx, ledger.PairKey("bob", "alice"))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi bob", history[0].Text)
	assert.Equal(t, "alice", history[0].Sender)
	assert.Equal(t, "hey alice", history[1].Text)
	assert.Equal(t, "bob", history[1].Sender)

	mirrored, err := s.ChatHistory(ctx, ledger.PairKey("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, history, mirrored)
}

func testConcurrentChat(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	const messages = 10
	var wg sync.WaitGroup
	for i := 0; i < messages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := "alice", "bob"
			if i%2 == 1 {
				sender, receiver = receiver, sender
			}
			_, err := s.AppendChatMessage(ctx, sender, receiver, fmt.Sprintf("msg %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := s.ChatHistory(ctx, "alice:bob")
	require.NoError(t, err)
	require.Len(t, history, messages)
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].Sequence, history[i-1].Sequence)
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func testCounts(t *testing.T, s ledger.Store) {
	ctx := context.Background()

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Counts{}, *counts)

	_, err = s.ToggleLike(ctx, "f1", "bob")
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, "f1", "carol")
	require.NoError(t, err)
	_, err = s.AddComment(ctx, "f1", "bob", "nice")
	require.NoError(t, err)
	_, err = s.AppendChatMessage(ctx, "bob", "carol", "hello")
	require.NoError(t, err)

	counts, err = s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Counts{Likes: 2, Comments: 1, ChatMessages: 1}, *counts)
}
