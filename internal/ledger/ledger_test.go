package ledger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cookinghub/internal/common"
	"cookinghub/internal/ledger"
	"cookinghub/internal/ledger/memory"
)

func newLedger() *ledger.Ledger {
	return ledger.NewLedger(zap.NewNop(), memory.NewInMemory(nil))
}

func TestLedger_LikeScenario(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	state, err := l.ToggleLike(ctx, "blob-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, ledger.Liked, state)

	state, err = l.ToggleLike(ctx, "blob-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, ledger.Unliked, state)

	comments, err := l.CommentsFor(ctx, "blob-1")
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = l.AddComment(ctx, "blob-1", "bob", "Looks great")
	require.NoError(t, err)
	_, err = l.AddComment(ctx, "blob-1", "carol", "Yum")
	require.NoError(t, err)

	comments, err = l.CommentsFor(ctx, "blob-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "bob", comments[0].Author)
	assert.Equal(t, "carol", comments[1].Author)
}

func TestLedger_Validation(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	tests := []struct {
		name string
		call func() error
	}{
		{"like without file", func() error { _, err := l.ToggleLike(ctx, " ", "bob"); return err }},
		{"like bad username", func() error { _, err := l.ToggleLike(ctx, "f1", "b"); return err }},
		{"likes without file", func() error { _, err := l.LikesFor(ctx, ""); return err }},
		{"empty comment", func() error { _, err := l.AddComment(ctx, "f1", "bob", "  "); return err }},
		{"huge comment", func() error { _, err := l.AddComment(ctx, "f1", "bob", strings.Repeat("x", 5001)); return err }},
		{"comment without file", func() error { _, err := l.AddComment(ctx, "", "bob", "hi"); return err }},
		{"comments without file", func() error { _, err := l.CommentsFor(ctx, ""); return err }},
		{"oversized file id", func() error { _, err := l.ToggleLike(ctx, strings.Repeat("f", 65), "bob"); return err }},
		{"oversized comment file id", func() error { _, err := l.AddComment(ctx, strings.Repeat("f", 65), "bob", "hi"); return err }},
		{"empty message", func() error { _, err := l.SendChatMessage(ctx, "alice", "bob", ""); return err }},
		{"self chat", func() error { _, err := l.SendChatMessage(ctx, "alice", "alice", "hi me"); return err }},
		{"self history", func() error { _, err := l.ChatHistory(ctx, "alice", "alice"); return err }},
		{"bad receiver", func() error { _, err := l.SendChatMessage(ctx, "alice", "", "hi"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), common.ErrValidation)
		})
	}

	counts, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Counts{}, *counts)
}

func TestLedger_ChatSymmetry(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	_, err := l.SendChatMessage(ctx, "alice", "bob", "hi")
	require.NoError(t, err)
	_, err = l.SendChatMessage(ctx, "bob", "alice", "hello")
	require.NoError(t, err)
	_, err = l.SendChatMessage(ctx, "alice", "bob", "dinner?")
	require.NoError(t, err)

	ab, err := l.ChatHistory(ctx, "alice", "bob")
	require.NoError(t, err)
	ba, err := l.ChatHistory(ctx, "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	require.Len(t, ab, 3)
	assert.Equal(t, []string{"hi", "hello", "dinner?"}, []string{ab[0].Text, ab[1].Text, ab[2].Text})
}

func TestLedger_SocialFor(t *testing.T) {
	ctx := context.Background()
	l := newLedger()

	_, err := l.ToggleLike(ctx, "f1", "bob")
	require.NoError(t, err)
	_, err = l.ToggleLike(ctx, "f1", "alice")
	require.NoError(t, err)
	_, err = l.AddComment(ctx, "f2", "carol", "Yum")
	require.NoError(t, err)

	social, err := l.SocialFor(ctx, []string{"f1", "f2", "f3", "f1"})
	require.NoError(t, err)
	require.Len(t, social, 3)

	assert.Equal(t, []string{"alice", "bob"}, social["f1"].Likes)
	assert.Empty(t, social["f1"].Comments)
	assert.NotNil(t, social["f1"].Comments)

	assert.Empty(t, social["f2"].Likes)
	require.Len(t, social["f2"].Comments, 1)
	assert.Equal(t, "Yum", social["f2"].Comments[0].Text)

	assert.NotNil(t, social["f3"].Likes)
	assert.Empty(t, social["f3"].Likes)

	social, err = l.SocialFor(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, social)
}
