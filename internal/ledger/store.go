package ledger

import "context"

type Store interface {
	// ToggleLike removes the (fileID, username) like if present and adds
	// it otherwise, returning the new state. Toggles on one key are
	// linearizable: n concurrent calls leave the like present iff n is odd
	// relative to the starting state.
	ToggleLike(ctx context.Context, fileID, username string) (LikeState, error)

	// LikesFor returns the usernames liking fileID, sorted.
	LikesFor(ctx context.Context, fileID string) ([]string, error)

	// LikesForFiles is LikesFor over many files in one round trip. Files
	// without likes are absent from the result.
	LikesForFiles(ctx context.Context, fileIDs []string) (map[string][]string, error)

	// AddComment appends a comment stamped with the next ordering key of
	// the file's stream.
	AddComment(ctx context.Context, fileID, author, text string) (*Comment, error)

	// CommentsFor returns the comments on fileID in stamp order.
	CommentsFor(ctx context.Context, fileID string) ([]*Comment, error)

	// CommentsForFiles is CommentsFor over many files in one round trip.
	// Files without comments are absent from the result.
	CommentsForFiles(ctx context.Context, fileIDs []string) (map[string][]*Comment, error)

	// AppendChatMessage appends to the conversation PairKey(sender, receiver).
	AppendChatMessage(ctx context.Context, sender, receiver, text string) (*ChatMessage, error)

	// ChatHistory returns a conversation in stamp order.
	ChatHistory(ctx context.Context, pairKey string) ([]*ChatMessage, error)

	Counts(ctx context.Context) (*Counts, error)
}
