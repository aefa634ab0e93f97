// Package ledger records likes, comments and direct chat messages.
package ledger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cookinghub/internal/common"
)

type Ledger struct {
	log   *zap.Logger
	store Store
}

func NewLedger(log *zap.Logger, store Store) *Ledger {
	return &Ledger{
		log:   log,
		store: store,
	}
}

func (l *Ledger) ToggleLike(ctx context.Context, fileID, username string) (LikeState, error) {
	if err := validateFileID(fileID); err != nil {
		return "", err
	}
	if err := common.ValidateUsername(username); err != nil {
		return "", err
	}

	state, err := l.store.ToggleLike(ctx, fileID, username)
	if err != nil {
		return "", err
	}

	l.log.Debug("Like toggled",
		zap.String("file_id", fileID),
		zap.String("username", username),
		zap.String("state", string(state)),
	)
	return state, nil
}

func (l *Ledger) LikesFor(ctx context.Context, fileID string) ([]string, error) {
	if err := validateFileID(fileID); err != nil {
		return nil, err
	}
	return l.store.LikesFor(ctx, fileID)
}

func (l *Ledger) AddComment(ctx context.Context, fileID, author, text string) (*Comment, error) {
	if err := validateFileID(fileID); err != nil {
		return nil, err
	}
	if err := common.ValidateUsername(author); err != nil {
		return nil, err
	}
	if err := common.ValidateText("comment", text); err != nil {
		return nil, err
	}

	comment, err := l.store.AddComment(ctx, fileID, author, text)
	if err != nil {
		return nil, err
	}

	l.log.Debug("Comment added",
		zap.String("file_id", fileID),
		zap.String("author", author),
		zap.Int64("seq", comment.Sequence),
	)
	return comment, nil
}

func (l *Ledger) CommentsFor(ctx context.Context, fileID string) ([]*Comment, error) {
	if err := validateFileID(fileID); err != nil {
		return nil, err
	}
	return l.store.CommentsFor(ctx, fileID)
}

// SendChatMessage rejects messages to oneself.
func (l *Ledger) SendChatMessage(ctx context.Context, sender, receiver, text string) (*ChatMessage, error) {
	if err := validatePair(sender, receiver); err != nil {
		return nil, err
	}
	if err := common.ValidateText("message", text); err != nil {
		return nil, err
	}

	msg, err := l.store.AppendChatMessage(ctx, sender, receiver, text)
	if err != nil {
		return nil, err
	}

	l.log.Debug("Chat message sent",
		zap.String("pair_key", msg.PairKey),
		zap.Int64("seq", msg.Sequence),
	)
	return msg, nil
}

// ChatHistory returns the same thread for (a, b) and (b, a).
func (l *Ledger) ChatHistory(ctx context.Context, userA, userB string) ([]*ChatMessage, error) {
	if err := validatePair(userA, userB); err != nil {
		return nil, err
	}
	return l.store.ChatHistory(ctx, PairKey(userA, userB))
}

// SocialFor loads likes and comments for a page of media in two batched
// reads. Every requested id is present in the result.
func (l *Ledger) SocialFor(ctx context.Context, fileIDs []string) (map[string]*Social, error) {
	ids := make([]string, 0, len(fileIDs))
	social := make(map[string]*Social, len(fileIDs))
	for _, id := range fileIDs {
		if _, ok := social[id]; ok {
			continue
		}
		social[id] = &Social{Likes: []string{}, Comments: []*Comment{}}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return social, nil
	}

	likes, err := l.store.LikesForFiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := l.store.CommentsForFiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if names, ok := likes[id]; ok {
			social[id].Likes = names
		}
		if list, ok := comments[id]; ok {
			social[id].Comments = list
		}
	}
	return social, nil
}

func (l *Ledger) Counts(ctx context.Context) (*Counts, error) {
	return l.store.Counts(ctx)
}

// maxFileIDLength matches the file_id columns of the SQL backend. Blob ids
// are 24 hex chars (GridFS) or 36 (uuid).
const maxFileIDLength = 64

func validateFileID(fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return common.NewValidationError("file id", "is required")
	}
	if len(fileID) > maxFileIDLength {
		return common.NewValidationError("file id", "is too long")
	}
	return nil
}

func validatePair(a, b string) error {
	if err := common.ValidateUsername(a); err != nil {
		return err
	}
	if err := common.ValidateUsername(b); err != nil {
		return err
	}
	if a == b {
		return common.NewValidationError("receiver", "must differ from sender")
	}
	return nil
}
