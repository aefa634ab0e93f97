package gormdb

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cookinghub/internal/common"
	"cookinghub/internal/dbmysql"
	"cookinghub/internal/ledger"
)

const maxToggleAttempts = 16

type store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGorm returns a store that stamps appends with now; nil means
// time.Now.
func NewGorm(db *gorm.DB, now func() time.Time) ledger.Store {
	if now == nil {
		now = time.Now
	}
	return &store{db: db, now: now}
}

func (s *store) reset() {
	for _, table := range []string{"likes", "comments", "chat_messages", "sequences"} {
		s.db.Exec("DELETE FROM " + table)
	}
}

// ToggleLike runs a conditional delete and, if nothing was there, an
// insert that does nothing on conflict. Zero rows on both sides means a
// concurrent toggle got in between, so the pair is retried.
func (s *store) ToggleLike(ctx context.Context, fileID, username string) (ledger.LikeState, error) {
	db := s.db.WithContext(ctx)

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		res := db.Where("file_id = ? AND username = ?", fileID, username).Delete(&dbmysql.Like{})
		if res.Error != nil {
			return "", common.Fault("toggle like", errors.Wrap(res.Error, "failed to delete like"))
		}
		if res.RowsAffected > 0 {
			return ledger.Unliked, nil
		}

		res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dbmysql.Like{
			FileID:   fileID,
			Username: username,
		})
		if res.Error != nil {
			return "", common.Fault("toggle like", errors.Wrap(res.Error, "failed to insert like"))
		}
		if res.RowsAffected > 0 {
			return ledger.Liked, nil
		}
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
	result := make(map[string][]string)
	if len(fileIDs) == 0 {
		return result, nil
	}

	var rows []dbmysql.Like
	err := s.db.WithContext(ctx).
		Where("file_id IN ?", fileIDs).
		Order("username").
		Find(&rows).Error
	if err != nil {
		return nil, common.Fault("list likes", errors.Wrap(err, "failed to query likes"))
	}

	for _, row := range rows {
		result[row.FileID] = append(result[row.FileID], row.Username)
	}
	return result, nil
}

// AddComment stamps and inserts in one transaction; a rolled back insert
// also rolls back its sequence bump.
func (s *store) AddComment(ctx context.Context, fileID, author, text string) (*ledger.Comment, error) {
	var row dbmysql.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stamp, err := dbmysql.NextStamp(tx, ledger.CommentStream(fileID), s.now())
		if err != nil {
			return err
		}

		row = dbmysql.Comment{
			FileID:    fileID,
			Seq:       stamp.Seq,
			Author:    author,
			Text:      text,
			Timestamp: stamp.At,
		}
		return errors.Wrap(tx.Create(&row).Error, "failed to insert comment")
	})
	if err != nil {
		return nil, common.Fault("add comment", err)
	}
	return commentFromRow(&row), nil
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
	result := make(map[string][]*ledger.Comment)
	if len(fileIDs) == 0 {
		return result, nil
	}

	var rows []dbmysql.Comment
	err := s.db.WithContext(ctx).
		Where("file_id IN ?", fileIDs).
		Order("seq, id").
		Find(&rows).Error
	if err != nil {
		return nil, common.Fault("list comments", errors.Wrap(err, "failed to query comments"))
	}

	for i := range rows {
		result[rows[i].FileID] = append(result[rows[i].FileID], commentFromRow(&rows[i]))
	}
	return result, nil
}

func (s *store) AppendChatMessage(ctx context.Context, sender, receiver, text string) (*ledger.ChatMessage, error) {
	pairKey := ledger.PairKey(sender, receiver)

	var row dbmysql.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stamp, err := dbmysql.NextStamp(tx, ledger.ChatStream(pairKey), s.now())
		if err != nil {
			return err
		}

		row = dbmysql.ChatMessage{
			PairKey:   pairKey,
			Seq:       stamp.Seq,
			Sender:    sender,
			Receiver:  receiver,
			Text:      text,
			Timestamp: stamp.At,
		}
		return errors.Wrap(tx.Create(&row).Error, "failed to insert chat message")
	})
	if err != nil {
		return nil, common.Fault("send chat message", err)
	}
	return chatFromRow(&row), nil
}

func (s *store) ChatHistory(ctx context.Context, pairKey string) ([]*ledger.ChatMessage, error) {
	var rows []dbmysql.ChatMessage
	err := s.db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		Order("seq, id").
		Find(&rows).Error
	if err != nil {
		return nil, common.Fault("chat history", errors.Wrap(err, "failed to query chats"))
	}

	history := make([]*ledger.ChatMessage, 0, len(rows))
	for i := range rows {
		history = append(history, chatFromRow(&rows[i]))
	}
	return history, nil
}

func (s *store) Counts(ctx context.Context) (*ledger.Counts, error) {
	var counts ledger.Counts
	db := s.db.WithContext(ctx)

	if err := db.Model(&dbmysql.Like{}).Count(&counts.Likes).Error; err != nil {
		return nil, common.Fault("count likes", errors.Wrap(err, "failed to count likes"))
	}
	if err := db.Model(&dbmysql.Comment{}).Count(&counts.Comments).Error; err != nil {
		return nil, common.Fault("count comments", errors.Wrap(err, "failed to count comments"))
	}
	if err := db.Model(&dbmysql.ChatMessage{}).Count(&counts.ChatMessages).Error; err != nil {
		return nil, common.Fault("count chats", errors.Wrap(err, "failed to count chats"))
	}
	return &counts, nil
}

func commentFromRow(row *dbmysql.Comment) *ledger.Comment {
	return &ledger.Comment{
		ID:        strconv.FormatUint(row.ID, 10),
		FileID:    row.FileID,
		Author:    row.Author,
		Text:      row.Text,
		Timestamp: row.Timestamp.UTC(),
		Sequence:  row.Seq,
	}
}

func chatFromRow(row *dbmysql.ChatMessage) *ledger.ChatMessage {
	return &ledger.ChatMessage{
		ID:        strconv.FormatUint(row.ID, 10),
		PairKey:   row.PairKey,
		Sender:    row.Sender,
		Receiver:  row.Receiver,
		Text:      row.Text,
		Timestamp: row.Timestamp.UTC(),
		Sequence:  row.Seq,
	}
}
