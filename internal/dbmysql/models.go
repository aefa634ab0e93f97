package dbmysql

import "time"

type User struct {
	ID                     uint64      `gorm:"primaryKey;column:user_id;autoIncrement"`
	Username               string      `gorm:"column:username;uniqueIndex;size:50;not null"`
	Credential             string      `gorm:"column:credential;size:255;not null"`
	ProfilePictureID       string      `gorm:"column:profile_picture_id;size:64"`
	ProfilePictureFilename string      `gorm:"column:profile_picture_filename;size:255"`
	CreatedAt              time.Time   `gorm:"column:created_at;autoCreateTime"`
	Media                  []MediaItem `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

// MediaItem rows keep upload order through their auto-increment id.
type MediaItem struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserID      uint64    `gorm:"column:user_id;index;not null"`
	Kind        string    `gorm:"column:kind;size:10;not null"` // image, video
	BlobID      string    `gorm:"column:blob_id;size:64;not null"`
	Filename    string    `gorm:"column:filename;size:255;not null"`
	Description string    `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (MediaItem) TableName() string {
	return "media_items"
}

// Like is a membership row; the composite key is the uniqueness rule.
type Like struct {
	FileID    string    `gorm:"column:file_id;primaryKey;size:64"`
	Username  string    `gorm:"column:username;primaryKey;size:50"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Like) TableName() string {
	return "likes"
}

type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	FileID    string    `gorm:"column:file_id;size:64;not null;index:idx_comments_file_seq,priority:1"`
	Seq       int64     `gorm:"column:seq;not null;index:idx_comments_file_seq,priority:2"`
	Author    string    `gorm:"column:author;size:50;not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (Comment) TableName() string {
	return "comments"
}

type ChatMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PairKey   string    `gorm:"column:pair_key;size:101;not null;index:idx_chats_pair_seq,priority:1"`
	Seq       int64     `gorm:"column:seq;not null;index:idx_chats_pair_seq,priority:2"`
	Sender    string    `gorm:"column:sender;size:50;not null"`
	Receiver  string    `gorm:"column:receiver;size:50;not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// Sequence is the per-stream ordering counter for comments and chats.
type Sequence struct {
	Stream string    `gorm:"column:stream;primaryKey;size:191"`
	Value  int64     `gorm:"column:value;not null;default:0"`
	LastAt time.Time `gorm:"column:last_at;not null"`
}

func (Sequence) TableName() string {
	return "sequences"
}
