package ledger

import (
	"sort"
	"strings"
	"time"
)

type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

// Comment is ordered by (Timestamp, Sequence). Sequence is strictly
// increasing per file and Timestamp never decreases along it.
type Comment struct {
	ID        string
	FileID    string
	Author    string
	Text      string
	Timestamp time.Time
	Sequence  int64
}

type ChatMessage struct {
	ID        string
	PairKey   string
	Sender    string
	Receiver  string
	Text      string
	Timestamp time.Time
	Sequence  int64
}

// Social is what a listing shows under one media item.
type Social struct {
	Likes    []string
	Comments []*Comment
}

type Counts struct {
	Likes        int64
	Comments     int64
	ChatMessages int64
}

// Stamp is the ordering key given to one append.
type Stamp struct {
	Seq int64
	At  time.Time
}

// PairKey identifies the conversation between a and b regardless of who
// sends. Usernames cannot contain ':'.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

func CommentStream(fileID string) string {
	return "comments/" + fileID
}

func ChatStream(pairKey string) string {
	return "chats/" + pairKey
}

func (c *Comment) Clone() *Comment {
	cloned := *c
	return &cloned
}

func (m *ChatMessage) Clone() *ChatMessage {
	cloned := *m
	return &cloned
}
