package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"cookinghub/internal/ledger"
)

type memory struct {
	sync.Mutex

	seq    *ledger.Sequencer
	nextID int64

	likes    map[string]map[string]bool
	comments map[string][]*ledger.Comment
	chats    map[string][]*ledger.ChatMessage
}

// NewInMemory returns a store that stamps appends with now; nil means
// time.Now.
func NewInMemory(now func() time.Time) ledger.Store {
	return &memory{
		seq:      ledger.NewSequencer(now),
		likes:    make(map[string]map[string]bool),
		comments: make(map[string][]*ledger.Comment),
		chats:    make(map[string][]*ledger.ChatMessage),
	}
}

func (m *memory) reset() {
	m.Lock()
	defer m.Unlock()

	m.seq.Reset()
	m.nextID = 0
	m.likes = make(map[string]map[string]bool)
	m.comments = make(map[string][]*ledger.Comment)
	m.chats = make(map[string][]*ledger.ChatMessage)
}

func (m *memory) ToggleLike(_ context.Context, fileID, username string) (ledger.LikeState, error) {
	m.Lock()
	defer m.Unlock()

	users := m.likes[fileID]
	if users[username] {
		delete(users, username)
		if len(users) == 0 {
			delete(m.likes, fileID)
		}
		return ledger.Unliked, nil
	}

	if users == nil {
		users = make(map[string]bool)
		m.likes[fileID] = users
	}
	users[username] = true
	return ledger.Liked, nil
}

func (m *memory) LikesFor(_ context.Context, fileID string) ([]string, error) {
	m.Lock()
	defer m.Unlock()

	return m.likesFor(fileID), nil
}

func (m *memory) LikesForFiles(_ context.Context, fileIDs []string) (map[string][]string, error) {
	m.Lock()
	defer m.Unlock()

	result := make(map[string][]string)
	for _, id := range fileIDs {
		if names := m.likesFor(id); len(names) > 0 {
			result[id] = names
		}
	}
	return result, nil
}

func (m *memory) likesFor(fileID string) []string {
	names := make([]string, 0, len(m.likes[fileID]))
	for name := range m.likes[fileID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *memory) AddComment(_ context.Context, fileID, author, text string) (*ledger.Comment, error) {
	m.Lock()
	defer m.Unlock()

	stamp := m.seq.Next(ledger.CommentStream(fileID))
	m.nextID++

	comment := &ledger.Comment{
		ID:        strconv.FormatInt(m.nextID, 10),
		FileID:    fileID,
		Author:    author,
		Text:      text,
		Timestamp: stamp.At,
		Sequence:  stamp.Seq,
	}
	m.comments[fileID] = append(m.comments[fileID], comment)
	return comment.Clone(), nil
}

func (m *memory) CommentsFor(_ context.Context, fileID string) ([]*ledger.Comment, error) {
	m.Lock()
	defer m.Unlock()

	return cloneComments(m.comments[fileID]), nil
}

func (m *memory) CommentsForFiles(_ context.Context, fileIDs []string) (map[string][]*ledger.Comment, error) {
	m.Lock()
	defer m.Unlock()

	result := make(map[string][]*ledger.Comment)
	for _, id := range fileIDs {
		if list := m.comments[id]; len(list) > 0 {
			result[id] = cloneComments(list)
		}
	}
	return result, nil
}

func (m *memory) AppendChatMessage(_ context.Context, sender, receiver, text string) (*ledger.ChatMessage, error) {
	m.Lock()
	defer m.Unlock()

	pairKey := ledger.PairKey(sender, receiver)
	stamp := m.seq.Next(ledger.ChatStream(pairKey))
	m.nextID++

	msg := &ledger.ChatMessage{
		ID:        strconv.FormatInt(m.nextID, 10),
		PairKey:   pairKey,
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		Timestamp: stamp.At,
		Sequence:  stamp.Seq,
	}
	m.chats[pairKey] = append(m.chats[pairKey], msg)
	return msg.Clone(), nil
}

func (m *memory) ChatHistory(_ context.Context, pairKey string) ([]*ledger.ChatMessage, error) {
	m.Lock()
	defer m.Unlock()

	history := make([]*ledger.ChatMessage, 0, len(m.chats[pairKey]))
	for _, msg := range m.chats[pairKey] {
		history = append(history, msg.Clone())
	}
	return history, nil
}

func (m *memory) Counts(_ context.Context) (*ledger.Counts, error) {
	m.Lock()
	defer m.Unlock()

	var counts ledger.Counts
	for _, users := range m.likes {
		counts.Likes += int64(len(users))
	}
	for _, list := range m.comments {
		counts.Comments += int64(len(list))
	}
	for _, list := range m.chats {
		counts.ChatMessages += int64(len(list))
	}
	return &counts, nil
}

func cloneComments(list []*ledger.Comment) []*ledger.Comment {
	cloned := make([]*ledger.Comment, 0, len(list))
	for _, c := range list {
		cloned = append(cloned, c.Clone())
	}
	return cloned
}
