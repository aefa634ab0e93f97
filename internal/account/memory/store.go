package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"cookinghub/internal/account"
	"cookinghub/internal/common"
)

type memory struct {
	sync.Mutex

	nextID int
	users  map[string]*account.User
	// creation order
	order []string
}

func NewInMemory() account.Store {
	return &memory{
		users: make(map[string]*account.User),
	}
}

func (m *memory) reset() {
	m.Lock()
	defer m.Unlock()

	m.nextID = 0
	m.users = make(map[string]*account.User)
	m.order = nil
}

func (m *memory) CreateUser(_ context.Context, user *account.User) (*account.User, error) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return nil, account.ErrDuplicateUsername
	}

	m.nextID++
	stored := user.Clone()
	stored.ID = strconv.Itoa(m.nextID)
	stored.CreatedAt = time.Now().UTC()
	if stored.ProfilePictureFilename == "" {
		stored.ProfilePictureFilename = account.DefaultProfilePictureFilename
	}

	m.users[stored.Username] = stored
	m.order = append(m.order, stored.Username)
	return stored.Clone(), nil
}

func (m *memory) GetUser(_ context.Context, username string) (*account.User, error) {
	m.Lock()
	defer m.Unlock()

	user, ok := m.users[username]
	if !ok {
		return nil, account.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (m *memory) AppendMedia(_ context.Context, username string, kind common.MediaFileType, item account.MediaItem) error {
	if !kind.IsValid() {
		return common.NewValidationError("kind", "must be image or video")
	}
	m.Lock()
	defer m.Unlock()

	user, ok := m.users[username]
	if !ok {
		return account.ErrUserNotFound
	}

	if kind == common.MediaFileTypeVideo {
		user.Videos = append(user.Videos, item)
	} else {
		user.Images = append(user.Images, item)
	}
	return nil
}

func (m *memory) ListUsers(ctx context.Context) ([]*account.User, error) {
	return m.SearchUsers(ctx, "")
}

func (m *memory) ListCredentials(_ context.Context) (map[string]string, error) {
	m.Lock()
	defer m.Unlock()

	credentials := make(map[string]string, len(m.users))
	for username, user := range m.users {
		credentials[username] = user.Credential
	}
	return credentials, nil
}

func (m *memory) SearchUsers(_ context.Context, term string) ([]*account.User, error) {
	m.Lock()
	defer m.Unlock()

	users := make([]*account.User, 0, len(m.order))
	for _, username := range m.order {
		if common.ContainsIgnoreCase(username, term) {
			users = append(users, m.users[username].Public())
		}
	}
	return users, nil
}
