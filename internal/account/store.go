package account

import (
	"context"

	"cookinghub/internal/common"
)

var (
	ErrUserNotFound      = common.ErrUserNotFound
	ErrDuplicateUsername = common.ErrDuplicateUsername
)

type Store interface {
	// CreateUser inserts a new user and returns the stored record.
	//
	// ErrDuplicateUsername is returned if the username is taken. The check
	// is the backend's unique constraint, so concurrent creations of one
	// username produce exactly one success.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// GetUser returns the user including the credential.
	//
	// ErrUserNotFound is returned if no such user exists.
	GetUser(ctx context.Context, username string) (*User, error)

	// AppendMedia atomically appends item to the user's images or videos.
	// Concurrent appends for one user never lose items.
	//
	// ErrUserNotFound is returned if no such user exists.
	AppendMedia(ctx context.Context, username string, kind common.MediaFileType, item MediaItem) error

	// ListUsers returns every user in creation order, credentials stripped.
	ListUsers(ctx context.Context) ([]*User, error)

	// SearchUsers returns the users of ListUsers whose username contains
	// term, ignoring case. An empty term matches everyone.
	SearchUsers(ctx context.Context, term string) ([]*User, error)

	// ListCredentials returns every stored credential keyed by username,
	// in one read. It is for administrative callers only.
	ListCredentials(ctx context.Context) (map[string]string, error)
}
