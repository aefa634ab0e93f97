package account

import (
	"time"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

// DefaultProfilePictureFilename is shown for users who never uploaded one.
const DefaultProfilePictureFilename = "default.jpg"

type User struct {
	ID       string
	Username string

	// Credential is opaque to this package and never leaves it through
	// listing or search paths.
	Credential string

	ProfilePictureID       blob.ID
	ProfilePictureFilename string

	Images []MediaItem
	Videos []MediaItem

	CreatedAt time.Time
}

// MediaItem points at an uploaded blob. Its BlobID doubles as the file id
// likes and comments attach to.
type MediaItem struct {
	BlobID      blob.ID
	Filename    string
	Description string
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cloned := *u
	cloned.Images = append(make([]MediaItem, 0, len(u.Images)), u.Images...)
	cloned.Videos = append(make([]MediaItem, 0, len(u.Videos)), u.Videos...)
	return &cloned
}

// Public returns a copy without the credential.
func (u *User) Public() *User {
	cloned := u.Clone()
	if cloned != nil {
		cloned.Credential = ""
	}
	return cloned
}

func (u *User) Media(kind common.MediaFileType) []MediaItem {
	if kind == common.MediaFileTypeVideo {
		return u.Videos
	}
	return u.Images
}
