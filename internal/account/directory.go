// Package account is the directory of user accounts and the media each
// user owns.
package account

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

const rollbackTimeout = 10 * time.Second

// Upload is a file handed in by the web layer.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type Directory struct {
	log   *zap.Logger
	store Store
	blobs blob.Store
}

func NewDirectory(log *zap.Logger, store Store, blobs blob.Store) *Directory {
	return &Directory{
		log:   log,
		store: store,
		blobs: blobs,
	}
}

// CreateUser registers a user. A supplied profile picture is stored first
// and removed again if the user cannot be created.
func (d *Directory) CreateUser(ctx context.Context, username, credential string, profilePicture *Upload) (*User, error) {
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := common.ValidateCredential(credential); err != nil {
		return nil, err
	}

	// early exit only; the store's unique constraint is authoritative
	if _, err := d.store.GetUser(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &User{
		Username:               username,
		Credential:             credential,
		ProfilePictureFilename: DefaultProfilePictureFilename,
		Images:                 []MediaItem{},
		Videos:                 []MediaItem{},
	}

	if profilePicture != nil {
		info, err := d.putUpload(ctx, *profilePicture)
		if err != nil {
			return nil, err
		}
		user.ProfilePictureID = info.ID
		user.ProfilePictureFilename = info.Filename
	}

	created, err := d.store.CreateUser(ctx, user)
	if err != nil {
		if user.ProfilePictureID != "" {
			d.rollbackBlob(ctx, user.ProfilePictureID)
		}
		return nil, err
	}

	d.log.Info("User created",
		zap.String("username", username),
		zap.Bool("profile_picture", user.ProfilePictureID != ""),
	)
	return created.Public(), nil
}

// GetUser returns the user without the credential.
func (d *Directory) GetUser(ctx context.Context, username string) (*User, error) {
	user, err := d.store.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ListCredentials is for administrative callers only.
func (d *Directory) ListCredentials(ctx context.Context) (map[string]string, error) {
	return d.store.ListCredentials(ctx)
}

// GetUserWithCredential is for authentication callers only.
func (d *Directory) GetUserWithCredential(ctx context.Context, username string) (*User, error) {
	return d.store.GetUser(ctx, username)
}

// AppendMedia stores an upload and appends it to the owner's images or
// videos, picked by file extension. If the append fails the blob is
// deleted again.
func (d *Directory) AppendMedia(ctx context.Context, username string, upload Upload, description string) (common.MediaFileType, *MediaItem, error) {
	filename, err := common.SanitizeFilename(upload.Filename)
	if err != nil {
		return "", nil, err
	}
	if err := common.ValidateDescription(description); err != nil {
		return "", nil, err
	}
	upload.Filename = filename

	if _, err := d.store.GetUser(ctx, username); err != nil {
		return "", nil, err
	}

	kind := common.KindFromFilename(filename)

	info, err := d.putUpload(ctx, upload)
	if err != nil {
		return "", nil, err
	}

	item := MediaItem{
		BlobID:      info.ID,
		Filename:    info.Filename,
		Description: description,
	}
	if err := d.store.AppendMedia(ctx, username, kind, item); err != nil {
		d.rollbackBlob(ctx, info.ID)
		return "", nil, err
	}

	d.log.Info("Media appended",
		zap.String("username", username),
		zap.Stringer("kind", kind),
		zap.Stringer("blob_id", info.ID),
		zap.Int64("size", info.Size),
	)
	return kind, &item, nil
}

func (d *Directory) ListUsers(ctx context.Context) ([]*User, error) {
	return d.store.ListUsers(ctx)
}

func (d *Directory) SearchUsers(ctx context.Context, term string) ([]*User, error) {
	return d.store.SearchUsers(ctx, term)
}

func (d *Directory) putUpload(ctx context.Context, upload Upload) (*blob.Info, error) {
	if upload.Content == nil {
		return nil, common.NewValidationError("content", "is required")
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = common.ContentTypeFor(upload.Filename)
	}
	return d.blobs.Put(ctx, upload.Content, upload.Filename, contentType)
}

// rollbackBlob runs even when ctx is already cancelled; a failure leaves
// an orphan that reads never reach, so it is only logged.
func (d *Directory) rollbackBlob(ctx context.Context, id blob.ID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if _, err := d.blobs.Delete(ctx, id); err != nil {
		d.log.Warn("Failed to delete orphaned blob", zap.Stringer("blob_id", id), zap.Error(err))
	}
}
