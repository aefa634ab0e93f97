package gormdb

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"cookinghub/internal/account"
	"cookinghub/internal/blob"
	"cookinghub/internal/common"
	"cookinghub/internal/dbmysql"
)

const publicUserColumns = "user_id, username, profile_picture_id, profile_picture_filename, created_at"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type store struct {
	db *gorm.DB
}

// NewGorm expects db to be opened through dbmysql.Open so unique
// violations surface as gorm.ErrDuplicatedKey.
func NewGorm(db *gorm.DB) account.Store {
	return &store{db: db}
}

func (s *store) ListCredentials(ctx context.Context) (map[string]string, error) {
	var rows []dbmysql.User
	err := s.db.WithContext(ctx).Select("username, credential").Find(&rows).Error
	if err != nil {
		return nil, common.Fault("list credentials", errors.Wrap(err, "failed to query credentials"))
	}

	credentials := make(map[string]string, len(rows))
	for _, row := range rows {
		credentials[row.Username] = row.Credential
	}
	return credentials, nil
}

func (s *store) reset() {
	s.db.Exec("DELETE FROM media_items")
	s.db.Exec("DELETE FROM users")
}

func (s *store) CreateUser(ctx context.Context, user *account.User) (*account.User, error) {
	row := dbmysql.User{
		Username:               user.Username,
		Credential:             user.Credential,
		ProfilePictureID:       string(user.ProfilePictureID),
		ProfilePictureFilename: user.ProfilePictureFilename,
	}
	if row.ProfilePictureFilename == "" {
		row.ProfilePictureFilename = account.DefaultProfilePictureFilename
	}
	for _, item := range user.Images {
		row.Media = append(row.Media, toMediaRow(common.MediaFileTypeImage, item))
	}
	for _, item := range user.Videos {
		row.Media = append(row.Media, toMediaRow(common.MediaFileTypeVideo, item))
	}

	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, account.ErrDuplicateUsername
	} else if err != nil {
		return nil, common.Fault("create user", errors.Wrap(err, "failed to insert user"))
	}
	return fromRow(&row), nil
}

func (s *store) GetUser(ctx context.Context, username string) (*account.User, error) {
	var row dbmysql.User
	err := s.db.WithContext(ctx).
		Preload("Media", orderMedia).
		Where("username = ?", username).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrUserNotFound
	} else if err != nil {
		return nil, common.Fault("get user", errors.Wrap(err, "failed to find user"))
	}
	return fromRow(&row), nil
}

// AppendMedia inserts the item only if the owner exists, in one statement,
// so a concurrent append or a missing user can never half-apply.
func (s *store) AppendMedia(ctx context.Context, username string, kind common.MediaFileType, item account.MediaItem) error {
	if !kind.IsValid() {
		return common.NewValidationError("kind", "must be image or video")
	}
	res := s.db.WithContext(ctx).Exec(
		`INSERT INTO media_items (user_id, kind, blob_id, filename, description, created_at)
		 SELECT user_id, ?, ?, ?, ?, ? FROM users WHERE username = ?`,
		kind.String(), string(item.BlobID), item.Filename, item.Description, time.Now().UTC(), username,
	)
	if res.Error != nil {
		return common.Fault("append media", errors.Wrap(res.Error, "failed to insert media item"))
	}
	if res.RowsAffected == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

func (s *store) ListUsers(ctx context.Context) ([]*account.User, error) {
	return s.find(ctx, s.db.WithContext(ctx))
}

func (s *store) SearchUsers(ctx context.Context, term string) ([]*account.User, error) {
	query := s.db.WithContext(ctx)
	if term != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		query = query.Where("LOWER(username) LIKE ? ESCAPE '!'", pattern)
	}
	return s.find(ctx, query)
}

func (s *store) find(_ context.Context, query *gorm.DB) ([]*account.User, error) {
	var rows []dbmysql.User
	err := query.
		Select(publicUserColumns).
		Preload("Media", orderMedia).
		Order("user_id").
		Find(&rows).Error
	if err != nil {
		return nil, common.Fault("list users", errors.Wrap(err, "failed to query users"))
	}

	users := make([]*account.User, 0, len(rows))
	for i := range rows {
		users = append(users, fromRow(&rows[i]))
	}
	return users, nil
}

func orderMedia(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func toMediaRow(kind common.MediaFileType, item account.MediaItem) dbmysql.MediaItem {
	return dbmysql.MediaItem{
		Kind:        kind.String(),
		BlobID:      string(item.BlobID),
		Filename:    item.Filename,
		Description: item.Description,
	}
}

func fromRow(row *dbmysql.User) *account.User {
	user := &account.User{
		ID:                     strconv.FormatUint(row.ID, 10),
		Username:               row.Username,
		Credential:             row.Credential,
		ProfilePictureID:       blob.ID(row.ProfilePictureID),
		ProfilePictureFilename: row.ProfilePictureFilename,
		Images:                 []account.MediaItem{},
		Videos:                 []account.MediaItem{},
		CreatedAt:              row.CreatedAt,
	}

	for _, m := range row.Media {
		item := account.MediaItem{
			BlobID:      blob.ID(m.BlobID),
			Filename:    m.Filename,
			Description: m.Description,
		}
		if common.MediaFileType(m.Kind) == common.MediaFileTypeVideo {
			user.Videos = append(user.Videos, item)
		} else {
			user.Images = append(user.Images, item)
		}
	}
	return user
}
