// Package query answers the listing and search requests of the web layer
// by composing the account directory, the interaction ledger and the blob
// store.
package query

//go:generate mockgen -source=service.go -destination=mocks_test.go -package=query

import (
	"context"
	"io"

	"go.uber.org/zap"

	"cookinghub/internal/account"
	"cookinghub/internal/blob"
	"cookinghub/internal/common"
	"cookinghub/internal/ledger"
)

type Accounts interface {
	ListUsers(ctx context.Context) ([]*account.User, error)
	SearchUsers(ctx context.Context, term string) ([]*account.User, error)
}

type Interactions interface {
	SocialFor(ctx context.Context, fileIDs []string) (map[string]*ledger.Social, error)
	ChatHistory(ctx context.Context, userA, userB string) ([]*ledger.ChatMessage, error)
}

type Blobs interface {
	Get(ctx context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error)
}

// MediaEntry is one row of the media listing.
type MediaEntry struct {
	Type        common.MediaFileType
	FileID      blob.ID
	Filename    string
	Description string
	Username    string
}

// HomePage is everything the home page renders.
type HomePage struct {
	Media        []MediaEntry
	MatchedUsers []string
	Social       map[string]*ledger.Social
}

type Service struct {
	log          *zap.Logger
	accounts     Accounts
	interactions Interactions
	blobs        Blobs
}

func NewService(log *zap.Logger, accounts Accounts, interactions Interactions, blobs Blobs) *Service {
	return &Service{
		log:          log,
		accounts:     accounts,
		interactions: interactions,
		blobs:        blobs,
	}
}

// AllMedia flattens every user's media: users in directory order, and for
// each user the images before the videos.
func (s *Service) AllMedia(ctx context.Context) ([]MediaEntry, error) {
	users, err := s.accounts.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	media := make([]MediaEntry, 0)
	for _, user := range users {
		for _, kind := range []common.MediaFileType{common.MediaFileTypeImage, common.MediaFileTypeVideo} {
			for _, item := range user.Media(kind) {
				media = append(media, MediaEntry{
					Type:        kind,
					FileID:      item.BlobID,
					Filename:    item.Filename,
					Description: item.Description,
					Username:    user.Username,
				})
			}
		}
	}
	return media, nil
}

// SearchMedia keeps the entries of AllMedia whose description contains
// term, ignoring case. An empty term keeps everything.
func (s *Service) SearchMedia(ctx context.Context, term string) ([]MediaEntry, error) {
	media, err := s.AllMedia(ctx)
	if err != nil || term == "" {
		return media, err
	}

	filtered := make([]MediaEntry, 0, len(media))
	for _, entry := range media {
		if common.ContainsIgnoreCase(entry.Description, term) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

func (s *Service) SearchUsers(ctx context.Context, term string) ([]*account.User, error) {
	return s.accounts.SearchUsers(ctx, term)
}

// MediaWithSocial hydrates a listing with likes and comments in one
// batched call. Every requested id is present in the result.
func (s *Service) MediaWithSocial(ctx context.Context, fileIDs []blob.ID) (map[string]*ledger.Social, error) {
	ids := make([]string, 0, len(fileIDs))
	for _, id := range fileIDs {
		ids = append(ids, id.String())
	}
	return s.interactions.SocialFor(ctx, ids)
}

func (s *Service) ChatHistory(ctx context.Context, userA, userB string) ([]*ledger.ChatMessage, error) {
	return s.interactions.ChatHistory(ctx, userA, userB)
}

// OpenFile streams a stored file with its content type. The caller closes
// the reader.
func (s *Service) OpenFile(ctx context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error) {
	return s.blobs.Get(ctx, id)
}

// HomePage builds the home listing: media matching term, the users matching
// term when one is given, and the social data for the shown media.
func (s *Service) HomePage(ctx context.Context, term string) (*HomePage, error) {
	media, err := s.SearchMedia(ctx, term)
	if err != nil {
		return nil, err
	}

	home := &HomePage{
		Media:        media,
		MatchedUsers: []string{},
	}

	if term != "" {
		users, err := s.accounts.SearchUsers(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			home.MatchedUsers = append(home.MatchedUsers, user.Username)
		}
	}

	ids := make([]blob.ID, 0, len(media))
	for _, entry := range media {
		ids = append(ids, entry.FileID)
	}
	if home.Social, err = s.MediaWithSocial(ctx, ids); err != nil {
		return nil, err
	}

	s.log.Debug("Home page built",
		zap.String("term", term),
		zap.Int("media", len(home.Media)),
		zap.Int("matched_users", len(home.MatchedUsers)),
	)
	return home, nil
}
