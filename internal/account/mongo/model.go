package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cookinghub/internal/account"
	"cookinghub/internal/blob"
)

// Field names match the documents the hub has always written, so legacy
// data reads without a rewrite once dbmongo.MigrateUsers has run.
type mediaDoc struct {
	FileID      string `bson:"file_id"`
	Filename    string `bson:"filename"`
	Description string `bson:"description"`
}

type userDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	Credential         string             `bson:"password,omitempty"`
	ProfilePicID       string             `bson:"profile_pic_id,omitempty"`
	ProfilePicFilename string             `bson:"profile_pic_filename"`
	Images             []mediaDoc         `bson:"images"`
	Videos             []mediaDoc         `bson:"videos"`
	CreatedAt          time.Time          `bson:"created_at"`
	SchemaVersion      int                `bson:"schema_version"`
}

func toMediaDoc(item account.MediaItem) mediaDoc {
	return mediaDoc{
		FileID:      string(item.BlobID),
		Filename:    item.Filename,
		Description: item.Description,
	}
}

func toMediaDocs(items []account.MediaItem) []mediaDoc {
	docs := make([]mediaDoc, 0, len(items))
	for _, item := range items {
		docs = append(docs, toMediaDoc(item))
	}
	return docs
}

func fromMediaDocs(docs []mediaDoc) []account.MediaItem {
	items := make([]account.MediaItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, account.MediaItem{
			BlobID:      blob.ID(doc.FileID),
			Filename:    doc.Filename,
			Description: doc.Description,
		})
	}
	return items
}

func (d *userDoc) toModel() *account.User {
	filename := d.ProfilePicFilename
	if filename == "" {
		filename = account.DefaultProfilePictureFilename
	}

	return &account.User{
		ID:                     d.ID.Hex(),
		Username:               d.Username,
		Credential:             d.Credential,
		ProfilePictureID:       blob.ID(d.ProfilePicID),
		ProfilePictureFilename: filename,
		Images:                 fromMediaDocs(d.Images),
		Videos:                 fromMediaDocs(d.Videos),
		CreatedAt:              d.CreatedAt,
	}
}
