package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cookinghub/internal/ledger"
)

type likeDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FileID    string             `bson:"file_id"`
	Username  string             `bson:"username"`
	CreatedAt time.Time          `bson:"created_at"`
}

// commentDoc keeps the legacy "user" field name for the author.
type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FileID    string             `bson:"file_id"`
	Author    string             `bson:"user"`
	Text      string             `bson:"text"`
	Timestamp time.Time          `bson:"timestamp"`
	Seq       int64              `bson:"seq"`
}

type chatDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PairKey      string             `bson:"pair_key"`
	Participants []string           `bson:"participants"`
	From         string             `bson:"from"`
	To           string             `bson:"to"`
	Text         string             `bson:"text"`
	Timestamp    time.Time          `bson:"timestamp"`
	Seq          int64              `bson:"seq"`
}

func (d *commentDoc) toModel() *ledger.Comment {
	return &ledger.Comment{
		ID:        d.ID.Hex(),
		FileID:    d.FileID,
		Author:    d.Author,
		Text:      d.Text,
		Timestamp: d.Timestamp,
		Sequence:  d.Seq,
	}
}

func (d *chatDoc) toModel() *ledger.ChatMessage {
	return &ledger.ChatMessage{
		ID:        d.ID.Hex(),
		PairKey:   d.PairKey,
		Sender:    d.From,
		Receiver:  d.To,
		Text:      d.Text,
		Timestamp: d.Timestamp,
		Sequence:  d.Seq,
	}
}
