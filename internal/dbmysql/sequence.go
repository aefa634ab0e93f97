package dbmysql

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Stamp struct {
	Seq int64
	At  time.Time
}

// NextStamp reserves the next stamp on stream. It must run inside the
// transaction that writes the stamped row: the UPDATE locks the sequence
// row until commit, so concurrent appends on one stream serialize while
// other streams proceed.
func NextStamp(tx *gorm.DB, stream string, now time.Time) (Stamp, error) {
	seed := Sequence{Stream: stream, LastAt: time.Unix(0, 0).UTC()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return Stamp{}, errors.Wrapf(err, "failed to create sequence %s", stream)
	}

	err := tx.Model(&Sequence{}).
		Where("stream = ?", stream).
		Update("value", gorm.Expr("value + 1")).Error
	if err != nil {
		return Stamp{}, errors.Wrapf(err, "failed to bump sequence %s", stream)
	}

	var seq Sequence
	if err := tx.Where("stream = ?", stream).Take(&seq).Error; err != nil {
		return Stamp{}, errors.Wrapf(err, "failed to read sequence %s", stream)
	}

	at := now.UTC().Truncate(time.Millisecond)
	if seq.LastAt.After(at) {
		at = seq.LastAt.UTC()
	}

	err = tx.Model(&Sequence{}).
		Where("stream = ?", stream).
		Update("last_at", at).Error
	if err != nil {
		return Stamp{}, errors.Wrapf(err, "failed to advance sequence %s", stream)
	}

	return Stamp{Seq: seq.Value, At: at}, nil
}
