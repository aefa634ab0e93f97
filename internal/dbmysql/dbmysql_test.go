package dbmysql

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cookinghub/internal/testutil"
)

func newTestDB(t *testing.T) *gorm.DB {
	db := testutil.NewSQLite(t)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestAutoMigrate_Constraints(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&User{Username: "alice", Credential: "x"}).Error)
	err := db.Create(&User{Username: "alice", Credential: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, db.Create(&Like{FileID: "f1", Username: "bob"}).Error)
	err = db.Create(&Like{FileID: "f1", Username: "bob"}).Error
	assert.Error(t, err)
	assert.NoError(t, db.Create(&Like{FileID: "f1", Username: "carol"}).Error)
}

func TestNextStamp(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	next := func(stream string, now time.Time) Stamp {
		var stamp Stamp
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			stamp, err = NextStamp(tx, stream, now)
			return err
		})
		require.NoError(t, err)
		return stamp
	}

	first := next("comments/a", base)
	assert.Equal(t, int64(1), first.Seq)
	assert.True(t, first.At.Equal(base))

	// the clock stepping back does not move the stamp back
	second := next("comments/a", base.Add(-time.Hour))
	assert.Equal(t, int64(2), second.Seq)
	assert.True(t, second.At.Equal(base))

	third := next("comments/a", base.Add(time.Second))
	assert.Equal(t, int64(3), third.Seq)
	assert.True(t, third.At.Equal(base.Add(time.Second)))

	other := next("chats/alice:bob", base)
	assert.Equal(t, int64(1), other.Seq)
}

func TestNextStamp_Concurrent(t *testing.T) {
	db := newTestDB(t)

	const workers = 10
	var mu sync.Mutex
	seen := map[int64]bool{}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				stamp, err := NextStamp(tx, "comments/x", time.Now())
				if err != nil {
					return err
				}
				mu.Lock()
				seen[stamp.Seq] = true
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
}

func TestNextStamp_RolledBack(t *testing.T) {
	db := newTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := NextStamp(tx, "comments/r", time.Now()); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.ErrorIs(t, err, gorm.ErrInvalidTransaction)

	var count int64
	require.NoError(t, db.Model(&Sequence{}).Count(&count).Error)
	assert.Zero(t, count)
}
