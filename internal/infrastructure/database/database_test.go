package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pair struct {
	ID uint
	A  uint `gorm:"uniqueIndex:idx_pair"`
	B  uint `gorm:"uniqueIndex:idx_pair"`
}

func TestOpen_SQLiteDSN(t *testing.T) {
	db, err := Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, Ping(db))
	require.NoError(t, AutoMigrate(db, &pair{}))

	require.NoError(t, db.Create(&pair{A: 1, B: 2}).Error)
	err = db.Create(&pair{A: 1, B: 2}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var count int64
	require.NoError(t, db.Model(&pair{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx" (SQLSTATE 23505)`)))
}
