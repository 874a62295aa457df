package calendars

import (
	"context"
	"testing"

	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &domain.CalendarShare{}))
	return &Service{DB: db}
}

func TestCreate_SharedWithReadsOwner(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, 1, 2)
	require.NoError(t, err)

	list, err := s.List(ctx, Filter{SharedWithID: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), list[0].OwnerID)

	none, err := s.List(ctx, Filter{SharedWithID: 1})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreate_Rejects(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, 3, 3)
	assert.ErrorIs(t, err, ErrSelfShare)
	_, err = s.Create(ctx, 0, 3)
	assert.ErrorIs(t, err, ErrMissingReference)

	_, err = s.Create(ctx, 1, 2)
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyShared)

	reverse, err := s.Create(ctx, 2, 1)
	require.NoError(t, err)
	got, err := s.Get(ctx, reverse.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.OwnerID)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrShareNotFound)
}
