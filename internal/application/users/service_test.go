package users

import (
	"context"
	"testing"
	"time"

	"planner-backend/internal/domain"
	"planner-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &domain.User{}))
	return &Service{DB: db, Tokens: NewTokens("test-secret", time.Hour)}
}

func TestRegister_HashesPassword(t *testing.T) {
	s := setupService(t)
	u, err := s.Register(context.Background(), Credentials{Username: "alice", Password: "pw-alice"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "pw-alice", u.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, Credentials{Username: "", Password: "x"})
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	_, err = s.Register(ctx, Credentials{Username: "a b c", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = s.Register(ctx, Credentials{Username: "alice", Password: "x"})
	require.NoError(t, err)
	_, err = s.Register(ctx, Credentials{Username: "alice", Password: "y"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_IssuesTokenResolvedByMe(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	created, err := s.Register(ctx, Credentials{Username: "bob", Password: "pw-bob"})
	require.NoError(t, err)

	_, _, err = s.Login(ctx, Credentials{Username: "bob", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, Credentials{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, u, err := s.Login(ctx, Credentials{Username: "bob", Password: "pw-bob"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	me, err := s.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob", me.Username)

	_, err = s.Me(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsExpiredAndForeignSecret(t *testing.T) {
	expired := NewTokens("secret", time.Hour)
	expired.TTL = -time.Minute
	tok, err := expired.Issue(1, "a")
	require.NoError(t, err)
	_, err = expired.Parse(tok)
	assert.Error(t, err)

	tok, err = NewTokens("one", time.Hour).Issue(1, "a")
	require.NoError(t, err)
	_, err = NewTokens("two", time.Hour).Parse(tok)
	assert.Error(t, err)

	claims, err := NewTokens("one", time.Hour).Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
}

func TestGetAndList(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()
	a, err := s.Register(ctx, Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	_, err = s.Register(ctx, Credentials{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := s.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "bob", one[0].Username)

	none, err := s.List(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
