package bootstrap

import (
	"testing"

	"planner-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureJWTSecret(t *testing.T) {
	cfg := &config.Config{Env: "development"}
	require.NoError(t, EnsureJWTSecret(cfg))
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)

	cfg = &config.Config{Env: "production"}
	assert.ErrorIs(t, EnsureJWTSecret(cfg), ErrJWTSecretRequired)

	cfg = &config.Config{Env: "production", JWTSecret: "s3cret"}
	require.NoError(t, EnsureJWTSecret(cfg))
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(&config.Config{DatabaseURL: "sqlite::memory:"}, "events")
	require.NoError(t, err)
	assert.NotNil(t, db)

	_, err = OpenDatabase(&config.Config{Env: "production"}, "events")
	assert.Error(t, err)
}
