package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("NEIGHBORLY_DATABASE_URL", "postgres://localhost/neighborly")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.False(t, cfg.Debug)
		assert.Equal(t, 3, cfg.RetrieveTopK)
		assert.Equal(t, time.Duration(0), cfg.SnapshotRefresh)
		assert.Equal(t, 60*time.Second, cfg.ModelTimeout)
	})

	t.Run("reads overrides from environment", func(t *testing.T) {
		t.Setenv("NEIGHBORLY_DATABASE_URL", "postgres://localhost/neighborly")
		t.Setenv("NEIGHBORLY_PORT", "9090")
		t.Setenv("NEIGHBORLY_RETRIEVE_TOP_K", "5")
		t.Setenv("NEIGHBORLY_SNAPSHOT_REFRESH", "10m")
		t.Setenv("NEIGHBORLY_OPENAI_API_KEY", "sk-test")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, 5, cfg.RetrieveTopK)
		assert.Equal(t, 10*time.Minute, cfg.SnapshotRefresh)
		assert.True(t, cfg.HasOpenAI())
	})

	t.Run("missing database URL fails", func(t *testing.T) {
		t.Setenv("NEIGHBORLY_DATABASE_URL", "")

		_, err := Load()

		assert.Error(t, err)
	})
}
