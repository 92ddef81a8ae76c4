package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.False(t, c.Production())
	assert.Equal(t, 14*24*time.Hour, c.JWTTTL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DAILY_DIFFICULTY", "hard")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("ALLOW_SEED", "true")
	t.Setenv("MAX_CELLS", "2500")
	t.Setenv("SESSION_TTL", "90m")

	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, game.Hard, c.DailySetting)
	assert.True(t, c.Production())
	assert.True(t, c.AllowSeed)
	assert.Equal(t, 2500, c.MaxCells)
	assert.Equal(t, 90*time.Minute, c.SessionTTL)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	c, err := Load([]string{"-port", "7000", "-log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, "7000", c.Port)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load([]string{"-daily-difficulty", "custom"})
	assert.Error(t, err)

	_, err = Load([]string{"-daily-difficulty", "impossible"})
	assert.Error(t, err)

	_, err = Load([]string{"-jwt-expires-days", "0"})
	assert.Error(t, err)

	_, err = Load([]string{"-max-cells", "100"})
	assert.Error(t, err)

	_, err = Load([]string{"-session-ttl", "0s"})
	assert.Error(t, err)

	_, err = Load([]string{"-no-such-flag"})
	assert.Error(t, err)
}
