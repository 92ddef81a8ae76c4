package daily

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/db"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestSeedDeterministic(t *testing.T) {
	day := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)
	assert.Equal(t, Seed(day, "salt"), Seed(later, "salt"))
	assert.NotEqual(t, Seed(day, "salt"), Seed(day.AddDate(0, 0, 1), "salt"))
	assert.NotEqual(t, Seed(day, "salt"), Seed(day, "pepper"))
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.Open(db.Memory)
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(ctx, sqlDB))

	st := NewStore(sqlDB)
	played, err := st.AlreadyPlayed(ctx, "u1", "2026-10-14")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-14", Result: "won", Moves: 12}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-14", Result: "lost", Moves: 3}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u2", Date: "2026-10-14", Result: "lost", Moves: 4}))

	played, err = st.AlreadyPlayed(ctx, "u1", "2026-10-14")
	require.NoError(t, err)
	assert.True(t, played)

	sum, err := st.Summary(ctx, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, Summary{Date: "2026-10-14", Wins: 1, Losses: 1}, sum)

	empty, err := st.Summary(ctx, "2000-01-01")
	require.NoError(t, err)
	assert.Equal(t, Summary{Date: "2000-01-01"}, empty)
}
