package game

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rigged returns a game on s with mines already placed at the given cells.
func rigged(t *testing.T, s Setting, mines ...point) *Logic {
	t.Helper()
	require.True(t, s.Validate())
	require.Len(t, mines, s.MineCount())
	l := New(WithSetting(s), WithSeed(1))
	l.mines = make([]bool, s.Cells())
	for _, p := range mines {
		l.mines[gridToIndex(s.Width(), p.x, p.y)] = true
	}
	return l
}

func countMines(l *Logic) int {
	n := 0
	for _, m := range l.mines {
		if m {
			n++
		}
	}
	return n
}

func requireFresh(t *testing.T, l *Logic, s Setting) {
	t.Helper()
	st := l.Snapshot()
	require.Equal(t, s, st.Setting)
	require.Equal(t, Playing, st.Result)
	require.Len(t, st.Cells, s.Width()*s.Height())
	for i, c := range st.Cells {
		require.Equal(t, Unrevealed, c.Kind, "cell %d", i)
	}
	require.Nil(t, l.mines)
	require.Equal(t, s.Cells()-s.MineCount(), l.toReveal)
}

func TestNewGameInitialState(t *testing.T) {
	requireFresh(t, New(), Easy)
}

func TestRestart(t *testing.T) {
	l := New(WithSeed(7))
	require.True(t, l.Reveal(0, 0))
	require.NotNil(t, l.mines)

	require.True(t, l.Restart(nil))
	requireFresh(t, l, Easy)

	hard := Hard
	require.True(t, l.Restart(&hard))
	requireFresh(t, l, Hard)

	custom := Custom(4, 3, 2)
	require.True(t, l.Restart(&custom))
	requireFresh(t, l, custom)
}

func TestRestartInvalidLeavesGameUntouched(t *testing.T) {
	l := New(WithSeed(3))
	require.True(t, l.Reveal(4, 4))
	before := l.Snapshot()
	mines := append([]bool(nil), l.mines...)

	bad := Custom(1, 10, 2)
	assert.False(t, l.Restart(&bad))
	assert.Equal(t, before, l.Snapshot())
	assert.Equal(t, mines, l.mines)
}

func TestOverflowingSettingRefused(t *testing.T) {
	huge := Custom(1<<62+1, 4, 1)

	l := New(WithSetting(huge), WithSeed(1))
	assert.Equal(t, Easy, l.Setting())
	assert.False(t, l.Restart(&huge))
	assert.Len(t, l.Snapshot().Cells, Easy.Cells())

	assert.NotPanics(t, func() {
		assert.False(t, l.ToggleFlag(5, 9))
		assert.False(t, l.Reveal(1<<62, 0))
		assert.True(t, l.Reveal(0, 0))
	})
}

func TestFirstRevealNeverMine(t *testing.T) {
	for seed := uint64(0); seed < 10000; seed++ {
		l := New(WithSeed(seed))
		require.True(t, l.Reveal(4, 4))
		require.NotEqual(t, Lose, l.Result(), "seed %d", seed)
		require.False(t, l.mines[gridToIndex(9, 4, 4)], "seed %d", seed)
		require.Equal(t, 10, countMines(l), "seed %d", seed)
	}
}

func TestFirstRevealNeverMineDenseBoard(t *testing.T) {
	// Every cell but one is a mine, so only the excluded slot is safe.
	s := Custom(3, 3, 8)
	for seed := uint64(0); seed < 200; seed++ {
		x, y := int(seed%3), int(seed/3%3)
		l := New(WithSetting(s), WithSeed(seed))
		require.True(t, l.Reveal(x, y))
		require.Equal(t, Win, l.Result(), "seed %d", seed)
		require.Equal(t, 8, countMines(l))
		require.False(t, l.mines[gridToIndex(3, x, y)])
	}
}

func TestPlacementUniform(t *testing.T) {
	s := Custom(3, 3, 1)
	hits := make([]int, s.Cells())
	const trials = 9000
	for seed := uint64(0); seed < trials; seed++ {
		l := New(WithSetting(s), WithSeed(seed))
		l.placeMines(4)
		for i, m := range l.mines {
			if m {
				hits[i]++
			}
		}
	}
	assert.Zero(t, hits[4])
	for i, h := range hits {
		if i == 4 {
			continue
		}
		// Expected 1125 per cell.
		assert.InDelta(t, trials/8, h, 200, "cell %d", i)
	}
}

func TestMineSetInvariants(t *testing.T) {
	for seed := uint64(0); seed < 500; seed++ {
		l := New(WithSetting(Hard), WithSeed(seed))
		trigger := int(seed) % Hard.Cells()
		l.placeMines(trigger)
		require.Len(t, l.mines, Hard.Cells())
		require.Equal(t, Hard.MineCount(), countMines(l))
		require.False(t, l.mines[trigger])
	}
}

func TestMinesPlacedOnce(t *testing.T) {
	l := New(WithSetting(Medium), WithSeed(11))
	require.True(t, l.Reveal(0, 0))
	placed := append([]bool(nil), l.mines...)
	for x := 0; x < 16 && l.Result() == Playing; x++ {
		l.ToggleFlag(x, 15)
		l.Reveal(x, 8)
	}
	assert.Equal(t, placed, l.mines)
}

func TestRevealRejected(t *testing.T) {
	l := New(WithSeed(5))
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {9, 0}, {0, 9}, {math.MaxInt, 0}, {0, math.MinInt}} {
		assert.False(t, l.Reveal(p[0], p[1]), "%v", p)
		assert.False(t, l.ToggleFlag(p[0], p[1]), "%v", p)
	}
	assert.Nil(t, l.mines, "rejected reveals must not place mines")

	require.True(t, l.ToggleFlag(2, 2))
	assert.False(t, l.Reveal(2, 2), "flagged cell")
	assert.Nil(t, l.mines)
}

func TestRevealAlreadyRevealed(t *testing.T) {
	l := rigged(t, Custom(3, 2, 1), point{2, 1})
	require.True(t, l.Reveal(2, 0))
	before := l.Snapshot()
	assert.False(t, l.Reveal(2, 0))
	assert.Equal(t, before, l.Snapshot())
}

func TestFloodFillStopsAtNumbers(t *testing.T) {
	// Column 2 is a wall of mines.
	l := rigged(t, Custom(5, 3, 3), point{2, 0}, point{2, 1}, point{2, 2})
	require.True(t, l.Reveal(0, 0))

	st := l.Snapshot()
	for y := 0; y < 3; y++ {
		assert.Equal(t, RevealedCell(0), st.At(0, y), "(0,%d)", y)
		assert.Equal(t, Unrevealed, st.At(3, y).Kind)
		assert.Equal(t, Unrevealed, st.At(4, y).Kind)
	}
	assert.Equal(t, RevealedCell(2), st.At(1, 0))
	assert.Equal(t, RevealedCell(3), st.At(1, 1))
	assert.Equal(t, RevealedCell(2), st.At(1, 2))
	assert.Equal(t, Playing, st.Result)
	assert.Equal(t, 6, l.toReveal)
}

func TestFloodFillSkipsFlags(t *testing.T) {
	l := rigged(t, Custom(4, 4, 1), point{3, 3})
	require.True(t, l.ToggleFlag(0, 3))
	require.True(t, l.Reveal(0, 0))

	st := l.Snapshot()
	assert.Equal(t, Flagged, st.At(0, 3).Kind)
	assert.Equal(t, Unrevealed, st.At(3, 3).Kind)
	assert.Equal(t, RevealedCell(1), st.At(2, 2))
	assert.Equal(t, RevealedCell(1), st.At(3, 2))
	assert.Equal(t, RevealedCell(1), st.At(2, 3))
	assert.Equal(t, RevealedCell(0), st.At(1, 3))
	assert.Equal(t, Playing, st.Result)
	assert.Equal(t, 1, l.toReveal)

	// Unflag and finish.
	require.True(t, l.ToggleFlag(0, 3))
	require.True(t, l.Reveal(0, 3))
	assert.Equal(t, Win, l.Result())
}

func TestFloodFillWinsMidway(t *testing.T) {
	l := rigged(t, Custom(5, 5, 1), point{4, 4})
	require.True(t, l.Reveal(0, 0))
	assert.Equal(t, Win, l.Result())
	assert.Zero(t, l.toReveal)
	assert.Equal(t, Unrevealed, l.Snapshot().At(4, 4).Kind)
}

func TestCountdown(t *testing.T) {
	l := rigged(t, Custom(5, 3, 3), point{2, 0}, point{2, 1}, point{2, 2})
	start := l.toReveal
	require.True(t, l.Reveal(4, 1))
	revealed := 0
	for _, c := range l.Snapshot().Cells {
		if c.Kind == Revealed {
			revealed++
		}
	}
	assert.Equal(t, start-revealed, l.toReveal)
}

func TestTwoByTwoWinOnThirdReveal(t *testing.T) {
	s := Custom(2, 2, 1)
	for seed := uint64(0); seed < 50; seed++ {
		l := New(WithSetting(s), WithSeed(seed))
		require.True(t, l.Reveal(0, 0))
		require.Equal(t, Playing, l.Result())

		safe := 1
		for _, p := range []point{{1, 0}, {0, 1}, {1, 1}} {
			if l.mines[gridToIndex(2, p.x, p.y)] {
				continue
			}
			require.Equal(t, Playing, l.Result())
			require.True(t, l.Reveal(p.x, p.y))
			safe++
		}
		require.Equal(t, 3, safe)
		require.Equal(t, Win, l.Result(), "seed %d", seed)
	}
}

func TestLoseReclassifiesBoard(t *testing.T) {
	l := rigged(t, Custom(3, 3, 3), point{0, 0}, point{0, 2}, point{2, 2})
	require.True(t, l.ToggleFlag(0, 0)) // correct
	require.True(t, l.ToggleFlag(1, 0)) // wrong
	require.True(t, l.Reveal(2, 0))
	require.Equal(t, Playing, l.Result())

	require.True(t, l.Reveal(2, 2))
	st := l.Snapshot()
	assert.Equal(t, Lose, st.Result)
	assert.Equal(t, ExplodedMine, st.At(2, 2).Kind)
	assert.Equal(t, CorrectlyFlagged, st.At(0, 0).Kind)
	assert.Equal(t, IncorrectlyFlagged, st.At(1, 0).Kind)
	assert.Equal(t, Mine, st.At(0, 2).Kind)
	assert.Equal(t, RevealedCell(0), st.At(2, 0))
	assert.Equal(t, RevealedCell(3), st.At(1, 1))
	assert.Equal(t, RevealedCell(1), st.At(2, 1))
	assert.Equal(t, Unrevealed, st.At(0, 1).Kind)
	assert.Equal(t, Unrevealed, st.At(1, 2).Kind)
}

func TestTerminalGameIsFrozen(t *testing.T) {
	lost := rigged(t, Custom(3, 3, 1), point{1, 1})
	require.True(t, lost.Reveal(0, 0))
	require.True(t, lost.Reveal(1, 1))
	require.Equal(t, Lose, lost.Result())

	won := rigged(t, Custom(3, 3, 1), point{2, 2})
	require.True(t, won.Reveal(0, 0))
	require.Equal(t, Win, won.Result())

	for _, l := range []*Logic{lost, won} {
		before := l.Snapshot()
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				assert.False(t, l.Reveal(x, y))
				assert.False(t, l.ToggleFlag(x, y))
			}
		}
		assert.Equal(t, before, l.Snapshot())
	}
}

func TestToggleFlag(t *testing.T) {
	l := rigged(t, Custom(3, 2, 1), point{2, 1})
	require.True(t, l.ToggleFlag(1, 1))
	assert.Equal(t, Flagged, l.Snapshot().At(1, 1).Kind)
	require.True(t, l.ToggleFlag(1, 1))
	assert.Equal(t, Unrevealed, l.Snapshot().At(1, 1).Kind)

	// Flagging a revealed cell is accepted and ignored.
	require.True(t, l.Reveal(0, 0))
	before := l.Snapshot()
	assert.True(t, l.ToggleFlag(0, 0))
	assert.Equal(t, before, l.Snapshot())
}

func TestSnapshotIsCopy(t *testing.T) {
	l := New()
	st := l.Snapshot()
	st.Cells[0] = Cell{Kind: Mine}
	assert.Equal(t, Unrevealed, l.Snapshot().Cells[0].Kind)
}

func TestMinesLeft(t *testing.T) {
	l := New()
	require.True(t, l.ToggleFlag(0, 0))
	require.True(t, l.ToggleFlag(1, 0))
	st := l.Snapshot()
	assert.Equal(t, 2, st.FlagCount())
	assert.Equal(t, 8, st.MinesLeft())
}

func TestSurroundingOrder(t *testing.T) {
	l := New()
	assert.Equal(t, []point{{0, 1}, {1, 0}, {1, 1}}, l.surrounding(0, 0))
	assert.Len(t, l.surrounding(4, 4), 8)
	assert.Len(t, l.surrounding(8, 4), 5)
}

func TestStateJSON(t *testing.T) {
	l := rigged(t, Custom(2, 2, 1), point{1, 1})
	require.True(t, l.Reveal(0, 0))
	require.True(t, l.ToggleFlag(1, 1))
	b, err := json.Marshal(l.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"setting":{"difficulty":"custom","width":2,"height":2,"mineCount":1},
		"cells":[{"state":"revealed","adjacent":1},{"state":"unrevealed"},{"state":"unrevealed"},{"state":"flagged"}],
		"result":"playing"
	}`, string(b))
}
