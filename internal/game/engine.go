// apps/go-server/internal/game/engine.go
//
// Core rules engine for a single Minesweeper board.
// Responsibilities:
//   - Hold the grid (row-major, index = y*width + x) and the game result.
//   - Place mines lazily on the first reveal so the first click is always safe.
//   - Reveal cells, flood-filling connected zero-count regions.
//   - Toggle flags and reclassify the board when a mine is hit.
//
// Notes:
//   - Logic is not safe for concurrent use; callers serialise access
//     (see store.Session).
//   - Every operation reports success as a bool; no input panics.
package game

import (
	"math/rand/v2"
)

// Logic is the game state machine: playing → won | lost, reset by Restart.
type Logic struct {
	setting Setting
	cells   []Cell
	// mines is nil until the first reveal places them.
	mines    []bool
	toReveal int
	result   Result
	rng      *rand.Rand
}

// Option configures a Logic at construction time.
type Option func(*Logic)

// WithRand injects the source used for mine placement.
func WithRand(r *rand.Rand) Option {
	return func(l *Logic) {
		if r != nil {
			l.rng = r
		}
	}
}

// WithSeed makes mine placement reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithSetting starts the first game on s instead of Easy. An invalid
// setting is ignored.
func WithSetting(s Setting) Option {
	return func(l *Logic) {
		if s.Validate() {
			l.setting = s
		}
	}
}

// New returns a fresh game on the Easy preset.
func New(opts ...Option) *Logic {
	l := &Logic{setting: Easy}
	for _, o := range opts {
		o(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	l.reset(l.setting)
	return l
}

// Restart begins a new game in place. A nil setting reuses the current
// one. An invalid setting leaves the game untouched and returns false.
func (l *Logic) Restart(setting *Setting) bool {
	s := l.setting
	if setting != nil {
		s = *setting
	}
	if !s.Validate() {
		return false
	}
	l.reset(s)
	return true
}

func (l *Logic) reset(s Setting) {
	n := s.Cells()
	l.setting = s
	l.cells = make([]Cell, n)
	l.mines = nil
	l.toReveal = n - s.MineCount()
	l.result = Playing
}

// Setting returns the active setting.
func (l *Logic) Setting() Setting { return l.setting }

// Result returns the current outcome.
func (l *Logic) Result() Result { return l.result }

// Snapshot copies the board for rendering.
func (l *Logic) Snapshot() State {
	cells := make([]Cell, len(l.cells))
	copy(cells, l.cells)
	return State{Setting: l.setting, Cells: cells, Result: l.result}
}

// index maps (x, y) to a cell index, reporting false when the coordinate
// lies outside the board.
func (l *Logic) index(x, y int) (int, bool) {
	w, h := l.setting.Width(), l.setting.Height()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, false
	}
	return gridToIndex(w, x, y), true
}

func gridToIndex(width, x, y int) int { return y*width + x }

type point struct{ x, y int }

// surrounding lists the in-bounds neighbours of (x, y). The order is
// fixed: dx outer, dy inner, both from -1 to 1.
func (l *Logic) surrounding(x, y int) []point {
	w, h := l.setting.Width(), l.setting.Height()
	out := make([]point, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			out = append(out, point{nx, ny})
		}
	}
	return out
}

// Reveal opens the cell at (x, y).
//
// It returns false without changing anything when the game is over, the
// coordinate is off the board, or the cell is not Unrevealed. Otherwise:
//   - the first reveal places the mines, never under (x, y);
//   - a mine loses the game and exposes the board;
//   - a safe cell shows its neighbour count, and a zero spreads to every
//     neighbour until the region is bounded by numbers, flags or edges;
//   - revealing the last safe cell wins, stopping any further spread.
func (l *Logic) Reveal(x, y int) bool {
	if l.result != Playing {
		return false
	}
	idx, ok := l.index(x, y)
	if !ok || l.cells[idx].Kind != Unrevealed {
		return false
	}
	if l.mines == nil {
		l.placeMines(idx)
	}
	if l.mines[idx] {
		l.explode(idx)
		return true
	}

	// Depth-first worklist; equivalent to recursing on each neighbour of
	// a zero cell, without the stack depth.
	stack := []point{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i := gridToIndex(l.setting.Width(), p.x, p.y)
		if l.cells[i].Kind != Unrevealed || l.mines[i] {
			continue
		}
		around := l.surrounding(p.x, p.y)
		n := 0
		for _, q := range around {
			if l.mines[gridToIndex(l.setting.Width(), q.x, q.y)] {
				n++
			}
		}
		l.cells[i] = RevealedCell(n)
		l.toReveal--
		if l.toReveal == 0 {
			l.result = Win
			return true
		}
		if n != 0 {
			continue
		}
		// Push in reverse so neighbours are visited in surrounding order.
		for j := len(around) - 1; j >= 0; j-- {
			stack = append(stack, around[j])
		}
	}
	return true
}

// placeMines chooses MineCount distinct cells uniformly from every cell
// except excluded. A partial Fisher–Yates shuffle runs over the dense
// range [0, cells-1); values at or above excluded shift up by one.
func (l *Logic) placeMines(excluded int) {
	n := l.setting.Cells()
	k := l.setting.MineCount()
	pool := make([]int, n-1)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + l.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	l.mines = make([]bool, n)
	for _, v := range pool[:k] {
		if v >= excluded {
			v++
		}
		l.mines[v] = true
	}
}

// explode ends the game on the mine at idx and reclassifies every other
// hidden or flagged cell for display.
func (l *Logic) explode(idx int) {
	l.result = Lose
	for i := range l.cells {
		if i == idx {
			l.cells[i] = Cell{Kind: ExplodedMine}
			continue
		}
		switch l.cells[i].Kind {
		case Unrevealed:
			if l.mines[i] {
				l.cells[i] = Cell{Kind: Mine}
			}
		case Flagged:
			if l.mines[i] {
				l.cells[i] = Cell{Kind: CorrectlyFlagged}
			} else {
				l.cells[i] = Cell{Kind: IncorrectlyFlagged}
			}
		}
	}
}

// ToggleFlag flips a hidden cell between Unrevealed and Flagged. It fails
// only when the game is over or (x, y) is off the board; on any other
// cell it succeeds without effect.
func (l *Logic) ToggleFlag(x, y int) bool {
	if l.result != Playing {
		return false
	}
	idx, ok := l.index(x, y)
	if !ok {
		return false
	}
	switch l.cells[idx].Kind {
	case Unrevealed:
		l.cells[idx] = Cell{Kind: Flagged}
	case Flagged:
		l.cells[idx] = Cell{Kind: Unrevealed}
	}
	return true
}
