// apps/go-server/internal/game/types.go
//
// Core type definitions for the Minesweeper rules engine.
// Defines:
//   - CellKind/Cell: per-cell state as seen by the player.
//   - Result: overall outcome of a game (playing/won/lost).
//   - State: immutable snapshot handed to renderers.

package game

import "encoding/json"

// CellKind is the closed set of states a cell can be in.
// Only Unrevealed, Flagged and Revealed occur while a game is being played;
// the remaining kinds appear once a mine has been hit.
type CellKind uint8

const (
	Unrevealed CellKind = iota
	Revealed
	Flagged
	Mine               // unflagged mine exposed after a loss
	ExplodedMine       // the mine that ended the game
	CorrectlyFlagged   // flagged and is a mine
	IncorrectlyFlagged // flagged but safe
)

var cellKindNames = [...]string{
	Unrevealed:         "unrevealed",
	Revealed:           "revealed",
	Flagged:            "flagged",
	Mine:               "mine",
	ExplodedMine:       "exploded",
	CorrectlyFlagged:   "correct_flag",
	IncorrectlyFlagged: "incorrect_flag",
}

func (k CellKind) String() string {
	if int(k) < len(cellKindNames) {
		return cellKindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k CellKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Cell is one grid position. Adjacent is the number of mines among the
// eight neighbours and is only meaningful when Kind == Revealed.
type Cell struct {
	Kind     CellKind
	Adjacent uint8
}

// RevealedCell builds a revealed cell with n neighbouring mines.
func RevealedCell(n int) Cell { return Cell{Kind: Revealed, Adjacent: uint8(n)} }

// MarshalJSON renders {"state":"revealed","adjacent":3}; adjacent is
// omitted for every kind other than Revealed.
func (c Cell) MarshalJSON() ([]byte, error) {
	type wire struct {
		State    CellKind `json:"state"`
		Adjacent *uint8   `json:"adjacent,omitempty"`
	}
	w := wire{State: c.Kind}
	if c.Kind == Revealed {
		n := c.Adjacent
		w.Adjacent = &n
	}
	return json.Marshal(w)
}

// Result reports the coarse state of a game.
type Result string

const (
	Playing Result = "playing"
	Win     Result = "won"
	Lose    Result = "lost"
)

// Terminal reports whether no further moves are accepted.
func (r Result) Terminal() bool { return r == Win || r == Lose }

// State is a read-only copy of a game; mutating it never affects the
// Logic it came from.
type State struct {
	Setting Setting `json:"setting"`
	Cells   []Cell  `json:"cells"`
	Result  Result  `json:"result"`
}

// At returns the cell at (x, y). Coordinates must be in range.
func (s State) At(x, y int) Cell { return s.Cells[y*s.Setting.Width()+x] }

// FlagCount counts cells currently carrying a flag, including the
// reclassified flags of a lost game.
func (s State) FlagCount() int {
	n := 0
	for _, c := range s.Cells {
		switch c.Kind {
		case Flagged, CorrectlyFlagged, IncorrectlyFlagged:
			n++
		}
	}
	return n
}

// MinesLeft is the classic mine counter: mines minus flags. It goes
// negative when the player over-flags.
func (s State) MinesLeft() int { return s.Setting.MineCount() - s.FlagCount() }
