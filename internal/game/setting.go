// apps/go-server/internal/game/setting.go
//
// Board configurations: three built-in presets and validated custom sizes.

package game

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// Difficulty names a Setting variant.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyCustom Difficulty = "custom"
)

const (
	easyWidth, easyHeight, easyMines       = 9, 9, 10
	mediumWidth, mediumHeight, mediumMines = 16, 16, 40
	hardWidth, hardHeight, hardMines       = 30, 16, 99
)

// ErrInvalidSetting is returned by ParseSetting for unknown difficulties
// and custom boards that fail Validate.
var ErrInvalidSetting = errors.New("invalid setting")

// Setting describes grid dimensions and mine count. The zero value is not
// a usable setting; start from Easy, Medium, Hard or Custom.
type Setting struct {
	difficulty Difficulty
	width      int
	height     int
	mineCount  int
}

var (
	Easy   = Setting{difficulty: DifficultyEasy}
	Medium = Setting{difficulty: DifficultyMedium}
	Hard   = Setting{difficulty: DifficultyHard}
)

// Custom returns an unvalidated custom setting.
func Custom(width, height, mineCount int) Setting {
	return Setting{difficulty: DifficultyCustom, width: width, height: height, mineCount: mineCount}
}

// ParseSetting maps a difficulty name to a Setting. The dimensions are
// only consulted for "custom". An empty name selects Easy.
func ParseSetting(difficulty string, width, height, mineCount int) (Setting, error) {
	var s Setting
	switch Difficulty(strings.ToLower(strings.TrimSpace(difficulty))) {
	case "", DifficultyEasy:
		s = Easy
	case DifficultyMedium:
		s = Medium
	case DifficultyHard:
		s = Hard
	case DifficultyCustom:
		s = Custom(width, height, mineCount)
	default:
		return Setting{}, ErrInvalidSetting
	}
	if !s.Validate() {
		return Setting{}, ErrInvalidSetting
	}
	return s, nil
}

func (s Setting) Difficulty() Difficulty { return s.difficulty }

func (s Setting) Width() int {
	switch s.difficulty {
	case DifficultyEasy:
		return easyWidth
	case DifficultyMedium:
		return mediumWidth
	case DifficultyHard:
		return hardWidth
	}
	return s.width
}

func (s Setting) Height() int {
	switch s.difficulty {
	case DifficultyEasy:
		return easyHeight
	case DifficultyMedium:
		return mediumHeight
	case DifficultyHard:
		return hardHeight
	}
	return s.height
}

func (s Setting) MineCount() int {
	switch s.difficulty {
	case DifficultyEasy:
		return easyMines
	case DifficultyMedium:
		return mediumMines
	case DifficultyHard:
		return hardMines
	}
	return s.mineCount
}

// Cells is Width()*Height().
func (s Setting) Cells() int { return s.Width() * s.Height() }

// Validate reports whether the setting can be played. Presets always pass;
// a custom board needs both sides > 1, a cell count that fits in an int,
// and 1 <= mines < cells.
func (s Setting) Validate() bool {
	switch s.difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	case DifficultyCustom:
		if s.width <= 1 || s.height <= 1 || s.width > math.MaxInt/s.height {
			return false
		}
		return s.mineCount >= 1 && s.mineCount < s.width*s.height
	}
	return false
}

type settingJSON struct {
	Difficulty Difficulty `json:"difficulty"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	MineCount  int        `json:"mineCount"`
}

// MarshalJSON always includes the derived dimensions so clients never
// need their own preset table.
func (s Setting) MarshalJSON() ([]byte, error) {
	return json.Marshal(settingJSON{
		Difficulty: s.difficulty,
		Width:      s.Width(),
		Height:     s.Height(),
		MineCount:  s.MineCount(),
	})
}

// UnmarshalJSON accepts the MarshalJSON shape; it does not validate.
func (s *Setting) UnmarshalJSON(b []byte) error {
	var w settingJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Difficulty {
	case DifficultyEasy:
		*s = Easy
	case DifficultyMedium:
		*s = Medium
	case DifficultyHard:
		*s = Hard
	default:
		*s = Setting{difficulty: w.Difficulty, width: w.Width, height: w.Height, mineCount: w.MineCount}
	}
	return nil
}
