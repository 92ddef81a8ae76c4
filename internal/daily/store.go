package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily board.
type Result struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Result string `json:"result"` // "won" | "lost"
	Moves  int    `json:"moves"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished board; a second result for the same
// user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, result, moves)
		 VALUES(?,?,?,?)`, r.UserID, r.Date, r.Result, r.Moves,
	)
	return err
}

// Summary counts wins and losses for a date.
type Summary struct {
	Date   string `json:"date"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

func (s *Store) Summary(ctx context.Context, date string) (Summary, error) {
	out := Summary{Date: date}
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(result='won'),0), COALESCE(SUM(result='lost'),0)
		 FROM daily_results WHERE date=?`, date,
	).Scan(&out.Wins, &out.Losses)
	return out, err
}
