// apps/go-server/internal/httpserver/history.go
//
// Durable game history for the Minesweeper backend.
// Responsibilities:
//   - One games row per session, rewritten on restart.
//   - Move counter and final status on every accepted move.
//   - User win/played counters and the daily result when a game ends.
//
// History writes are best effort: a failure is logged and the move
// still succeeds, since the live game is in memory. They run outside the
// session lock and may land out of order; the stored move count only
// ever grows.

package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/daily"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/store"
)

// recordStart inserts the games row for a new session.
func (s *Server) recordStart(r *http.Request, sess *store.Session, setting game.Setting) {
	userID, anonID := sql.NullString{}, sql.NullString{}
	if me := userFrom(r.Context()); me != nil && me.ID == sess.OwnerID {
		userID = sql.NullString{String: me.ID, Valid: true}
	} else {
		anonID = sql.NullString{String: sess.OwnerID, Valid: true}
	}
	_, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, user_id, anonymous_id, difficulty, width, height, mine_count, started_at, status, moves)
		 VALUES (?,?,?,?,?,?,?,?,?,0)`,
		sess.ID, userID, anonID, string(setting.Difficulty()), setting.Width(), setting.Height(), setting.MineCount(),
		nowRFC3339(), string(game.Playing))
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert game row")
	}
}

// recordRestart points the games row at the new board.
func (s *Server) recordRestart(r *http.Request, sess *store.Session, setting game.Setting) {
	_, err := s.db.ExecContext(r.Context(),
		`UPDATE games SET difficulty=?, width=?, height=?, mine_count=?, started_at=?, finished_at=NULL, status=?, moves=0
		 WHERE id=?`,
		string(setting.Difficulty()), setting.Width(), setting.Height(), setting.MineCount(),
		nowRFC3339(), string(game.Playing), sess.ID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("restart game row")
	}
}

// recordMove bumps the move counter and, on the move that ended the
// game, stamps the outcome, user stats and the daily result.
func (s *Server) recordMove(r *http.Request, sess *store.Session, before, after game.Result, moves int) {
	ctx := r.Context()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin move tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET moves=MAX(moves, ?) WHERE id=?`, moves, sess.ID); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("update moves")
	}

	finished := before == game.Playing && after.Terminal()
	if finished {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET status=?, finished_at=? WHERE id=?`,
			string(after), nowRFC3339(), sess.ID); err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID).Msg("finish game")
		}
		if me := userFrom(ctx); me != nil {
			if err := bumpStats(ctx, tx, me.ID, after == game.Win); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit move tx")
	}

	if finished && sess.DailyDate != "" {
		if err := s.daily.InsertResult(ctx, daily.Result{
			UserID: sess.OwnerID, Date: sess.DailyDate, Result: string(after), Moves: moves,
		}); err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert daily result")
		}
	}
	if finished {
		log.Info().Str("gameId", sess.ID).Str("result", string(after)).Int("moves", moves).Msg("game finished")
	}
}

// bumpStats increments games played and, on a win, wins (within tx).
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	wins := 0
	if won {
		wins = 1
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played = games_played + 1, wins = wins + ? WHERE id=?`, wins, userID)
	return err
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }
