// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Board" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new     → start today's board (creates or reuses session)
//   - GET  /daily/summary → win/loss counts for today (or a given date)
//
// Moves on a daily board go through the regular /game/reveal and
// /game/flag routes; the finishing move records the daily result.
// Each player gets one daily board per date (enforced by DB + in-memory
// session map). Mine placement is seeded from date + salt. Map entries for
// past dates are dropped whenever a new board is handed out.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/daily"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/store"
)

// dailyKey identifies one player's board for one date.
type dailyKey struct{ owner, date string }

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	sessions map[dailyKey]string // session ID
	mu       sync.Mutex          // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{srv: s, sessions: make(map[dailyKey]string)}
	s.dailyRoutes = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/summary", dd.handleSummary)
	})
}

// newRes is returned by /daily/new.
type newRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	State  *stateView `json:"state,omitempty"`
}

// handleNew creates or reuses today's board.
//   - A persisted result for today → Played=true.
//   - An in-progress session → same GameID.
//   - Otherwise a new seeded session.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	s := d.srv
	owner := s.ownerID(w, r)
	now := s.now()
	date := daily.DateKey(now)

	played, err := s.daily.AlreadyPlayed(r.Context(), owner, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		fail(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		_ = json.NewEncoder(w).Encode(newRes{Date: date, Played: true})
		return
	}

	key := dailyKey{owner: owner, date: date}
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.sessions[key]; ok {
		if sess, err := s.store.Get(r.Context(), id); err == nil {
			st := viewOf(sess.Snapshot())
			if st.Result.Terminal() {
				_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, Played: true, State: &st})
				return
			}
			_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, State: &st})
			return
		}
		delete(d.sessions, key)
	}

	setting := s.cfg.DailySetting
	logic := game.New(game.WithSetting(setting), game.WithSeed(daily.Seed(now, s.cfg.DailySalt)))
	sess := store.NewSession(owner, logic)
	sess.DailyDate = date
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save daily session")
		fail(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.pruneLocked(date)
	d.sessions[key] = sess.ID
	s.recordStart(r, sess, setting)

	st := viewOf(sess.Snapshot())
	_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, State: &st})
}

// handleSummary returns win/loss counts for the given date (default today).
func (d *dailyServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	sum, err := d.srv.daily.Summary(r.Context(), date)
	if err != nil {
		fail(w, http.StatusInternalServerError, "server_error")
		return
	}
	_ = json.NewEncoder(w).Encode(sum)
}

// prune forgets every board not dated today.
func (d *dailyServer) prune(today string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked(today)
}

func (d *dailyServer) pruneLocked(today string) {
	for k := range d.sessions {
		if k.date != today {
			delete(d.sessions, k)
		}
	}
}
