// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Minesweeper backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): new, get, reveal, flag, restart.
//   - Daily board endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: see auth.go.
//
// Notes:
//   - The engine reports every move as a bool; a refused move is HTTP 200
//     with "ok": false, never an error status.
//   - Sessions are owned by a user id or an anonymous cookie id; a game is
//     only visible to its owner.
//   - Custom boards are capped at cfg.MaxCells; idle sessions are swept
//     after cfg.SessionTTL while Run is serving.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/config"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/daily"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
	"github.com/robalobadob/minesweeper/apps/go-server/internal/store"
)

// Server bundles router, in-memory session store, and DB handle.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	daily *daily.Store
	cfg   config.Config
	now   func() time.Time

	dailyRoutes *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg config.Config) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		db:    db,
		daily: daily.NewStore(db),
		cfg:   cfg,
		now:   time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(limitBody(maxBodyBytes))         // cap request bodies
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFor(cfg.ClientOrigin))       // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"minesweeper-go","endpoints":["/health","POST /game/new","GET /game/{id}","POST /game/reveal","POST /game/flag","POST /game/restart","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Get("/game/{id}", s.handleGetGame)
		r.Post("/game/reveal", s.handleMove(func(l *game.Logic, x, y int) bool { return l.Reveal(x, y) }))
		r.Post("/game/flag", s.handleMove(func(l *game.Logic, x, y int) bool { return l.ToggleFlag(x, y) }))
		r.Post("/game/restart", s.handleRestart)

		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		failWith(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(sweepEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				s.sweep(ctx, time.Now().Add(-s.cfg.SessionTTL))
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

const sweepEvery = 10 * time.Minute

// sweep drops sessions idle since cutoff and daily entries from past dates.
func (s *Server) sweep(ctx context.Context, cutoff time.Time) {
	n, err := s.store.Prune(ctx, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("prune sessions")
		return
	}
	s.dailyRoutes.prune(daily.DateKey(s.now()))
	if n > 0 {
		log.Info().Int("sessions", n).Msg("pruned idle sessions")
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ views --------------------------------------

// stateView is the wire form of a snapshot.
type stateView struct {
	game.State
	MinesLeft int `json:"minesLeft"`
}

func viewOf(st game.State) stateView { return stateView{State: st, MinesLeft: st.MinesLeft()} }

type gameRes struct {
	GameID string    `json:"gameId"`
	State  stateView `json:"state"`
}

type moveRes struct {
	OK    bool      `json:"ok"`
	State stateView `json:"state"`
}

// ------------------------------ GAME ---------------------------------------

// settingReq carries an optional board choice. Dimensions are read only
// for "custom".
type settingReq struct {
	Difficulty string `json:"difficulty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MineCount  int    `json:"mineCount"`
}

type newGameReq struct {
	settingReq
	Seed *uint64 `json:"seed"` // honoured only with ALLOW_SEED
}

// handleNewGame creates a session and records its history row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(w, http.StatusBadRequest, "bad_json")
		return
	}
	setting, err := game.ParseSetting(req.Difficulty, req.Width, req.Height, req.MineCount)
	if err != nil || !s.fits(setting) {
		fail(w, http.StatusBadRequest, "invalid_setting")
		return
	}
	opts := []game.Option{game.WithSetting(setting)}
	if req.Seed != nil && s.cfg.AllowSeed {
		opts = append(opts, game.WithSeed(*req.Seed))
	}

	sess := store.NewSession(s.ownerID(w, r), game.New(opts...))
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		fail(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.recordStart(r, sess, setting)

	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: viewOf(sess.Snapshot())})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: viewOf(sess.Snapshot())})
}

type moveReq struct {
	GameID string `json:"gameId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// handleMove applies a reveal or flag and persists progress when the
// engine accepted it.
func (s *Server) handleMove(apply func(l *game.Logic, x, y int) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, http.StatusBadRequest, "bad_json")
			return
		}
		sess, found := s.session(w, r, req.GameID)
		if !found {
			return
		}

		var (
			ok     bool
			before game.Result
			moves  int
			st     game.State
		)
		sess.Do(func(l *game.Logic) {
			before = l.Result()
			ok = apply(l, req.X, req.Y)
			if ok {
				sess.Moves++
			}
			moves = sess.Moves
			st = l.Snapshot()
		})
		if ok {
			s.recordMove(r, sess, before, st.Result, moves)
		}
		_ = json.NewEncoder(w).Encode(moveRes{OK: ok, State: viewOf(st)})
	}
}

type restartReq struct {
	GameID string `json:"gameId"`
	settingReq
}

// handleRestart resets a game in place. Without a difficulty the current
// setting is reused; an invalid custom board is refused with ok=false.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req restartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, found := s.session(w, r, req.GameID)
	if !found {
		return
	}
	if sess.DailyDate != "" {
		fail(w, http.StatusConflict, "daily_locked")
		return
	}

	var next *game.Setting
	if req.Difficulty != "" {
		ns, err := settingFor(req.settingReq)
		if err != nil || !s.fits(ns) {
			fail(w, http.StatusBadRequest, "invalid_setting")
			return
		}
		next = &ns
	}

	var (
		ok bool
		st game.State
	)
	sess.Do(func(l *game.Logic) {
		ok = l.Restart(next)
		if ok {
			sess.Moves = 0
		}
		st = l.Snapshot()
	})
	if ok {
		s.recordRestart(r, sess, st.Setting)
	}
	_ = json.NewEncoder(w).Encode(moveRes{OK: ok, State: viewOf(st)})
}

// settingFor resolves a difficulty name without validating custom
// dimensions; the engine decides whether they are playable.
func settingFor(req settingReq) (game.Setting, error) {
	switch game.Difficulty(strings.ToLower(strings.TrimSpace(req.Difficulty))) {
	case game.DifficultyEasy:
		return game.Easy, nil
	case game.DifficultyMedium:
		return game.Medium, nil
	case game.DifficultyHard:
		return game.Hard, nil
	case game.DifficultyCustom:
		return game.Custom(req.Width, req.Height, req.MineCount), nil
	}
	return game.Setting{}, game.ErrInvalidSetting
}

// fits reports whether a board is within the configured cell limit.
// Non-positive sides pass here and are left to the engine to refuse.
func (s *Server) fits(st game.Setting) bool {
	w, h := st.Width(), st.Height()
	if w <= 0 || h <= 0 {
		return true
	}
	return w <= s.cfg.MaxCells/h
}

// ---------------------------- ownership ------------------------------------

// ownerID is the user id when signed in, else the anonymous cookie id.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r.Context()); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// owns reports whether the requester may act on sess. An anonymous
// cookie keeps working after login, so games started as a guest stay
// playable.
func (s *Server) owns(r *http.Request, sess *store.Session) bool {
	if me := userFrom(r.Context()); me != nil && me.ID == sess.OwnerID {
		return true
	}
	c, err := r.Cookie(anonCookieName)
	return err == nil && c.Value != "" && c.Value == sess.OwnerID
}

// session loads a session the requester owns, writing a 404 otherwise.
func (s *Server) session(w http.ResponseWriter, r *http.Request, id string) (*store.Session, bool) {
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("gameId", id).Msg("load session")
		}
		fail(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if !s.owns(r, sess) {
		fail(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}
