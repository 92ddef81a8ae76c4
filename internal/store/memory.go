// apps/go-server/internal/store/memory.go
//
// In-memory session store for active Minesweeper games.
// A session lives only as long as the process; durable history goes to
// SQLite through the httpserver package.
//
// Characteristics:
//   - Stores *Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Each Session serialises access to its engine with its own mutex.
//   - Errors are returned for missing session IDs on Get() and Delete().
//   - Prune() drops sessions nobody has touched since a cutoff.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/robalobadob/minesweeper/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Session owns one engine. The engine is single-writer, so every access
// goes through Do.
type Session struct {
	ID        string
	OwnerID   string    // user id or anonymous id; empty when unknown
	DailyDate string    // YYYY-MM-DD for daily boards, empty otherwise
	CreatedAt time.Time

	// Moves counts accepted moves since the last restart. Guarded by Do.
	Moves int

	mu       sync.Mutex
	logic    *game.Logic
	lastUsed time.Time
}

// NewSession wraps logic in a session with a fresh ID.
func NewSession(ownerID string, logic *game.Logic) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        xid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		logic:     logic,
		lastUsed:  now,
	}
}

// Do runs fn with exclusive access to the engine.
func (s *Session) Do(fn func(l *game.Logic)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now().UTC()
	fn(s.logic)
}

// LastUsed is the time of the most recent Do.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Snapshot is a locked shorthand for Logic.Snapshot.
func (s *Session) Snapshot() game.State {
	var st game.State
	s.Do(func(l *game.Logic) { st = l.Snapshot() })
	return st
}

// Store defines the persistence interface for game sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete drops a session, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Prune drops every session last used before cutoff and reports how
	// many went.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session without id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
