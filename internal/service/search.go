package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chaekjang/chaekjang-server/internal/errors"
	"github.com/chaekjang/chaekjang-server/internal/pagination"
)

// SearchService owns search sessions: creation, lookup, and last-access
// expiry. Each session gets its own accumulator and debouncer over the
// shared provider client.
type SearchService struct {
	searcher pagination.Searcher
	liked    *LikedBookService
	history  *HistoryService
	cfg      SessionConfig
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	done     chan struct{}
	stopOnce sync.Once
}

// NewSearchService creates the session manager and starts its expiry
// sweeper. Callers must Close it to stop the sweeper.
func NewSearchService(searcher pagination.Searcher, liked *LikedBookService, history *HistoryService, cfg SessionConfig, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}

	s := &SearchService{
		searcher: searcher,
		liked:    liked,
		history:  history,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// CreateSession starts a new search session and returns it.
func (s *SearchService) CreateSession(_ context.Context) *Session {
	id := gonanoid.Must()
	session := newSession(id, s.searcher, s.liked, s.history, s.cfg, s.logger)

	s.mu.Lock()
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("search session created", "session_id", id, "active_sessions", count)
	return session
}

// Session looks up a session by ID and refreshes its expiry clock.
func (s *SearchService) Session(id string) (*Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, errors.NotFound("unknown search session")
	}
	session.touch()
	return session, nil
}

// RemoveSession closes and forgets a session. Removing an unknown ID is
// a no-op.
func (s *SearchService) RemoveSession(id string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		session.Close()
	}
}

// Close stops the expiry sweeper and closes every session.
func (s *SearchService) Close() {
	s.stopOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (s *SearchService) sweep() {
	interval := s.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.expireSessions(now)
		}
	}
}

func (s *SearchService) expireSessions(now time.Time) {
	var expired []*Session

	s.mu.Lock()
	for id, session := range s.sessions {
		if session.expired(s.cfg.TTL, now) {
			delete(s.sessions, id)
			expired = append(expired, session)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
		s.logger.Debug("search session expired", "session_id", session.ID)
	}
}
