package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "sheetstats_session"

// ErrSessionClosed is returned by sessions that expired or were shut down.
var ErrSessionClosed = errors.New("session closed")

// Session holds one browser's workbook and analyzer.
// The analyzer is not safe for concurrent use, so every access goes through Do.
type Session struct {
	ID string

	mu       sync.Mutex
	analyzer *sheetstats.Analyzer
	closed   bool
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session analyzer. It returns
// ErrSessionClosed without calling fn once the session is closed.
func (s *Session) Do(fn func(a *sheetstats.Analyzer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return fn(s.analyzer)
}

// Load makes wb the session workbook and returns its series names.
// wb is closed when the session does not take it.
func (s *Session) Load(wb *sheetstats.Workbook) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = wb.Close()
		return nil, ErrSessionClosed
	}
	if err := s.analyzer.Load(wb); err != nil {
		_ = wb.Close()
		return nil, err
	}
	return s.analyzer.SeriesNames()
}

func (s *Session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.analyzer.Close()
}

// SessionStore keeps sessions in memory and expires idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	opts     sheetstats.Options
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions analyze with opts.
func NewSessionStore(opts sheetstats.Options, ttl time.Duration, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		opts:     opts,
		logger:   logger.With(slog.String("component", "sessions")),
		now:      time.Now,
	}
}

// Get returns the live session named by the request cookie.
func (st *SessionStore) Get(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	sess.lastSeen = st.now()
	return sess, true
}

// GetOrCreate returns the request's session, starting a new one and setting
// its cookie when there is none.
func (st *SessionStore) GetOrCreate(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if sess, ok := st.Get(r); ok {
		return sess, nil
	}

	analyzer, err := sheetstats.NewAnalyzer(st.opts)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:       uuid.New().String(),
		analyzer: analyzer,
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	st.logger.DebugContext(r.Context(), "session created", slog.String("session", sess.ID))
	return sess, nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes and removes sessions idle for longer than the TTL.
func (st *SessionStore) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		if err := sess.close(); err != nil {
			st.logger.Warn("failed to close session workbook",
				slog.String("session", sess.ID),
				slog.String("error", err.Error()))
		}
	}
	if len(expired) > 0 {
		st.logger.Info("sessions expired", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is done, then closes all of them.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.CloseAll()
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// CloseAll closes every session.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.close()
	}
}
