package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"moviestream/internal/domain"
)

// SessionRegistry owns all WebSession values. Mutation goes through named
// setters that swap fields as one unit under the lock, so status readers and
// the broadcaster always observe a consistent snapshot.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.WebSession

	idleTimeout time.Duration
	logger      *slog.Logger

	// torrentAlive tells the janitor whether a session still references a
	// live download and must not be evicted.
	torrentAlive func(domain.TorrentID) bool
}

func NewSessionRegistry(idleTimeout time.Duration, torrentAlive func(domain.TorrentID) bool, logger *slog.Logger) *SessionRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRegistry{
		sessions:     make(map[domain.SessionID]*domain.WebSession),
		idleTimeout:  idleTimeout,
		logger:       logger,
		torrentAlive: torrentAlive,
	}
}

// GetOrCreate returns the session, creating it on first reference. Creation
// is idempotent: concurrent callers all end up with the same session.
func (r *SessionRegistry) GetOrCreate(id domain.SessionID) domain.WebSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		session = &domain.WebSession{
			ID:         id,
			Status:     domain.SessionReady,
			LastActive: time.Now().UTC(),
		}
		r.sessions[id] = session
	}
	session.LastActive = time.Now().UTC()
	return session.Clone()
}

func (r *SessionRegistry) Get(id domain.SessionID) (domain.WebSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.WebSession{}, domain.ErrNotFound
	}
	return session.Clone(), nil
}

// SetPlaying binds the session to a new torrent and movie. Concurrent play
// requests for the same session race last-writer-wins: the superseded
// readiness watch notices the binding change on its next tick and exits.
func (r *SessionRegistry) SetPlaying(id domain.SessionID, torrentID domain.TorrentID, movie domain.Movie) {
	snapshot := movie.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return
	}
	session.CurrentTorrentID = torrentID
	session.CurrentMovie = &snapshot
	session.Status = domain.SessionDownloading
	session.Progress = 0
	session.LastActive = time.Now().UTC()
}

// SetProgress updates progress and status as one unit. It is a no-op when the
// session is gone or has since been bound to a different torrent.
func (r *SessionRegistry) SetProgress(id domain.SessionID, torrentID domain.TorrentID, progress float64, status domain.SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.CurrentTorrentID != torrentID {
		return
	}
	session.Progress = progress
	// ready_to_play is sticky for the life of the binding: progress ticks
	// keep arriving after playback starts and must not demote the session.
	if session.Status == domain.SessionReadyToPlay && status == domain.SessionDownloading {
		status = domain.SessionReadyToPlay
	}
	session.Status = status
	session.LastActive = time.Now().UTC()
}

// CurrentTorrent reports the torrent the session is bound to right now. The
// readiness loop keys its lifetime off this value.
func (r *SessionRegistry) CurrentTorrent(id domain.SessionID) (domain.TorrentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return "", false
	}
	return session.CurrentTorrentID, true
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// RunJanitor evicts sessions idle longer than the configured timeout,
// skipping any session whose torrent is still live. Disabled when the
// timeout is zero.
func (r *SessionRegistry) RunJanitor(ctx context.Context) {
	if r.idleTimeout <= 0 {
		return
	}
	interval := r.idleTimeout / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle(time.Now().UTC())
		}
	}
}

func (r *SessionRegistry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if now.Sub(session.LastActive) < r.idleTimeout {
			continue
		}
		if session.CurrentTorrentID != "" && r.torrentAlive != nil && r.torrentAlive(session.CurrentTorrentID) {
			continue
		}
		delete(r.sessions, id)
		r.logger.Info("evicted idle session",
			slog.String("sessionId", string(id)),
			slog.Duration("idleTimeout", r.idleTimeout),
		)
	}
}
