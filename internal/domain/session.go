package domain

import "time"

type SessionID string

// WebSession is a user-facing unit of "currently watching/downloading" state,
// keyed by an opaque client-supplied identifier. CurrentTorrentID is a weak
// reference: the record it names may already have been removed, and readers
// must treat that as "not found".
type WebSession struct {
	ID               SessionID     `json:"sessionId"`
	Status           SessionStatus `json:"status"`
	CurrentTorrentID TorrentID     `json:"currentTorrentId,omitempty"`
	CurrentMovie     *Movie        `json:"currentMovie,omitempty"`
	Progress         float64       `json:"progress"`
	LastActive       time.Time     `json:"-"`
}

// Clone returns a snapshot copy; the movie pointer is deep-copied so callers
// can never observe a partially updated session.
func (s WebSession) Clone() WebSession {
	out := s
	if s.CurrentMovie != nil {
		movie := s.CurrentMovie.Clone()
		out.CurrentMovie = &movie
	}
	return out
}
