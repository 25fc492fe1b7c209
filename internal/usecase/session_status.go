package usecase

import (
	"context"
	"errors"

	"moviestream/internal/domain"
	"moviestream/internal/store"
)

// SessionStatus reads the combined session + torrent view the frontend polls.
type SessionStatus struct {
	Sessions *store.SessionRegistry
	Torrents *store.TorrentStore
}

// SessionStatusView pairs a session snapshot with its torrent record, when
// one is bound and still alive.
type SessionStatusView struct {
	Session domain.WebSession
	Torrent *domain.TorrentRecord
}

// Execute never fails for an unknown session: sessions are created on first
// reference with a clean ready state. A stale torrent reference on the
// session simply yields a view with no torrent.
func (uc SessionStatus) Execute(ctx context.Context, sessionID domain.SessionID) (SessionStatusView, error) {
	session := uc.Sessions.GetOrCreate(sessionID)
	view := SessionStatusView{Session: session}

	if session.CurrentTorrentID == "" {
		return view, nil
	}

	record, err := uc.Torrents.Get(session.CurrentTorrentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return view, nil
		}
		return SessionStatusView{}, err
	}
	view.Torrent = &record
	return view, nil
}
