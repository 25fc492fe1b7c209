package domain

import (
	"errors"
	"time"
)

type TorrentID string

type TorrentRecord struct {
	ID           TorrentID         `json:"id"`
	Source       TorrentDescriptor `json:"-"`
	Status       TorrentStatus     `json:"status"`
	Progress     float64           `json:"progress"`
	DownloadRate int64             `json:"downloadRate"`
	UploadRate   int64             `json:"uploadRate"`
	Peers        int               `json:"peers"`
	Files        []FileEntry       `json:"files"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Clone returns a copy safe to hand to readers while the original keeps
// mutating under the store lock.
func (r TorrentRecord) Clone() TorrentRecord {
	out := r
	if r.Files != nil {
		out.Files = make([]FileEntry, len(r.Files))
		copy(out.Files, r.Files)
	}
	return out
}

// Validate checks domain invariants for TorrentRecord.
func (r TorrentRecord) Validate() error {
	if r.ID == "" {
		return errors.New("torrent id is required")
	}
	if r.Progress < 0 || r.Progress > 100 {
		return errors.New("progress must be within 0..100")
	}
	if r.DownloadRate < 0 || r.UploadRate < 0 {
		return errors.New("transfer rates must not be negative")
	}
	if r.Peers < 0 {
		return errors.New("peer count must not be negative")
	}
	switch r.Status {
	case TorrentDownloading, TorrentPaused, TorrentCompleted, TorrentError:
		// valid
	case "":
		return errors.New("status is required")
	default:
		return errors.New("invalid status: " + string(r.Status))
	}
	return nil
}
