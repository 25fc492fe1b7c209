package ports

import (
	"context"

	"moviestream/internal/domain"
)

// StatusSnapshot is one poll of the transfer engine for a torrent. Progress
// is a percentage in 0..100; rates are bytes per second.
type StatusSnapshot struct {
	Progress     float64
	DownloadRate int64
	UploadRate   int64
	Peers        int
	Finished     bool
}

// Engine wraps the opaque peer-to-peer transfer capability. Operations are
// safe to call concurrently for different ids; calls for the same id must be
// serialized by the caller (the torrent store hands out a per-id lock).
type Engine interface {
	// Start begins transferring the described content and returns a stable
	// content-derived torrent id. Fails with domain.ErrEngineUnavailable when
	// the capability is absent and domain.ErrStartFailed when the engine
	// rejects the descriptor.
	Start(ctx context.Context, desc domain.TorrentDescriptor) (domain.TorrentID, error)
	Status(ctx context.Context, id domain.TorrentID) (StatusSnapshot, error)
	// ListFiles may return an empty list for an arbitrary period before the
	// engine has resolved torrent metadata.
	ListFiles(ctx context.Context, id domain.TorrentID) ([]domain.FileEntry, error)
	SetFilePriority(ctx context.Context, id domain.TorrentID, fileIndex int, prio domain.FilePriority) error
	Pause(ctx context.Context, id domain.TorrentID) error
	Resume(ctx context.Context, id domain.TorrentID) error
	Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error
	// Available reports whether the underlying capability exists. Handlers use
	// it only for the streaming_available flag; control flow relies on the
	// ErrEngineUnavailable error instead.
	Available() bool
	Close() error
}
