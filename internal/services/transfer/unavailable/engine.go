// Package unavailable is the transfer engine selected when the real torrent
// capability could not be initialized at startup. Every operation reports
// domain.ErrEngineUnavailable so the service degrades to metadata browsing
// instead of failing at call sites.
package unavailable

import (
	"context"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Start(ctx context.Context, desc domain.TorrentDescriptor) (domain.TorrentID, error) {
	return "", domain.ErrEngineUnavailable
}

func (e *Engine) Status(ctx context.Context, id domain.TorrentID) (ports.StatusSnapshot, error) {
	return ports.StatusSnapshot{}, domain.ErrEngineUnavailable
}

func (e *Engine) ListFiles(ctx context.Context, id domain.TorrentID) ([]domain.FileEntry, error) {
	return nil, domain.ErrEngineUnavailable
}

func (e *Engine) SetFilePriority(ctx context.Context, id domain.TorrentID, fileIndex int, prio domain.FilePriority) error {
	return domain.ErrEngineUnavailable
}

func (e *Engine) Pause(ctx context.Context, id domain.TorrentID) error {
	return domain.ErrEngineUnavailable
}

func (e *Engine) Resume(ctx context.Context, id domain.TorrentID) error {
	return domain.ErrEngineUnavailable
}

func (e *Engine) Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	return domain.ErrEngineUnavailable
}

func (e *Engine) Available() bool { return false }

func (e *Engine) Close() error { return nil }
