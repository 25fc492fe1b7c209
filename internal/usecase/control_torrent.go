package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/store"
)

// ControlTorrent serves the explicit pause/resume/remove operations. Every
// engine call runs under the per-id op lock so it never interleaves with the
// monitor's poll for the same torrent.
type ControlTorrent struct {
	Engine   ports.Engine
	Torrents *store.TorrentStore
	Logger   *slog.Logger
}

func (uc ControlTorrent) Pause(ctx context.Context, id domain.TorrentID) error {
	lock := uc.Torrents.OpLock(id)
	lock.Lock()
	defer lock.Unlock()

	if !uc.Torrents.Has(id) {
		return domain.ErrNotFound
	}
	if err := uc.Engine.Pause(ctx, id); err != nil {
		return err
	}
	return uc.Torrents.Update(id, func(r *domain.TorrentRecord) {
		r.Status = domain.TorrentPaused
		r.DownloadRate = 0
		r.UpdatedAt = time.Now().UTC()
	})
}

func (uc ControlTorrent) Resume(ctx context.Context, id domain.TorrentID) error {
	lock := uc.Torrents.OpLock(id)
	lock.Lock()
	defer lock.Unlock()

	if !uc.Torrents.Has(id) {
		return domain.ErrNotFound
	}
	if err := uc.Engine.Resume(ctx, id); err != nil {
		return err
	}
	return uc.Torrents.Update(id, func(r *domain.TorrentRecord) {
		if r.Status == domain.TorrentPaused {
			r.Status = domain.TorrentDownloading
		}
		r.UpdatedAt = time.Now().UTC()
	})
}

// Remove drops the record first so the monitor exits on its next poll, then
// tells the engine to forget the torrent and optionally delete its files.
func (uc ControlTorrent) Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	lock := uc.Torrents.OpLock(id)
	lock.Lock()
	defer lock.Unlock()

	if !uc.Torrents.Has(id) {
		return domain.ErrNotFound
	}
	uc.Torrents.Remove(id)

	if err := uc.Engine.Remove(ctx, id, deleteFiles); err != nil && !errors.Is(err, domain.ErrNotFound) {
		if uc.Logger != nil {
			uc.Logger.Warn("engine remove failed",
				slog.String("torrentId", string(id)),
				slog.String("error", err.Error()),
			)
		}
		return err
	}
	return nil
}
