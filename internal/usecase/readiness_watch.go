package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/media"
	"moviestream/internal/metrics"
	"moviestream/internal/store"
)

const defaultReadinessInterval = 2 * time.Second

// ReadinessWatch waits for the session's video file to appear on disk, then
// flips the session to ready_to_play and publishes a single video_ready
// event. Its lifetime is keyed to the session/torrent binding: a newer play
// request rebinding the session ends the old watch on its next tick.
type ReadinessWatch struct {
	Engine   ports.Engine
	Torrents *store.TorrentStore
	Sessions *store.SessionRegistry
	Detector *media.Detector
	Events   ports.Publisher
	Logger   *slog.Logger
	Interval time.Duration
}

func (w ReadinessWatch) Run(ctx context.Context, sessionID domain.SessionID, torrentID domain.TorrentID) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("torrentId", string(torrentID)),
		slog.String("sessionId", string(sessionID)),
	)

	interval := w.Interval
	if interval <= 0 {
		interval = defaultReadinessInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := w.check(ctx, logger, sessionID, torrentID)
			if err != nil {
				logger.Warn("readiness check failed", slog.String("error", err.Error()))
			}
			if done {
				return
			}
		}
	}
}

func (w ReadinessWatch) check(ctx context.Context, logger *slog.Logger, sessionID domain.SessionID, torrentID domain.TorrentID) (bool, error) {
	current, ok := w.Sessions.CurrentTorrent(sessionID)
	if !ok || current != torrentID {
		logger.Info("session rebound, readiness watch exiting")
		return true, nil
	}
	if !w.Torrents.Has(torrentID) {
		return true, nil
	}

	// Engine calls for one torrent are not reentrant; the op lock keeps this
	// poll from overlapping the progress monitor's.
	lock := w.Torrents.OpLock(torrentID)
	lock.Lock()
	files, err := w.Engine.ListFiles(ctx, torrentID)
	lock.Unlock()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEngineUnavailable) {
			return true, err
		}
		return false, err
	}

	entry, ok := w.Detector.PickPlayable(files)
	if !ok || !w.Detector.IsReady(entry) {
		return false, nil
	}

	// The playable file has bytes on disk. Prioritize the rest of it so
	// sequential playback stays ahead of the download.
	lock.Lock()
	prioErr := w.Engine.SetFilePriority(ctx, torrentID, entry.Index, domain.PriorityHighest)
	lock.Unlock()
	if prioErr != nil {
		logger.Warn("file priority bump failed", slog.String("error", prioErr.Error()))
	}

	// Refresh the record's file list so the video handler sees the local
	// path that just appeared.
	progress := float64(0)
	_ = w.Torrents.Update(torrentID, func(r *domain.TorrentRecord) {
		r.Files = files
		r.UpdatedAt = time.Now().UTC()
		progress = r.Progress
	})
	w.Sessions.SetProgress(sessionID, torrentID, progress, domain.SessionReadyToPlay)

	var movie *domain.Movie
	if session, err := w.Sessions.Get(sessionID); err == nil {
		movie = session.CurrentMovie
	}

	if w.Events != nil {
		w.Events.Publish(domain.SessionTopic(sessionID), domain.EventVideoReady, domain.VideoReadyEvent{
			SessionID: sessionID,
			VideoPath: "/api/video/" + string(sessionID),
			Movie:     movie,
		})
	}
	metrics.VideoReadyTotal.Inc()
	logger.Info("video ready",
		slog.String("file", entry.Path),
		slog.Int64("size", entry.Size),
	)
	return true, nil
}
