package usecase

import (
	"context"
	"log/slog"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/metrics"
	"moviestream/internal/store"
)

const defaultPollInterval = time.Second

// ProgressMonitor polls the engine for one torrent, keeps its store record
// current and pushes torrent_progress events to the owning session. One
// monitor goroutine runs per Start; it is the only writer of the record's
// progress fields.
type ProgressMonitor struct {
	Engine   ports.Engine
	Torrents *store.TorrentStore
	Sessions *store.SessionRegistry
	Events   ports.Publisher
	Logger   *slog.Logger
	Interval time.Duration
}

// Run blocks until the torrent finishes, errors, is removed from the store
// or ctx is cancelled. Removal is observed within one poll interval.
func (m ProgressMonitor) Run(ctx context.Context, torrentID domain.TorrentID, sessionID domain.SessionID) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("torrentId", string(torrentID)),
		slog.String("sessionId", string(sessionID)),
	)

	interval := m.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			metrics.MonitorExitsTotal.WithLabelValues("shutdown").Inc()
			return
		case <-ticker.C:
			if done := m.poll(ctx, logger, torrentID, sessionID); done {
				return
			}
		}
	}
}

// poll performs one engine status round trip. It holds the per-id op lock so
// the engine never sees this torrent's status call interleaved with a
// control-path pause, resume or remove.
func (m ProgressMonitor) poll(ctx context.Context, logger *slog.Logger, torrentID domain.TorrentID, sessionID domain.SessionID) bool {
	lock := m.Torrents.OpLock(torrentID)
	lock.Lock()
	defer lock.Unlock()

	if !m.Torrents.Has(torrentID) {
		logger.Info("torrent removed, monitor exiting")
		metrics.MonitorExitsTotal.WithLabelValues("removed").Inc()
		return true
	}

	snapshot, err := m.Engine.Status(ctx, torrentID)
	if err != nil {
		logger.Error("torrent status poll failed", slog.String("error", err.Error()))
		_ = m.Torrents.Update(torrentID, func(r *domain.TorrentRecord) {
			r.Status = domain.TorrentError
			r.UpdatedAt = time.Now().UTC()
		})
		m.Sessions.SetProgress(sessionID, torrentID, 0, domain.SessionError)
		m.publish(sessionID, domain.ProgressEvent{
			SessionID: sessionID,
			Status:    domain.SessionError,
		})
		metrics.MonitorExitsTotal.WithLabelValues("error").Inc()
		return true
	}

	var files []domain.FileEntry
	if record, err := m.Torrents.Get(torrentID); err == nil && len(record.Files) == 0 {
		// Metadata resolves some time after Start; pick the file list up as
		// soon as the engine has it.
		if listed, listErr := m.Engine.ListFiles(ctx, torrentID); listErr == nil && len(listed) > 0 {
			files = listed
		}
	}

	finished := snapshot.Finished
	var published domain.ProgressEvent
	updateErr := m.Torrents.Update(torrentID, func(r *domain.TorrentRecord) {
		if snapshot.Progress < r.Progress {
			// The engine re-verified pieces and briefly reports less than the
			// confirmed high-water mark; progress never moves backwards.
			logger.Warn("engine reported progress regression",
				slog.Float64("reported", snapshot.Progress),
				slog.Float64("kept", r.Progress),
			)
		} else {
			r.Progress = snapshot.Progress
		}
		r.DownloadRate = snapshot.DownloadRate
		r.UploadRate = snapshot.UploadRate
		r.Peers = snapshot.Peers
		if len(files) > 0 {
			r.Files = files
		}
		if finished {
			r.Status = domain.TorrentCompleted
			r.Progress = 100
		} else if r.Status != domain.TorrentPaused {
			r.Status = domain.TorrentDownloading
		}
		r.UpdatedAt = time.Now().UTC()
		published = domain.ProgressEvent{
			SessionID:    sessionID,
			Progress:     r.Progress,
			Status:       sessionStatusFor(r.Status),
			DownloadRate: r.DownloadRate,
			Peers:        r.Peers,
		}
	})
	if updateErr != nil {
		// Removed between the Has check and the update.
		metrics.MonitorExitsTotal.WithLabelValues("removed").Inc()
		return true
	}

	m.Sessions.SetProgress(sessionID, torrentID, published.Progress, published.Status)
	m.publish(sessionID, published)

	if finished {
		logger.Info("torrent completed", slog.Float64("progress", published.Progress))
		metrics.MonitorExitsTotal.WithLabelValues("completed").Inc()
		return true
	}
	return false
}

func (m ProgressMonitor) publish(sessionID domain.SessionID, event domain.ProgressEvent) {
	if m.Events == nil {
		return
	}
	m.Events.Publish(domain.SessionTopic(sessionID), domain.EventTorrentProgress, event)
}

// sessionStatusFor maps transfer state onto the user-facing session state.
// ready_to_play stickiness is enforced by the session registry, not here.
func sessionStatusFor(status domain.TorrentStatus) domain.SessionStatus {
	switch status {
	case domain.TorrentError:
		return domain.SessionError
	case domain.TorrentCompleted:
		return domain.SessionReadyToPlay
	default:
		return domain.SessionDownloading
	}
}
