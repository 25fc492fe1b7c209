package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/metrics"
	"moviestream/internal/store"
)

// PlayMovie resolves a movie to a torrent, starts the download and binds it
// to the caller's web session. Watch is invoked exactly once per successful
// start and is expected to launch the progress monitor and readiness watch
// for the new binding.
type PlayMovie struct {
	Catalog  ports.Catalog
	Engine   ports.Engine
	Torrents *store.TorrentStore
	Sessions *store.SessionRegistry
	Watch    func(torrentID domain.TorrentID, sessionID domain.SessionID)
	Logger   *slog.Logger
	Now      func() time.Time
}

type PlayInput struct {
	MovieID   int
	Quality   string
	SessionID domain.SessionID
}

type PlayResult struct {
	TorrentID domain.TorrentID
	Movie     domain.Movie
}

func (uc PlayMovie) Execute(ctx context.Context, input PlayInput) (PlayResult, error) {
	logger := uc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}

	// Sessions are created on first reference, so a play request from a
	// browser the server has never seen still works.
	uc.Sessions.GetOrCreate(input.SessionID)

	movie, err := uc.Catalog.GetMovie(ctx, input.MovieID)
	if err != nil {
		metrics.PlayRequestsTotal.WithLabelValues("movie_not_found").Inc()
		return PlayResult{}, err
	}

	desc, err := uc.Catalog.BestTorrent(movie, input.Quality)
	if err != nil {
		metrics.PlayRequestsTotal.WithLabelValues("no_torrent").Inc()
		return PlayResult{}, err
	}

	if !uc.Engine.Available() {
		metrics.PlayRequestsTotal.WithLabelValues("engine_unavailable").Inc()
		return PlayResult{}, domain.ErrEngineUnavailable
	}

	torrentID, err := uc.Engine.Start(ctx, desc)
	if err != nil {
		metrics.PlayRequestsTotal.WithLabelValues("start_failed").Inc()
		return PlayResult{}, err
	}

	created := now().UTC()
	record := domain.TorrentRecord{
		ID:        torrentID,
		Source:    desc,
		Status:    domain.TorrentDownloading,
		CreatedAt: created,
		UpdatedAt: created,
	}
	// An engine that reports success with an empty or malformed handle must
	// not end up in the store, where the id keys every later operation.
	if err := record.Validate(); err != nil {
		metrics.PlayRequestsTotal.WithLabelValues("start_failed").Inc()
		return PlayResult{}, fmt.Errorf("%w: %v", domain.ErrStartFailed, err)
	}
	uc.Torrents.Put(record)

	uc.Sessions.SetPlaying(input.SessionID, torrentID, movie)

	if uc.Watch != nil {
		uc.Watch(torrentID, input.SessionID)
	}

	metrics.PlayRequestsTotal.WithLabelValues("ok").Inc()
	logger.Info("playback started",
		slog.Int("movieId", movie.ID),
		slog.String("quality", desc.Quality),
		slog.String("torrentId", string(torrentID)),
		slog.String("sessionId", string(input.SessionID)),
	)

	return PlayResult{TorrentID: torrentID, Movie: movie}, nil
}
