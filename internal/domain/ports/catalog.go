package ports

import (
	"context"

	"moviestream/internal/domain"
)

type MovieQuery struct {
	Page    int
	Limit   int
	Quality string
	Query   string
}

// Catalog is the external movie/torrent metadata provider boundary.
type Catalog interface {
	ListMovies(ctx context.Context, q MovieQuery) ([]domain.Movie, error)
	// GetMovie fails with domain.ErrNotFound for an unknown id.
	GetMovie(ctx context.Context, movieID int) (domain.Movie, error)
	// BestTorrent resolves a descriptor for the preferred quality with the
	// fixed fallback order [preferred, 2160p, 1080p, 720p, 480p]; fails with
	// domain.ErrNoTorrentForQuality when the movie has no torrents at all.
	BestTorrent(movie domain.Movie, preferredQuality string) (domain.TorrentDescriptor, error)
}
