package yts

import (
	"errors"
	"testing"

	"moviestream/internal/domain"
)

func movieWithQualities(qualities ...string) domain.Movie {
	m := domain.Movie{ID: 1, Title: "Example"}
	for _, q := range qualities {
		m.Torrents = append(m.Torrents, domain.TorrentDescriptor{
			URL:     "https://yts.mx/torrent/" + q,
			Quality: q,
		})
	}
	return m
}

func TestBestTorrentPreferredQualityWins(t *testing.T) {
	c := NewClient(Config{})
	movie := movieWithQualities("720p", "1080p", "2160p")

	got, err := c.BestTorrent(movie, "1080p")
	if err != nil {
		t.Fatalf("BestTorrent: %v", err)
	}
	if got.Quality != "1080p" {
		t.Fatalf("quality = %q, want 1080p", got.Quality)
	}
}

func TestBestTorrentFallbackOrder(t *testing.T) {
	c := NewClient(Config{})

	cases := []struct {
		name      string
		qualities []string
		preferred string
		want      string
	}{
		{"MissingPreferredFallsTo2160p", []string{"480p", "2160p"}, "1080p", "2160p"},
		{"MissingHighFallsTo720p", []string{"720p", "480p"}, "1080p", "720p"},
		{"OnlyLowest", []string{"480p"}, "2160p", "480p"},
		{"NoPreferenceUsesFallback", []string{"480p", "1080p"}, "", "1080p"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.BestTorrent(movieWithQualities(tc.qualities...), tc.preferred)
			if err != nil {
				t.Fatalf("BestTorrent: %v", err)
			}
			if got.Quality != tc.want {
				t.Fatalf("quality = %q, want %q", got.Quality, tc.want)
			}
		})
	}
}

func TestBestTorrentUnknownQualitiesFirstListed(t *testing.T) {
	c := NewClient(Config{})
	movie := movieWithQualities("3D", "dvdrip")

	got, err := c.BestTorrent(movie, "1080p")
	if err != nil {
		t.Fatalf("BestTorrent: %v", err)
	}
	if got.Quality != "3D" {
		t.Fatalf("quality = %q, want first listed (3D)", got.Quality)
	}
}

func TestBestTorrentNoTorrents(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.BestTorrent(domain.Movie{ID: 1}, "1080p")
	if !errors.Is(err, domain.ErrNoTorrentForQuality) {
		t.Fatalf("err = %v, want ErrNoTorrentForQuality", err)
	}
}
