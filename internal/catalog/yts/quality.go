package yts

import (
	"moviestream/internal/domain"
)

// qualityFallback is the fixed preference order appended after the caller's
// preferred quality.
var qualityFallback = []string{"2160p", "1080p", "720p", "480p"}

// BestTorrent picks a descriptor for the preferred quality, walking the
// fallback order on a miss: first exact quality match wins, and when no
// quality in the order matches at all, the first listed torrent is returned.
func (c *Client) BestTorrent(movie domain.Movie, preferredQuality string) (domain.TorrentDescriptor, error) {
	if len(movie.Torrents) == 0 {
		return domain.TorrentDescriptor{}, domain.ErrNoTorrentForQuality
	}

	order := make([]string, 0, len(qualityFallback)+1)
	if preferredQuality != "" {
		order = append(order, preferredQuality)
	}
	for _, q := range qualityFallback {
		if q != preferredQuality {
			order = append(order, q)
		}
	}

	for _, quality := range order {
		for _, t := range movie.Torrents {
			if t.Quality == quality {
				return t, nil
			}
		}
	}
	return movie.Torrents[0], nil
}
