package domain

// TorrentDescriptor identifies content to hand to the transfer engine.
// URL may be a magnet link or a link to a .torrent file.
type TorrentDescriptor struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Size    string `json:"size,omitempty"`
	Seeds   int    `json:"seeds"`
	Peers   int    `json:"peers"`
}

// Movie is the catalog metadata snapshot attached to a session. It is an
// owned copy: the catalog may evict or refresh its own view at any time.
type Movie struct {
	ID         int                 `json:"id"`
	Title      string              `json:"title"`
	Year       int                 `json:"year"`
	Rating     float64             `json:"rating"`
	Runtime    int                 `json:"runtime"`
	Genres     []string            `json:"genres,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Language   string              `json:"language,omitempty"`
	CoverURL   string              `json:"coverUrl,omitempty"`
	BackLarge  string              `json:"backgroundImage,omitempty"`
	ImdbCode   string              `json:"imdbCode,omitempty"`
	Torrents   []TorrentDescriptor `json:"torrents,omitempty"`
}

// Clone deep-copies the movie so session snapshots never alias catalog data.
func (m Movie) Clone() Movie {
	out := m
	if m.Genres != nil {
		out.Genres = append([]string(nil), m.Genres...)
	}
	if m.Torrents != nil {
		out.Torrents = append([]TorrentDescriptor(nil), m.Torrents...)
	}
	return out
}
