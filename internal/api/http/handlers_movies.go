package apihttp

import (
	"net/http"
	"strconv"
	"strings"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
)

type moviesResponse struct {
	Success bool           `json:"success"`
	Movies  []domain.Movie `json:"movies"`
	Count   int            `json:"count"`
}

type movieResponse struct {
	Success bool         `json:"success"`
	Movie   domain.Movie `json:"movie"`
}

type torrentDescriptorResponse struct {
	Success bool                     `json:"success"`
	Torrent domain.TorrentDescriptor `json:"torrent"`
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	query := r.URL.Query()
	page, err := parseIntQuery(query.Get("page"), 1)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid page")
		return
	}
	limit, err := parseIntQuery(query.Get("limit"), 20)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	movies, err := s.catalog.ListMovies(r.Context(), ports.MovieQuery{
		Page:    page,
		Limit:   limit,
		Quality: strings.TrimSpace(query.Get("quality")),
		Query:   strings.TrimSpace(query.Get("query")),
	})
	if err != nil {
		s.logger.Error("catalog list failed", "error", err.Error())
		writeError(w, http.StatusBadGateway, "catalog_error", "movie catalog is not reachable")
		return
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	writeJSON(w, http.StatusOK, moviesResponse{Success: true, Movies: movies, Count: len(movies)})
}

// handleMovieByID serves /api/movies/{id} and /api/movies/{id}/torrent.
func (s *Server) handleMovieByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/movies/")
	wantTorrent := false
	if strings.HasSuffix(rest, "/torrent") {
		wantTorrent = true
		rest = strings.TrimSuffix(rest, "/torrent")
	}
	movieID, err := strconv.Atoi(rest)
	if err != nil || movieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid movie id")
		return
	}

	movie, err := s.catalog.GetMovie(r.Context(), movieID)
	if err != nil {
		writeDomainError(w, err, "movie_not_found", "movie not found")
		return
	}

	if !wantTorrent {
		writeJSON(w, http.StatusOK, movieResponse{Success: true, Movie: movie})
		return
	}

	desc, err := s.catalog.BestTorrent(movie, strings.TrimSpace(r.URL.Query().Get("quality")))
	if err != nil {
		writeDomainError(w, err, "movie_not_found", "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, torrentDescriptorResponse{Success: true, Torrent: desc})
}
