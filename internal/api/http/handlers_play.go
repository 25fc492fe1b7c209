package apihttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"moviestream/internal/domain"
	"moviestream/internal/usecase"
)

type playRequest struct {
	MovieID   int    `json:"movie_id"`
	Quality   string `json:"quality"`
	SessionID string `json:"session_id"`
}

type playResponse struct {
	Success   bool             `json:"success"`
	SessionID domain.SessionID `json:"session_id"`
	TorrentID domain.TorrentID `json:"torrent_id"`
	Movie     domain.Movie     `json:"movie"`
}

type statusResponse struct {
	Session            domain.WebSession     `json:"session"`
	Torrent            *domain.TorrentRecord `json:"torrent,omitempty"`
	Success            bool                  `json:"success"`
	StreamingAvailable bool                  `json:"streaming_available"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req playRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.MovieID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "movie_id is required")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id is required")
		return
	}

	result, err := s.play.Execute(r.Context(), usecase.PlayInput{
		MovieID:   req.MovieID,
		Quality:   strings.TrimSpace(req.Quality),
		SessionID: domain.SessionID(sessionID),
	})
	if err != nil {
		writeDomainError(w, err, "movie_not_found", "movie not found")
		return
	}

	writeJSON(w, http.StatusOK, playResponse{
		Success:   true,
		SessionID: domain.SessionID(sessionID),
		TorrentID: result.TorrentID,
		Movie:     result.Movie,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/status/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid session id")
		return
	}

	view, err := s.status.Execute(r.Context(), domain.SessionID(sessionID))
	if err != nil {
		writeDomainError(w, err, "session_not_found", "session not found")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Success:            true,
		Session:            view.Session,
		Torrent:            view.Torrent,
		StreamingAvailable: s.engine != nil && s.engine.Available(),
	})
}
