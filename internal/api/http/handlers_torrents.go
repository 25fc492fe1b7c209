package apihttp

import (
	"net/http"
	"strings"

	"moviestream/internal/domain"
)

type torrentsResponse struct {
	Success  bool                   `json:"success"`
	Torrents []domain.TorrentRecord `json:"torrents"`
	Count    int                    `json:"count"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleTorrents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	records := s.torrents.List()
	writeJSON(w, http.StatusOK, torrentsResponse{Success: true, Torrents: records, Count: len(records)})
}

// handleTorrentByID serves:
//
//	POST   /api/torrents/{id}/pause
//	POST   /api/torrents/{id}/resume
//	DELETE /api/torrents/{id}?deleteFiles=true
func (s *Server) handleTorrentByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/torrents/")
	parts := strings.SplitN(rest, "/", 2)
	id := domain.TorrentID(strings.TrimSpace(parts[0]))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid torrent id")
		return
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case r.Method == http.MethodPost && action == "pause":
		if err := s.control.Pause(r.Context(), id); err != nil {
			writeDomainError(w, err, "not_found", "torrent not found")
			return
		}
	case r.Method == http.MethodPost && action == "resume":
		if err := s.control.Resume(r.Context(), id); err != nil {
			writeDomainError(w, err, "not_found", "torrent not found")
			return
		}
	case r.Method == http.MethodDelete && action == "":
		deleteFiles, err := parseBoolQuery(r.URL.Query().Get("deleteFiles"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid deleteFiles")
			return
		}
		if err := s.control.Remove(r.Context(), id, deleteFiles); err != nil {
			writeDomainError(w, err, "not_found", "torrent not found")
			return
		}
	case r.Method == http.MethodGet && action == "":
		record, err := s.torrents.Get(id)
		if err != nil {
			writeDomainError(w, err, "not_found", "torrent not found")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool                 `json:"success"`
			Torrent domain.TorrentRecord `json:"torrent"`
		}{Success: true, Torrent: record})
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Success: true})
}
