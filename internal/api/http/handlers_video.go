package apihttp

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"moviestream/internal/domain"
)

// handleVideo streams the session's playable file straight off disk. The
// file is typically still growing; http.ServeContent handles Range requests
// against the size visible at open time, so players resume from where the
// download has reached.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/video/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid session id")
		return
	}

	session, err := s.sessions.Get(domain.SessionID(sessionID))
	if err != nil {
		writeDomainError(w, err, "session_not_found", "session not found")
		return
	}
	if session.CurrentTorrentID == "" {
		writeError(w, http.StatusNotFound, "not_found", "no active download for this session")
		return
	}

	record, err := s.torrents.Get(session.CurrentTorrentID)
	if err != nil {
		writeDomainError(w, err, "not_found", "torrent not found")
		return
	}

	entry, ok := s.detector.PickPlayable(record.Files)
	if !ok || !s.detector.IsReady(entry) {
		writeError(w, http.StatusConflict, "not_ready", "video file is not ready yet")
		return
	}

	f, err := os.Open(entry.LocalPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "video file not available")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	w.Header().Set("Content-Type", fallbackContentType(strings.ToLower(filepath.Ext(entry.Path))))
	http.ServeContent(w, r, filepath.Base(entry.Path), info.ModTime(), f)
}
