package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"moviestream/internal/domain"
)

type errorEnvelope struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDomainError maps domain sentinel errors to stable HTTP codes. notFound
// names the resource for the 404 case, since ErrNotFound is shared.
func writeDomainError(w http.ResponseWriter, err error, notFoundCode, notFoundMessage string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundCode, notFoundMessage)
	case errors.Is(err, domain.ErrNoTorrentForQuality):
		writeError(w, http.StatusNotFound, "no_torrent_for_quality", "no torrent available for this movie")
	case errors.Is(err, domain.ErrEngineUnavailable):
		writeError(w, http.StatusServiceUnavailable, "engine_unavailable", "torrent engine is not available")
	case errors.Is(err, domain.ErrStartFailed):
		writeError(w, http.StatusBadGateway, "start_failed", "failed to start torrent download")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func parseIntQuery(value string, defaultValue int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseBoolQuery(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	switch strings.ToLower(value) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, errors.New("invalid bool")
	}
}

func fallbackContentType(ext string) string {
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mov":
		return "video/quicktime"
	case ".m4v":
		return "video/x-m4v"
	case ".wmv":
		return "video/x-ms-wmv"
	case ".flv":
		return "video/x-flv"
	default:
		return "application/octet-stream"
	}
}
