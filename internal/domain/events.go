package domain

// Event type strings pushed over the notification channel.
const (
	EventTorrentProgress = "torrent_progress"
	EventVideoReady      = "video_ready"
)

// SessionTopic scopes push events to the clients watching one session.
func SessionTopic(id SessionID) string {
	return "session:" + string(id)
}

type ProgressEvent struct {
	SessionID    SessionID     `json:"session_id"`
	Progress     float64       `json:"progress"`
	Status       SessionStatus `json:"status"`
	DownloadRate int64         `json:"download_rate"`
	Peers        int           `json:"peers"`
}

type VideoReadyEvent struct {
	SessionID SessionID `json:"session_id"`
	VideoPath string    `json:"video_path"`
	Movie     *Movie    `json:"movie,omitempty"`
}
