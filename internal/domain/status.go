package domain

// TorrentStatus is the lifecycle state of an active transfer.
type TorrentStatus string

const (
	TorrentDownloading TorrentStatus = "downloading"
	TorrentPaused      TorrentStatus = "paused"
	TorrentCompleted   TorrentStatus = "completed"
	TorrentError       TorrentStatus = "error"
)

// SessionStatus is the user-facing state of a watch session.
type SessionStatus string

const (
	SessionReady       SessionStatus = "ready"
	SessionDownloading SessionStatus = "downloading"
	SessionReadyToPlay SessionStatus = "ready_to_play"
	SessionError       SessionStatus = "error"
)
