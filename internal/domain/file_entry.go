package domain

// FilePriority follows libtorrent-style semantics: 0 skips the file,
// 1..7 download it with increasing urgency.
type FilePriority int

const (
	PrioritySkip    FilePriority = 0
	PriorityNormal  FilePriority = 4
	PriorityHighest FilePriority = 7
)

type FileEntry struct {
	Index    int          `json:"index"`
	Path     string       `json:"path"`
	Size     int64        `json:"size"`
	Priority FilePriority `json:"priority"`
	// LocalPath is set only once the file exists on disk.
	LocalPath string `json:"localPath,omitempty"`
}
