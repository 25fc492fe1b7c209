// Package media identifies playable video files inside a torrent and checks
// whether enough of one exists locally to begin progressive playback.
package media

import (
	"os"
	"path/filepath"
	"strings"

	"moviestream/internal/domain"
)

// videoExtensions is the fixed allow-list of container extensions.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".wmv":  {},
	".flv":  {},
	".webm": {},
	".m4v":  {},
}

// Detector never fails: classification returns an empty slice and readiness
// returns false when nothing qualifies.
type Detector struct {
	// Stat is swappable for tests; defaults to os.Stat.
	Stat func(string) (os.FileInfo, error)
}

func NewDetector() *Detector {
	return &Detector{Stat: os.Stat}
}

// Classify filters the file list down to known video containers. It is
// idempotent and preserves the input order.
func (d *Detector) Classify(files []domain.FileEntry) []domain.FileEntry {
	out := make([]domain.FileEntry, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Path))
		if _, ok := videoExtensions[ext]; ok {
			out = append(out, f)
		}
	}
	return out
}

// PickPlayable selects "the" playable file: largest by size, ties broken by
// lowest file index. Returns false when the list holds no video files.
func (d *Detector) PickPlayable(files []domain.FileEntry) (domain.FileEntry, bool) {
	candidates := d.Classify(files)
	if len(candidates) == 0 {
		return domain.FileEntry{}, false
	}
	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.Size > best.Size || (f.Size == best.Size && f.Index < best.Index) {
			best = f
		}
	}
	return best, true
}

// IsReady reports whether the entry's local file currently exists. Partial
// presence with growing size is sufficient for playback to start.
func (d *Detector) IsReady(entry domain.FileEntry) bool {
	if entry.LocalPath == "" {
		return false
	}
	stat := d.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(entry.LocalPath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
