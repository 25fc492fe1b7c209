package anacrolix

import (
	"github.com/anacrolix/torrent"

	"moviestream/internal/domain"
)

// piecePriority maps the domain priority scale onto the coarser set of
// priorities anacrolix understands.
func piecePriority(prio domain.FilePriority) torrent.PiecePriority {
	switch {
	case prio <= domain.PrioritySkip:
		return torrent.PiecePriorityNone
	case prio >= domain.PriorityHighest:
		return torrent.PiecePriorityNow
	case prio > domain.PriorityNormal:
		return torrent.PiecePriorityHigh
	default:
		return torrent.PiecePriorityNormal
	}
}

func filePriority(prio torrent.PiecePriority) domain.FilePriority {
	switch prio {
	case torrent.PiecePriorityNone:
		return domain.PrioritySkip
	case torrent.PiecePriorityNow, torrent.PiecePriorityNext:
		return domain.PriorityHighest
	case torrent.PiecePriorityHigh, torrent.PiecePriorityReadahead:
		return domain.FilePriority(6)
	default:
		return domain.PriorityNormal
	}
}
