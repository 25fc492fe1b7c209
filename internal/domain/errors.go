package domain

import "errors"

var ErrNotFound = errors.New("not found")

// ErrEngineUnavailable is returned by every transfer operation when the
// process started without a working torrent engine. The rest of the system
// degrades to metadata browsing only.
var ErrEngineUnavailable = errors.New("transfer engine unavailable")

var ErrNoTorrentForQuality = errors.New("no torrent available for quality")

var ErrStartFailed = errors.New("failed to start torrent")
