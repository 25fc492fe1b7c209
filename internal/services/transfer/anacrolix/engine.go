// Package anacrolix adapts the anacrolix/torrent client to the transfer
// engine port. One adapter instance owns the client and all torrent handles;
// per-id call serialization is the caller's responsibility.
package anacrolix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
)

// addTimeout caps how long we wait for the client to accept new content.
// AddMagnet can block on an internal client mutex when the client is busy
// resolving metadata for another torrent.
const addTimeout = 10 * time.Second

const maxTorrentFileBytes = 5 << 20

type Config struct {
	DataDir string
	// HTTPClient fetches .torrent files referenced by URL descriptors.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Engine struct {
	client  *torrent.Client
	dataDir string
	http    *http.Client
	logger  *slog.Logger

	mu       sync.RWMutex
	torrents map[domain.TorrentID]*torrent.Torrent

	speedMu sync.Mutex
	speeds  map[domain.TorrentID]speedSample

	// peak keeps a high-water mark per torrent: anacrolix re-verifies pieces
	// after restarts and BytesCompleted can temporarily drop below what was
	// already confirmed downloaded.
	peak map[domain.TorrentID]float64
}

func New(cfg Config) (*Engine, error) {
	clientConfig := torrent.NewDefaultClientConfig()
	if cfg.DataDir != "" {
		clientConfig.DataDir = cfg.DataDir
	}

	client, err := torrent.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return newEngine(client, cfg), nil
}

// NewWithClient wires an existing client, used by tests.
func NewWithClient(client *torrent.Client, cfg Config) *Engine {
	return newEngine(client, cfg)
}

func newEngine(client *torrent.Client, cfg Config) *Engine {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:   client,
		dataDir:  cfg.DataDir,
		http:     httpClient,
		logger:   logger,
		torrents: make(map[domain.TorrentID]*torrent.Torrent),
		speeds:   make(map[domain.TorrentID]speedSample),
		peak:     make(map[domain.TorrentID]float64),
	}
}

func (e *Engine) Start(ctx context.Context, desc domain.TorrentDescriptor) (domain.TorrentID, error) {
	if e.client == nil {
		return "", domain.ErrEngineUnavailable
	}

	source := strings.TrimSpace(desc.URL)
	if source == "" {
		return "", fmt.Errorf("%w: empty descriptor", domain.ErrStartFailed)
	}

	t, err := e.addSource(ctx, source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStartFailed, err)
	}

	id := domain.TorrentID(t.InfoHash().HexString())

	e.mu.Lock()
	if _, exists := e.torrents[id]; !exists {
		e.torrents[id] = t
	}
	e.mu.Unlock()

	// Begin downloading everything once metadata resolves. The goroutine ends
	// with the torrent: Closed fires when the handle is dropped.
	go func() {
		select {
		case <-t.GotInfo():
			t.DownloadAll()
		case <-t.Closed():
		}
	}()

	return id, nil
}

// addSource accepts either a magnet link or a URL to a .torrent file.
func (e *Engine) addSource(ctx context.Context, source string) (*torrent.Torrent, error) {
	if strings.HasPrefix(source, "magnet:") {
		return e.addMagnet(ctx, source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("torrent file fetch: HTTP %d", resp.StatusCode)
	}

	mi, err := metainfo.Load(io.LimitReader(resp.Body, maxTorrentFileBytes))
	if err != nil {
		return nil, err
	}
	return e.client.AddTorrent(mi)
}

func (e *Engine) addMagnet(ctx context.Context, magnet string) (*torrent.Torrent, error) {
	type addResult struct {
		t   *torrent.Torrent
		err error
	}
	ch := make(chan addResult, 1)
	go func() {
		t, err := e.client.AddMagnet(magnet)
		ch <- addResult{t, err}
	}()

	select {
	case res := <-ch:
		return res.t, res.err
	case <-time.After(addTimeout):
		// The goroutine may still complete AddMagnet after we give up; drop
		// the orphaned torrent when it does.
		go func() {
			if res := <-ch; res.t != nil {
				res.t.Drop()
			}
		}()
		return nil, errors.New("torrent client busy")
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.t != nil {
				res.t.Drop()
			}
		}()
		return nil, ctx.Err()
	}
}

func (e *Engine) Status(ctx context.Context, id domain.TorrentID) (ports.StatusSnapshot, error) {
	t := e.getTorrent(id)
	if t == nil {
		return ports.StatusSnapshot{}, domain.ErrNotFound
	}

	stats := t.Stats()
	downloadRate, uploadRate := e.sampleSpeed(id, stats, time.Now().UTC())

	snapshot := ports.StatusSnapshot{
		DownloadRate: downloadRate,
		UploadRate:   uploadRate,
		Peers:        stats.ActivePeers,
	}

	if !torrentInfoReady(t) {
		return snapshot, nil
	}

	length := t.Length()
	completed := t.BytesCompleted()
	progress := float64(0)
	if length > 0 {
		progress = float64(completed) / float64(length) * 100
	}

	e.mu.Lock()
	if progress > e.peak[id] {
		e.peak[id] = progress
	} else {
		progress = e.peak[id]
	}
	e.mu.Unlock()

	snapshot.Progress = progress
	snapshot.Finished = length > 0 && completed >= length
	return snapshot, nil
}

func (e *Engine) ListFiles(ctx context.Context, id domain.TorrentID) ([]domain.FileEntry, error) {
	t := e.getTorrent(id)
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return e.mapFiles(t), nil
}

func (e *Engine) SetFilePriority(ctx context.Context, id domain.TorrentID, fileIndex int, prio domain.FilePriority) error {
	t := e.getTorrent(id)
	if t == nil {
		return domain.ErrNotFound
	}
	if !torrentInfoReady(t) {
		return nil
	}
	files := t.Files()
	if fileIndex < 0 || fileIndex >= len(files) {
		return domain.ErrNotFound
	}
	files[fileIndex].SetPriority(piecePriority(prio))
	return nil
}

func (e *Engine) Pause(ctx context.Context, id domain.TorrentID) error {
	t := e.getTorrent(id)
	if t == nil {
		return domain.ErrNotFound
	}
	t.DisallowDataDownload()
	return nil
}

func (e *Engine) Resume(ctx context.Context, id domain.TorrentID) error {
	t := e.getTorrent(id)
	if t == nil {
		return domain.ErrNotFound
	}
	t.AllowDataDownload()
	if torrentInfoReady(t) {
		t.DownloadAll()
	}
	return nil
}

func (e *Engine) Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	t := e.getTorrent(id)
	if t == nil {
		return domain.ErrNotFound
	}

	var paths []string
	if deleteFiles && torrentInfoReady(t) {
		for _, f := range t.Files() {
			paths = append(paths, filepath.Join(e.dataDir, filepath.FromSlash(f.Path())))
		}
	}

	e.mu.Lock()
	delete(e.torrents, id)
	delete(e.peak, id)
	e.mu.Unlock()
	e.forgetSpeed(id)
	t.Drop()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("remove torrent file failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	// Return memory to the OS promptly after dropping a torrent; the Go GC
	// can otherwise hold freed buffers long enough to OOM small hosts.
	runtime.GC()
	debug.FreeOSMemory()
	return nil
}

func (e *Engine) Available() bool { return e.client != nil }

func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	errList := e.client.Close()
	if len(errList) > 0 {
		return errList[0]
	}
	return nil
}

func (e *Engine) getTorrent(id domain.TorrentID) *torrent.Torrent {
	e.mu.RLock()
	t := e.torrents[id]
	e.mu.RUnlock()
	if t == nil {
		return nil
	}
	select {
	case <-t.Closed():
		e.mu.Lock()
		delete(e.torrents, id)
		delete(e.peak, id)
		e.mu.Unlock()
		e.forgetSpeed(id)
		return nil
	default:
		return t
	}
}

func (e *Engine) mapFiles(t *torrent.Torrent) []domain.FileEntry {
	if !torrentInfoReady(t) {
		return nil
	}
	files := t.Files()
	mapped := make([]domain.FileEntry, 0, len(files))
	for i, f := range files {
		entry := domain.FileEntry{
			Index:    i,
			Path:     f.Path(),
			Size:     f.Length(),
			Priority: filePriority(f.Priority()),
		}
		local := filepath.Join(e.dataDir, filepath.FromSlash(f.Path()))
		if _, err := os.Stat(local); err == nil {
			entry.LocalPath = local
		}
		mapped = append(mapped, entry)
	}
	return mapped
}

func torrentInfoReady(t *torrent.Torrent) bool {
	if t == nil {
		return false
	}
	select {
	case <-t.GotInfo():
		return true
	default:
		return false
	}
}

type speedSample struct {
	at           time.Time
	bytesRead    int64
	bytesWritten int64
}

func (e *Engine) sampleSpeed(id domain.TorrentID, stats torrent.TorrentStats, now time.Time) (int64, int64) {
	currentRead := stats.BytesReadUsefulData.Int64()
	currentWritten := stats.BytesWrittenData.Int64()

	e.speedMu.Lock()
	defer e.speedMu.Unlock()

	prev, ok := e.speeds[id]
	e.speeds[id] = speedSample{
		at:           now,
		bytesRead:    currentRead,
		bytesWritten: currentWritten,
	}

	if !ok || prev.at.IsZero() {
		return 0, 0
	}

	dt := now.Sub(prev.at).Seconds()
	if dt <= 0 {
		return 0, 0
	}

	deltaRead := currentRead - prev.bytesRead
	deltaWritten := currentWritten - prev.bytesWritten
	if deltaRead < 0 {
		deltaRead = 0
	}
	if deltaWritten < 0 {
		deltaWritten = 0
	}

	return int64(float64(deltaRead) / dt), int64(float64(deltaWritten) / dt)
}

func (e *Engine) forgetSpeed(id domain.TorrentID) {
	e.speedMu.Lock()
	delete(e.speeds, id)
	e.speedMu.Unlock()
}
