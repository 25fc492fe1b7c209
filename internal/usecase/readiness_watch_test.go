package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/media"
	"moviestream/internal/store"
)

type fakeFileInfo struct {
	os.FileInfo
}

func (fakeFileInfo) IsDir() bool { return false }

func newReadinessFixture(engine *fakeEngine, statErr error) (ReadinessWatch, *store.TorrentStore, *store.SessionRegistry, *fakePublisher) {
	torrents := store.NewTorrentStore()
	sessions := store.NewSessionRegistry(0, nil, nil)
	events := &fakePublisher{}
	detector := media.NewDetector()
	detector.Stat = func(string) (os.FileInfo, error) {
		if statErr != nil {
			return nil, statErr
		}
		return fakeFileInfo{}, nil
	}
	watch := ReadinessWatch{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Detector: detector,
		Events:   events,
		Interval: 5 * time.Millisecond,
	}
	return watch, torrents, sessions, events
}

func TestReadinessWatchPublishesVideoReady(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		files: []domain.FileEntry{
			{Index: 0, Path: "Example/movie.mp4", Size: 1 << 30, LocalPath: "/downloads/Example/movie.mp4"},
			{Index: 1, Path: "Example/sample.txt", Size: 10},
		},
	}
	watch, torrents, sessions, events := newReadinessFixture(engine, nil)
	seedBinding(torrents, sessions, "hash1", "s1")

	done := make(chan struct{})
	go func() {
		watch.Run(context.Background(), "s1", "hash1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("readiness watch did not exit after the file became ready")
	}

	ready := events.byType(domain.EventVideoReady)
	if len(ready) != 1 {
		t.Fatalf("video_ready events = %d, want 1", len(ready))
	}
	payload, ok := ready[0].payload.(domain.VideoReadyEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", ready[0].payload)
	}
	if payload.VideoPath != "/api/video/s1" {
		t.Fatalf("video path = %q", payload.VideoPath)
	}
	if payload.Movie == nil || payload.Movie.ID != 1 {
		t.Fatalf("event movie = %+v", payload.Movie)
	}
	if ready[0].topic != domain.SessionTopic("s1") {
		t.Fatalf("event topic = %q", ready[0].topic)
	}

	if engine.prioCalled != 1 || engine.prioIndex != 0 || engine.prioValue != domain.PriorityHighest {
		t.Fatalf("priority bump = called %d index %d prio %d", engine.prioCalled, engine.prioIndex, engine.prioValue)
	}

	session, err := sessions.Get("s1")
	if err != nil {
		t.Fatalf("session gone: %v", err)
	}
	if session.Status != domain.SessionReadyToPlay {
		t.Fatalf("session status = %q, want ready_to_play", session.Status)
	}
}

func TestReadinessWatchExitsWhenSessionRebinds(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		files: []domain.FileEntry{
			{Index: 0, Path: "Example/movie.mp4", Size: 1 << 30, LocalPath: "/downloads/Example/movie.mp4"},
		},
	}
	// Stat always fails, so readiness never fires on its own.
	watch, torrents, sessions, events := newReadinessFixture(engine, errors.New("no such file"))
	seedBinding(torrents, sessions, "hash1", "s1")

	done := make(chan struct{})
	go func() {
		watch.Run(context.Background(), "s1", "hash1")
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	sessions.SetPlaying("s1", "hash2", domain.Movie{ID: 2})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("readiness watch did not exit after the session rebound")
	}

	if len(events.byType(domain.EventVideoReady)) != 0 {
		t.Fatal("superseded watch must not publish video_ready")
	}
}

func TestReadinessWatchWaitsWhileFileMissing(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		files: []domain.FileEntry{
			{Index: 0, Path: "Example/movie.mp4", Size: 1 << 30},
		},
	}
	watch, torrents, sessions, events := newReadinessFixture(engine, nil)
	seedBinding(torrents, sessions, "hash1", "s1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	watch.Run(ctx, "s1", "hash1")

	// LocalPath was never set, so readiness must not fire.
	if len(events.byType(domain.EventVideoReady)) != 0 {
		t.Fatal("video_ready published before the file existed")
	}
}

// serialTrackingEngine counts engine calls that run concurrently for the
// same torrent id. Engine calls are not reentrant per id, so any overlap
// between the monitor and the readiness watch is a defect.
type serialTrackingEngine struct {
	*fakeEngine

	trackMu  sync.Mutex
	inflight map[domain.TorrentID]int
	overlaps int
	calls    int
}

func (e *serialTrackingEngine) enter(id domain.TorrentID) {
	e.trackMu.Lock()
	e.inflight[id]++
	if e.inflight[id] > 1 {
		e.overlaps++
	}
	e.calls++
	e.trackMu.Unlock()
	// Widen the window so an unserialized caller actually collides.
	time.Sleep(200 * time.Microsecond)
}

func (e *serialTrackingEngine) exit(id domain.TorrentID) {
	e.trackMu.Lock()
	e.inflight[id]--
	e.trackMu.Unlock()
}

func (e *serialTrackingEngine) Status(ctx context.Context, id domain.TorrentID) (ports.StatusSnapshot, error) {
	e.enter(id)
	defer e.exit(id)
	return e.fakeEngine.Status(ctx, id)
}

func (e *serialTrackingEngine) ListFiles(ctx context.Context, id domain.TorrentID) ([]domain.FileEntry, error) {
	e.enter(id)
	defer e.exit(id)
	return e.fakeEngine.ListFiles(ctx, id)
}

func (e *serialTrackingEngine) SetFilePriority(ctx context.Context, id domain.TorrentID, fileIndex int, prio domain.FilePriority) error {
	e.enter(id)
	defer e.exit(id)
	return e.fakeEngine.SetFilePriority(ctx, id, fileIndex, prio)
}

func TestMonitorAndReadinessSerializeEngineCalls(t *testing.T) {
	engine := &serialTrackingEngine{
		fakeEngine: &fakeEngine{
			available: true,
			statuses:  []ports.StatusSnapshot{{Progress: 10, Peers: 1}},
			files: []domain.FileEntry{
				{Index: 0, Path: "Example/movie.mp4", Size: 1 << 30},
			},
		},
		inflight: make(map[domain.TorrentID]int),
	}

	torrents := store.NewTorrentStore()
	sessions := store.NewSessionRegistry(0, nil, nil)
	seedBinding(torrents, sessions, "hash1", "s1")

	// Stat always fails, so the watch keeps polling ListFiles for the
	// whole test instead of firing once and exiting.
	detector := media.NewDetector()
	detector.Stat = func(string) (os.FileInfo, error) { return nil, errors.New("no such file") }

	monitor := ProgressMonitor{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Events:   &fakePublisher{},
		Interval: time.Millisecond,
	}
	watch := ReadinessWatch{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Detector: detector,
		Events:   &fakePublisher{},
		Interval: time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		monitor.Run(ctx, "hash1", "s1")
	}()
	go func() {
		defer wg.Done()
		watch.Run(ctx, "s1", "hash1")
	}()
	wg.Wait()

	engine.trackMu.Lock()
	overlaps, calls := engine.overlaps, engine.calls
	engine.trackMu.Unlock()

	if calls < 10 {
		t.Fatalf("engine calls = %d, too few for the loops to have contended", calls)
	}
	if overlaps != 0 {
		t.Fatalf("overlapping engine calls for one torrent = %d, want 0", overlaps)
	}
}
