package usecase

import (
	"context"
	"testing"
	"time"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
	"moviestream/internal/store"
)

func newMonitorFixture(engine *fakeEngine) (ProgressMonitor, *store.TorrentStore, *store.SessionRegistry, *fakePublisher) {
	torrents := store.NewTorrentStore()
	sessions := store.NewSessionRegistry(0, nil, nil)
	events := &fakePublisher{}
	monitor := ProgressMonitor{
		Engine:   engine,
		Torrents: torrents,
		Sessions: sessions,
		Events:   events,
		Interval: 5 * time.Millisecond,
	}
	return monitor, torrents, sessions, events
}

func seedBinding(torrents *store.TorrentStore, sessions *store.SessionRegistry, torrentID domain.TorrentID, sessionID domain.SessionID) {
	torrents.Put(domain.TorrentRecord{
		ID:        torrentID,
		Status:    domain.TorrentDownloading,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	sessions.GetOrCreate(sessionID)
	sessions.SetPlaying(sessionID, torrentID, domain.Movie{ID: 1, Title: "Example"})
}

func TestProgressMonitorExitsWhenFinished(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		statuses: []ports.StatusSnapshot{
			{Progress: 50, DownloadRate: 1000, Peers: 3},
			{Progress: 100, Finished: true},
		},
	}
	monitor, torrents, sessions, events := newMonitorFixture(engine)
	seedBinding(torrents, sessions, "hash1", "s1")

	done := make(chan struct{})
	go func() {
		monitor.Run(context.Background(), "hash1", "s1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit after the torrent finished")
	}

	record, err := torrents.Get("hash1")
	if err != nil {
		t.Fatalf("record gone: %v", err)
	}
	if record.Status != domain.TorrentCompleted {
		t.Fatalf("record status = %q, want completed", record.Status)
	}
	if record.Progress != 100 {
		t.Fatalf("record progress = %v, want 100", record.Progress)
	}

	progress := events.byType(domain.EventTorrentProgress)
	if len(progress) == 0 {
		t.Fatal("no torrent_progress events published")
	}
	last, ok := progress[len(progress)-1].payload.(domain.ProgressEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", progress[len(progress)-1].payload)
	}
	if last.Progress != 100 || last.SessionID != "s1" {
		t.Fatalf("final event = %+v", last)
	}
}

func TestProgressMonitorExitsOnRemoval(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		statuses:  []ports.StatusSnapshot{{Progress: 10}},
	}
	monitor, torrents, sessions, _ := newMonitorFixture(engine)
	seedBinding(torrents, sessions, "hash1", "s1")

	done := make(chan struct{})
	go func() {
		monitor.Run(context.Background(), "hash1", "s1")
		close(done)
	}()

	// Let at least one poll land, then remove the record.
	time.Sleep(20 * time.Millisecond)
	torrents.Remove("hash1")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit after the record was removed")
	}
}

func TestProgressMonitorNeverRegresses(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		statuses: []ports.StatusSnapshot{
			{Progress: 40},
			{Progress: 25},
			{Progress: 100, Finished: true},
		},
	}
	monitor, torrents, sessions, events := newMonitorFixture(engine)
	seedBinding(torrents, sessions, "hash1", "s1")

	monitor.Run(context.Background(), "hash1", "s1")

	var prev float64 = -1
	for _, e := range events.byType(domain.EventTorrentProgress) {
		payload := e.payload.(domain.ProgressEvent)
		if payload.Progress < prev {
			t.Fatalf("progress regressed from %v to %v", prev, payload.Progress)
		}
		prev = payload.Progress
	}
	if prev != 100 {
		t.Fatalf("final progress = %v, want 100", prev)
	}
}

func TestProgressMonitorMarksErrorAndExits(t *testing.T) {
	engine := &fakeEngine{available: true, statusErr: domain.ErrNotFound}
	monitor, torrents, sessions, _ := newMonitorFixture(engine)
	seedBinding(torrents, sessions, "hash1", "s1")

	done := make(chan struct{})
	go func() {
		monitor.Run(context.Background(), "hash1", "s1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit on engine error")
	}

	record, err := torrents.Get("hash1")
	if err != nil {
		t.Fatalf("record gone: %v", err)
	}
	if record.Status != domain.TorrentError {
		t.Fatalf("record status = %q, want error", record.Status)
	}
	session, err := sessions.Get("s1")
	if err != nil {
		t.Fatalf("session gone: %v", err)
	}
	if session.Status != domain.SessionError {
		t.Fatalf("session status = %q, want error", session.Status)
	}
}

func TestProgressMonitorPopulatesFilesOnce(t *testing.T) {
	engine := &fakeEngine{
		available: true,
		files: []domain.FileEntry{
			{Index: 0, Path: "Example/movie.mp4", Size: 1 << 30},
		},
		statuses: []ports.StatusSnapshot{
			{Progress: 5},
			{Progress: 100, Finished: true},
		},
	}
	monitor, torrents, sessions, _ := newMonitorFixture(engine)
	seedBinding(torrents, sessions, "hash1", "s1")

	monitor.Run(context.Background(), "hash1", "s1")

	record, err := torrents.Get("hash1")
	if err != nil {
		t.Fatalf("record gone: %v", err)
	}
	if len(record.Files) != 1 || record.Files[0].Path != "Example/movie.mp4" {
		t.Fatalf("record files = %+v", record.Files)
	}
}
