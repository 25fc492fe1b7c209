package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"moviestream/internal/domain"
)

func sampleRecord(id domain.TorrentID) domain.TorrentRecord {
	now := time.Now().UTC()
	return domain.TorrentRecord{
		ID:        id,
		Status:    domain.TorrentDownloading,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTorrentStorePutGetClones(t *testing.T) {
	s := NewTorrentStore()
	record := sampleRecord("hash1")
	record.Files = []domain.FileEntry{{Index: 0, Path: "a.mp4", Size: 10}}
	s.Put(record)

	got, err := s.Get("hash1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Files[0].Path = "mutated"

	again, _ := s.Get("hash1")
	if again.Files[0].Path != "a.mp4" {
		t.Fatal("store returned an aliased slice")
	}
}

func TestTorrentStoreGetUnknown(t *testing.T) {
	s := NewTorrentStore()
	if _, err := s.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTorrentStoreUpdateAtomic(t *testing.T) {
	s := NewTorrentStore()
	s.Put(sampleRecord("hash1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update("hash1", func(r *domain.TorrentRecord) {
				r.Peers++
				r.Progress = float64(r.Peers)
			})
		}()
	}
	wg.Wait()

	record, _ := s.Get("hash1")
	if record.Peers != 50 {
		t.Fatalf("peers = %d, want 50", record.Peers)
	}
	if record.Progress != float64(record.Peers) {
		t.Fatalf("torn update: progress %v, peers %d", record.Progress, record.Peers)
	}
}

func TestTorrentStoreRemoveKeepsOpLock(t *testing.T) {
	s := NewTorrentStore()
	s.Put(sampleRecord("hash1"))

	before := s.OpLock("hash1")
	s.Remove("hash1")
	if s.Has("hash1") {
		t.Fatal("record still present after Remove")
	}
	if _, err := s.Get("hash1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if after := s.OpLock("hash1"); after != before {
		t.Fatal("op lock must survive removal so in-flight calls finish under it")
	}
}

func TestTorrentStoreList(t *testing.T) {
	s := NewTorrentStore()
	s.Put(sampleRecord("a"))
	s.Put(sampleRecord("b"))

	if got := len(s.List()); got != 2 {
		t.Fatalf("List len = %d, want 2", got)
	}
}
