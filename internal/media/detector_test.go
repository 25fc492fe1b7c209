package media

import (
	"errors"
	"os"
	"testing"

	"moviestream/internal/domain"
)

type stubFileInfo struct {
	os.FileInfo
	dir bool
}

func (s stubFileInfo) IsDir() bool { return s.dir }

func TestClassifyFiltersVideoExtensions(t *testing.T) {
	d := NewDetector()
	files := []domain.FileEntry{
		{Index: 0, Path: "Movie/movie.MKV", Size: 100},
		{Index: 1, Path: "Movie/readme.txt", Size: 1},
		{Index: 2, Path: "Movie/sample.mp4", Size: 5},
		{Index: 3, Path: "Movie/poster.jpg", Size: 2},
	}

	got := d.Classify(files)
	if len(got) != 2 {
		t.Fatalf("classified %d files, want 2", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 2 {
		t.Fatalf("order not preserved: %+v", got)
	}

	// Idempotent: classifying the result again changes nothing.
	again := d.Classify(got)
	if len(again) != len(got) {
		t.Fatalf("classification not idempotent: %d then %d", len(got), len(again))
	}
}

func TestPickPlayableLargestWins(t *testing.T) {
	d := NewDetector()
	files := []domain.FileEntry{
		{Index: 0, Path: "a/sample.mp4", Size: 50},
		{Index: 1, Path: "a/movie.mkv", Size: 5000},
		{Index: 2, Path: "a/extras.avi", Size: 200},
	}

	best, ok := d.PickPlayable(files)
	if !ok {
		t.Fatal("expected a playable file")
	}
	if best.Index != 1 {
		t.Fatalf("picked index %d, want 1", best.Index)
	}
}

func TestPickPlayableTieBreaksOnLowestIndex(t *testing.T) {
	d := NewDetector()
	files := []domain.FileEntry{
		{Index: 3, Path: "a/part2.mp4", Size: 100},
		{Index: 1, Path: "a/part1.mp4", Size: 100},
	}

	best, ok := d.PickPlayable(files)
	if !ok {
		t.Fatal("expected a playable file")
	}
	if best.Index != 1 {
		t.Fatalf("picked index %d, want 1 (lowest index on tie)", best.Index)
	}
}

func TestPickPlayableNoVideos(t *testing.T) {
	d := NewDetector()
	if _, ok := d.PickPlayable([]domain.FileEntry{{Path: "a/readme.txt"}}); ok {
		t.Fatal("no playable file expected")
	}
	if _, ok := d.PickPlayable(nil); ok {
		t.Fatal("no playable file expected for empty input")
	}
}

func TestIsReady(t *testing.T) {
	d := NewDetector()

	entry := domain.FileEntry{Path: "a/movie.mp4"}
	if d.IsReady(entry) {
		t.Fatal("entry without LocalPath must not be ready")
	}

	entry.LocalPath = "/downloads/a/movie.mp4"
	d.Stat = func(string) (os.FileInfo, error) { return nil, errors.New("no such file") }
	if d.IsReady(entry) {
		t.Fatal("missing file must not be ready")
	}

	d.Stat = func(string) (os.FileInfo, error) { return stubFileInfo{dir: true}, nil }
	if d.IsReady(entry) {
		t.Fatal("directory must not be ready")
	}

	d.Stat = func(string) (os.FileInfo, error) { return stubFileInfo{}, nil }
	if !d.IsReady(entry) {
		t.Fatal("existing file must be ready")
	}
}
