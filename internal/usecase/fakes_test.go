package usecase

import (
	"context"
	"sync"

	"moviestream/internal/domain"
	"moviestream/internal/domain/ports"
)

type fakeEngine struct {
	mu sync.Mutex

	available bool

	startCalled int
	startDesc   domain.TorrentDescriptor
	startID     domain.TorrentID
	startErr    error

	statusCalled int
	statuses     []ports.StatusSnapshot
	statusErr    error

	files    []domain.FileEntry
	filesErr error

	pauseCalled  int
	resumeCalled int
	removeCalled int
	removeFiles  bool

	prioCalled int
	prioIndex  int
	prioValue  domain.FilePriority
}

func (f *fakeEngine) Start(ctx context.Context, desc domain.TorrentDescriptor) (domain.TorrentID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalled++
	f.startDesc = desc
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.startID, nil
}

// Status pops through the configured snapshots, repeating the last one.
func (f *fakeEngine) Status(ctx context.Context, id domain.TorrentID) (ports.StatusSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return ports.StatusSnapshot{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return ports.StatusSnapshot{}, nil
	}
	idx := f.statusCalled
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.statusCalled++
	return f.statuses[idx], nil
}

func (f *fakeEngine) ListFiles(ctx context.Context, id domain.TorrentID) ([]domain.FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	out := make([]domain.FileEntry, len(f.files))
	copy(out, f.files)
	return out, nil
}

func (f *fakeEngine) SetFilePriority(ctx context.Context, id domain.TorrentID, fileIndex int, prio domain.FilePriority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prioCalled++
	f.prioIndex = fileIndex
	f.prioValue = prio
	return nil
}

func (f *fakeEngine) Pause(ctx context.Context, id domain.TorrentID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalled++
	return nil
}

func (f *fakeEngine) Resume(ctx context.Context, id domain.TorrentID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalled++
	return nil
}

func (f *fakeEngine) Remove(ctx context.Context, id domain.TorrentID, deleteFiles bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalled++
	f.removeFiles = deleteFiles
	return nil
}

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Close() error { return nil }

type fakeCatalog struct {
	movie    domain.Movie
	movieErr error
	desc     domain.TorrentDescriptor
	descErr  error
}

func (f *fakeCatalog) ListMovies(ctx context.Context, q ports.MovieQuery) ([]domain.Movie, error) {
	return []domain.Movie{f.movie}, nil
}

func (f *fakeCatalog) GetMovie(ctx context.Context, movieID int) (domain.Movie, error) {
	if f.movieErr != nil {
		return domain.Movie{}, f.movieErr
	}
	return f.movie, nil
}

func (f *fakeCatalog) BestTorrent(movie domain.Movie, preferredQuality string) (domain.TorrentDescriptor, error) {
	if f.descErr != nil {
		return domain.TorrentDescriptor{}, f.descErr
	}
	return f.desc, nil
}

type publishedEvent struct {
	topic     string
	eventType string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(topic, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, eventType: eventType, payload: payload})
}

func (f *fakePublisher) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
