package store

import (
	"sync"

	"moviestream/internal/domain"
)

// TorrentStore is the single owner of all live TorrentRecord values. Records
// are read and written as whole units under the store lock, so a reader can
// never observe a torn update. The raw map is never exposed.
type TorrentStore struct {
	mu      sync.RWMutex
	records map[domain.TorrentID]*domain.TorrentRecord
	ops     map[domain.TorrentID]*sync.Mutex
}

func NewTorrentStore() *TorrentStore {
	return &TorrentStore{
		records: make(map[domain.TorrentID]*domain.TorrentRecord),
		ops:     make(map[domain.TorrentID]*sync.Mutex),
	}
}

// Put registers a record, replacing any previous one under the same id.
func (s *TorrentStore) Put(record domain.TorrentRecord) {
	clone := record.Clone()
	s.mu.Lock()
	s.records[record.ID] = &clone
	if _, ok := s.ops[record.ID]; !ok {
		s.ops[record.ID] = &sync.Mutex{}
	}
	s.mu.Unlock()
}

// Get returns a snapshot copy of the record.
func (s *TorrentStore) Get(id domain.TorrentID) (domain.TorrentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return domain.TorrentRecord{}, domain.ErrNotFound
	}
	return record.Clone(), nil
}

// Update applies fn to the record atomically. Readers see either the state
// before fn or the state after it, never anything in between.
func (s *TorrentStore) Update(id domain.TorrentID, fn func(*domain.TorrentRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(record)
	return nil
}

// Remove drops the record. Its monitor observes the absence on the next poll
// and exits; the op lock survives so an in-flight engine call finishes first.
func (s *TorrentStore) Remove(id domain.TorrentID) {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
}

func (s *TorrentStore) Has(id domain.TorrentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// List returns snapshot copies of all records.
func (s *TorrentStore) List() []domain.TorrentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TorrentRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	return out
}

// OpLock returns the mutex serializing engine calls for one torrent id. The
// engine is not reentrant per id: the monitor holds this lock around each
// poll, and control-path pause/resume/remove hold it around their calls.
func (s *TorrentStore) OpLock(id domain.TorrentID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.ops[id]
	if !ok {
		lock = &sync.Mutex{}
		s.ops[id] = lock
	}
	return lock
}
