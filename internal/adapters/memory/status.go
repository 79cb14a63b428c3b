package memory

import (
	"sync"

	"leadblitz/internal/ports"
)

// StatusStore is a bounded batch-status map. When full, the oldest batch is
// evicted first.
type StatusStore struct {
	mu       sync.Mutex
	capacity int
	statuses map[string]ports.BatchStatus
	order    []string
}

func NewStatusStore(capacity int) *StatusStore {
	if capacity <= 0 {
		capacity = 200
	}
	return &StatusStore{
		capacity: capacity,
		statuses: map[string]ports.BatchStatus{},
	}
}

func (s *StatusStore) Put(id string, st ports.BatchStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.statuses[id]; !exists {
		if len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.statuses, oldest)
		}
		s.order = append(s.order, id)
	}
	s.statuses[id] = st
}

func (s *StatusStore) Get(id string) (ports.BatchStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	return st, ok
}

func (s *StatusStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[id]; !ok {
		return
	}
	delete(s.statuses, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
