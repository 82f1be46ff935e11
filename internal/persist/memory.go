package persist

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryStore keeps snapshots in a map. It serializes through JSON like the
// durable stores so round-trip behaviour matches, and it is what the tests
// use to simulate restarts and corrupt values.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	sessions map[string]struct{}
	log      *logrus.Logger
}

func NewMemoryStore(log *logrus.Logger) *MemoryStore {
	if log == nil {
		log = logrus.New()
	}
	return &MemoryStore{
		values:   make(map[string][]byte),
		sessions: make(map[string]struct{}),
		log:      log,
	}
}

func (s *MemoryStore) Snapshot(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = payload
	return nil
}

func (s *MemoryStore) Restore(ctx context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	data, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("discarding corrupt snapshot")
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Clear(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *MemoryStore) AddSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Corrupt overwrites a key with bytes that do not decode, for tests.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = []byte("{not json")
}

// Len reports how many keys are stored, for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

var _ Store = (*MemoryStore)(nil)
