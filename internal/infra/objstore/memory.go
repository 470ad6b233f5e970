package objstore

import (
	"context"
	"strings"
	"sync"

	"inkwell/internal/domain"
)

const memScheme = "mem://"

// MemStore is the in-process object store used by tests and by no-config
// development mode.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (s *MemStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	name, err := newObjectName(contentType)
	if err != nil {
		return "", err
	}
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = stored
	return memScheme + name, nil
}

func (s *MemStore) Get(ctx context.Context, ref string) ([]byte, error) {
	name, ok := strings.CutPrefix(ref, memScheme)
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, memScheme)
	if !ok {
		return domain.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

// Len reports the number of stored objects. Test helper.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
