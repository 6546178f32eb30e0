package storage

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	events *fanout
}

// MemoryStorage keeps state in process. Instances created with Sibling share
// the same data and see each other's changes, like browser tabs sharing
// local storage.
type MemoryStorage struct {
	backend *memoryBackend
	origin  string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		backend: &memoryBackend{data: make(map[string][]byte), events: newFanout()},
		origin:  newOrigin(),
	}
}

func (m *MemoryStorage) Sibling() *MemoryStorage {
	return &MemoryStorage{backend: m.backend, origin: newOrigin()}
}

func (m *MemoryStorage) Origin() string { return m.origin }

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.backend.mu.RLock()
	defer m.backend.mu.RUnlock()
	value, ok := m.backend.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	stored := append([]byte(nil), value...)
	m.backend.mu.Lock()
	m.backend.data[key] = stored
	m.backend.mu.Unlock()

	m.backend.events.publish(Event{Key: key, Value: append([]byte(nil), stored...), Origin: m.origin})
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.backend.mu.Lock()
	_, existed := m.backend.data[key]
	delete(m.backend.data, key)
	m.backend.mu.Unlock()

	if existed {
		m.backend.events.publish(Event{Key: key, Origin: m.origin})
	}
	return nil
}

func (m *MemoryStorage) Watch(ctx context.Context) (<-chan Event, error) {
	return m.backend.events.subscribe(ctx), nil
}
