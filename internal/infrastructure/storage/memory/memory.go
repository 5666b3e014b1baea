package memory

import (
	"context"
	"sync"

	"assistant/internal/infrastructure/storage"
)

// Storage - временное in-memory хранилище. Коллекции хранятся в закодированном
// виде, поэтому ошибки кодирования воспроизводятся так же, как на диске.
type Storage struct {
	mu     sync.RWMutex
	format storage.Format
	data   map[string][]byte
}

func New(format storage.Format) *Storage {
	if format == nil {
		format = storage.JSON{}
	}
	return &Storage{
		format: format,
		data:   make(map[string][]byte),
	}
}

func (m *Storage) Load(_ context.Context, name string, out any) error {
	m.mu.RLock()
	data, ok := m.data[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return storage.Decode(m.format, name, data, out)
}

func (m *Storage) Save(_ context.Context, name string, v any) error {
	data, err := storage.Encode(m.format, name, v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[name] = data
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes under name, bypassing encoding.
func (m *Storage) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), data...)
}

// Raw returns the encoded bytes stored under name.
func (m *Storage) Raw(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[name]
	return append([]byte(nil), data...), ok
}

func (m *Storage) Close() error {
	return nil
}
