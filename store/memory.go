package store

import "sync"

// Memory is a KV held in memory, for programs that don't want any session
// material written to disk, and for tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		entries: map[string][]byte{},
	}
}

func (m *Memory) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.entries[name]
	if !ok {
		return nil, ErrEntryNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Set(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := make([]byte, len(data))
	copy(in, data)
	m.entries[name] = in
	return nil
}

func (m *Memory) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, name)
	return nil
}
