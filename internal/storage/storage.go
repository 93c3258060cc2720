// Package storage provides the key-value persistence surface the client
// state stores write through. It mirrors a browser's local storage:
// string keys, string values, best-effort durability. A nil KeyValue
// means "no persistence available" (server-rendered context).
package storage

import "sync"

// KeyValue is the persistence surface: Get reports whether the key was
// present; Set and Remove are write-through.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Memory is an in-process KeyValue, used in tests and wherever a real
// file store is not wanted.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
