// Package signal is a minimal observable value holder: create with an
// initial value, Set publishes to every subscriber, Subscribe returns an
// unsubscribe function. Stores use it so consumers can react to settings
// and session changes without importing shared mutable globals.
package signal

import "sync"

// Value holds a T and a subscriber registry.
type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	subscribers map[int]func(T)
	nextID      int
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: make(map[int]func(T)),
	}
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set stores the value and notifies subscribers synchronously, in
// unspecified order. Callbacks must not call back into Set.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	v.current = value
	callbacks := make([]func(T), 0, len(v.subscribers))
	for _, callback := range v.subscribers {
		callbacks = append(callbacks, callback)
	}
	v.mu.Unlock()

	for _, callback := range callbacks {
		callback(value)
	}
}

// Subscribe registers callback for future Set calls and returns an
// unsubscribe function. The callback is not invoked with the current
// value.
func (v *Value[T]) Subscribe(callback func(T)) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subscribers[id] = callback
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subscribers, id)
		v.mu.Unlock()
	}
}
