package threadsafe

import "sync"

// Map provides a simple locked map[K]V in order to make it thread safe
type Map[K comparable, V any] struct {
	mtx    sync.RWMutex
	values map[K]V
}

// NewMap creates a new thread safe map
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		values: make(map[K]V),
	}
}

// Size returns the amount of stored K-V-pairs
func (safeMap *Map[K, V]) Size() int {
	safeMap.mtx.RLock()
	defer safeMap.mtx.RUnlock()
	return len(safeMap.values)
}

// Lookup looks up a specific key and returns the corresponding value and a boolean indicating if it was found
func (safeMap *Map[K, V]) Lookup(key K) (V, bool) {
	safeMap.mtx.RLock()
	defer safeMap.mtx.RUnlock()
	val, ok := safeMap.values[key]
	return val, ok
}

// Set sets the value of a specific key
func (safeMap *Map[K, V]) Set(key K, val V) {
	safeMap.mtx.Lock()
	defer safeMap.mtx.Unlock()
	safeMap.values[key] = val
}

// Remove removes the value of a specific key
func (safeMap *Map[K, V]) Remove(key K) {
	safeMap.mtx.Lock()
	defer safeMap.mtx.Unlock()
	delete(safeMap.values, key)
}

// Replace swaps the whole content for the given values in a single step.
// A nil map empties the map.
func (safeMap *Map[K, V]) Replace(values map[K]V) {
	safeMap.mtx.Lock()
	defer safeMap.mtx.Unlock()
	safeMap.values = make(map[K]V, len(values))
	for key, val := range values {
		safeMap.values[key] = val
	}
}
