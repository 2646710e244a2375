// Package cache provides the read-through, write-through entity caches that
// sit between the processing engines and the persistent store. One cache
// instance exists per entity type; only the single-writer pipeline mutates
// them, so updates are full-value replaces and concurrent readers always see
// either the previous or the next image of an entity, never a partial one.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"exchcore/storage"
)

// Entity is the contract every cached type satisfies: a stable string key and
// a deep clone so cached values never leak mutable state to callers.
type Entity[T any] interface {
	Key() string
	Clone() T
}

// Cache is a read-through/write-through cache over one store partition.
type Cache[T Entity[T]] struct {
	mu        sync.RWMutex
	entries   map[string]T
	store     *storage.Store
	partition string
	newFn     func(key string) T
}

// New builds a cache for one entity type. newFn constructs an empty entity
// for the given key; it is used on GetOrCreate misses and as the
// deserialization target on read-through loads.
func New[T Entity[T]](store *storage.Store, partition string, newFn func(key string) T) *Cache[T] {
	return &Cache[T]{
		entries:   make(map[string]T),
		store:     store,
		partition: partition,
		newFn:     newFn,
	}
}

// Partition returns the store partition backing this cache.
func (c *Cache[T]) Partition() string { return c.partition }

// load fetches the entity from the store on a cache miss and memoizes it.
// Callers must not hold the write lock.
func (c *Cache[T]) load(key string) (T, bool, error) {
	var zero T
	raw, err := c.store.Get(c.partition, key)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	entity := c.newFn(key)
	if err := json.Unmarshal(raw, entity); err != nil {
		return zero, false, fmt.Errorf("cache %s: decode %s: %w", c.partition, key, err)
	}
	c.mu.Lock()
	c.entries[key] = entity
	c.mu.Unlock()
	return entity.Clone(), true, nil
}

// Get returns a copy of the entity, loading it from the store on a miss. The
// second return is false when the entity does not exist anywhere.
func (c *Cache[T]) Get(key string) (T, bool, error) {
	c.mu.RLock()
	entity, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entity.Clone(), true, nil
	}
	return c.load(key)
}

// GetOrCreate returns a copy of the entity, synthesizing an empty one when it
// exists neither in memory nor in the store. The synthesized entity is not
// persisted until Update is called.
func (c *Cache[T]) GetOrCreate(key string) (T, error) {
	entity, ok, err := c.Get(key)
	if err != nil {
		return entity, err
	}
	if ok {
		return entity, nil
	}
	return c.newFn(key), nil
}

// Exists reports whether the entity is present in memory or in the store.
func (c *Cache[T]) Exists(key string) (bool, error) {
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return true, nil
	}
	return c.store.Has(c.partition, key)
}

// Update atomically replaces the in-memory value with a copy of entity and
// writes it through to the store. The cached value is replaced before the
// store write so it remains the authoritative read surface for the rest of
// the pipeline pass even when the store write fails; the error still
// surfaces to the caller.
func (c *Cache[T]) Update(entity T) error {
	key := entity.Key()
	if key == "" {
		return fmt.Errorf("cache %s: entity key is empty", c.partition)
	}
	stored := entity.Clone()
	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("cache %s: encode %s: %w", c.partition, key, err)
	}
	return c.store.Put(c.partition, key, raw)
}

// Reset drops all memoized entries. Intended for test isolation.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]T)
	c.mu.Unlock()
}
