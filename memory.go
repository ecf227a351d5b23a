package janitor

import (
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Releasable represents any resource that can be released to free memory.
//
// Datasets and series are backed by Apache Arrow buffers, so callers must
// call Release() when done with a resource. The recommended pattern is defer:
//
//	ds, _ := janitor.ReadCSV(file)
//	defer ds.Release()
type Releasable interface {
	Release()
}

// MemoryManager tracks resources and releases them in bulk. It is useful
// when a loop creates many short-lived datasets; for everything else prefer
// individual defer Release() calls.
//
// MemoryManager is safe for concurrent use from multiple goroutines.
type MemoryManager struct {
	allocator memory.Allocator
	resources []Releasable
	mu        sync.Mutex
}

// NewMemoryManager creates a memory manager with the given allocator.
func NewMemoryManager(allocator memory.Allocator) *MemoryManager {
	return &MemoryManager{
		allocator: allocator,
		resources: make([]Releasable, 0),
	}
}

// Track adds a resource to be released by ReleaseAll.
func (m *MemoryManager) Track(resource Releasable) {
	if resource != nil {
		m.mu.Lock()
		m.resources = append(m.resources, resource)
		m.mu.Unlock()
	}
}

// Count returns the number of tracked resources.
func (m *MemoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// ReleaseAll releases all tracked resources and clears the tracking list.
func (m *MemoryManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, resource := range m.resources {
		if resource != nil {
			resource.Release()
		}
	}
	m.resources = m.resources[:0]
}

// WithMemoryManager creates a memory manager, executes fn with it, and
// releases all tracked resources afterwards.
//
// Example:
//
//	err := janitor.WithMemoryManager(mem, func(manager *janitor.MemoryManager) error {
//		for _, chunk := range chunks {
//			ds, err := janitor.ReadCSV(chunk)
//			if err != nil {
//				return err
//			}
//			manager.Track(ds)
//		}
//		return nil
//	})
func WithMemoryManager(allocator memory.Allocator, fn func(*MemoryManager) error) error {
	manager := NewMemoryManager(allocator)
	defer manager.ReleaseAll()
	return fn(manager)
}
