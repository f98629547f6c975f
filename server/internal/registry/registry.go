// Package registry tracks thread ids known to be live in the remote engine.
//
// The in-memory implementation matches a single-process deployment: entries
// are only ever added, and everything is forgotten on restart. The sqlite
// implementation is a drop-in replacement for deployments that want known
// threads to survive restarts.
package registry

import (
	"context"
	"sync"
)

// Registry is the live-thread registry consulted by the session router.
type Registry interface {
	// Has reports whether the thread id is known live.
	Has(ctx context.Context, threadID string) (bool, error)
	// Add registers a thread id as live. Adding an existing id is a no-op.
	Add(ctx context.Context, threadID string) error
}

// Memory is a process-local Registry.
type Memory struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// Has reports whether the thread id has been registered.
func (m *Memory) Has(_ context.Context, threadID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[threadID]
	return ok, nil
}

// Add registers the thread id.
func (m *Memory) Add(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[threadID] = struct{}{}
	return nil
}
