package stylist

import (
	"sync"
	"time"
)

// Registry hands out one Manager per chat widget key and forgets idle ones.
type Registry struct {
	mu         sync.Mutex
	ttl        time.Duration
	newManager func() *Manager
	entries    map[string]*registryEntry
	now        func() time.Time
}

type registryEntry struct {
	manager  *Manager
	lastUsed time.Time
}

func NewRegistry(ttl time.Duration, newManager func() *Manager) *Registry {
	return &Registry{
		ttl:        ttl,
		newManager: newManager,
		entries:    make(map[string]*registryEntry),
		now:        time.Now,
	}
}

// Get returns the manager for key, creating it on first use.
func (r *Registry) Get(key string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)

	entry, ok := r.entries[key]
	if !ok {
		entry = &registryEntry{manager: r.newManager()}
		entry.manager.onIdle = func() { r.touch(key, entry) }
		r.entries[key] = entry
	}
	entry.lastUsed = now
	return entry.manager
}

// touch restarts the idle clock once a send finishes.
func (r *Registry) touch(key string, entry *registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[key] == entry {
		entry.lastUsed = r.now()
	}
}

// Reset discards the conversation for key. The next Get starts over.
func (r *Registry) Reset(key string) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()
	if ok {
		entry.manager.Reset()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) sweepLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for key, entry := range r.entries {
		if entry.manager.Busy() {
			continue
		}
		if now.Sub(entry.lastUsed) > r.ttl {
			delete(r.entries, key)
		}
	}
}
